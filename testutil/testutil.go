// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/claim-ledger/auth"
	"github.com/danielhkuo/claim-ledger/cliparse"
	"github.com/danielhkuo/claim-ledger/db"
	"github.com/danielhkuo/claim-ledger/models"
	"github.com/danielhkuo/claim-ledger/store"
)

// TestSessionSecret signs session tokens in tests
const TestSessionSecret = "test-session-secret-0123456789"

// SetupTestDB creates a fresh SQLite database with the full schema in a
// per-test temp dir. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "claims.db")
	conn, err := db.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                3318,
		DatabaseType:        "sqlite",
		SessionSecret:       TestSessionSecret,
		SessionTTL:          time.Hour,
		Timezone:            "UTC",
		Location:            time.UTC,
		FileStore:           "memory",
		MaxUploadBytes:      8 << 20,
		DashboardCooldown:   time.Minute,
		SMTPPort:            587,
		AppURL:              "http://localhost:5173",
		EnforceUniqueClaims: true,
	}
}

// TestSessions returns a session issuer matching GetTestConfig
func TestSessions() *auth.Sessions {
	return auth.NewSessions(TestSessionSecret, time.Hour)
}

// CreateTestUser stores an account with a bcrypt hash of password
func CreateTestUser(t *testing.T, conn *sql.DB, username, password, role, handlerName string) models.User {
	t.Helper()

	hash, err := auth.HashPasswordCost(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	u, err := store.New(conn).CreateUser(context.Background(), models.User{
		Username:    username,
		Role:        role,
		HandlerName: handlerName,
	}, hash)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return u
}

// AuthHeader issues a session token for u and returns the request header
func AuthHeader(t *testing.T, sessions *auth.Sessions, u models.User) map[string]string {
	t.Helper()

	token, _, err := sessions.Issue(u)
	if err != nil {
		t.Fatalf("Failed to issue session: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// AdminUser and HandlerUser are the sessions most tests act as
var (
	AdminUser   = models.User{Username: "admin@example.com", Role: models.RoleAdmin, HandlerName: "ADMIN"}
	HandlerUser = models.User{Username: "ana@example.com", Role: models.RoleHandler, HandlerName: "ANA PEREZ"}
)

// SeedRecord appends a ledger row, creating the claim row when missing
func SeedRecord(t *testing.T, conn *sql.DB, rec models.ClaimRecord) models.ClaimRecord {
	t.Helper()

	stored, err := store.New(conn).AppendEvent(context.Background(), store.Event{Record: rec})
	if err != nil {
		t.Fatalf("Failed to seed ledger row: %v", err)
	}
	return stored
}

// TestRecord builds a ledger row with typical descriptive data
func TestRecord(claimNumber, statusAt, status, handlerName string) models.ClaimRecord {
	rec := models.ClaimRecord{
		ClaimNumber:  claimNumber,
		CreatedOn:    statusAt[:10],
		StatusAt:     statusAt,
		Status:       status,
		HandlerName:  handlerName,
		HandlerLogin: "ana@example.com",
	}
	rec.Correlative = "C-1"
	rec.IncidentDate = "2025-02-28"
	rec.IncidentPlace = "Santiago"
	rec.AssignmentChannel = "Call center"
	rec.Coverage = "Robo"
	rec.Vehicle = models.Vehicle{Make: "TOYOTA", Submodel: "YARIS", ModelYear: "2020", Plate: "ABCD12"}
	rec.Insured = models.Party{Name: "Juan Soto", TaxID: "11.111.111-1", PersonType: "Natural", Email: "juan@example.com"}
	return rec
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeMultipartRequest creates a multipart request with the JSON payload in
// the "payload" field and each file under "files"
func MakeMultipartRequest(t *testing.T, method, path string, payload interface{}, files map[string][]byte, headers map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to encode payload: %v", err)
		}
		if err := mw.WriteField("payload", string(raw)); err != nil {
			t.Fatalf("Failed to write payload: %v", err)
		}
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		fw.Write(content)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
