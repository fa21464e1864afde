// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/claim-ledger/catalog"
	"github.com/danielhkuo/claim-ledger/cliparse"
	"github.com/danielhkuo/claim-ledger/dashboard"
	"github.com/danielhkuo/claim-ledger/filestore"
	"github.com/danielhkuo/claim-ledger/middleware"
	"github.com/danielhkuo/claim-ledger/models"
	"github.com/danielhkuo/claim-ledger/notify"
	"github.com/danielhkuo/claim-ledger/store"
	"github.com/danielhkuo/claim-ledger/testutil"
)

// fixedNow is the wall clock seen by claim handlers in tests
var fixedNow = time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	db     *sql.DB
	store  *store.Store
	files  *filestore.MemoryStore
	dash   *dashboard.Service
	cache  *dashboard.MemoryCache
	cat    catalog.Catalog
	cfg    cliparse.Config
	mailer *recordingMailer

	auth    *AuthHandler
	claims  *ClaimHandler
	search  *SearchHandler
	summary *DashboardHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, testutil.GetTestConfig())
}

func newTestEnvWithConfig(t *testing.T, cfg cliparse.Config) *testEnv {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	st := store.New(conn)
	cat := catalog.Default()
	files := filestore.NewMemoryStore()
	cache := dashboard.NewMemoryCache()
	dash := dashboard.NewService(st, cache, cat, cfg.DashboardCooldown)
	mailer := &recordingMailer{}

	claims := NewClaimHandler(st, files, dash, cat, cfg)
	claims.now = func() time.Time { return fixedNow }

	return &testEnv{
		db:      conn,
		store:   st,
		files:   files,
		dash:    dash,
		cache:   cache,
		cat:     cat,
		cfg:     cfg,
		mailer:  mailer,
		auth:    NewAuthHandler(st, testutil.TestSessions(), mailer, cfg),
		claims:  claims,
		search:  NewSearchHandler(st),
		summary: NewDashboardHandler(st, dash),
	}
}

// asUser attaches the session of u to the request, as RequireSession would
func asUser(req *http.Request, u models.User) *http.Request {
	return req.WithContext(middleware.WithSession(req.Context(), models.Session{
		Username:    u.Username,
		Role:        u.Role,
		HandlerName: u.HandlerName,
		ExpiresAt:   fixedNow.Add(time.Hour),
	}))
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []notify.Message
	fail bool
}

func (m *recordingMailer) Send(ctx context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) messages() []notify.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Message(nil), m.sent...)
}

// registerRequest returns a valid registration for number
func registerRequest(number string) models.RegisterClaimRequest {
	return models.RegisterClaimRequest{
		ClaimNumber: number,
		ClaimDetails: models.ClaimDetails{
			Correlative:       "C-77",
			IncidentDate:      "2025-02-28",
			IncidentPlace:     "Providencia",
			AssignmentChannel: "Call center",
			Coverage:          "Robo",
			Insured:           models.Party{Name: "Juan Soto", PersonType: "Natural", Email: "juan@example.com"},
			Vehicle:           models.Vehicle{Make: "TOYOTA", Submodel: "YARIS", ModelYear: "2020", Plate: "ABCD12"},
		},
		Comment: "ingreso",
	}
}
