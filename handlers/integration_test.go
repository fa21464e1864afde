// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/claim-ledger/models"
	"github.com/danielhkuo/claim-ledger/testutil"
)

// TestFullClaimWorkflow tests the complete end-to-end workflow:
// 1. Admin creates a handler account
// 2. Handler logs in
// 3. Handler registers a claim with documents
// 4. Handler moves the claim to a closed status
// 5. Handler corrects the vehicle data
// 6. Handler uploads a late document
// 7. Admin checks the dashboard and exports the ledger
func TestFullClaimWorkflow(t *testing.T) {
	env := newTestEnv(t)
	sessions := testutil.TestSessions()

	// Step 1: Create the handler account
	req := asUser(testutil.MakeRequest("POST", "/users", models.CreateUserRequest{
		Name:     "Lucía Torres",
		Email:    "ltorres@example.com",
		Password: "bienvenida1",
		Role:     models.RoleHandler,
	}, nil), testutil.AdminUser)
	w := httptest.NewRecorder()
	env.auth.CreateUser(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 1 - Create user failed: %d - %s", w.Code, w.Body.String())
	}

	// Step 2: Log in and verify the session
	req = testutil.MakeRequest("POST", "/auth/login", models.LoginRequest{Username: "ltorres@example.com", Password: "bienvenida1"}, nil)
	w = httptest.NewRecorder()
	env.auth.Login(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 2 - Login failed: %d - %s", w.Code, w.Body.String())
	}
	var login models.LoginResponse
	testutil.AssertJSON(t, w, &login)
	session, err := sessions.Verify(login.Token)
	if err != nil {
		t.Fatalf("Step 2 - Token does not verify: %v", err)
	}
	handler := models.User{Username: session.Username, Role: session.Role, HandlerName: session.HandlerName}
	t.Logf("Step 2 - Logged in as %s (%s)", handler.Username, handler.HandlerName)

	// Step 3: Register with two documents
	files := map[string][]byte{"denuncia.pdf": []byte("%PDF denuncia"), "foto.jpg": []byte("jpeg")}
	req = asUser(testutil.MakeMultipartRequest(t, "POST", "/claims", registerRequest("W-1"), files, nil), handler)
	w = httptest.NewRecorder()
	env.claims.Register(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 3 - Register failed: %d - %s", w.Code, w.Body.String())
	}
	var registered models.ClaimEventResponse
	testutil.AssertJSON(t, w, &registered)
	if registered.Record.HandlerName != "LUCÍA TORRES" {
		t.Errorf("Step 3 - Expected handler LUCÍA TORRES, got %s", registered.Record.HandlerName)
	}

	// Step 4: Walk the claim to payment
	for _, status := range []string{"ASIGNADO", "DOCUMENTACIÓN COMPLETA", "PAGO LIBERADO"} {
		if w := appendStatus(t, env, handler, "W-1", status); w.Code != http.StatusCreated {
			t.Fatalf("Step 4 - Append %s failed: %d - %s", status, w.Code, w.Body.String())
		}
	}

	// Step 5: Correct the plate on every row
	details := registerRequest("W-1").ClaimDetails
	details.Vehicle.Plate = "LKJH76"
	expected := 1
	req = testutil.MakeRequest("PUT", "/claims/W-1", models.EditClaimRequest{ClaimDetails: details, ExpectedRevision: &expected}, nil)
	req.SetPathValue("number", "W-1")
	w = httptest.NewRecorder()
	env.claims.EditClaim(w, asUser(req, handler))
	if w.Code != http.StatusOK {
		t.Fatalf("Step 5 - Edit failed: %d - %s", w.Code, w.Body.String())
	}
	var edited models.EditClaimResponse
	testutil.AssertJSON(t, w, &edited)
	if edited.RowsUpdated != 4 {
		t.Errorf("Step 5 - Expected 4 rows updated, got %d", edited.RowsUpdated)
	}

	// Step 6: Upload a late document into the existing folder
	req = testutil.MakeMultipartRequest(t, "POST", "/claims/W-1/documents", nil, map[string][]byte{"finiquito.pdf": []byte("%PDF")}, nil)
	req.SetPathValue("number", "W-1")
	w = httptest.NewRecorder()
	env.claims.UploadDocuments(w, asUser(req, handler))
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 6 - Upload failed: %d - %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/claims/W-1", nil)
	req.SetPathValue("number", "W-1")
	w = httptest.NewRecorder()
	env.claims.GetClaim(w, asUser(req, handler))
	var claim models.ClaimResponse
	testutil.AssertJSON(t, w, &claim)
	if claim.LatestStatus != "PAGO LIBERADO" || claim.Revision != 2 || len(claim.History) != 4 {
		t.Errorf("Step 6 - unexpected claim %+v", claim)
	}
	for _, row := range claim.History {
		if row.Vehicle.Plate != "LKJH76" {
			t.Errorf("Step 6 - row %s kept old plate %s", row.ID, row.Vehicle.Plate)
		}
	}

	req = httptest.NewRequest("GET", "/claims/W-1/documents", nil)
	req.SetPathValue("number", "W-1")
	w = httptest.NewRecorder()
	env.claims.ListDocuments(w, asUser(req, handler))
	var docs models.DocumentsResponse
	testutil.AssertJSON(t, w, &docs)
	if len(docs.Attachments) != 3 {
		t.Errorf("Step 6 - Expected 3 documents, got %d", len(docs.Attachments))
	}

	// Step 7: Dashboard and export
	sum := getSummary(t, env)
	if sum.TotalClaims != 1 || sum.ClosedClaims != 1 || sum.ClosedPercent != 100 {
		t.Errorf("Step 7 - unexpected summary %+v", sum)
	}

	req = asUser(httptest.NewRequest("GET", "/dashboard/mine", nil), handler)
	w = httptest.NewRecorder()
	env.summary.Mine(w, req)
	var mine models.HandlerDashboard
	testutil.AssertJSON(t, w, &mine)
	if mine.Total != 1 {
		t.Errorf("Step 7 - Expected 1 claim in personal dashboard, got %d", mine.Total)
	}

	req = asUser(httptest.NewRequest("GET", "/export?view=latest", nil), testutil.AdminUser)
	w = httptest.NewRecorder()
	env.search.Export(w, req)
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Errorf("Step 7 - Export failed: %d", w.Code)
	}
}

// TestImportedClaimWorkflow covers claims that arrived from the legacy
// spreadsheet without a claim row or folder
func TestImportedClaimWorkflow(t *testing.T) {
	env := newTestEnv(t)

	legacy := testutil.TestRecord("OLD-9", "2022-11-03 16:20:00", "ASIGNADO", "ANA PEREZ")
	legacy.SchemaVersion = models.SchemaVersionLegacy
	testutil.SeedRecord(t, env.db, legacy)

	// registering the same number is rejected
	if w := register(t, env, registerRequest("old-9")); w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for imported claim number, got %d", w.Code)
	}

	// an edit without a revision creates the claim bookkeeping on the fly
	details := registerRequest("OLD-9").ClaimDetails
	if w := editClaim(t, env, "OLD-9", models.EditClaimRequest{ClaimDetails: details}); w.Code != http.StatusOK {
		t.Fatalf("Edit failed: %d - %s", w.Code, w.Body.String())
	}

	if w := appendStatus(t, env, testutil.HandlerUser, "OLD-9", "CIERRE POR DESISTIMIENTO"); w.Code != http.StatusCreated {
		t.Fatalf("Append failed: %d - %s", w.Code, w.Body.String())
	}

	sum := getSummary(t, env)
	if sum.ClosedClaims != 1 {
		t.Errorf("Expected the imported claim to count as closed, got %+v", sum)
	}
}
