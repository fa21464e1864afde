// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/danielhkuo/claim-ledger/models"
	"github.com/danielhkuo/claim-ledger/store"
	"github.com/danielhkuo/claim-ledger/testutil"
)

func TestCreateUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, models.User{Username: " Ana@Example.com ", Role: models.RoleHandler, HandlerName: "ANA"}, "hash")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if u.Username != "ana@example.com" {
		t.Errorf("Expected normalized username, got %s", u.Username)
	}
	if u.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}

	_, err = s.CreateUser(ctx, models.User{Username: "ANA@example.com", Role: models.RoleHandler, HandlerName: "ANA"}, "hash")
	if !errors.Is(err, store.ErrDuplicateUser) {
		t.Errorf("Expected ErrDuplicateUser, got %v", err)
	}

	rec, err := s.GetUser(ctx, "ana@EXAMPLE.com")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if rec.PasswordHash != "hash" || rec.HandlerName != "ANA" {
		t.Errorf("Unexpected user record %+v", rec)
	}

	if _, err := s.GetUser(ctx, "nobody@example.com"); !errors.Is(err, store.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdatePasswordHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	ctx := context.Background()

	testutil.CreateTestUser(t, db, "ana@example.com", "plaintext1", models.RoleHandler, "ANA")

	if err := s.UpdatePasswordHash(ctx, "ana@example.com", "$2a$new"); err != nil {
		t.Fatalf("UpdatePasswordHash() error = %v", err)
	}
	rec, _ := s.GetUser(ctx, "ana@example.com")
	if rec.PasswordHash != "$2a$new" {
		t.Errorf("Expected updated hash, got %s", rec.PasswordHash)
	}

	if err := s.UpdatePasswordHash(ctx, "ghost@example.com", "x"); !errors.Is(err, store.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}

	users, err := s.ListUsers(ctx)
	if err != nil || len(users) != 1 {
		t.Errorf("Expected 1 user, got %d (err %v)", len(users), err)
	}
}

func registration(number string, unique bool) store.Registration {
	rec := testutil.TestRecord(number, "2025-03-03 09:00:00", models.StatusRegistered, "ANA PEREZ")
	rec.FolderLink = "memory://CLAIM_" + number + "/"
	return store.Registration{Record: rec, FolderID: "CLAIM_" + number, Unique: unique}
}

func TestRegisterClaim(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	ctx := context.Background()

	reg := registration("12345", true)
	reg.Attachments = []models.Attachment{{
		ID: "att-1", ClaimNumber: "12345", ObjectKey: "CLAIM_12345/ab_foto.jpg", FileName: "foto.jpg", SizeBytes: 10,
	}}

	rec, err := s.RegisterClaim(ctx, reg)
	if err != nil {
		t.Fatalf("RegisterClaim() error = %v", err)
	}
	if rec.ID == "" {
		t.Error("Expected a generated row ID")
	}
	if rec.SchemaVersion != models.SchemaVersionCurrent {
		t.Errorf("Expected schema version %d, got %d", models.SchemaVersionCurrent, rec.SchemaVersion)
	}

	info, err := s.ClaimInfo(ctx, "12345")
	if err != nil {
		t.Fatalf("ClaimInfo() error = %v", err)
	}
	if info.FolderID != "CLAIM_12345" || info.Revision != 1 {
		t.Errorf("Unexpected claim info %+v", info)
	}

	history, err := s.History(ctx, "12345")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected 1 ledger row, got %d", len(history))
	}
	if diff := cmp.Diff(rec, history[0]); diff != "" {
		t.Errorf("stored row mismatch (-want +got):\n%s", diff)
	}

	atts, err := s.Attachments(ctx, "12345")
	if err != nil || len(atts) != 1 {
		t.Fatalf("Expected 1 attachment, got %d (err %v)", len(atts), err)
	}
	if atts[0].UploadedAt.IsZero() {
		t.Error("Expected UploadedAt to default to now")
	}
}

func TestRegisterClaim_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	ctx := context.Background()

	if _, err := s.RegisterClaim(ctx, registration("12345", true)); err != nil {
		t.Fatal(err)
	}

	// case-insensitive and trimmed
	_, err := s.RegisterClaim(ctx, registration(" 12345 ", true))
	if !errors.Is(err, store.ErrDuplicateClaim) {
		t.Errorf("Expected ErrDuplicateClaim, got %v", err)
	}

	n, _ := s.CountRecords(ctx)
	if n != 1 {
		t.Errorf("Expected duplicate to write nothing, got %d rows", n)
	}
}

func TestRegisterClaim_DuplicateAllowed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	ctx := context.Background()

	if _, err := s.RegisterClaim(ctx, registration("777", false)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RegisterClaim(ctx, registration("777", false)); err != nil {
		t.Fatalf("Expected second registration to be accepted, got %v", err)
	}

	history, _ := s.History(ctx, "777")
	if len(history) != 2 {
		t.Errorf("Expected 2 rows, got %d", len(history))
	}
}

func TestRegisterClaim_LegacyNumberWithoutClaimRow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	ctx := context.Background()

	// rows imported from the old sheet have no claim registry entry
	_, err := db.Exec(`
		INSERT INTO claim_ledger (id, claim_number, status, schema_version)
		VALUES ('legacy-1', 'ABC-9', 'ASIGNADO', 1)
	`)
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.RegisterClaim(ctx, registration("abc-9", true))
	if !errors.Is(err, store.ErrDuplicateClaim) {
		t.Errorf("Expected ErrDuplicateClaim for imported number, got %v", err)
	}
}

func TestAppendEvent_RecordsFolderOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	ctx := context.Background()

	if _, err := s.RegisterClaim(ctx, store.Registration{
		Record: testutil.TestRecord("500", "2025-03-03 09:00:00", models.StatusRegistered, "ANA PEREZ"),
	}); err != nil {
		t.Fatal(err)
	}

	next := testutil.TestRecord("500", "2025-03-04 09:00:00", "ASIGNADO", "ANA PEREZ")
	next.FolderLink = "memory://CLAIM_500/"
	if _, err := s.AppendEvent(ctx, store.Event{Record: next, FolderID: "CLAIM_500"}); err != nil {
		t.Fatal(err)
	}

	info, _ := s.ClaimInfo(ctx, "500")
	if info.FolderID != "CLAIM_500" || info.FolderLink != "memory://CLAIM_500/" {
		t.Errorf("Expected folder to be recorded, got %+v", info)
	}

	other := testutil.TestRecord("500", "2025-03-05 09:00:00", "CLIENTE CONTACTADO", "ANA PEREZ")
	if _, err := s.AppendEvent(ctx, store.Event{Record: other, FolderID: "CLAIM_OTHER"}); err != nil {
		t.Fatal(err)
	}
	info, _ = s.ClaimInfo(ctx, "500")
	if info.FolderID != "CLAIM_500" {
		t.Errorf("Folder should not be replaced once set, got %s", info.FolderID)
	}
}

func seedClaim(t *testing.T, s *store.Store, number string, statuses ...string) {
	t.Helper()
	ctx := context.Background()
	at := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	_, err := s.RegisterClaim(ctx, store.Registration{
		Record: testutil.TestRecord(number, at.Format(models.TimestampLayout), models.StatusRegistered, "ANA PEREZ"),
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, status := range statuses {
		stamp := at.Add(time.Duration(i+1) * time.Hour).Format(models.TimestampLayout)
		rec := testutil.TestRecord(number, stamp, status, "ANA PEREZ")
		rec.Comment = "paso " + status
		if _, err := s.AppendEvent(ctx, store.Event{Record: rec}); err != nil {
			t.Fatal(err)
		}
	}
}

func TestEditClaim_UpdatesEveryRow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	ctx := context.Background()

	seedClaim(t, s, "900", "ASIGNADO", "CLIENTE CONTACTADO")
	seedClaim(t, s, "901")

	before, _ := s.History(ctx, "900")

	var d models.ClaimDetails
	d.IncidentPlace = "Valparaíso"
	d.Coverage = "Daño material"
	d.Insured.Email = "nuevo@example.com"

	n, rev, err := s.EditClaim(ctx, "900", d, nil)
	if err != nil {
		t.Fatalf("EditClaim() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 rows updated, got %d", n)
	}
	if rev != 2 {
		t.Errorf("Expected revision 2, got %d", rev)
	}

	after, _ := s.History(ctx, "900")
	for i, r := range after {
		if diff := cmp.Diff(d, r.ClaimDetails); diff != "" {
			t.Errorf("row %d details mismatch (-want +got):\n%s", i, diff)
		}
		// lifecycle columns are untouched
		b := before[i]
		if r.Status != b.Status || r.StatusAt != b.StatusAt || r.Comment != b.Comment ||
			r.HandlerName != b.HandlerName || r.HandlerLogin != b.HandlerLogin || r.CreatedOn != b.CreatedOn {
			t.Errorf("row %d lifecycle changed: %+v -> %+v", i, b, r)
		}
	}

	other, _ := s.History(ctx, "901")
	if other[0].IncidentPlace != "Santiago" {
		t.Error("Edit leaked into another claim")
	}
}

func TestEditClaim_Revision(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	ctx := context.Background()
	seedClaim(t, s, "42")

	stale := 1
	if _, rev, err := s.EditClaim(ctx, "42", models.ClaimDetails{Correlative: "A"}, &stale); err != nil || rev != 2 {
		t.Fatalf("first edit: rev %d, err %v", rev, err)
	}

	_, _, err := s.EditClaim(ctx, "42", models.ClaimDetails{Correlative: "B"}, &stale)
	if !errors.Is(err, store.ErrRevisionConflict) {
		t.Errorf("Expected ErrRevisionConflict, got %v", err)
	}

	history, _ := s.History(ctx, "42")
	if history[0].Correlative != "A" {
		t.Errorf("Conflicting edit should not apply, got %s", history[0].Correlative)
	}

	// last write wins without a revision
	if _, rev, err := s.EditClaim(ctx, "42", models.ClaimDetails{Correlative: "C"}, nil); err != nil || rev != 3 {
		t.Errorf("unconditional edit: rev %d, err %v", rev, err)
	}
}

func TestEditClaim_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	_, _, err := s.EditClaim(context.Background(), "nope", models.ClaimDetails{}, nil)
	if !errors.Is(err, store.ErrClaimNotFound) {
		t.Errorf("Expected ErrClaimNotFound, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)
	ctx := context.Background()

	seedClaim(t, s, "AB-100", "ASIGNADO")
	seedClaim(t, s, "CD-200")

	testCases := []struct {
		name     string
		query    store.SearchQuery
		expected int
	}{
		{"all rows", store.SearchQuery{}, 3},
		{"exact number ignores case", store.SearchQuery{Number: "ab-100"}, 2},
		{"number is not a prefix match", store.SearchQuery{Number: "AB-10"}, 0},
		{"free text", store.SearchQuery{Text: "asignado"}, 1},
		{"free text over descriptive columns", store.SearchQuery{Text: "toyota"}, 3},
		{"handler", store.SearchQuery{Handler: "ANA PEREZ"}, 3},
		{"unknown handler", store.SearchQuery{Handler: "NADIE"}, 0},
		{"number and handler", store.SearchQuery{Number: "CD-200", Handler: "NADIE"}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := s.Search(ctx, tc.query)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(rows) != tc.expected {
				t.Errorf("Expected %d rows, got %d", tc.expected, len(rows))
			}
		})
	}
}

func TestAttachments_EmptyList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	atts, err := store.New(db).Attachments(context.Background(), "none")
	if err != nil {
		t.Fatal(err)
	}
	if atts == nil || len(atts) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", atts)
	}
}
