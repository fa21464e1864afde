// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/danielhkuo/claim-ledger/ledger"
	"github.com/danielhkuo/claim-ledger/models"
)

// Descriptive columns, in the order of detailFields
var detailColumns = []string{
	"correlative", "incident_date", "incident_place", "assignment_channel", "coverage",
	"vehicle_make", "vehicle_submodel", "vehicle_version", "vehicle_model_year",
	"vehicle_serial", "vehicle_engine", "vehicle_plate",
	"insured_name", "insured_tax_id", "insured_person_type", "insured_phone", "insured_email", "insured_address",
	"owner_name", "owner_tax_id", "owner_person_type", "owner_phone", "owner_email", "owner_address",
}

var lifecycleColumns = []string{
	"created_on", "status_at", "status", "comment", "handler_name", "handler_login", "folder_link", "schema_version",
}

var recordColumns = append(append([]string{"id", "claim_number"}, detailColumns...), lifecycleColumns...)

var (
	selectRecords = "SELECT " + strings.Join(recordColumns, ", ") + " FROM claim_ledger"
	insertRecord  = "INSERT INTO claim_ledger (" + strings.Join(recordColumns, ", ") +
		") VALUES (" + placeholders(1, len(recordColumns)) + ")"
	updateDetails = func() string {
		set := make([]string, len(detailColumns))
		for i, c := range detailColumns {
			set[i] = fmt.Sprintf("%s = $%d", c, i+1)
		}
		return "UPDATE claim_ledger SET " + strings.Join(set, ", ") +
			fmt.Sprintf(" WHERE LOWER(claim_number) = LOWER($%d)", len(detailColumns)+1)
	}()
)

func detailFields(d *models.ClaimDetails) []any {
	return []any{
		&d.Correlative, &d.IncidentDate, &d.IncidentPlace, &d.AssignmentChannel, &d.Coverage,
		&d.Vehicle.Make, &d.Vehicle.Submodel, &d.Vehicle.Version, &d.Vehicle.ModelYear,
		&d.Vehicle.SerialNumber, &d.Vehicle.EngineNumber, &d.Vehicle.Plate,
		&d.Insured.Name, &d.Insured.TaxID, &d.Insured.PersonType, &d.Insured.Phone, &d.Insured.Email, &d.Insured.Address,
		&d.Owner.Name, &d.Owner.TaxID, &d.Owner.PersonType, &d.Owner.Phone, &d.Owner.Email, &d.Owner.Address,
	}
}

// recordFields returns pointers to every column of a row. The same slice
// serves Scan and, since database/sql dereferences pointer args, Exec.
func recordFields(r *models.ClaimRecord) []any {
	fields := []any{&r.ID, &r.ClaimNumber}
	fields = append(fields, detailFields(&r.ClaimDetails)...)
	return append(fields,
		&r.CreatedOn, &r.StatusAt, &r.Status, &r.Comment,
		&r.HandlerName, &r.HandlerLogin, &r.FolderLink, &r.SchemaVersion,
	)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryRecords(ctx context.Context, q queryer, query string, args ...any) ([]models.ClaimRecord, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var out []models.ClaimRecord
	for rows.Next() {
		var r models.ClaimRecord
		if err := rows.Scan(recordFields(&r)...); err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClaimInfo is the per-claim row kept beside the ledger
type ClaimInfo struct {
	ClaimNumber string
	FolderID    string
	FolderLink  string
	Revision    int
}

// Registration is everything written when a claim is registered
type Registration struct {
	Record      models.ClaimRecord
	FolderID    string
	Attachments []models.Attachment
	// Unique rejects claim numbers already present in the ledger
	Unique bool
}

// RegisterClaim writes the claim row, its first ledger row and any
// attachments in one transaction
func (s *Store) RegisterClaim(ctx context.Context, reg Registration) (models.ClaimRecord, error) {
	rec := reg.Record
	rec.ClaimNumber = strings.TrimSpace(rec.ClaimNumber)
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}
	if rec.SchemaVersion == 0 {
		rec.SchemaVersion = models.SchemaVersionCurrent
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.ClaimRecord{}, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if reg.Unique {
		var n int
		err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM claim_ledger WHERE LOWER(claim_number) = LOWER($1)
		`, rec.ClaimNumber).Scan(&n)
		if err != nil {
			return models.ClaimRecord{}, fmt.Errorf("failed to check claim number: %w", err)
		}
		if n > 0 {
			return models.ClaimRecord{}, ErrDuplicateClaim
		}
	}

	if _, err := s.ensureClaim(ctx, tx, rec.ClaimNumber, reg.FolderID, rec.FolderLink, reg.Unique); err != nil {
		return models.ClaimRecord{}, err
	}
	if _, err := tx.ExecContext(ctx, insertRecord, recordFields(&rec)...); err != nil {
		return models.ClaimRecord{}, fmt.Errorf("failed to insert ledger row: %w", err)
	}
	if err := s.insertAttachments(ctx, tx, reg.Attachments); err != nil {
		return models.ClaimRecord{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.ClaimRecord{}, fmt.Errorf("failed to commit registration: %w", err)
	}
	return rec, nil
}

// Event is a status transition appended to an existing claim
type Event struct {
	Record      models.ClaimRecord
	FolderID    string
	Attachments []models.Attachment
}

// AppendEvent appends a ledger row. The claim row is created for claims
// imported without one, and its folder is recorded if it had none.
func (s *Store) AppendEvent(ctx context.Context, ev Event) (models.ClaimRecord, error) {
	rec := ev.Record
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}
	if rec.SchemaVersion == 0 {
		rec.SchemaVersion = models.SchemaVersionCurrent
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.ClaimRecord{}, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.ensureClaim(ctx, tx, rec.ClaimNumber, ev.FolderID, rec.FolderLink, false); err != nil {
		return models.ClaimRecord{}, err
	}
	if _, err := tx.ExecContext(ctx, insertRecord, recordFields(&rec)...); err != nil {
		return models.ClaimRecord{}, fmt.Errorf("failed to insert ledger row: %w", err)
	}
	if err := s.insertAttachments(ctx, tx, ev.Attachments); err != nil {
		return models.ClaimRecord{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.ClaimRecord{}, fmt.Errorf("failed to commit event: %w", err)
	}
	return rec, nil
}

// AddAttachments records files uploaded into an existing claim folder
func (s *Store) AddAttachments(ctx context.Context, atts []models.Attachment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.insertAttachments(ctx, tx, atts); err != nil {
		return err
	}
	return tx.Commit()
}

// ensureClaim returns the claim row, inserting it when missing. With
// exclusive set, an existing row is reported as ErrDuplicateClaim.
func (s *Store) ensureClaim(ctx context.Context, tx *sql.Tx, number, folderID, folderLink string, exclusive bool) (ClaimInfo, error) {
	info, err := claimInfo(ctx, tx, number)
	switch {
	case errors.Is(err, ErrClaimNotFound):
		_, err := tx.ExecContext(ctx, `
			INSERT INTO claim (claim_number, folder_id, folder_link, revision, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, number, folderID, folderLink, 1, s.timestamp())
		if isUniqueViolation(err) {
			return ClaimInfo{}, ErrDuplicateClaim
		}
		if err != nil {
			return ClaimInfo{}, fmt.Errorf("failed to insert claim: %w", err)
		}
		return ClaimInfo{ClaimNumber: number, FolderID: folderID, FolderLink: folderLink, Revision: 1}, nil
	case err != nil:
		return ClaimInfo{}, err
	case exclusive:
		return ClaimInfo{}, ErrDuplicateClaim
	}

	if info.FolderID == "" && folderID != "" {
		_, err := tx.ExecContext(ctx, `
			UPDATE claim SET folder_id = $1, folder_link = $2 WHERE claim_number = $3
		`, folderID, folderLink, info.ClaimNumber)
		if err != nil {
			return ClaimInfo{}, fmt.Errorf("failed to record claim folder: %w", err)
		}
		info.FolderID, info.FolderLink = folderID, folderLink
	}
	return info, nil
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func claimInfo(ctx context.Context, q rowQueryer, number string) (ClaimInfo, error) {
	var info ClaimInfo
	err := q.QueryRowContext(ctx, `
		SELECT claim_number, folder_id, folder_link, revision
		FROM claim
		WHERE LOWER(claim_number) = LOWER($1)
	`, strings.TrimSpace(number)).Scan(&info.ClaimNumber, &info.FolderID, &info.FolderLink, &info.Revision)
	if errors.Is(err, sql.ErrNoRows) {
		return ClaimInfo{}, ErrClaimNotFound
	}
	if err != nil {
		return ClaimInfo{}, fmt.Errorf("failed to query claim: %w", err)
	}
	return info, nil
}

// ClaimInfo loads the claim row. Claims imported without one return
// ErrClaimNotFound even though ledger rows exist.
func (s *Store) ClaimInfo(ctx context.Context, number string) (ClaimInfo, error) {
	return claimInfo(ctx, s.db, number)
}

// EditClaim overwrites the descriptive fields on every ledger row of the
// claim and bumps its revision. With expected set, the edit only applies
// if the claim is still at that revision; otherwise last write wins.
func (s *Store) EditClaim(ctx context.Context, number string, d models.ClaimDetails, expected *int) (rowsUpdated int64, revision int, err error) {
	number = strings.TrimSpace(number)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var n int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM claim_ledger WHERE LOWER(claim_number) = LOWER($1)
	`, number).Scan(&n)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count ledger rows: %w", err)
	}
	if n == 0 {
		return 0, 0, ErrClaimNotFound
	}

	info, err := s.ensureClaim(ctx, tx, number, "", "", false)
	if err != nil {
		return 0, 0, err
	}

	// The revision bump comes first so that PostgreSQL locks the claim row
	// before the ledger rows are touched.
	var res sql.Result
	if expected != nil {
		if *expected != info.Revision {
			return 0, 0, ErrRevisionConflict
		}
		res, err = tx.ExecContext(ctx, `
			UPDATE claim SET revision = revision + 1 WHERE claim_number = $1 AND revision = $2
		`, info.ClaimNumber, *expected)
	} else {
		res, err = tx.ExecContext(ctx, `
			UPDATE claim SET revision = revision + 1 WHERE claim_number = $1
		`, info.ClaimNumber)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to bump claim revision: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return 0, 0, ErrRevisionConflict
	}

	if err := tx.QueryRowContext(ctx, `
		SELECT revision FROM claim WHERE claim_number = $1
	`, info.ClaimNumber).Scan(&revision); err != nil {
		return 0, 0, fmt.Errorf("failed to read claim revision: %w", err)
	}

	args := append(detailFields(&d), number)
	res, err = tx.ExecContext(ctx, updateDetails, args...)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to update ledger rows: %w", err)
	}
	rowsUpdated, err = res.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count updated rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit edit: %w", err)
	}
	return rowsUpdated, revision, nil
}

// ClaimExists reports whether any ledger row carries the claim number
func (s *Store) ClaimExists(ctx context.Context, number string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM claim_ledger WHERE LOWER(claim_number) = LOWER($1)
	`, strings.TrimSpace(number)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check claim number: %w", err)
	}
	return n > 0, nil
}

// History returns every ledger row of one claim, in insertion order
func (s *Store) History(ctx context.Context, number string) ([]models.ClaimRecord, error) {
	return queryRecords(ctx, s.db, selectRecords+" WHERE LOWER(claim_number) = LOWER($1) ORDER BY id",
		strings.TrimSpace(number))
}

// AllRecords returns the full ledger ordered by claim number and insertion
func (s *Store) AllRecords(ctx context.Context) ([]models.ClaimRecord, error) {
	return queryRecords(ctx, s.db, selectRecords+" ORDER BY claim_number, id")
}

// RecordsByHandler returns the ledger rows assigned to one handler
func (s *Store) RecordsByHandler(ctx context.Context, handler string) ([]models.ClaimRecord, error) {
	return queryRecords(ctx, s.db, selectRecords+" WHERE handler_name = $1 ORDER BY claim_number, id", handler)
}

// CountRecords returns the number of ledger rows
func (s *Store) CountRecords(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM claim_ledger").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count ledger rows: %w", err)
	}
	return n, nil
}

// SearchQuery selects ledger rows. Number is an exact, case-insensitive
// claim number match; Text a substring match over all textual columns.
type SearchQuery struct {
	Number  string
	Text    string
	Handler string
}

// Search returns matching rows ordered by claim number and status time
func (s *Store) Search(ctx context.Context, q SearchQuery) ([]models.ClaimRecord, error) {
	var rows []models.ClaimRecord
	var err error
	switch {
	case q.Number != "":
		rows, err = s.History(ctx, q.Number)
	case q.Handler != "":
		rows, err = s.RecordsByHandler(ctx, q.Handler)
	default:
		rows, err = s.AllRecords(ctx)
	}
	if err != nil {
		return nil, err
	}

	if q.Handler != "" && q.Number != "" {
		filtered := rows[:0]
		for _, r := range rows {
			if r.HandlerName == q.Handler {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}
	rows = ledger.Filter(rows, q.Text)
	ledger.SortHistory(rows)
	return rows, nil
}
