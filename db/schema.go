// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to the database of the given type ("postgres" or "sqlite")
// and verifies the connection
func Open(dbType, url string) (*sql.DB, error) {
	var driver string
	switch dbType {
	case "postgres":
		driver = "postgres"
	case "sqlite":
		driver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbType == "sqlite" {
		// a single writer avoids SQLITE_BUSY under concurrent requests
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The DDL is restricted to types and clauses shared by PostgreSQL and
// SQLite. Ledger dates are text in fixed layouts (see models.DateLayout).
const schema = `
-- Users
CREATE TABLE IF NOT EXISTS app_user (
    username TEXT PRIMARY KEY,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL CHECK (role IN ('ADMINISTRADOR', 'LIQUIDADOR')),
    handler_name TEXT NOT NULL,
    created_at TEXT NOT NULL
);

-- Claims: per-claim data that is not per-event
CREATE TABLE IF NOT EXISTS claim (
    claim_number TEXT PRIMARY KEY,
    folder_id TEXT NOT NULL DEFAULT '',
    folder_link TEXT NOT NULL DEFAULT '',
    revision INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL
);

-- claim numbers are looked up case-insensitively, so they must be unique that way
CREATE UNIQUE INDEX IF NOT EXISTS idx_claim_number_lower ON claim(LOWER(claim_number));

-- Claim ledger: one row per status event, never deleted
CREATE TABLE IF NOT EXISTS claim_ledger (
    id TEXT PRIMARY KEY,
    claim_number TEXT NOT NULL,
    correlative TEXT NOT NULL DEFAULT '',
    incident_date TEXT NOT NULL DEFAULT '',
    incident_place TEXT NOT NULL DEFAULT '',
    assignment_channel TEXT NOT NULL DEFAULT '',
    coverage TEXT NOT NULL DEFAULT '',
    vehicle_make TEXT NOT NULL DEFAULT '',
    vehicle_submodel TEXT NOT NULL DEFAULT '',
    vehicle_version TEXT NOT NULL DEFAULT '',
    vehicle_model_year TEXT NOT NULL DEFAULT '',
    vehicle_serial TEXT NOT NULL DEFAULT '',
    vehicle_engine TEXT NOT NULL DEFAULT '',
    vehicle_plate TEXT NOT NULL DEFAULT '',
    insured_name TEXT NOT NULL DEFAULT '',
    insured_tax_id TEXT NOT NULL DEFAULT '',
    insured_person_type TEXT NOT NULL DEFAULT '',
    insured_phone TEXT NOT NULL DEFAULT '',
    insured_email TEXT NOT NULL DEFAULT '',
    insured_address TEXT NOT NULL DEFAULT '',
    owner_name TEXT NOT NULL DEFAULT '',
    owner_tax_id TEXT NOT NULL DEFAULT '',
    owner_person_type TEXT NOT NULL DEFAULT '',
    owner_phone TEXT NOT NULL DEFAULT '',
    owner_email TEXT NOT NULL DEFAULT '',
    owner_address TEXT NOT NULL DEFAULT '',
    created_on TEXT NOT NULL DEFAULT '',
    status_at TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    comment TEXT NOT NULL DEFAULT '',
    handler_name TEXT NOT NULL DEFAULT '',
    handler_login TEXT NOT NULL DEFAULT '',
    folder_link TEXT NOT NULL DEFAULT '',
    schema_version INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_claim_ledger_claim ON claim_ledger(claim_number);
CREATE INDEX IF NOT EXISTS idx_claim_ledger_claim_lower ON claim_ledger(LOWER(claim_number));
CREATE INDEX IF NOT EXISTS idx_claim_ledger_handler ON claim_ledger(handler_name);

-- Attachments uploaded into claim folders
CREATE TABLE IF NOT EXISTS attachment (
    id TEXT PRIMARY KEY,
    claim_number TEXT NOT NULL,
    object_key TEXT NOT NULL,
    file_name TEXT NOT NULL,
    content_type TEXT NOT NULL DEFAULT '',
    size_bytes INTEGER NOT NULL DEFAULT 0,
    uploaded_by TEXT NOT NULL DEFAULT '',
    uploaded_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attachment_claim ON attachment(claim_number);
`
