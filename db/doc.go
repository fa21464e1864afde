// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Connections

Open registers both drivers (lib/pq and modernc.org/sqlite) and pings the
database before returning:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

SQLite connections are limited to one open connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - app_user: accounts, bcrypt password hash, role, handler name
  - claim: one row per claim number with folder and edit revision
  - claim_ledger: one row per claim status event
  - attachment: files uploaded into claim folders

claim_ledger repeats the claim's descriptive columns on every row. Rows
imported from the spreadsheet era carry schema_version 1 and may leave
newer columns empty.
*/
package db
