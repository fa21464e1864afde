// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the claim ledger API server.

The claim ledger tracks vehicle insurance claims ("siniestros") as an
append-only log: registering a claim writes its first row, and every
status change appends another. Descriptive fields belong to the claim and
are edited on all of its rows at once. Documents live in one folder per
claim in an S3-compatible bucket.

# Starting the Server

Configuration comes from CLI flags, environment variables or a .env file:

	DATABASE_URL=file:claims.db SESSION_SECRET=... FILESTORE=memory go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." --bucket claims

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - SESSION_SECRET (--session-secret): HS256 key for session tokens
  - S3_BUCKET (--bucket): required unless FILESTORE=memory

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - TIMEZONE (--tz): zone of ledger timestamps (default: America/Mexico_City)
  - REDIS_URL (--redis): shared dashboard cache
  - DASHBOARD_COOLDOWN (--cooldown): dashboard reload interval (default: 1m)
  - SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD, MAIL_FROM: welcome emails
  - CATALOG_FILE (--catalog): YAML overriding statuses and enumerations
  - ENFORCE_UNIQUE_CLAIMS: false accepts re-registration of a claim number

# Architecture

  - handlers: HTTP request handlers (auth, claims, search, dashboard)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, sessions, JSON helpers
  - store: SQL persistence of users, claims, ledger rows and attachments
  - ledger: ordering, latest-status projection, business days
  - filestore: claim folders on S3 or in memory
  - dashboard, export, notify, metrics: reporting and side channels
  - catalog, validate, models: domain vocabulary and input checks
  - auth, db, cliparse: sessions, schema, configuration

The claimsadmin command in cmd/claimsadmin runs the same operations from a
shell: creating and listing accounts, exporting the ledger and printing the summary.
*/
package main
