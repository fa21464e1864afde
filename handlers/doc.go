// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the claim ledger API.

# Handler Types

Each handler is a struct holding the services it needs:

  - AuthHandler: login, current session, account creation
  - ClaimHandler: registration, status append, edits, documents
  - SearchHandler: ledger search and xlsx export
  - DashboardHandler: summary and per-handler view
  - CatalogHandler: statuses and enumerations for forms

Handlers read the caller from the session placed in the request context
by middleware.RequireSession.

# Claim Lifecycle

	POST /claims                   → Register (ALTA SINIESTRO row, folder CLAIM_<n>)
	POST /claims/{number}/statuses → AppendStatus (copies the latest row)
	PUT  /claims/{number}          → EditClaim (all rows, revision + 1)

Registration and status append accept either a JSON body or a multipart
form with the JSON in "payload" and attachments in "files". Files are
uploaded before the database write; if the write fails the stored objects
are logged as orphans.

# Consistency

With unique claims enforced, the claim number is checked before any upload
and again inside the write transaction, so concurrent registrations of one
number produce exactly one row. Edits carrying expected_revision fail with
409 when another session edited first.
*/
package handlers
