// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - LoginRequest: username, password
  - CreateUserRequest: name, email, password, role
  - RegisterClaimRequest: claim_number, descriptive fields, comment
  - AppendStatusRequest: status, comment
  - EditClaimRequest: descriptive fields, optional expected_revision

# Response Types

  - LoginResponse: token, expires_at, session
  - ClaimEventResponse: the written ledger row plus stored attachments
  - ClaimResponse: full history, latest status, folder link, revision
  - EditClaimResponse: rows_updated, revision
  - SearchResponse, DocumentsResponse, DashboardSummary, HandlerDashboard
  - ErrorResponse: error, message, details

# Domain Types

ClaimRecord is one ledger row. Every row repeats the claim's descriptive
fields (ClaimDetails); the lifecycle columns (status, status_at, comment,
handler) belong to the individual event:

	type ClaimRecord struct {
		ID          string
		ClaimNumber string
		ClaimDetails
		CreatedOn, StatusAt, Status, Comment string
		HandlerName, HandlerLogin, FolderLink string
		SchemaVersion int
	}

Dates are kept as text in DateLayout ("2006-01-02") and status times in
TimestampLayout ("2006-01-02 15:04:05"). Rows imported from older sheets
may hold malformed values, so parsing is left to the ledger package.

# Constants

Roles:

	RoleAdmin   = "ADMINISTRADOR"
	RoleHandler = "LIQUIDADOR"

Initial status:

	StatusRegistered = "ALTA SINIESTRO"
*/
package models
