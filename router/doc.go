// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the claim ledger API.

# Route Registration

NewRouter creates a configured http.ServeMux from the shared services:

	mux := router.NewRouter(router.Deps{Store: st, Sessions: sessions, ...})

# Endpoints

Public:

	GET  /health     - Liveness
	GET  /metrics    - Prometheus metrics
	POST /auth/login - Exchange credentials for a session token

Any session (Authorization: Bearer <token>):

	GET  /auth/me                    - Current session
	GET  /claims                     - Search (number, q, handler, view)
	POST /claims                     - Register a claim (JSON or multipart)
	GET  /claims/{number}            - History and details
	PUT  /claims/{number}            - Edit descriptive fields on every row
	POST /claims/{number}/statuses   - Append a status
	GET  /claims/{number}/documents  - List documents with download links
	POST /claims/{number}/documents  - Upload into the existing folder
	GET  /dashboard                  - Summary over the latest status of each claim
	GET  /dashboard/mine             - The caller's claims
	GET  /catalog                    - Statuses and other enumerations

ADMINISTRADOR only:

	POST /users   - Create an account and send the welcome email
	GET  /export  - xlsx download (view=ledger|latest)

Every route except /health and /metrics is wrapped in WithLogging.
*/
package router
