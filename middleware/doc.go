// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs method, path, status, remote address and duration_ms on completion,
and records the request in the Prometheus collectors under the route
pattern.

# Sessions

Protected routes require an "Authorization: Bearer <token>" header:

	mux.HandleFunc("GET /claims", middleware.WithLogging(
		middleware.RequireSession(sessions, searchHandler.Search)))

Admin routes add a role gate inside the session check:

	middleware.RequireSession(sessions,
		middleware.RequireRole(models.RoleAdmin, handler))

Handlers read the caller with SessionFrom(r.Context()).

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.ValidationResponse(w, details)

Parse JSON request bodies:

	var req models.AppendStatusRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
*/
package middleware
