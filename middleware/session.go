// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielhkuo/claim-ledger/models"
)

type sessionKey struct{}

// SessionVerifier checks a bearer token and returns its session
type SessionVerifier interface {
	Verify(token string) (models.Session, error)
}

// WithSession stores a session in the context
func WithSession(ctx context.Context, s models.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored by RequireSession
func SessionFrom(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(models.Session)
	return s, ok
}

// BearerToken extracts the token of an "Authorization: Bearer" header
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireSession rejects requests without a valid session token
func RequireSession(v SessionVerifier, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			ErrorResponse(w, http.StatusUnauthorized, "Authorization bearer token required")
			return
		}

		session, err := v.Verify(token)
		if err != nil {
			ErrorResponse(w, http.StatusUnauthorized, "Invalid or expired session")
			return
		}

		next(w, r.WithContext(WithSession(r.Context(), session)))
	}
}

// RequireRole rejects sessions whose role differs. Must run inside
// RequireSession.
func RequireRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFrom(r.Context())
		if !ok {
			ErrorResponse(w, http.StatusUnauthorized, "Authorization bearer token required")
			return
		}
		if session.Role != role {
			ErrorResponse(w, http.StatusForbidden, "Role "+role+" required")
			return
		}
		next(w, r)
	}
}
