// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/claim-ledger/auth"
	"github.com/danielhkuo/claim-ledger/cliparse"
	"github.com/danielhkuo/claim-ledger/middleware"
	"github.com/danielhkuo/claim-ledger/models"
	"github.com/danielhkuo/claim-ledger/notify"
	"github.com/danielhkuo/claim-ledger/store"
	"github.com/danielhkuo/claim-ledger/validate"
)

type AuthHandler struct {
	store    *store.Store
	sessions *auth.Sessions
	mailer   notify.Mailer
	cfg      cliparse.Config
}

func NewAuthHandler(st *store.Store, sessions *auth.Sessions, mailer notify.Mailer, cfg cliparse.Config) *AuthHandler {
	if mailer == nil {
		mailer = notify.LogMailer{}
	}
	return &AuthHandler{store: st, sessions: sessions, mailer: mailer, cfg: cfg}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.store.GetUser(r.Context(), req.Username)
	if errors.Is(err, store.ErrUserNotFound) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		slog.Error("failed to load user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	needsRehash, err := auth.CheckPassword(user.PasswordHash, req.Password)
	if err != nil {
		slog.Info("login rejected", "username", user.Username)
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	// Legacy plaintext passwords are replaced by a hash on first login
	if needsRehash {
		if hash, err := auth.HashPassword(req.Password); err != nil {
			slog.Error("failed to hash legacy password", "error", err)
		} else if err := h.store.UpdatePasswordHash(r.Context(), user.Username, hash); err != nil {
			slog.Error("failed to store rehashed password", "username", user.Username, "error", err)
		} else {
			slog.Info("legacy password rehashed", "username", user.Username)
		}
	}

	token, session, err := h.sessions.Issue(user.User)
	if err != nil {
		slog.Error("failed to issue session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	slog.Info("user logged in", "username", user.Username, "role", user.Role)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		Session:   session,
	})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFrom(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authorization bearer token required")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, session)
}

// CreateUser handles POST /users (ADMINISTRADOR only)
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := validate.NewUser(req); err != nil {
		respondInvalid(w, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user, err := h.store.CreateUser(r.Context(), models.User{
		Username:    req.Email,
		Role:        req.Role,
		HandlerName: strings.ToUpper(strings.TrimSpace(req.Name)),
	}, hash)
	if errors.Is(err, store.ErrDuplicateUser) {
		middleware.ErrorResponse(w, http.StatusConflict, "User already exists")
		return
	}
	if err != nil {
		slog.Error("failed to create user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	session, _ := middleware.SessionFrom(r.Context())
	slog.Info("user created", "username", user.Username, "role", user.Role, "by", session.Username)

	// The account stays created when the welcome email fails
	notified := true
	msg, err := notify.WelcomeMessage(notify.Welcome{
		Name:     strings.TrimSpace(req.Name),
		Username: user.Username,
		Role:     user.Role,
		LoginURL: h.cfg.AppURL,
	})
	if err == nil {
		err = h.mailer.Send(r.Context(), msg)
	}
	if err != nil {
		slog.Error("failed to send welcome email", "username", user.Username, "error", err)
		notified = false
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateUserResponse{
		Username:    user.Username,
		Role:        user.Role,
		HandlerName: user.HandlerName,
		Notified:    notified,
	})
}

// respondInvalid writes a 422 for aggregated validation errors and a 400
// for anything else
func respondInvalid(w http.ResponseWriter, err error) {
	var verrs validate.Errors
	if errors.As(err, &verrs) {
		middleware.ValidationResponse(w, verrs)
		return
	}
	middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
}
