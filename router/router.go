// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/claim-ledger/auth"
	"github.com/danielhkuo/claim-ledger/catalog"
	"github.com/danielhkuo/claim-ledger/cliparse"
	"github.com/danielhkuo/claim-ledger/dashboard"
	"github.com/danielhkuo/claim-ledger/filestore"
	"github.com/danielhkuo/claim-ledger/handlers"
	"github.com/danielhkuo/claim-ledger/metrics"
	"github.com/danielhkuo/claim-ledger/middleware"
	"github.com/danielhkuo/claim-ledger/models"
	"github.com/danielhkuo/claim-ledger/notify"
	"github.com/danielhkuo/claim-ledger/store"
)

// Deps are the services shared by all handlers
type Deps struct {
	Store     *store.Store
	Config    cliparse.Config
	Files     filestore.Store
	Mailer    notify.Mailer
	Dashboard *dashboard.Service
	Catalog   catalog.Catalog
	Sessions  *auth.Sessions
}

func NewRouter(deps Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.Store, deps.Sessions, deps.Mailer, deps.Config)
	claimHandler := handlers.NewClaimHandler(deps.Store, deps.Files, deps.Dashboard, deps.Catalog, deps.Config)
	searchHandler := handlers.NewSearchHandler(deps.Store)
	dashboardHandler := handlers.NewDashboardHandler(deps.Store, deps.Dashboard)
	catalogHandler := handlers.NewCatalogHandler(deps.Catalog)

	// session wraps a handler that needs any logged-in user
	session := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireSession(deps.Sessions, h))
	}
	// admin wraps a handler reserved to ADMINISTRADOR
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return session(middleware.RequireRole(models.RoleAdmin, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// Authentication and accounts
	mux.HandleFunc("POST /auth/login", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("GET /auth/me", session(authHandler.Me))
	mux.HandleFunc("POST /users", admin(authHandler.CreateUser))

	// Claims
	mux.HandleFunc("GET /claims", session(searchHandler.Search))
	mux.HandleFunc("POST /claims", session(claimHandler.Register))
	mux.HandleFunc("GET /claims/{number}", session(claimHandler.GetClaim))
	mux.HandleFunc("PUT /claims/{number}", session(claimHandler.EditClaim))
	mux.HandleFunc("POST /claims/{number}/statuses", session(claimHandler.AppendStatus))
	mux.HandleFunc("GET /claims/{number}/documents", session(claimHandler.ListDocuments))
	mux.HandleFunc("POST /claims/{number}/documents", session(claimHandler.UploadDocuments))

	// Reporting
	mux.HandleFunc("GET /dashboard", session(dashboardHandler.Summary))
	mux.HandleFunc("GET /dashboard/mine", session(dashboardHandler.Mine))
	mux.HandleFunc("GET /export", admin(searchHandler.Export))
	mux.HandleFunc("GET /catalog", session(catalogHandler.Get))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("claim-ledger API v1"))
	})

	return mux
}
