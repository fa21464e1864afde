// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/claim-ledger/catalog"
	"github.com/danielhkuo/claim-ledger/dashboard"
	"github.com/danielhkuo/claim-ledger/metrics"
	"github.com/danielhkuo/claim-ledger/middleware"
	"github.com/danielhkuo/claim-ledger/store"
)

type DashboardHandler struct {
	store *store.Store
	dash  *dashboard.Service
}

func NewDashboardHandler(st *store.Store, dash *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{store: st, dash: dash}
}

// Summary handles GET /dashboard for any session; handlers see the
// general KPIs on their home view too
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.dash.Summary(r.Context())
	if err != nil {
		slog.Error("failed to compute dashboard", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute dashboard")
		return
	}
	metrics.DashboardRead(sum.Cached)
	middleware.JSONResponse(w, http.StatusOK, sum)
}

// Mine handles GET /dashboard/mine
func (h *DashboardHandler) Mine(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r.Context())

	// Every row is loaded so the latest status of a claim is computed over
	// its whole history
	rows, err := h.store.AllRecords(r.Context())
	if err != nil {
		slog.Error("failed to load ledger", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, dashboard.ForHandler(rows, session.HandlerName))
}

type CatalogHandler struct {
	cat catalog.Catalog
}

func NewCatalogHandler(cat catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{cat: cat}
}

// Get handles GET /catalog
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.cat)
}
