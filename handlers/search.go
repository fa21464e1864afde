// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielhkuo/claim-ledger/export"
	"github.com/danielhkuo/claim-ledger/middleware"
	"github.com/danielhkuo/claim-ledger/models"
	"github.com/danielhkuo/claim-ledger/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SearchHandler struct {
	store *store.Store
}

func NewSearchHandler(st *store.Store) *SearchHandler {
	return &SearchHandler{store: st}
}

// Search handles GET /claims?number=&q=&handler=&view=
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	view, err := export.ParseView(query.Get("view"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "view must be ledger or latest")
		return
	}

	rows, err := h.store.Search(r.Context(), store.SearchQuery{
		Number:  strings.TrimSpace(query.Get("number")),
		Text:    query.Get("q"),
		Handler: strings.TrimSpace(query.Get("handler")),
	})
	if err != nil {
		slog.Error("failed to search claims", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows = view.Rows(rows)
	if rows == nil {
		rows = []models.ClaimRecord{}
	}

	middleware.JSONResponse(w, http.StatusOK, models.SearchResponse{
		Count: len(rows),
		Rows:  rows,
	})
}

// Export handles GET /export?view=ledger|latest (ADMINISTRADOR only)
func (h *SearchHandler) Export(w http.ResponseWriter, r *http.Request) {
	view, err := export.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "view must be ledger or latest")
		return
	}

	rows, err := h.store.AllRecords(r.Context())
	if err != nil {
		slog.Error("failed to load ledger", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	rows = view.Rows(rows)

	// Render fully before writing so a failure can still become a 500
	var buf bytes.Buffer
	if err := export.Write(&buf, rows); err != nil {
		slog.Error("failed to render workbook", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to export")
		return
	}

	slog.Info("ledger exported", "view", view, "rows", len(rows))

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+view.FileName()+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
