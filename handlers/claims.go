// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/claim-ledger/catalog"
	"github.com/danielhkuo/claim-ledger/cliparse"
	"github.com/danielhkuo/claim-ledger/dashboard"
	"github.com/danielhkuo/claim-ledger/filestore"
	"github.com/danielhkuo/claim-ledger/ledger"
	"github.com/danielhkuo/claim-ledger/metrics"
	"github.com/danielhkuo/claim-ledger/middleware"
	"github.com/danielhkuo/claim-ledger/models"
	"github.com/danielhkuo/claim-ledger/store"
	"github.com/danielhkuo/claim-ledger/validate"
)

// downloadURLTTL is the lifetime of presigned attachment links
const downloadURLTTL = 15 * time.Minute

type ClaimHandler struct {
	store *store.Store
	files filestore.Store
	dash  *dashboard.Service
	cat   catalog.Catalog
	cfg   cliparse.Config
	now   func() time.Time
}

func NewClaimHandler(st *store.Store, files filestore.Store, dash *dashboard.Service, cat catalog.Catalog, cfg cliparse.Config) *ClaimHandler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ClaimHandler{store: st, files: files, dash: dash, cat: cat, cfg: cfg, now: time.Now}
}

// localNow is the current time in the configured zone
func (h *ClaimHandler) localNow() time.Time {
	return h.now().In(h.cfg.Location)
}

// Register handles POST /claims
func (h *ClaimHandler) Register(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r.Context())

	var req models.RegisterClaimRequest
	files, ok := h.parseInput(w, r, &req)
	if !ok {
		return
	}

	if err := validate.RegisterClaim(req, h.cat); err != nil {
		respondInvalid(w, err)
		return
	}
	number := strings.TrimSpace(req.ClaimNumber)

	// Checked again inside the write transaction; this only avoids
	// uploading files for a claim that will be rejected
	if h.cfg.EnforceUniqueClaims {
		exists, err := h.store.ClaimExists(r.Context(), number)
		if err != nil {
			slog.Error("failed to check claim number", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if exists {
			middleware.ErrorResponse(w, http.StatusConflict, "Claim number already registered")
			return
		}
	}

	folder, err := h.files.EnsureFolder(r.Context(), filestore.FolderName(number))
	if err != nil {
		slog.Error("failed to prepare claim folder", "claim", number, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to prepare claim folder")
		return
	}

	atts, err := h.uploadFiles(r.Context(), folder, number, session.Username, files)
	if err != nil {
		slog.Error("failed to upload attachments", "claim", number, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to upload attachments")
		return
	}

	now := h.localNow()
	rec, err := h.store.RegisterClaim(r.Context(), store.Registration{
		Record: models.ClaimRecord{
			ClaimNumber:  number,
			ClaimDetails: req.ClaimDetails,
			CreatedOn:    now.Format(models.DateLayout),
			StatusAt:     ledger.NextStatusTime("", now),
			Status:       models.StatusRegistered,
			Comment:      strings.TrimSpace(req.Comment),
			HandlerName:  session.HandlerName,
			HandlerLogin: session.Username,
			FolderLink:   folder.Link,
		},
		FolderID:    folder.ID,
		Attachments: atts,
		Unique:      h.cfg.EnforceUniqueClaims,
	})
	if errors.Is(err, store.ErrDuplicateClaim) {
		logOrphans(number, atts)
		middleware.ErrorResponse(w, http.StatusConflict, "Claim number already registered")
		return
	}
	if err != nil {
		logOrphans(number, atts)
		slog.Error("failed to register claim", "claim", number, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register claim")
		return
	}

	h.dash.Invalidate(r.Context())
	metrics.ClaimEvent(metrics.EventRegistered)
	slog.Info("claim registered", "claim", number, "by", session.Username, "files", len(atts))

	middleware.JSONResponse(w, http.StatusCreated, models.ClaimEventResponse{
		Record:      rec,
		Attachments: atts,
	})
}

// AppendStatus handles POST /claims/{number}/statuses
func (h *ClaimHandler) AppendStatus(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r.Context())
	number := strings.TrimSpace(r.PathValue("number"))

	var req models.AppendStatusRequest
	files, ok := h.parseInput(w, r, &req)
	if !ok {
		return
	}

	if err := validate.AppendStatus(req, h.cat); err != nil {
		respondInvalid(w, err)
		return
	}

	history, ok := h.loadHistory(r.Context(), w, number)
	if !ok {
		return
	}
	latest, _ := ledger.Latest(history)

	rec := latest
	rec.ID = ""
	rec.SchemaVersion = 0
	rec.Status = req.Status
	rec.StatusAt = ledger.NextStatusTime(latest.StatusAt, h.localNow())
	rec.Comment = strings.TrimSpace(req.Comment)
	rec.HandlerLogin = session.Username

	var folderID string
	var atts []models.Attachment
	if len(files) > 0 {
		folder, err := h.files.EnsureFolder(r.Context(), filestore.FolderName(latest.ClaimNumber))
		if err != nil {
			slog.Error("failed to prepare claim folder", "claim", latest.ClaimNumber, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to prepare claim folder")
			return
		}
		atts, err = h.uploadFiles(r.Context(), folder, latest.ClaimNumber, session.Username, files)
		if err != nil {
			slog.Error("failed to upload attachments", "claim", latest.ClaimNumber, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to upload attachments")
			return
		}
		folderID = folder.ID
		if rec.FolderLink == "" {
			rec.FolderLink = folder.Link
		}
	}

	stored, err := h.store.AppendEvent(r.Context(), store.Event{
		Record:      rec,
		FolderID:    folderID,
		Attachments: atts,
	})
	if err != nil {
		logOrphans(latest.ClaimNumber, atts)
		slog.Error("failed to append status", "claim", latest.ClaimNumber, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to append status")
		return
	}

	h.dash.Invalidate(r.Context())
	metrics.ClaimEvent(metrics.EventStatus)
	slog.Info("status appended", "claim", stored.ClaimNumber, "status", stored.Status, "by", session.Username)

	if atts == nil {
		atts = []models.Attachment{}
	}
	middleware.JSONResponse(w, http.StatusCreated, models.ClaimEventResponse{
		Record:      stored,
		Attachments: atts,
	})
}

// GetClaim handles GET /claims/{number}
func (h *ClaimHandler) GetClaim(w http.ResponseWriter, r *http.Request) {
	number := strings.TrimSpace(r.PathValue("number"))

	history, ok := h.loadHistory(r.Context(), w, number)
	if !ok {
		return
	}
	ledger.SortHistory(history)
	latest := history[len(history)-1]

	// imported claims have no registry row until their first edit
	revision := 1
	folderLink := latest.FolderLink
	info, err := h.store.ClaimInfo(r.Context(), number)
	switch {
	case err == nil:
		revision = info.Revision
		if info.FolderLink != "" {
			folderLink = info.FolderLink
		}
	case !errors.Is(err, store.ErrClaimNotFound):
		slog.Error("failed to load claim info", "claim", number, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ClaimResponse{
		ClaimNumber:    latest.ClaimNumber,
		LatestStatus:   latest.Status,
		LatestStatusAt: latest.StatusAt,
		FolderLink:     folderLink,
		Revision:       revision,
		Details:        history[0].ClaimDetails,
		History:        history,
	})
}

// EditClaim handles PUT /claims/{number}
func (h *ClaimHandler) EditClaim(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r.Context())
	number := strings.TrimSpace(r.PathValue("number"))

	var req models.EditClaimRequest
	if !parseJSON(w, r, &req) {
		return
	}

	if err := validate.EditClaim(req, h.cat); err != nil {
		respondInvalid(w, err)
		return
	}

	n, revision, err := h.store.EditClaim(r.Context(), number, req.ClaimDetails, req.ExpectedRevision)
	switch {
	case errors.Is(err, store.ErrClaimNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Claim not found")
		return
	case errors.Is(err, store.ErrRevisionConflict):
		middleware.ErrorResponse(w, http.StatusConflict, "Claim was modified by another session; reload and retry")
		return
	case err != nil:
		slog.Error("failed to edit claim", "claim", number, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to edit claim")
		return
	}

	h.dash.Invalidate(r.Context())
	metrics.ClaimEvent(metrics.EventEdited)
	slog.Info("claim edited", "claim", number, "rows", n, "revision", revision, "by", session.Username)

	middleware.JSONResponse(w, http.StatusOK, models.EditClaimResponse{
		ClaimNumber: number,
		RowsUpdated: n,
		Revision:    revision,
	})
}

// UploadDocuments handles POST /claims/{number}/documents
func (h *ClaimHandler) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r.Context())
	number := strings.TrimSpace(r.PathValue("number"))

	if !isMultipart(r) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "multipart/form-data required")
		return
	}
	files, ok := h.parseInput(w, r, nil)
	if !ok {
		return
	}
	if len(files) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "at least one file is required")
		return
	}

	history, ok := h.loadHistory(r.Context(), w, number)
	if !ok {
		return
	}
	canonical := history[0].ClaimNumber

	folder, err := h.files.FindFolder(r.Context(), filestore.FolderName(canonical))
	if errors.Is(err, filestore.ErrFolderNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "folder not found")
		return
	}
	if err != nil {
		slog.Error("failed to look up claim folder", "claim", canonical, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to look up claim folder")
		return
	}

	atts, err := h.uploadFiles(r.Context(), folder, canonical, session.Username, files)
	if err != nil {
		slog.Error("failed to upload attachments", "claim", canonical, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to upload attachments")
		return
	}
	if err := h.store.AddAttachments(r.Context(), atts); err != nil {
		logOrphans(canonical, atts)
		slog.Error("failed to record attachments", "claim", canonical, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record attachments")
		return
	}

	slog.Info("documents uploaded", "claim", canonical, "files", len(atts), "by", session.Username)

	for i := range atts {
		atts[i].Size = humanize.Bytes(uint64(atts[i].SizeBytes))
	}
	middleware.JSONResponse(w, http.StatusCreated, models.DocumentsResponse{
		ClaimNumber: canonical,
		FolderLink:  folder.Link,
		Attachments: atts,
	})
}

// ListDocuments handles GET /claims/{number}/documents
func (h *ClaimHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	number := strings.TrimSpace(r.PathValue("number"))

	history, ok := h.loadHistory(r.Context(), w, number)
	if !ok {
		return
	}
	latest, _ := ledger.Latest(history)

	folderLink := latest.FolderLink
	if info, err := h.store.ClaimInfo(r.Context(), number); err == nil && info.FolderLink != "" {
		folderLink = info.FolderLink
	}

	atts, err := h.store.Attachments(r.Context(), number)
	if err != nil {
		slog.Error("failed to list attachments", "claim", number, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	for i := range atts {
		atts[i].Size = humanize.Bytes(uint64(atts[i].SizeBytes))
		url, err := h.files.DownloadURL(r.Context(), atts[i].ObjectKey, downloadURLTTL)
		if err != nil {
			slog.Warn("failed to sign download URL", "key", atts[i].ObjectKey, "error", err)
			continue
		}
		atts[i].URL = url
	}

	middleware.JSONResponse(w, http.StatusOK, models.DocumentsResponse{
		ClaimNumber: latest.ClaimNumber,
		FolderLink:  folderLink,
		Attachments: atts,
	})
}

// loadHistory loads every row of a claim, writing a 404 when there is none
func (h *ClaimHandler) loadHistory(ctx context.Context, w http.ResponseWriter, number string) ([]models.ClaimRecord, bool) {
	if number == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "claim number is required")
		return nil, false
	}

	history, err := h.store.History(ctx, number)
	if err != nil {
		slog.Error("failed to load claim history", "claim", number, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return nil, false
	}
	if len(history) == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Claim not found")
		return nil, false
	}
	return history, true
}
