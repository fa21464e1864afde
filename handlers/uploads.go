// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/claim-ledger/filestore"
	"github.com/danielhkuo/claim-ledger/metrics"
	"github.com/danielhkuo/claim-ledger/middleware"
	"github.com/danielhkuo/claim-ledger/models"
)

// uploadParallelism bounds concurrent uploads within one request
const uploadParallelism = 4

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// maxJSONBytes caps request bodies that carry no files
const maxJSONBytes = 1 << 20

// parseJSON decodes a size-limited JSON body, writing 413 or 400 on failure
func parseJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := middleware.ParseJSONBody(r, v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge,
				"request body exceeds "+humanize.Bytes(maxJSONBytes))
			return false
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

// parseInput decodes a JSON body, or a multipart form whose "payload" field
// holds the JSON and whose "files" fields hold attachments. v may be nil
// when only files are expected. On failure the response is written and ok
// is false.
func (h *ClaimHandler) parseInput(w http.ResponseWriter, r *http.Request, v any) (files []filestore.File, ok bool) {
	if !isMultipart(r) {
		return nil, parseJSON(w, r, v)
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge,
				"upload exceeds "+humanize.Bytes(uint64(h.cfg.MaxUploadBytes)))
			return nil, false
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid multipart form")
		return nil, false
	}
	defer r.MultipartForm.RemoveAll()

	if v != nil {
		payload := r.FormValue("payload")
		if payload == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "payload field is required")
			return nil, false
		}
		if err := json.Unmarshal([]byte(payload), v); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON in payload")
			return nil, false
		}
	}

	files, err := readFiles(r.MultipartForm.File["files"])
	if err != nil {
		slog.Error("failed to read uploaded files", "error", err)
		middleware.ErrorResponse(w, http.StatusBadRequest, "Failed to read uploaded files")
		return nil, false
	}
	return files, true
}

func readFiles(headers []*multipart.FileHeader) ([]filestore.File, error) {
	files := make([]filestore.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
		}
		body, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
		}
		files = append(files, filestore.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        body,
		})
	}
	return files, nil
}

// uploadFiles stores files in the folder with bounded parallelism and
// returns their attachment records in input order
func (h *ClaimHandler) uploadFiles(ctx context.Context, folder filestore.Folder, claimNumber, uploadedBy string, files []filestore.File) ([]models.Attachment, error) {
	atts := make([]models.Attachment, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadParallelism)
	for i, f := range files {
		g.Go(func() error {
			obj, err := h.files.Upload(gctx, folder, f)
			if err != nil {
				return err
			}
			atts[i] = models.Attachment{
				ID:          uuid.NewString(),
				ClaimNumber: claimNumber,
				ObjectKey:   obj.Key,
				FileName:    f.Name,
				ContentType: obj.ContentType,
				SizeBytes:   obj.Size,
				UploadedBy:  uploadedBy,
				UploadedAt:  h.now().UTC().Truncate(time.Second),
			}
			metrics.UploadedBytes(obj.Size)
			slog.Info("attachment uploaded", "claim", claimNumber, "key", obj.Key, "size", humanize.Bytes(uint64(obj.Size)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logOrphans(claimNumber, atts)
		return nil, err
	}
	return atts, nil
}

// logOrphans reports stored objects whose database write failed. Nothing
// removes them.
func logOrphans(claimNumber string, atts []models.Attachment) {
	for _, a := range atts {
		if a.ObjectKey == "" {
			continue
		}
		slog.Warn("orphaned attachment", "claim", claimNumber, "key", a.ObjectKey)
	}
}
