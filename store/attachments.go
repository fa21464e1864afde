// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/claim-ledger/models"
)

func (s *Store) insertAttachments(ctx context.Context, tx *sql.Tx, atts []models.Attachment) error {
	for _, a := range atts {
		uploadedAt := a.UploadedAt
		if uploadedAt.IsZero() {
			uploadedAt = s.now()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO attachment (id, claim_number, object_key, file_name, content_type, size_bytes, uploaded_by, uploaded_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, a.ID, a.ClaimNumber, a.ObjectKey, a.FileName, a.ContentType, a.SizeBytes, a.UploadedBy,
			uploadedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("failed to insert attachment %s: %w", a.FileName, err)
		}
	}
	return nil
}

// Attachments lists the files stored for a claim, oldest first
func (s *Store) Attachments(ctx context.Context, number string) ([]models.Attachment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, claim_number, object_key, file_name, content_type, size_bytes, uploaded_by, uploaded_at
		FROM attachment
		WHERE LOWER(claim_number) = LOWER($1)
		ORDER BY uploaded_at, id
	`, strings.TrimSpace(number))
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}
	defer rows.Close()

	atts := []models.Attachment{}
	for rows.Next() {
		var a models.Attachment
		var uploadedAt string
		if err := rows.Scan(&a.ID, &a.ClaimNumber, &a.ObjectKey, &a.FileName, &a.ContentType,
			&a.SizeBytes, &a.UploadedBy, &uploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		a.UploadedAt = parseTimestamp(uploadedAt)
		atts = append(atts, a)
	}
	return atts, rows.Err()
}
