// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/danielhkuo/claim-ledger/models"
)

// UserRecord is a user row including the stored password value
type UserRecord struct {
	models.User
	PasswordHash string
}

// NormalizeUsername lowercases and trims a login email
func NormalizeUsername(u string) string {
	return strings.ToLower(strings.TrimSpace(u))
}

// CreateUser inserts an account. Returns ErrDuplicateUser if the username is taken.
func (s *Store) CreateUser(ctx context.Context, u models.User, passwordHash string) (models.User, error) {
	u.Username = NormalizeUsername(u.Username)
	createdAt := s.timestamp()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_user (username, password_hash, role, handler_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, u.Username, passwordHash, u.Role, u.HandlerName, createdAt)
	if isUniqueViolation(err) {
		return models.User{}, ErrDuplicateUser
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	u.CreatedAt = parseTimestamp(createdAt)
	return u, nil
}

// GetUser loads one account by username
func (s *Store) GetUser(ctx context.Context, username string) (UserRecord, error) {
	var rec UserRecord
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT username, password_hash, role, handler_name, created_at
		FROM app_user
		WHERE username = $1
	`, NormalizeUsername(username)).Scan(&rec.Username, &rec.PasswordHash, &rec.Role, &rec.HandlerName, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return UserRecord{}, ErrUserNotFound
	}
	if err != nil {
		return UserRecord{}, fmt.Errorf("failed to query user: %w", err)
	}

	rec.CreatedAt = parseTimestamp(createdAt)
	return rec, nil
}

// UpdatePasswordHash replaces the stored password value of an account
func (s *Store) UpdatePasswordHash(ctx context.Context, username, hash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE app_user SET password_hash = $1 WHERE username = $2
	`, hash, NormalizeUsername(username))
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListUsers returns all accounts ordered by username
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, role, handler_name, created_at
		FROM app_user
		ORDER BY username
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		var createdAt string
		if err := rows.Scan(&u.Username, &u.Role, &u.HandlerName, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.CreatedAt = parseTimestamp(createdAt)
		users = append(users, u)
	}
	return users, rows.Err()
}
