// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid session token")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashPassword hashes a password with the default bcrypt cost
func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, bcrypt.DefaultCost)
}

// HashPasswordCost hashes a password with an explicit bcrypt cost.
// Tests use bcrypt.MinCost to stay fast.
func HashPasswordCost(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// IsBcryptHash reports whether a stored password value is a bcrypt hash
func IsBcryptHash(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}

// CheckPassword compares a login attempt with the stored value.
// Accounts migrated from the spreadsheet era still hold plaintext passwords;
// those are compared in constant time and needsRehash is set on success.
func CheckPassword(stored, given string) (needsRehash bool, err error) {
	if stored == "" || given == "" {
		return false, ErrInvalidCredentials
	}

	if IsBcryptHash(stored) {
		if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)); err != nil {
			return false, ErrInvalidCredentials
		}
		return false, nil
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(given)) != 1 {
		return false, ErrInvalidCredentials
	}
	return true, nil
}
