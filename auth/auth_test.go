// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int // hex encoded length = byteLen * 2
	}{
		{"8 bytes", 8, 16},
		{"16 bytes", 16, 32},
		{"24 bytes", 24, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			if err != nil {
				t.Fatalf("GenerateID() error = %v", err)
			}
			if len(id) != tt.wantLen {
				t.Errorf("GenerateID() length = %d, want %d", len(id), tt.wantLen)
			}
			for _, c := range id {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("GenerateID() contains invalid hex char: %c", c)
				}
			}
		})
	}

	id1, _ := GenerateID(16)
	id2, _ := GenerateID(16)
	if id1 == id2 {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPasswordCost("correct horse", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPasswordCost() error = %v", err)
	}
	if !IsBcryptHash(hash) {
		t.Errorf("expected bcrypt hash, got %q", hash)
	}
	if hash == "correct horse" {
		t.Error("hash must not equal the password")
	}

	hash2, _ := HashPasswordCost("correct horse", bcrypt.MinCost)
	if hash == hash2 {
		t.Error("hashes of the same password should differ by salt")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPasswordCost("s3cret-pass", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		stored     string
		given      string
		wantErr    bool
		wantRehash bool
	}{
		{"bcrypt match", hash, "s3cret-pass", false, false},
		{"bcrypt mismatch", hash, "wrong", true, false},
		{"legacy plaintext match", "legacy123", "legacy123", false, true},
		{"legacy plaintext mismatch", "legacy123", "legacy124", true, false},
		{"empty stored", "", "anything", true, false},
		{"empty given", hash, "", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rehash, err := CheckPassword(tt.stored, tt.given)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCredentials) {
					t.Errorf("Expected ErrInvalidCredentials, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CheckPassword() error = %v", err)
			}
			if rehash != tt.wantRehash {
				t.Errorf("needsRehash = %v, want %v", rehash, tt.wantRehash)
			}
		})
	}
}

func TestIsBcryptHash(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"$2a$10$abcdefghijklmnopqrstuv", true},
		{"$2b$12$abcdefghijklmnopqrstuv", true},
		{"$2y$10$abcdefghijklmnopqrstuv", true},
		{"plaintext", false},
		{"", false},
		{"$argon2id$v=19$", false},
	}

	for _, tt := range tests {
		if got := IsBcryptHash(tt.in); got != tt.want {
			t.Errorf("IsBcryptHash(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
