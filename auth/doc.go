// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing and session tokens.

# Passwords

Passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password)
	needsRehash, err := auth.CheckPassword(storedHash, attempt)

Accounts imported from the spreadsheet era may still hold a plaintext
password. CheckPassword accepts those with a constant-time comparison and
reports needsRehash so the caller can replace the value with a hash.
Every mismatch returns ErrInvalidCredentials, whatever the cause.

# Sessions

A session is an HS256 JWT carrying the username (subject), role and
handler name:

	sessions := auth.NewSessions(secret, 12*time.Hour)
	token, session, err := sessions.Issue(user)
	session, err := sessions.Verify(token)

Verify rejects tokens with a different algorithm, issuer or secret and
expired tokens, returning ErrInvalidToken.

# ID Generation

Random hex IDs, used for token IDs:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
