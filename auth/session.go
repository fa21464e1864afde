// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/danielhkuo/claim-ledger/models"
)

const sessionIssuer = "claim-ledger"

// SessionClaims is the JWT payload of a session token
type SessionClaims struct {
	Role        string `json:"role"`
	HandlerName string `json:"handler"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies HS256 session tokens
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the user and returns it with the session it encodes
func (s *Sessions) Issue(u models.User) (string, models.Session, error) {
	if u.Username == "" {
		return "", models.Session{}, errors.New("username required")
	}

	jti, err := GenerateID(16)
	if err != nil {
		return "", models.Session{}, err
	}

	now := s.now()
	expires := now.Add(s.ttl).Truncate(time.Second)
	claims := SessionClaims{
		Role:        u.Role,
		HandlerName: u.HandlerName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			Issuer:    sessionIssuer,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", models.Session{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return token, models.Session{
		Username:    u.Username,
		Role:        u.Role,
		HandlerName: u.HandlerName,
		ExpiresAt:   expires,
	}, nil
}

// Verify parses a token and returns its session.
// Every failure maps to ErrInvalidToken.
func (s *Sessions) Verify(token string) (models.Session, error) {
	var claims SessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return models.Session{}, ErrInvalidToken
	}

	return models.Session{
		Username:    claims.Subject,
		Role:        claims.Role,
		HandlerName: claims.HandlerName,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}
