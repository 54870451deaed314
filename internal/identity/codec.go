// Copyright (c) 2026 Laurea. All rights reserved.

package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/laurea-app/laurea/internal/platform/constants"
	"github.com/laurea-app/laurea/internal/platform/sec"
)

// sessionClaims is the JWT payload for a database-backed session.
//
// Claim names are abbreviated to keep the cookie small.
type sessionClaims struct {
	jwt.RegisteredClaims

	PrincipalID string `json:"pid"`
	Email       string `json:"eml"`
	DisplayName string `json:"nam"`
	Role        string `json:"rol"`
}

// Codec serializes a [Session] into an opaque, tamper-evident token and back.
//
// # Token Format
//
// HS256-signed JWT. The payload is signed, not encrypted: the token is
// tamper-evident but NOT confidentiality-protected, which is acceptable
// because the claims carry no secrets (no password hash ever enters a
// session). Any parse failure, signature mismatch, or expiry decodes to nil.
//
// # Lifetime
//
// The session duration is injected at construction rather than hard-coded,
// so tests can exercise expiry without real-time waits.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec constructs a Codec signing with secret, issuing sessions valid
// for ttl.
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured session duration.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// NewSession builds a session for the principal with the variant-implied
// role, expiring one TTL from now.
func (c *Codec) NewSession(principal *Principal) *Session {
	return &Session{
		Principal: principal.Snapshot(),
		Role:      principal.Variant.Role(),
		ExpiresAt: time.Now().Add(c.ttl),
	}
}

// Encode serializes the session triple into a transport-safe signed token.
func (c *Codec) Encode(session *Session) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.AuthIssuer,
			Subject:   session.Principal.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
		PrincipalID: session.Principal.ID,
		Email:       session.Principal.Email,
		DisplayName: session.Principal.DisplayName,
		Role:        string(session.Role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("identity: failed to sign session token: %w", err)
	}

	return signed, nil
}

// Decode parses and returns the session if well-formed, correctly signed,
// and unexpired. It returns nil on ANY failure — corruption, tampering, or
// expiry — never an error into caller code. An expired session is equivalent
// to no session.
func (c *Codec) Decode(token string) *Session {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("identity: unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || claims.ExpiresAt == nil {
		return nil
	}

	return &Session{
		Principal: PrincipalSnapshot{
			ID:          claims.PrincipalID,
			Email:       claims.Email,
			DisplayName: claims.DisplayName,
		},
		Role:      sec.ParseRole(claims.Role),
		ExpiresAt: claims.ExpiresAt.Time,
	}
}
