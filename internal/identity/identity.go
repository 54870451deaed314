// Copyright (c) 2026 Laurea. All rights reserved.

/*
Package identity implements the role-based authentication and session layer
of the Laurea contest platform.

It owns the dual-mode authenticator: admin and judge principals live in the
relational credential store with salted password hashes, while contestant
identities are delegated entirely to the managed auth provider. Whichever
path succeeds, the result is one [Session] shape and one resolved role, so
the route guard never branches on the identity source.

# Architecture

  - Service: Orchestrates login, registration, and judge provisioning.
  - PrincipalStore: Postgres-backed credential store (admin/judge variants).
  - Provider: HTTP client for the managed auth provider (contestants).
  - Codec: Stateless, tamper-evident session tokens carried in a cookie.

# Review Process

This package is critical for security. Any changes to hashing, session
encoding, or login logic must be reviewed by the security team.
*/
package identity

import (
	"time"

	"github.com/laurea-app/laurea/internal/platform/sec"
)

// # Principal Variants

// Variant selects which credential-store collection a principal lives in.
// The variant implies the role: a row in the admin table IS an admin.
type Variant string

const (
	VariantAdmin Variant = "admin"
	VariantJudge Variant = "judge"
)

// Role returns the role implied by the variant's table membership.
func (v Variant) Role() sec.Role {
	if v == VariantAdmin {
		return sec.RoleAdmin
	}
	return sec.RoleJudge
}

// # Judge Status

// Status soft-enables or soft-disables a judge. Principals are never
// physically deleted; an inactive judge fails authentication even with
// correct credentials.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// # Domain Entities

// Principal is a stored identity record (admin or judge) independent of any
// particular session. Contestant principals are owned by the managed
// provider and never pass through this type.
type Principal struct {
	ID           string  `json:"id"`
	Variant      Variant `json:"variant"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"` // Explicitly omitted from JSON for security.
	DisplayName  string  `json:"display_name"`

	// Judge profile fields. Zero-valued for admins.
	Bio             string   `json:"bio,omitempty"`
	Specialties     []string `json:"specialties,omitempty"`
	YearsExperience int      `json:"years_experience,omitempty"`
	Status          Status   `json:"status,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot flattens the principal into the session-embedded form.
func (p *Principal) Snapshot() PrincipalSnapshot {
	return PrincipalSnapshot{
		ID:          p.ID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
	}
}

// PrincipalSnapshot is the point-in-time copy of a principal embedded in a
// session token. It is a snapshot, not a live reference: later profile edits
// do not alter outstanding sessions.
type PrincipalSnapshot struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Session is a time-bounded claim that a request originates from an
// authenticated principal with a given role.
//
// Sessions are entirely self-contained in their encoded token — the server
// holds no session registry, so a principal may hold any number of
// concurrently valid sessions, and a token stays valid until its fixed
// expiry elapses.
type Session struct {
	Principal PrincipalSnapshot `json:"principal"`
	Role      sec.Role          `json:"role"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// Claims converts the session into the request-context identity shape.
func (s *Session) Claims() *sec.AuthClaims {
	return &sec.AuthClaims{
		PrincipalID: s.Principal.ID,
		Email:       s.Principal.Email,
		DisplayName: s.Principal.DisplayName,
		Role:        s.Role,
	}
}
