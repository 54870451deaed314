// Copyright (c) 2026 Laurea. All rights reserved.

// Package sec provides the security primitives for the Laurea platform:
// password hashing, credential generation, email canonicalization, and the
// request-scoped identity claim carried through middleware.
//
// # Architecture
//
// This package isolates security-sensitive code from the domain logic. It has
// no knowledge of storage or transport; both the identity service and the
// route guard depend on it, never the other way around.
package sec

// AuthClaims is the resolved identity attached to a request context.
//
// It is a snapshot, not a live reference: whichever identity source succeeded
// (managed provider session or database-backed session cookie) is flattened
// into this one shape so downstream code never branches on the source.
type AuthClaims struct {
	PrincipalID string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}
