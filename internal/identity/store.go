// Copyright (c) 2026 Laurea. All rights reserved.

package identity

import "context"

// PrincipalStore defines the credential-store contract for admin and judge
// principals.
//
// # Contract
//
// Lookups are case-insensitive on email (callers canonicalize first; the
// store also folds at the SQL level). Uniqueness within a variant is enforced
// by the store's constraint, not by this interface — a concurrent duplicate
// insert surfaces as a DuplicateIdentity conflict from Insert.
type PrincipalStore interface {

	// FindByEmail returns the principal with the given email within one
	// variant's collection. At most one match exists.
	FindByEmail(ctx context.Context, variant Variant, email string) (*Principal, error)

	// Insert persists a brand-new principal. It fails with a domain-level
	// Conflict (never a raw storage error) when an existing row shares the
	// email within the same variant.
	Insert(ctx context.Context, principal *Principal) error

	// UpdateStatus toggles a judge's active/inactive status. Part of the
	// contract surface for admin-driven soft-disable.
	UpdateStatus(ctx context.Context, variant Variant, id string, status Status) error
}
