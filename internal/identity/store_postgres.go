// Copyright (c) 2026 Laurea. All rights reserved.

package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/laurea-app/laurea/internal/platform/apperr"
	"github.com/laurea-app/laurea/internal/platform/dberr"
)

// PostgresPrincipalStore implements [PrincipalStore] using pgx.
//
// Admin and judge principals live in disjoint tables
// (identity.admin_account / identity.judge_account); the table a row lives
// in IS its role. Email uniqueness is enforced per table by a functional
// index on lower(email) — uniqueness is NOT enforced across variants at the
// storage level (the service layer rejects cross-variant reuse by policy).
type PostgresPrincipalStore struct {
	pool *pgxpool.Pool
}

// NewPostgresPrincipalStore creates the Postgres-backed credential store.
func NewPostgresPrincipalStore(pool *pgxpool.Pool) *PostgresPrincipalStore {
	return &PostgresPrincipalStore{pool: pool}
}

// FindByEmail retrieves a principal by email within one variant's table.
//
// Returns apperr.NotFound when no row matches; storage errors are wrapped
// and never leak SQL details.
func (store *PostgresPrincipalStore) FindByEmail(ctx context.Context, variant Variant, email string) (*Principal, error) {
	principal := &Principal{Variant: variant}
	var err error

	switch variant {
	case VariantAdmin:
		const query = `
			SELECT id, email, passwordhash, displayname, createdat, updatedat
			FROM identity.admin_account
			WHERE lower(email) = lower($1)`

		err = store.pool.QueryRow(ctx, query, email).Scan(
			&principal.ID,
			&principal.Email,
			&principal.PasswordHash,
			&principal.DisplayName,
			&principal.CreatedAt,
			&principal.UpdatedAt,
		)

	case VariantJudge:
		const query = `
			SELECT id, email, passwordhash, displayname, bio, specialties, yearsexperience, status, createdat, updatedat
			FROM identity.judge_account
			WHERE lower(email) = lower($1)`

		err = store.pool.QueryRow(ctx, query, email).Scan(
			&principal.ID,
			&principal.Email,
			&principal.PasswordHash,
			&principal.DisplayName,
			&principal.Bio,
			&principal.Specialties,
			&principal.YearsExperience,
			&principal.Status,
			&principal.CreatedAt,
			&principal.UpdatedAt,
		)

	default:
		return nil, apperr.Internal(fmt.Errorf("identity: unknown principal variant %q", variant))
	}

	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperr.NotFound("Principal")
		}
		return nil, fmt.Errorf("postgres_principal_store_find_by_email_failed: %w", err)
	}

	return principal, nil
}

// Insert persists a new principal into its variant's table.
//
// A unique-constraint violation on email is surfaced as a domain-level
// Conflict so the authenticator can return a clean "already exists" response.
func (store *PostgresPrincipalStore) Insert(ctx context.Context, principal *Principal) error {
	now := time.Now()
	if principal.CreatedAt.IsZero() {
		principal.CreatedAt = now
	}
	principal.UpdatedAt = now

	var err error

	switch principal.Variant {
	case VariantAdmin:
		const query = `
			INSERT INTO identity.admin_account (
				id, email, passwordhash, displayname, createdat, updatedat
			) VALUES ($1, $2, $3, $4, $5, $6)`

		_, err = store.pool.Exec(ctx, query,
			principal.ID,
			principal.Email,
			principal.PasswordHash,
			principal.DisplayName,
			principal.CreatedAt,
			principal.UpdatedAt,
		)

	case VariantJudge:
		const query = `
			INSERT INTO identity.judge_account (
				id, email, passwordhash, displayname, bio, specialties, yearsexperience, status, createdat, updatedat
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

		_, err = store.pool.Exec(ctx, query,
			principal.ID,
			principal.Email,
			principal.PasswordHash,
			principal.DisplayName,
			principal.Bio,
			principal.Specialties,
			principal.YearsExperience,
			principal.Status,
			principal.CreatedAt,
			principal.UpdatedAt,
		)

	default:
		return apperr.Internal(fmt.Errorf("identity: unknown principal variant %q", principal.Variant))
	}

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Email is already registered")
		}
		return fmt.Errorf("postgres_principal_store_insert_failed: %w", err)
	}

	return nil
}

// UpdateStatus toggles a judge's soft-disable status.
//
// Admins carry no status column; calling this with the admin variant is a
// programming error and reports as such.
func (store *PostgresPrincipalStore) UpdateStatus(ctx context.Context, variant Variant, id string, status Status) error {
	if variant != VariantJudge {
		return apperr.Internal(fmt.Errorf("identity: status updates only apply to judges, got %q", variant))
	}

	const query = "UPDATE identity.judge_account SET status = $2, updatedat = $3 WHERE id = $1"

	tag, err := store.pool.Exec(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_principal_store_update_status_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Judge")
	}

	return nil
}
