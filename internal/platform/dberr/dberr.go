// Copyright (c) 2026 Laurea. All rights reserved.

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// Storage-specific failures (pgx.ErrNoRows, SQLSTATE codes) never leak past
// this package: callers receive a classified [apperr.AppError] instead.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/laurea-app/laurea/internal/platform/apperr"
)

// IsNotFound reports whether err represents an empty query result.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505). The store layer maps this to the domain-level
// DuplicateIdentity conflict so callers can render a clean "already exists"
// message rather than a storage error.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case IsNotFound(err):
		return apperr.NotFound(resource)
	case IsUniqueViolation(err):
		return apperr.Conflict(resource + " already exists")
	default:
		return apperr.Internal(err)
	}
}
