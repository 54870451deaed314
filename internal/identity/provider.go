// Copyright (c) 2026 Laurea. All rights reserved.

package identity

import (
	"context"
	"errors"
	"time"
)

// # Managed Provider Contract

// Sentinel errors the provider client translates upstream failures into.
// The service layer never sees raw provider error bodies.
var (
	// ErrProviderInvalidCredentials covers wrong password and unknown email
	// alike — the provider already collapses them, and so do we.
	ErrProviderInvalidCredentials = errors.New("identity: provider rejected credentials")

	// ErrProviderEmailNotConfirmed is raised when the provider refuses a
	// password grant because the account's email is flagged unconfirmed.
	// The authenticator recovers from this exactly once per request.
	ErrProviderEmailNotConfirmed = errors.New("identity: provider email not confirmed")

	// ErrProviderDuplicateEmail is raised when signup targets an email the
	// provider already knows.
	ErrProviderDuplicateEmail = errors.New("identity: provider email already registered")
)

// ProviderUser is the provider's view of an identity. The role lives inside
// free-form user metadata and is resolved by [sec.ParseRole], defaulting to
// contestant when absent or malformed.
type ProviderUser struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	UserMetadata     map[string]any `json:"user_metadata"`
}

// ProviderSession is a successful password-grant result: the bearer token
// the browser will carry plus the authenticated user.
type ProviderSession struct {
	AccessToken string        `json:"access_token"`
	ExpiresIn   time.Duration `json:"-"`
	User        *ProviderUser `json:"user"`
}

// Provider is the managed auth provider handling contestant signup, login,
// and request-time session validation.
type Provider interface {

	// SignInWithPassword performs the provider's own password verification.
	// Returns ErrProviderInvalidCredentials or ErrProviderEmailNotConfirmed
	// on the corresponding rejections.
	SignInWithPassword(ctx context.Context, email, password string) (*ProviderSession, error)

	// GetUser validates an access token and returns the identity behind it.
	// Used for request-time checks by the route guard's resolver.
	GetUser(ctx context.Context, accessToken string) (*ProviderUser, error)

	// SignUp registers a new identity with the given metadata (the role is
	// stamped into user_metadata here). Returns ErrProviderDuplicateEmail
	// when the email is taken.
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*ProviderUser, error)

	// AdminConfirmEmail marks the account's email as confirmed using the
	// service-role key. Compensating action for registration flows that
	// intentionally skip email verification — not a security control.
	AdminConfirmEmail(ctx context.Context, email string) error
}
