// Copyright (c) 2026 Laurea. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: Cookie names and the login redirect contract.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "laurea-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication & Session

const (
	// AuthIssuer is the standard 'iss' claim stamped into session tokens.
	AuthIssuer = "laurea.app"

	// SessionCookieName is the cookie carrying the database-backed session token
	// for admin and judge principals.
	SessionCookieName = "db-auth-session"

	// ProviderCookieName is the cookie carrying the managed provider's access
	// token for contestant principals.
	ProviderCookieName = "provider-access-token"

	// SessionCookiePath scopes both auth cookies to the whole site.
	SessionCookiePath = "/"

	// LoginPath is the canonical login page every guard denial redirects to.
	LoginPath = "/login"

	// RedirectParam preserves the originally requested path across a login redirect.
	RedirectParam = "redirect"

	// ErrorParam marks the reason for a redirect on the login page.
	ErrorParam = "error"

	// ErrInsufficientPermissions is the ErrorParam value for a role mismatch.
	ErrInsufficientPermissions = "insufficient_permissions"
)

// # Login Throttling

const (
	// LoginAttemptLimit is the number of failed logins tolerated per IP+email
	// before the throttle kicks in.
	LoginAttemptLimit = 10

	// LoginAttemptWindow is the sliding window for the failed-login counter.
	LoginAttemptWindow = 15 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
)

// # Database Schemas

const (
	SchemaIdentity = "identity"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixLoginAttempts = "auth:login_attempts:"
)
