// Copyright (c) 2026 Laurea. All rights reserved.

package middleware

import (
	"net/http"
	"strings"

	"github.com/laurea-app/laurea/internal/platform/ctxutil"
	"github.com/laurea-app/laurea/internal/platform/respond"
	"github.com/laurea-app/laurea/internal/platform/sec"
)

// IdentityResolver resolves the current request's identity from whichever
// source succeeds: the managed provider's access-token cookie, or the
// database-backed session cookie.
//
// # Why an interface?
//
// Defining IdentityResolver here decouples the guard from the identity
// service implementation, allowing mocks to be injected during unit testing.
// Implementations must never panic or error: any failure resolves to nil.
type IdentityResolver interface {
	Resolve(request *http.Request) *sec.AuthClaims
}

// publicExact lists paths that are always reachable without identity.
var publicExact = map[string]bool{
	"/":                 true,
	"/login":            true,
	"/register":         true,
	"/logout":           true,
	"/health":           true,
	"/ready":            true,
	"/admin/login":      true,
	"/admin/register":   true,
	"/judges/login":     true,
	"/contestant/login": true,
}

// publicPrefixes lists prefixes that are always reachable without identity
// (static assets and the unauthenticated slice of the JSON API).
var publicPrefixes = []string{
	"/static/",
	"/api/v1/auth/",
}

// PublicPath reports whether path requires no identity check at all.
func PublicPath(path string) bool {
	if publicExact[path] {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// CheckRoleAccess decides whether a role may enter the namespace owning path.
//
// # Exact Match
//
// Each namespace requires its exact role — there is NO hierarchy here. An
// admin cannot browse /judges pages even though admin outranks judge in
// [sec.Role.AtLeast]. Paths outside the three namespaces are open to any role.
func CheckRoleAccess(path string, role sec.Role) bool {
	switch {
	case path == "/admin" || strings.HasPrefix(path, "/admin/"):
		return role == sec.RoleAdmin
	case path == "/judges" || strings.HasPrefix(path, "/judges/"):
		// Carve-out: the judge login page is reachable by anyone.
		if path == "/judges/login" {
			return true
		}
		return role == sec.RoleJudge
	case path == "/contestant" || strings.HasPrefix(path, "/contestant/"):
		return role == sec.RoleContestant
	default:
		return true
	}
}

// Guard is the per-request access gate for the three portal namespaces.
//
// # State Machine
//
//   - PUBLIC: path matches the public predicate — allow, no identity check.
//   - UNAUTHENTICATED: no identity resolves — redirect to /login with the
//     requested path preserved.
//   - AUTHENTICATED_ALLOWED: identity resolves and the role matches the
//     namespace — allow, claims injected into context.
//   - AUTHENTICATED_DENIED: identity resolves but the role mismatches —
//     redirect to /login with an insufficient_permissions marker. There is
//     no distinct 403 page; denial and lack-of-auth present identically.
//
// The guard never raises to the caller; every outcome is allow-and-continue
// or deny-and-redirect. Each request is evaluated independently and
// statelessly.
func Guard(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			path := request.URL.Path

			if PublicPath(path) {
				next.ServeHTTP(writer, request)
				return
			}

			claims := resolver.Resolve(request)
			if claims == nil {
				// An expired or garbled session cookie resolves to nil, so it
				// lands here — treated identically to no cookie at all.
				respond.LoginRedirect(writer, request, path, false)
				return
			}

			if !CheckRoleAccess(path, claims.Role) {
				respond.LoginRedirect(writer, request, path, true)
				return
			}

			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}
