// Copyright (c) 2026 Laurea. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/laurea-app/laurea/internal/platform/apperr"
	"github.com/laurea-app/laurea/internal/platform/ctxutil"
	"github.com/laurea-app/laurea/internal/platform/sec"
	"github.com/laurea-app/laurea/internal/platform/validate"
)

// DecodeJSON reads the request body and decodes it into the target structure.
//
// Returns [validate.ErrInvalidJSON] if decoding fails.
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// ParseForm parses a form-encoded body (the login and registration pages
// submit classic form posts, not JSON).
//
// Returns [validate.ErrInvalidForm] if the body cannot be parsed.
func ParseForm(request *http.Request) error {
	if err := request.ParseForm(); err != nil {
		return validate.ErrInvalidForm
	}
	return nil
}

// FormValue returns the trimmed form field value.
func FormValue(request *http.Request, name string) string {
	return strings.TrimSpace(request.PostFormValue(name))
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// Claims extracts the authenticated identity claims from the request context.
//
// Returns nil if the request is not authenticated.
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

// RequiredClaims ensures the request is authenticated and returns the claims.
//
// Returns [apperr.Unauthorized] if the request is anonymous.
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}
