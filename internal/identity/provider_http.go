// Copyright (c) 2026 Laurea. All rights reserved.

package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPProvider talks to the managed auth provider's REST API (a GoTrue-style
// identity service).
//
// # Error Translation
//
// Provider error bodies are mapped to the sentinel errors in provider.go at
// this boundary; callers never branch on HTTP status codes or provider
// message strings.
type HTTPProvider struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

const providerRequestTimeout = 10 * time.Second

// NewHTTPProvider creates a provider client for the given base URL,
// authenticating administrative calls with the service-role key.
func NewHTTPProvider(baseURL, serviceKey string) *HTTPProvider {
	return &HTTPProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: providerRequestTimeout},
	}
}

// providerError is the provider's standard error body.
type providerError struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
	Message     string `json:"msg"`
}

// text returns whichever message field the provider populated.
func (e *providerError) text() string {
	if e.Description != "" {
		return e.Description
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// SignInWithPassword exchanges email+password for an access token.
func (p *HTTPProvider) SignInWithPassword(ctx context.Context, email, password string) (*ProviderSession, error) {
	body := map[string]string{"email": email, "password": password}

	var result struct {
		AccessToken string        `json:"access_token"`
		ExpiresIn   int           `json:"expires_in"`
		User        *ProviderUser `json:"user"`
	}

	status, err := p.do(ctx, http.MethodPost, "/token?grant_type=password", body, &result)
	if err != nil {
		return nil, err
	}

	// Only client-side rejections mean bad credentials. A provider outage
	// (5xx) must surface as an internal failure, never as a login denial.
	switch status {
	case http.StatusOK:
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusUnprocessableEntity:
		return nil, ErrProviderInvalidCredentials
	default:
		return nil, fmt.Errorf("identity: provider sign-in failed with status %d", status)
	}

	return &ProviderSession{
		AccessToken: result.AccessToken,
		ExpiresIn:   time.Duration(result.ExpiresIn) * time.Second,
		User:        result.User,
	}, nil
}

// GetUser resolves an access token into the identity behind it.
func (p *HTTPProvider) GetUser(ctx context.Context, accessToken string) (*ProviderUser, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("identity: provider request failed: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+accessToken)

	response, err := p.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("identity: provider unreachable: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return nil, ErrProviderInvalidCredentials
	}

	user := &ProviderUser{}
	if err := json.NewDecoder(response.Body).Decode(user); err != nil {
		return nil, fmt.Errorf("identity: provider returned malformed user: %w", err)
	}

	return user, nil
}

// SignUp registers a new identity with role metadata attached.
func (p *HTTPProvider) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*ProviderUser, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     metadata,
	}

	user := &ProviderUser{}
	status, err := p.do(ctx, http.MethodPost, "/signup", body, user)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK, http.StatusCreated:
		return user, nil
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return nil, ErrProviderDuplicateEmail
	default:
		return nil, fmt.Errorf("identity: provider signup failed with status %d", status)
	}
}

// AdminConfirmEmail confirms the account's email via the admin API.
func (p *HTTPProvider) AdminConfirmEmail(ctx context.Context, email string) error {
	body := map[string]any{
		"email":         email,
		"email_confirm": true,
	}

	status, err := p.do(ctx, http.MethodPut, "/admin/users?email="+url.QueryEscape(email), body, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("identity: provider email confirm failed with status %d", status)
	}

	return nil
}

// do performs one JSON round-trip against the provider, decoding a success
// body into out (when non-nil) and classifying error bodies.
func (p *HTTPProvider) do(ctx context.Context, method, path string, body any, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("identity: provider request encode failed: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("identity: provider request failed: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+p.serviceKey)

	response, err := p.client.Do(request)
	if err != nil {
		return 0, fmt.Errorf("identity: provider unreachable: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return response.StatusCode, fmt.Errorf("identity: provider response read failed: %w", err)
	}

	if response.StatusCode >= 400 {
		perr := &providerError{}
		_ = json.Unmarshal(raw, perr)

		if classified := classifyProviderError(response.StatusCode, perr.text()); classified != nil {
			return response.StatusCode, classified
		}
		return response.StatusCode, nil
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return response.StatusCode, fmt.Errorf("identity: provider returned malformed body: %w", err)
		}
	}

	return response.StatusCode, nil
}

// classifyProviderError maps a provider rejection to a sentinel error, or
// nil when the caller should decide from the status code alone.
func classifyProviderError(status int, message string) error {
	lowered := strings.ToLower(message)

	switch {
	case strings.Contains(lowered, "not confirmed"):
		return ErrProviderEmailNotConfirmed
	case status == http.StatusBadRequest || status == http.StatusUnauthorized:
		if strings.Contains(lowered, "invalid") || strings.Contains(lowered, "credentials") {
			return ErrProviderInvalidCredentials
		}
		return nil
	default:
		return nil
	}
}
