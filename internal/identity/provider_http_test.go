// Copyright (c) 2026 Laurea. All rights reserved.

package identity_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laurea-app/laurea/internal/identity"
	"github.com/laurea-app/laurea/internal/platform/apperr"
)

// providerStub runs an httptest server answering every request with a fixed
// status and body.
func providerStub(t *testing.T, status int, body string) *identity.HTTPProvider {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)
		_, _ = writer.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return identity.NewHTTPProvider(server.URL, "service-key")
}

/*
TestHTTPProvider_SignIn_Success verifies a password grant round-trip.
*/
func TestHTTPProvider_SignIn_Success(t *testing.T) {
	provider := providerStub(t, http.StatusOK, `{
		"access_token": "token-abc",
		"expires_in": 3600,
		"user": {"id": "u-1", "email": "ada@laurea.app", "user_metadata": {"role": "contestant"}}
	}`)

	session, err := provider.SignInWithPassword(context.Background(), "ada@laurea.app", "hunter22")
	require.NoError(t, err)

	assert.Equal(t, "token-abc", session.AccessToken)
	assert.Equal(t, time.Hour, session.ExpiresIn)
	require.NotNil(t, session.User)
	assert.Equal(t, "u-1", session.User.ID)
}

/*
TestHTTPProvider_SignIn_BadCredentials verifies that client-side rejections
map to the invalid-credentials sentinel.
*/
func TestHTTPProvider_SignIn_BadCredentials(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"bad_request", http.StatusBadRequest, `{"error_description": "Invalid login credentials"}`},
		{"unauthorized", http.StatusUnauthorized, `{"msg": "invalid credentials"}`},
		{"unprocessable", http.StatusUnprocessableEntity, `{"msg": "unknown account"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := providerStub(t, tt.status, tt.body)

			_, err := provider.SignInWithPassword(context.Background(), "ada@laurea.app", "wrong")
			assert.ErrorIs(t, err, identity.ErrProviderInvalidCredentials)
		})
	}
}

/*
TestHTTPProvider_SignIn_NotConfirmed verifies the unconfirmed-email sentinel
mapping that drives the auto-confirm recovery.
*/
func TestHTTPProvider_SignIn_NotConfirmed(t *testing.T) {
	provider := providerStub(t, http.StatusBadRequest, `{"error_description": "Email not confirmed"}`)

	_, err := provider.SignInWithPassword(context.Background(), "ada@laurea.app", "hunter22")
	assert.ErrorIs(t, err, identity.ErrProviderEmailNotConfirmed)
}

/*
TestHTTPProvider_SignIn_Outage verifies a provider 5xx is NOT mistaken for a
credential failure: the error carries no sentinel and the login surface maps
it to a generic 500, never a 401.
*/
func TestHTTPProvider_SignIn_Outage(t *testing.T) {
	provider := providerStub(t, http.StatusInternalServerError, `{"msg": "database timeout"}`)

	_, err := provider.SignInWithPassword(context.Background(), "ada@laurea.app", "hunter22")
	require.Error(t, err)
	assert.NotErrorIs(t, err, identity.ErrProviderInvalidCredentials)
	assert.NotErrorIs(t, err, identity.ErrProviderEmailNotConfirmed)

	// End to end: the authenticator reports an internal failure, not a
	// credential rejection.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := identity.NewService(
		newFakeStore(), provider, identity.NewCodec(testSecret, time.Hour),
		&fakeThrottle{}, &fakeNotifier{}, logger,
	)

	_, err = service.Login(context.Background(), identity.LoginInput{
		Email:    "ada@laurea.app",
		Password: "hunter22",
	})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusInternalServerError, ae.HTTPStatus)
}
