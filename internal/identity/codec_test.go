// Copyright (c) 2026 Laurea. All rights reserved.

package identity_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laurea-app/laurea/internal/identity"
	"github.com/laurea-app/laurea/internal/platform/sec"
)

const testSecret = "unit-test-signing-secret"

func testPrincipal() *identity.Principal {
	return &identity.Principal{
		ID:          "0190163d-8694-7e4f-92a0-b23acfa57b09",
		Variant:     identity.VariantJudge,
		Email:       "judge@laurea.app",
		DisplayName: "Judge Holden",
		Status:      identity.StatusActive,
	}
}

/*
TestCodec_RoundTrip verifies that an encoded session decodes back to the
same principal snapshot and role.
*/
func TestCodec_RoundTrip(t *testing.T) {
	codec := identity.NewCodec(testSecret, 24*time.Hour)

	session := codec.NewSession(testPrincipal())
	assert.Equal(t, sec.RoleJudge, session.Role)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), session.ExpiresAt, 5*time.Second)

	token, err := codec.Encode(session)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	decoded := codec.Decode(token)
	require.NotNil(t, decoded)
	assert.Equal(t, session.Principal, decoded.Principal)
	assert.Equal(t, sec.RoleJudge, decoded.Role)
	assert.WithinDuration(t, session.ExpiresAt, decoded.ExpiresAt, time.Second)
}

/*
TestCodec_Expired verifies that an expired token decodes to nil — identical
to holding no session at all.
*/
func TestCodec_Expired(t *testing.T) {
	// TTL injected at construction, so expiry needs no real-time wait.
	codec := identity.NewCodec(testSecret, -1*time.Minute)

	token, err := codec.Encode(codec.NewSession(testPrincipal()))
	require.NoError(t, err)

	assert.Nil(t, codec.Decode(token))
}

/*
TestCodec_Tampered verifies that any modification of the token invalidates it.
*/
func TestCodec_Tampered(t *testing.T) {
	codec := identity.NewCodec(testSecret, time.Hour)

	token, err := codec.Encode(codec.NewSession(testPrincipal()))
	require.NoError(t, err)

	// Flip a character in the payload segment.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	assert.Nil(t, codec.Decode(tampered))
}

/*
TestCodec_WrongSecret verifies that tokens signed with a different secret
do not decode.
*/
func TestCodec_WrongSecret(t *testing.T) {
	signer := identity.NewCodec("secret-one", time.Hour)
	verifier := identity.NewCodec("secret-two", time.Hour)

	token, err := signer.Encode(signer.NewSession(testPrincipal()))
	require.NoError(t, err)

	assert.Nil(t, verifier.Decode(token))
}

/*
TestCodec_Garbage verifies that corrupt inputs decode to nil, never panic.
*/
func TestCodec_Garbage(t *testing.T) {
	codec := identity.NewCodec(testSecret, time.Hour)

	inputs := []string{
		"",
		"not-a-token",
		"a.b.c",
		"🍕🍕🍕",
	}

	for _, input := range inputs {
		assert.Nil(t, codec.Decode(input))
	}
}

/*
TestCodec_AdminRole verifies the variant-to-role mapping for admins.
*/
func TestCodec_AdminRole(t *testing.T) {
	codec := identity.NewCodec(testSecret, time.Hour)

	principal := testPrincipal()
	principal.Variant = identity.VariantAdmin

	session := codec.NewSession(principal)
	assert.Equal(t, sec.RoleAdmin, session.Role)

	token, err := codec.Encode(session)
	require.NoError(t, err)

	decoded := codec.Decode(token)
	require.NotNil(t, decoded)
	assert.Equal(t, sec.RoleAdmin, decoded.Role)
}
