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
	"github.com/laurea-app/laurea/internal/platform/constants"
	"github.com/laurea-app/laurea/internal/platform/sec"
)

// # Test Doubles

type fakeStore struct {
	principals map[string]*identity.Principal // key: variant + "/" + email
	statuses   map[string]identity.Status
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		principals: make(map[string]*identity.Principal),
		statuses:   make(map[string]identity.Status),
	}
}

func storeKey(variant identity.Variant, email string) string {
	return string(variant) + "/" + email
}

func (s *fakeStore) add(p *identity.Principal) {
	s.principals[storeKey(p.Variant, p.Email)] = p
}

func (s *fakeStore) FindByEmail(_ context.Context, variant identity.Variant, email string) (*identity.Principal, error) {
	if p, ok := s.principals[storeKey(variant, email)]; ok {
		return p, nil
	}
	return nil, apperr.NotFound("Principal")
}

func (s *fakeStore) Insert(_ context.Context, p *identity.Principal) error {
	key := storeKey(p.Variant, p.Email)
	if _, ok := s.principals[key]; ok {
		return apperr.Conflict("Email is already registered")
	}
	s.principals[key] = p
	return nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, _ identity.Variant, id string, status identity.Status) error {
	s.statuses[id] = status
	return nil
}

type fakeProvider struct {
	users         map[string]string // email -> password
	metadata      map[string]map[string]any
	unconfirmed   map[string]bool
	confirmCalls  int
	confirmFails  bool
	signInCalls   int
	tokenToEmail  map[string]string
	duplicateMail bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		users:        make(map[string]string),
		metadata:     make(map[string]map[string]any),
		unconfirmed:  make(map[string]bool),
		tokenToEmail: make(map[string]string),
	}
}

func (p *fakeProvider) SignInWithPassword(_ context.Context, email, password string) (*identity.ProviderSession, error) {
	p.signInCalls++

	stored, ok := p.users[email]
	if !ok || stored != password {
		return nil, identity.ErrProviderInvalidCredentials
	}
	if p.unconfirmed[email] {
		return nil, identity.ErrProviderEmailNotConfirmed
	}

	token := "token-" + email
	p.tokenToEmail[token] = email

	return &identity.ProviderSession{
		AccessToken: token,
		ExpiresIn:   time.Hour,
		User: &identity.ProviderUser{
			ID:           "provider-" + email,
			Email:        email,
			UserMetadata: p.metadata[email],
		},
	}, nil
}

func (p *fakeProvider) GetUser(_ context.Context, accessToken string) (*identity.ProviderUser, error) {
	email, ok := p.tokenToEmail[accessToken]
	if !ok {
		return nil, identity.ErrProviderInvalidCredentials
	}
	return &identity.ProviderUser{
		ID:           "provider-" + email,
		Email:        email,
		UserMetadata: p.metadata[email],
	}, nil
}

func (p *fakeProvider) SignUp(_ context.Context, email, password string, metadata map[string]any) (*identity.ProviderUser, error) {
	if p.duplicateMail {
		return nil, identity.ErrProviderDuplicateEmail
	}
	p.users[email] = password
	p.metadata[email] = metadata
	return &identity.ProviderUser{ID: "provider-" + email, Email: email, UserMetadata: metadata}, nil
}

func (p *fakeProvider) AdminConfirmEmail(_ context.Context, email string) error {
	p.confirmCalls++
	if p.confirmFails {
		return assertableError("confirm refused")
	}
	delete(p.unconfirmed, email)
	return nil
}

type assertableError string

func (e assertableError) Error() string { return string(e) }

type fakeThrottle struct {
	blocked  bool
	failures int
	resets   int
	lastKey  string
}

func (t *fakeThrottle) Allow(_ context.Context, key string) (bool, error) {
	t.lastKey = key
	return !t.blocked, nil
}

func (t *fakeThrottle) RecordFailure(_ context.Context, key string) error {
	t.lastKey = key
	t.failures++
	return nil
}

func (t *fakeThrottle) Reset(_ context.Context, _ string) error {
	t.resets++
	return nil
}

type fakeNotifier struct {
	sent     []string // passwords delivered
	fail     bool
	lastName string
}

func (n *fakeNotifier) NotifyCredentials(_ context.Context, _, displayName, password string) error {
	if n.fail {
		return assertableError("smtp down")
	}
	n.lastName = displayName
	n.sent = append(n.sent, password)
	return nil
}

// # Fixture

type fixture struct {
	service  *identity.Service
	store    *fakeStore
	provider *fakeProvider
	throttle *fakeThrottle
	notifier *fakeNotifier
	codec    *identity.Codec
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newFakeStore()
	provider := newFakeProvider()
	throttle := &fakeThrottle{}
	notifier := &fakeNotifier{}
	codec := identity.NewCodec(testSecret, time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		service:  identity.NewService(store, provider, codec, throttle, notifier, logger),
		store:    store,
		provider: provider,
		throttle: throttle,
		notifier: notifier,
		codec:    codec,
	}
}

func (f *fixture) addJudge(t *testing.T, email, password string, status identity.Status) *identity.Principal {
	t.Helper()

	hash, err := sec.HashPassword(password)
	require.NoError(t, err)

	judge := &identity.Principal{
		ID:           "0190163d-8694-7e4f-92a0-b23acfa57b09",
		Variant:      identity.VariantJudge,
		Email:        email,
		PasswordHash: hash,
		DisplayName:  "Judge Holden",
		Status:       status,
	}
	f.store.add(judge)
	return judge
}

// # Stored-Credential Login

/*
TestLogin_Judge_Success verifies the credential-store path end to end: a
valid active judge gets a decodable session cookie with the judge role.
*/
func TestLogin_Judge_Success(t *testing.T) {
	f := newFixture(t)
	f.addJudge(t, "judge@laurea.app", "open sesame", identity.StatusActive)

	result, err := f.service.Login(context.Background(), identity.LoginInput{
		Email:    "Judge@Laurea.App", // canonicalized before lookup
		Password: "open sesame",
		Variant:  identity.VariantJudge,
	})
	require.NoError(t, err)

	assert.Equal(t, constants.SessionCookieName, result.CookieName)
	assert.Equal(t, sec.RoleJudge, result.Role)
	assert.Equal(t, 1, f.throttle.resets)

	session := f.codec.Decode(result.Token)
	require.NotNil(t, session)
	assert.Equal(t, "judge@laurea.app", session.Principal.Email)
	assert.Equal(t, sec.RoleJudge, session.Role)
}

/*
TestLogin_Judge_Failures verifies that wrong password, unknown email, and a
disabled account all produce the same generic rejection and record a
throttle failure.
*/
func TestLogin_Judge_Failures(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		status   identity.Status
	}{
		{"wrong_password", "judge@laurea.app", "wrong", identity.StatusActive},
		{"unknown_email", "ghost@laurea.app", "open sesame", identity.StatusActive},
		{"inactive_judge", "judge@laurea.app", "open sesame", identity.StatusInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.addJudge(t, "judge@laurea.app", "open sesame", tt.status)

			_, err := f.service.Login(context.Background(), identity.LoginInput{
				Email:    tt.email,
				Password: tt.password,
				Variant:  identity.VariantJudge,
			})
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, http.StatusUnauthorized, ae.HTTPStatus)
			assert.Equal(t, "Invalid email or password", ae.Message)
			assert.Equal(t, 1, f.throttle.failures)
		})
	}
}

/*
TestLogin_Throttled verifies the lockout path: once the attempt limit is
reached the service rejects before touching the credential store.
*/
func TestLogin_Throttled(t *testing.T) {
	f := newFixture(t)
	f.addJudge(t, "judge@laurea.app", "open sesame", identity.StatusActive)
	f.throttle.blocked = true

	_, err := f.service.Login(context.Background(), identity.LoginInput{
		Email:    "judge@laurea.app",
		Password: "open sesame",
		Variant:  identity.VariantJudge,
	})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusTooManyRequests, ae.HTTPStatus)
}

/*
TestLogin_MissingFields verifies that blank credentials fail validation
before any authentication work happens.
*/
func TestLogin_MissingFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Login(context.Background(), identity.LoginInput{
		Email:   "judge@laurea.app",
		Variant: identity.VariantJudge,
	})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusBadRequest, ae.HTTPStatus)
}

// # Provider Login

/*
TestLogin_Contestant_Success verifies the managed-provider path: the access
token rides in the provider cookie and the role comes from user metadata.
*/
func TestLogin_Contestant_Success(t *testing.T) {
	f := newFixture(t)
	f.provider.users["ada@laurea.app"] = "hunter22"
	f.provider.metadata["ada@laurea.app"] = map[string]any{"role": "contestant"}

	result, err := f.service.Login(context.Background(), identity.LoginInput{
		Email:    "ada@laurea.app",
		Password: "hunter22",
	})
	require.NoError(t, err)

	assert.Equal(t, constants.ProviderCookieName, result.CookieName)
	assert.Equal(t, sec.RoleContestant, result.Role)
	assert.Equal(t, "token-ada@laurea.app", result.Token)
}

/*
TestLogin_Contestant_MetadataRoleFallback verifies that garbage metadata
resolves to contestant, never to a privileged role.
*/
func TestLogin_Contestant_MetadataRoleFallback(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]any
	}{
		{"nil_metadata", nil},
		{"missing_role", map[string]any{"display_name": "Ada"}},
		{"non_string_role", map[string]any{"role": 99}},
		{"unknown_role", map[string]any{"role": "overlord"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.provider.users["ada@laurea.app"] = "hunter22"
			f.provider.metadata["ada@laurea.app"] = tt.metadata

			result, err := f.service.Login(context.Background(), identity.LoginInput{
				Email:    "ada@laurea.app",
				Password: "hunter22",
			})
			require.NoError(t, err)
			assert.Equal(t, sec.RoleContestant, result.Role)
		})
	}
}

/*
TestLogin_Contestant_InvalidCredentials verifies the provider rejection maps
to the same generic 401 as the stored path.
*/
func TestLogin_Contestant_InvalidCredentials(t *testing.T) {
	f := newFixture(t)
	f.provider.users["ada@laurea.app"] = "hunter22"

	_, err := f.service.Login(context.Background(), identity.LoginInput{
		Email:    "ada@laurea.app",
		Password: "wrong",
	})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusUnauthorized, ae.HTTPStatus)
	assert.Equal(t, "Invalid email or password", ae.Message)
}

/*
TestLogin_Contestant_AutoConfirmRetry verifies the unconfirmed-email
recovery: confirm via the admin API, retry the sign-in exactly once, and
succeed.
*/
func TestLogin_Contestant_AutoConfirmRetry(t *testing.T) {
	f := newFixture(t)
	f.provider.users["ada@laurea.app"] = "hunter22"
	f.provider.unconfirmed["ada@laurea.app"] = true

	result, err := f.service.Login(context.Background(), identity.LoginInput{
		Email:    "ada@laurea.app",
		Password: "hunter22",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.provider.confirmCalls)
	assert.Equal(t, 2, f.provider.signInCalls)
	assert.Equal(t, constants.ProviderCookieName, result.CookieName)
}

/*
TestLogin_Contestant_ConfirmFails verifies that a failed auto-confirm
surfaces the check-email instruction without a second sign-in attempt.
*/
func TestLogin_Contestant_ConfirmFails(t *testing.T) {
	f := newFixture(t)
	f.provider.users["ada@laurea.app"] = "hunter22"
	f.provider.unconfirmed["ada@laurea.app"] = true
	f.provider.confirmFails = true

	_, err := f.service.Login(context.Background(), identity.LoginInput{
		Email:    "ada@laurea.app",
		Password: "hunter22",
	})
	require.Error(t, err)

	assert.Equal(t, 1, f.provider.signInCalls)
	assert.Equal(t, 1, f.provider.confirmCalls)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusUnauthorized, ae.HTTPStatus)
	assert.Contains(t, ae.Message, "check your email")
}

// # Registration

/*
TestRegisterAdmin verifies admin creation, including the cross-variant email
check: an email holding a judge account cannot become an admin login.
*/
func TestRegisterAdmin(t *testing.T) {
	f := newFixture(t)

	principal, err := f.service.RegisterAdmin(context.Background(), identity.RegisterAdminInput{
		Email:       "Ops@Laurea.App",
		Password:    "long-enough-password",
		DisplayName: "Ops",
	})
	require.NoError(t, err)

	assert.Equal(t, identity.VariantAdmin, principal.Variant)
	assert.Equal(t, "ops@laurea.app", principal.Email)
	assert.NotEmpty(t, principal.ID)
	assert.True(t, sec.CheckPasswordHash("long-enough-password", principal.PasswordHash))

	// Same email again → conflict.
	_, err = f.service.RegisterAdmin(context.Background(), identity.RegisterAdminInput{
		Email:    "ops@laurea.app",
		Password: "long-enough-password",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperr.As(err).HTTPStatus)
}

/*
TestRegisterAdmin_JudgeEmailConflict verifies the cross-variant uniqueness
policy.
*/
func TestRegisterAdmin_JudgeEmailConflict(t *testing.T) {
	f := newFixture(t)
	f.addJudge(t, "judge@laurea.app", "open sesame", identity.StatusActive)

	_, err := f.service.RegisterAdmin(context.Background(), identity.RegisterAdminInput{
		Email:    "judge@laurea.app",
		Password: "long-enough-password",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperr.As(err).HTTPStatus)
}

/*
TestRegisterContestant verifies provider delegation, role stamping, and the
duplicate-email conflict.
*/
func TestRegisterContestant(t *testing.T) {
	f := newFixture(t)

	user, err := f.service.RegisterContestant(context.Background(), identity.RegisterContestantInput{
		Email:       "ada@laurea.app",
		Password:    "hunter22",
		DisplayName: "Ada",
	})
	require.NoError(t, err)
	assert.Equal(t, "contestant", user.UserMetadata["role"])

	f.provider.duplicateMail = true
	_, err = f.service.RegisterContestant(context.Background(), identity.RegisterContestantInput{
		Email:    "ada@laurea.app",
		Password: "hunter22",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperr.As(err).HTTPStatus)
}

// # Judge Provisioning

/*
TestProvisionJudge verifies the happy path: active status, a generated
credential that verifies against the stored hash, and mail dispatch.
*/
func TestProvisionJudge(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.ProvisionJudge(context.Background(), identity.ProvisionJudgeInput{
		Email:           "judge@laurea.app",
		DisplayName:     "Judge Holden",
		Bio:             "Seasoned adjudicator",
		Specialties:     []string{"algorithms"},
		YearsExperience: 12,
	})
	require.NoError(t, err)

	judge := result.Principal
	assert.Equal(t, identity.VariantJudge, judge.Variant)
	assert.Equal(t, identity.StatusActive, judge.Status)
	assert.True(t, result.Notified)

	require.Len(t, f.notifier.sent, 1)
	password := f.notifier.sent[0]
	assert.Len(t, password, sec.GeneratedPasswordLength)
	assert.True(t, sec.CheckPasswordHash(password, judge.PasswordHash))
	assert.Equal(t, "Judge Holden", f.notifier.lastName)

	// The delivered credential must actually work: the judge logs in with it.
	login, err := f.service.Login(context.Background(), identity.LoginInput{
		Email:    "judge@laurea.app",
		Password: password,
		Variant:  identity.VariantJudge,
	})
	require.NoError(t, err)
	assert.Equal(t, sec.RoleJudge, login.Role)
	assert.Equal(t, constants.SessionCookieName, login.CookieName)
}

/*
TestProvisionJudge_AdminEmailConflict verifies the cross-variant uniqueness
policy also holds for provisioning: an email already holding an admin
account cannot become a judge login.
*/
func TestProvisionJudge_AdminEmailConflict(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.RegisterAdmin(context.Background(), identity.RegisterAdminInput{
		Email:       "ops@laurea.app",
		Password:    "long-enough-password",
		DisplayName: "Ops",
	})
	require.NoError(t, err)

	_, err = f.service.ProvisionJudge(context.Background(), identity.ProvisionJudgeInput{
		Email:       "ops@laurea.app",
		DisplayName: "Judge Holden",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperr.As(err).HTTPStatus)

	// Nothing was inserted and no credential mail went out.
	_, err = f.store.FindByEmail(context.Background(), identity.VariantJudge, "ops@laurea.app")
	require.Error(t, err)
	assert.Empty(t, f.notifier.sent)
}

/*
TestProvisionJudge_NotifierFailure verifies that delivery failure does not
roll back the account: the principal persists and the result reports the
failed dispatch.
*/
func TestProvisionJudge_NotifierFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.fail = true

	result, err := f.service.ProvisionJudge(context.Background(), identity.ProvisionJudgeInput{
		Email:       "judge@laurea.app",
		DisplayName: "Judge Holden",
	})
	require.NoError(t, err)

	assert.False(t, result.Notified)

	stored, err := f.store.FindByEmail(context.Background(), identity.VariantJudge, "judge@laurea.app")
	require.NoError(t, err)
	assert.Equal(t, result.Principal.ID, stored.ID)
}

/*
TestUpdateJudgeStatus verifies status validation and persistence.
*/
func TestUpdateJudgeStatus(t *testing.T) {
	f := newFixture(t)

	err := f.service.UpdateJudgeStatus(context.Background(), "judge-1", identity.StatusInactive)
	require.NoError(t, err)
	assert.Equal(t, identity.StatusInactive, f.store.statuses["judge-1"])

	err = f.service.UpdateJudgeStatus(context.Background(), "judge-1", identity.Status("banned"))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.As(err).HTTPStatus)
}

// # Request-Time Resolution

/*
TestResolve verifies the cookie-resolution order and fail-to-nil behavior.
*/
func TestResolve(t *testing.T) {
	f := newFixture(t)

	t.Run("no_cookies", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/admin", nil)
		assert.Nil(t, f.service.Resolve(request))
	})

	t.Run("session_cookie", func(t *testing.T) {
		judge := f.addJudge(t, "judge@laurea.app", "open sesame", identity.StatusActive)
		token, err := f.codec.Encode(f.codec.NewSession(judge))
		require.NoError(t, err)

		request := httptest.NewRequest(http.MethodGet, "/judges", nil)
		request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: token})

		claims := f.service.Resolve(request)
		require.NotNil(t, claims)
		assert.Equal(t, sec.RoleJudge, claims.Role)
		assert.Equal(t, judge.ID, claims.PrincipalID)
	})

	t.Run("expired_session_cookie", func(t *testing.T) {
		judge := f.addJudge(t, "judge@laurea.app", "open sesame", identity.StatusActive)
		expiredCodec := identity.NewCodec(testSecret, -time.Minute)
		token, err := expiredCodec.Encode(expiredCodec.NewSession(judge))
		require.NoError(t, err)

		request := httptest.NewRequest(http.MethodGet, "/judges", nil)
		request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: token})

		assert.Nil(t, f.service.Resolve(request))
	})

	t.Run("provider_cookie", func(t *testing.T) {
		f.provider.tokenToEmail["token-ada"] = "ada@laurea.app"
		f.provider.metadata["ada@laurea.app"] = map[string]any{
			"role":         "contestant",
			"display_name": "Ada",
		}

		request := httptest.NewRequest(http.MethodGet, "/contestant", nil)
		request.AddCookie(&http.Cookie{Name: constants.ProviderCookieName, Value: "token-ada"})

		claims := f.service.Resolve(request)
		require.NotNil(t, claims)
		assert.Equal(t, sec.RoleContestant, claims.Role)
		assert.Equal(t, "Ada", claims.DisplayName)
	})

	t.Run("bad_provider_cookie_falls_back", func(t *testing.T) {
		judge := f.addJudge(t, "judge@laurea.app", "open sesame", identity.StatusActive)
		token, err := f.codec.Encode(f.codec.NewSession(judge))
		require.NoError(t, err)

		request := httptest.NewRequest(http.MethodGet, "/judges", nil)
		request.AddCookie(&http.Cookie{Name: constants.ProviderCookieName, Value: "revoked-token"})
		request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: token})

		claims := f.service.Resolve(request)
		require.NotNil(t, claims)
		assert.Equal(t, sec.RoleJudge, claims.Role)
	})
}
