// Copyright (c) 2026 Laurea. All rights reserved.

package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/laurea-app/laurea/internal/platform/apperr"
	"github.com/laurea-app/laurea/internal/platform/constants"
	"github.com/laurea-app/laurea/internal/platform/ctxutil"
	"github.com/laurea-app/laurea/internal/platform/sec"
	"github.com/laurea-app/laurea/pkg/uuidv7"
)

// invalidCredentialsMessage is the single message for every credential
// failure. Unknown email, wrong password, and disabled account are
// indistinguishable to the client so the login form cannot be used as an
// account-enumeration oracle.
const invalidCredentialsMessage = "Invalid email or password"

// Service orchestrates authentication, registration, and judge provisioning
// across the two identity sources.
type Service struct {
	store    PrincipalStore
	provider Provider
	codec    *Codec
	throttle LoginThrottle
	notifier CredentialNotifier
	log      *slog.Logger
}

// NewService wires the authenticator from its collaborators.
func NewService(
	store PrincipalStore,
	provider Provider,
	codec *Codec,
	throttle LoginThrottle,
	notifier CredentialNotifier,
	log *slog.Logger,
) *Service {
	return &Service{
		store:    store,
		provider: provider,
		codec:    codec,
		throttle: throttle,
		notifier: notifier,
		log:      log,
	}
}

// # Login

// LoginInput carries one authentication attempt. Variant selects the
// credential store path; an empty Variant selects the managed-provider path.
type LoginInput struct {
	Email     string
	Password  string
	Variant   Variant
	IPAddress string
}

// LoginResult is a successful authentication: the cookie to set and the
// resolved role for post-login routing.
type LoginResult struct {
	CookieName string
	Token      string
	Role       sec.Role
	ExpiresAt  time.Time
}

// Login authenticates against the credential store (admin/judge) or the
// managed provider (contestant), depending on the input's variant.
func (s *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	input.Email = sec.CanonicalEmail(input.Email)

	if input.Email == "" || input.Password == "" {
		return nil, apperr.ValidationError("Email and password are required")
	}

	if input.Variant == "" {
		return s.loginContestant(ctx, input)
	}
	return s.loginStored(ctx, input)
}

// loginStored authenticates an admin or judge against the credential store.
//
// Every failure path — unknown email, wrong password, disabled judge —
// records a throttle failure and returns the same generic rejection.
func (s *Service) loginStored(ctx context.Context, input LoginInput) (*LoginResult, error) {
	throttleKey := input.IPAddress + ":" + input.Email

	allowed, err := s.throttle.Allow(ctx, throttleKey)
	if err != nil {
		// Throttle outage must not block all logins; log and continue.
		s.log.WarnContext(ctx, "login throttle unavailable", slog.String("error", err.Error()))
	}
	if !allowed {
		return nil, apperr.RateLimited(int(constants.LoginAttemptWindow.Seconds()))
	}

	reject := func() (*LoginResult, error) {
		if err := s.throttle.RecordFailure(ctx, throttleKey); err != nil {
			s.log.WarnContext(ctx, "login throttle record failed", slog.String("error", err.Error()))
		}
		return nil, apperr.Unauthorized(invalidCredentialsMessage)
	}

	principal, err := s.store.FindByEmail(ctx, input.Variant, input.Email)
	if err != nil {
		if appErr := apperr.As(err); appErr != nil && appErr.HTTPStatus == http.StatusNotFound {
			return reject()
		}
		return nil, err
	}

	if principal.PasswordHash == "" {
		return reject()
	}
	if !sec.CheckPasswordHash(input.Password, principal.PasswordHash) {
		return reject()
	}
	if principal.Variant == VariantJudge && principal.Status != StatusActive {
		return reject()
	}

	if err := s.throttle.Reset(ctx, throttleKey); err != nil {
		s.log.WarnContext(ctx, "login throttle reset failed", slog.String("error", err.Error()))
	}

	session := s.codec.NewSession(principal)
	token, err := s.codec.Encode(session)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.log.InfoContext(ctx, "principal authenticated",
		slog.String("principal_id", principal.ID),
		slog.String("role", string(session.Role)),
	)

	return &LoginResult{
		CookieName: constants.SessionCookieName,
		Token:      token,
		Role:       session.Role,
		ExpiresAt:  session.ExpiresAt,
	}, nil
}

// loginContestant authenticates against the managed provider.
//
// When the provider rejects the attempt because the email is unconfirmed,
// the account is confirmed via the admin API and the sign-in is retried
// exactly once. The retry is structural, not counted: a second unconfirmed
// rejection falls through to the failure response.
func (s *Service) loginContestant(ctx context.Context, input LoginInput) (*LoginResult, error) {
	session, err := s.provider.SignInWithPassword(ctx, input.Email, input.Password)
	if errors.Is(err, ErrProviderEmailNotConfirmed) {
		if confirmErr := s.provider.AdminConfirmEmail(ctx, input.Email); confirmErr != nil {
			s.log.WarnContext(ctx, "auto-confirm failed",
				slog.String("error", confirmErr.Error()),
			)
			return nil, apperr.Unauthorized(
				"Unable to verify your account. Please check your email or contact support.")
		}
		session, err = s.provider.SignInWithPassword(ctx, input.Email, input.Password)
	}

	switch {
	case err == nil:
		// Fall through to the success path below.
	case errors.Is(err, ErrProviderInvalidCredentials):
		return nil, apperr.Unauthorized(invalidCredentialsMessage)
	case errors.Is(err, ErrProviderEmailNotConfirmed):
		// Confirm succeeded but the provider still refused the grant.
		return nil, apperr.Unauthorized(
			"Unable to verify your account. Please check your email or contact support.")
	default:
		return nil, apperr.Internal(fmt.Errorf("identity: provider sign-in failed: %w", err))
	}

	if session.User == nil || session.AccessToken == "" {
		return nil, apperr.Internal(errors.New("identity: provider returned incomplete session"))
	}

	role := roleFromMetadata(session.User.UserMetadata)

	s.log.InfoContext(ctx, "contestant authenticated",
		slog.String("principal_id", session.User.ID),
		slog.String("role", string(role)),
	)

	return &LoginResult{
		CookieName: constants.ProviderCookieName,
		Token:      session.AccessToken,
		Role:       role,
		ExpiresAt:  time.Now().Add(session.ExpiresIn),
	}, nil
}

// roleFromMetadata resolves the role from provider user metadata, defaulting
// to contestant whenever the value is absent or not a known role string.
func roleFromMetadata(metadata map[string]any) sec.Role {
	if metadata == nil {
		return sec.RoleContestant
	}
	return sec.ParseRole(metadata["role"])
}

// # Registration

// RegisterAdminInput carries a self-service admin registration.
type RegisterAdminInput struct {
	Email       string
	Password    string
	DisplayName string
}

// RegisterAdmin creates an admin principal in the credential store.
//
// The email must be unused by BOTH store variants: an address already
// holding a judge account cannot double as an admin login.
func (s *Service) RegisterAdmin(ctx context.Context, input RegisterAdminInput) (*Principal, error) {
	input.Email = sec.CanonicalEmail(input.Email)

	for _, variant := range []Variant{VariantAdmin, VariantJudge} {
		_, err := s.store.FindByEmail(ctx, variant, input.Email)
		if err == nil {
			return nil, apperr.Conflict("Email is already registered")
		}
		if appErr := apperr.As(err); appErr == nil || appErr.HTTPStatus != http.StatusNotFound {
			return nil, err
		}
	}

	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	principal := &Principal{
		ID:           uuidv7.New(),
		Variant:      VariantAdmin,
		Email:        input.Email,
		PasswordHash: hash,
		DisplayName:  input.DisplayName,
	}

	if err := s.store.Insert(ctx, principal); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "admin registered", slog.String("principal_id", principal.ID))

	return principal, nil
}

// RegisterContestantInput carries a contestant signup, delegated to the
// managed provider.
type RegisterContestantInput struct {
	Email       string
	Password    string
	DisplayName string
}

// RegisterContestant creates a contestant identity with the provider,
// stamping the contestant role into its user metadata.
func (s *Service) RegisterContestant(ctx context.Context, input RegisterContestantInput) (*ProviderUser, error) {
	input.Email = sec.CanonicalEmail(input.Email)

	user, err := s.provider.SignUp(ctx, input.Email, input.Password, map[string]any{
		"role":         string(sec.RoleContestant),
		"display_name": input.DisplayName,
	})
	if err != nil {
		if errors.Is(err, ErrProviderDuplicateEmail) {
			return nil, apperr.Conflict("Email is already registered")
		}
		return nil, apperr.Internal(fmt.Errorf("identity: provider signup failed: %w", err))
	}

	s.log.InfoContext(ctx, "contestant registered", slog.String("principal_id", user.ID))

	return user, nil
}

// # Judge Provisioning

// ProvisionJudgeInput carries an admin-initiated judge account creation.
// Judges never self-register.
type ProvisionJudgeInput struct {
	Email           string
	DisplayName     string
	Bio             string
	Specialties     []string
	YearsExperience int
}

// ProvisionJudgeResult reports the created principal and whether the
// credential email was delivered.
type ProvisionJudgeResult struct {
	Principal *Principal
	Notified  bool
}

// ProvisionJudge creates an active judge with a generated password and
// emails the credential to the judge.
//
// Notification failure does not roll back the account: the principal exists
// and can log in once the credential reaches them by other means. The caller
// learns delivery state through the result's Notified flag.
func (s *Service) ProvisionJudge(ctx context.Context, input ProvisionJudgeInput) (*ProvisionJudgeResult, error) {
	input.Email = sec.CanonicalEmail(input.Email)

	// Same cross-variant uniqueness policy as admin registration: an email
	// already holding an account in EITHER table cannot become a judge login.
	for _, variant := range []Variant{VariantAdmin, VariantJudge} {
		_, err := s.store.FindByEmail(ctx, variant, input.Email)
		if err == nil {
			return nil, apperr.Conflict("Email is already registered")
		}
		if appErr := apperr.As(err); appErr == nil || appErr.HTTPStatus != http.StatusNotFound {
			return nil, err
		}
	}

	password, err := sec.GeneratePassword(sec.GeneratedPasswordLength)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	hash, err := sec.HashPassword(password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	principal := &Principal{
		ID:              uuidv7.New(),
		Variant:         VariantJudge,
		Email:           input.Email,
		PasswordHash:    hash,
		DisplayName:     input.DisplayName,
		Bio:             input.Bio,
		Specialties:     input.Specialties,
		YearsExperience: input.YearsExperience,
		Status:          StatusActive,
	}

	if err := s.store.Insert(ctx, principal); err != nil {
		return nil, err
	}

	notified := true
	if err := s.notifier.NotifyCredentials(ctx, principal.Email, principal.DisplayName, password); err != nil {
		notified = false
		s.log.ErrorContext(ctx, "judge credential notification failed",
			slog.String("principal_id", principal.ID),
			slog.String("error", err.Error()),
		)
	}

	s.log.InfoContext(ctx, "judge provisioned",
		slog.String("principal_id", principal.ID),
		slog.Bool("notified", notified),
	)

	return &ProvisionJudgeResult{Principal: principal, Notified: notified}, nil
}

// UpdateJudgeStatus soft-enables or soft-disables a judge account.
func (s *Service) UpdateJudgeStatus(ctx context.Context, id string, status Status) error {
	if status != StatusActive && status != StatusInactive {
		return apperr.ValidationError("Status must be active or inactive")
	}

	if err := s.store.UpdateStatus(ctx, VariantJudge, id, status); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "judge status updated",
		slog.String("principal_id", id),
		slog.String("status", string(status)),
	)

	return nil
}

// # Request-Time Resolution

// Resolve determines the identity behind a request from its cookies, for
// the route guard. The provider cookie is checked first, then the
// credential-store session cookie. Resolution never errors: any failure —
// missing cookie, expired or tampered token, provider outage — yields nil,
// and the guard treats nil as unauthenticated.
func (s *Service) Resolve(r *http.Request) *sec.AuthClaims {
	ctx := r.Context()

	if cookie, err := r.Cookie(constants.ProviderCookieName); err == nil && cookie.Value != "" {
		user, err := s.provider.GetUser(ctx, cookie.Value)
		if err == nil && user != nil {
			displayName, _ := user.UserMetadata["display_name"].(string)
			return &sec.AuthClaims{
				PrincipalID: user.ID,
				Email:       user.Email,
				DisplayName: displayName,
				Role:        roleFromMetadata(user.UserMetadata),
			}
		}
		if err != nil && !errors.Is(err, ErrProviderInvalidCredentials) {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "provider token resolution failed",
				slog.String("error", err.Error()),
			)
		}
	}

	if cookie, err := r.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
		if session := s.codec.Decode(cookie.Value); session != nil {
			return session.Claims()
		}
	}

	return nil
}
