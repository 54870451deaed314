// Copyright (c) 2026 Laurea. All rights reserved.

package identity

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/laurea-app/laurea/internal/platform/constants"
	"github.com/laurea-app/laurea/internal/platform/middleware"
	requestutil "github.com/laurea-app/laurea/internal/platform/request"
	"github.com/laurea-app/laurea/internal/platform/respond"
	"github.com/laurea-app/laurea/internal/platform/validate"
)

// Form field names submitted by the login and registration pages.
const (
	fieldEmail           = "email"
	fieldPassword        = "password"
	fieldConfirmPassword = "confirmPassword"
	fieldName            = "name"
)

// minPasswordLength applies to self-chosen passwords on registration.
// Generated judge passwords are longer by construction.
const minPasswordLength = 6

// Handler exposes the identity service over HTTP.
type Handler struct {
	service       *Service
	secureCookies bool
}

// NewHandler creates the identity HTTP handler. secureCookies should be true
// in production so auth cookies are only sent over TLS.
func NewHandler(service *Service, secureCookies bool) *Handler {
	return &Handler{service: service, secureCookies: secureCookies}
}

// # Login

// LoginAdmin authenticates against the admin credential table.
func (h *Handler) LoginAdmin(writer http.ResponseWriter, request *http.Request) {
	h.login(writer, request, VariantAdmin)
}

// LoginJudge authenticates against the judge credential table.
func (h *Handler) LoginJudge(writer http.ResponseWriter, request *http.Request) {
	h.login(writer, request, VariantJudge)
}

// LoginContestant authenticates against the managed provider.
func (h *Handler) LoginContestant(writer http.ResponseWriter, request *http.Request) {
	h.login(writer, request, "")
}

func (h *Handler) login(writer http.ResponseWriter, request *http.Request, variant Variant) {
	if err := requestutil.ParseForm(request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	email := requestutil.FormValue(request, fieldEmail)
	password := request.PostFormValue(fieldPassword)

	validator := &validate.Validator{}
	validator.Required(fieldEmail, email).
		Required(fieldPassword, password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := h.service.Login(request.Context(), LoginInput{
		Email:    email,
		Password: password,
		Variant:  variant,
		// Proxy-aware: behind a load balancer every RemoteAddr is the proxy,
		// which would collapse all throttle keys into one bucket.
		IPAddress: middleware.RealIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	h.setAuthCookie(writer, result)

	respond.OK(writer, map[string]any{
		"role":       string(result.Role),
		"expires_at": result.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// # Registration

// RegisterAdmin handles self-service admin signup from the registration form.
func (h *Handler) RegisterAdmin(writer http.ResponseWriter, request *http.Request) {
	if err := requestutil.ParseForm(request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	email := requestutil.FormValue(request, fieldEmail)
	password := request.PostFormValue(fieldPassword)
	confirm := request.PostFormValue(fieldConfirmPassword)
	name := requestutil.FormValue(request, fieldName)

	validator := &validate.Validator{}
	validator.Required(fieldEmail, email).
		Email(fieldEmail, email).
		Required(fieldName, name).
		MaxLen(fieldName, name, 120).
		MinLen(fieldPassword, password, minPasswordLength).
		Match(fieldConfirmPassword, password, confirm, "Passwords do not match")
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	principal, err := h.service.RegisterAdmin(request.Context(), RegisterAdminInput{
		Email:       email,
		Password:    password,
		DisplayName: name,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, principal)
}

// RegisterContestant handles contestant signup, delegated to the provider.
func (h *Handler) RegisterContestant(writer http.ResponseWriter, request *http.Request) {
	if err := requestutil.ParseForm(request); err != nil {
		respond.Error(writer, request, err)
		return
	}

	email := requestutil.FormValue(request, fieldEmail)
	password := request.PostFormValue(fieldPassword)
	confirm := request.PostFormValue(fieldConfirmPassword)
	name := requestutil.FormValue(request, fieldName)

	validator := &validate.Validator{}
	validator.Required(fieldEmail, email).
		Email(fieldEmail, email).
		Required(fieldName, name).
		MaxLen(fieldName, name, 120).
		MinLen(fieldPassword, password, minPasswordLength).
		Match(fieldConfirmPassword, password, confirm, "Passwords do not match")
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := h.service.RegisterContestant(request.Context(), RegisterContestantInput{
		Email:       email,
		Password:    password,
		DisplayName: name,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{
		"id":    user.ID,
		"email": user.Email,
	})
}

// # Logout

// Logout clears both auth cookies unconditionally. Sessions are stateless so
// there is nothing to revoke server-side; an already-anonymous request gets
// the same 204.
func (h *Handler) Logout(writer http.ResponseWriter, request *http.Request) {
	h.clearCookie(writer, constants.SessionCookieName)
	h.clearCookie(writer, constants.ProviderCookieName)
	respond.NoContent(writer)
}

// # Judge Administration

// judgeProvisionRequest is the JSON body for admin-initiated judge creation.
type judgeProvisionRequest struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Bio             string   `json:"bio"`
	Specialties     []string `json:"specialties"`
	YearsExperience int      `json:"years_experience"`
}

// judgeStatusRequest is the JSON body for toggling a judge's status.
type judgeStatusRequest struct {
	Status string `json:"status"`
}

// JudgeAdminRoutes returns the judge-management subrouter, mounted inside
// the admin namespace (the route guard has already enforced the admin role
// before these handlers run).
func (h *Handler) JudgeAdminRoutes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", h.provisionJudge)
	router.Patch("/{id}/status", h.updateJudgeStatus)
	return router
}

func (h *Handler) provisionJudge(writer http.ResponseWriter, request *http.Request) {
	var body judgeProvisionRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(fieldEmail, body.Email).
		Email(fieldEmail, body.Email).
		Required(fieldName, body.Name).
		MaxLen(fieldName, body.Name, 120).
		Range("years_experience", body.YearsExperience, 0, 80)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := h.service.ProvisionJudge(request.Context(), ProvisionJudgeInput{
		Email:           body.Email,
		DisplayName:     body.Name,
		Bio:             body.Bio,
		Specialties:     body.Specialties,
		YearsExperience: body.YearsExperience,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{
		"judge":    result.Principal,
		"notified": result.Notified,
	})
}

func (h *Handler) updateJudgeStatus(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	var body judgeStatusRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.UUID("id", id).
		OneOf("status", body.Status, string(StatusActive), string(StatusInactive))
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := h.service.UpdateJudgeStatus(request.Context(), id, Status(body.Status)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Session Info

// Me returns the authenticated identity behind the request. Useful for
// client-side session checks.
func (h *Handler) Me(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, claims)
}

// # Cookie Plumbing

// setAuthCookie writes the session cookie for whichever auth path succeeded.
func (h *Handler) setAuthCookie(writer http.ResponseWriter, result *LoginResult) {
	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     result.CookieName,
		Value:    result.Token,
		Path:     constants.SessionCookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearCookie expires the named cookie immediately.
func (h *Handler) clearCookie(writer http.ResponseWriter, name string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     constants.SessionCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
