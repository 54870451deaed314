// Copyright (c) 2026 Laurea. All rights reserved.

// Package portal serves the role-gated dashboard endpoints behind the route
// guard. Handlers here assume the guard has already admitted the request:
// they read identity from context and never re-check roles.
package portal

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/laurea-app/laurea/internal/platform/request"
	"github.com/laurea-app/laurea/internal/platform/respond"
)

// Handler serves the three portal namespaces.
type Handler struct{}

// NewHandler creates the portal handler.
func NewHandler() *Handler {
	return &Handler{}
}

// AdminRoutes returns the admin dashboard subrouter.
func (h *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/dashboard", h.dashboard("admin"))
	return router
}

// JudgeRoutes returns the judge dashboard subrouter.
func (h *Handler) JudgeRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/dashboard", h.dashboard("judges"))
	router.Get("/assignments", h.judgeAssignments)
	return router
}

// ContestantRoutes returns the contestant dashboard subrouter.
func (h *Handler) ContestantRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/dashboard", h.dashboard("contestant"))
	return router
}

// dashboard returns a portal landing payload carrying the viewer's identity.
func (h *Handler) dashboard(namespace string) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		claims, err := requestutil.RequiredClaims(request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		respond.OK(writer, map[string]any{
			"portal":       namespace,
			"principal_id": claims.PrincipalID,
			"display_name": claims.DisplayName,
			"role":         string(claims.Role),
		})
	}
}

// judgeAssignments lists the viewing judge's scoring queue.
//
// TODO: back this with the submissions service once scoring lands; the
// endpoint currently returns an empty queue so the judge portal can render.
func (h *Handler) judgeAssignments(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"judge_id":    claims.PrincipalID,
		"assignments": []any{},
	})
}
