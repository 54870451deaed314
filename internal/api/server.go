// Copyright (c) 2026 Laurea. All rights reserved.

// Package api assembles the HTTP surface of the Laurea platform: middleware
// chain, route guard, and the portal/auth route tree.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/laurea-app/laurea/internal/identity"
	"github.com/laurea-app/laurea/internal/platform/config"
	"github.com/laurea-app/laurea/internal/platform/constants"
	"github.com/laurea-app/laurea/internal/platform/ctxutil"
	"github.com/laurea-app/laurea/internal/platform/middleware"
	"github.com/laurea-app/laurea/internal/platform/respond"
	"github.com/laurea-app/laurea/internal/portal"
)

// Server wraps the HTTP server with its dependencies for lifecycle control.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds the full middleware chain and route tree.
//
// # Middleware Order
//
// The route guard sits in the global chain, before routing: it must see
// every request — including paths with no registered handler — so that an
// unauthenticated probe of /admin/anything redirects instead of 404ing.
func NewServer(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	resolver middleware.IdentityResolver,
	identityHandler *identity.Handler,
	portalHandler *portal.Handler,
	health *HealthHandler,
) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(logger))
	router.Use(chimiddleware.CleanPath)
	router.Use(chimiddleware.Timeout(constants.GlobalRequestTimeout))
	router.Use(middleware.RateLimit(ctx))
	router.Use(middleware.PanicRecovery(logger))
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.Guard(resolver))

	// Liveness / readiness
	router.Get("/health", health.Liveness)
	router.Get("/ready", health.Readiness)

	// Public landing page.
	router.Get("/", func(writer http.ResponseWriter, request *http.Request) {
		respond.OK(writer, map[string]string{
			"name":    constants.AppName,
			"version": constants.AppVersion,
		})
	})

	// Top-level auth pages (contestant-facing).
	router.Post("/login", identityHandler.LoginContestant)
	router.Post("/register", identityHandler.RegisterContestant)
	router.Post("/logout", identityHandler.Logout)

	// Admin namespace. The guard admits only admins past /admin/login and
	// /admin/register.
	router.Route("/admin", func(r chi.Router) {
		r.Post("/login", identityHandler.LoginAdmin)
		r.Post("/register", identityHandler.RegisterAdmin)
		r.Mount("/", portalHandler.AdminRoutes())
		r.Mount("/judges", identityHandler.JudgeAdminRoutes())
	})

	// Judge namespace. /judges/login is the only page inside it reachable
	// without the judge role.
	router.Route("/judges", func(r chi.Router) {
		r.Post("/login", identityHandler.LoginJudge)
		r.Mount("/", portalHandler.JudgeRoutes())
	})

	// Contestant namespace.
	router.Route("/contestant", func(r chi.Router) {
		r.Post("/login", identityHandler.LoginContestant)
		r.Mount("/", portalHandler.ContestantRoutes())
	})

	// JSON API slice for programmatic clients; /api/v1/auth/* is public by
	// prefix, /api/v1/auth/me self-reports the session.
	router.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", identityHandler.LoginContestant)
		r.Post("/logout", identityHandler.Logout)
		r.Get("/me", withResolvedIdentity(resolver, identityHandler.Me))
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadTimeout:       constants.DefaultReadTimeout,
		WriteTimeout:      constants.DefaultWriteTimeout,
		IdleTimeout:       constants.DefaultIdleTimeout,
		ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
	}

	return &Server{httpServer: httpServer, logger: logger}
}

// withResolvedIdentity injects claims for public-prefix routes the guard
// skipped, so handlers can still see who is asking.
func withResolvedIdentity(resolver middleware.IdentityResolver, next http.HandlerFunc) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		if claims := resolver.Resolve(request); claims != nil {
			request = request.WithContext(
				ctxutil.WithAuthUser(request.Context(), claims),
			)
		}
		next(writer, request)
	}
}

// ListenAndServe starts serving and blocks until the listener closes.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
