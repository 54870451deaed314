// Copyright (c) 2026 Laurea. All rights reserved.

package api

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/laurea-app/laurea/internal/platform/constants"
	"github.com/laurea-app/laurea/internal/platform/postgres"
	"github.com/laurea-app/laurea/internal/platform/redis"
	"github.com/laurea-app/laurea/internal/platform/respond"
)

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	pool  *pgxpool.Pool
	cache *goredis.Client
}

// NewHealthHandler creates the probe handler over the server's dependencies.
func NewHealthHandler(pool *pgxpool.Pool, cache *goredis.Client) *HealthHandler {
	return &HealthHandler{pool: pool, cache: cache}
}

// Liveness reports that the process is up. It performs no dependency checks
// so an orchestrator never restarts a server over a downstream outage.
func (h *HealthHandler) Liveness(writer http.ResponseWriter, request *http.Request) {
	respond.JSON(writer, http.StatusOK, map[string]string{
		constants.FieldStatus: "ok",
		"version":             constants.AppVersion,
	})
}

// Readiness verifies both backing stores before declaring the server ready
// for traffic. A failed throttle cache still counts as degraded here, even
// though logins would technically proceed without it.
func (h *HealthHandler) Readiness(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	checks := map[string]string{
		"database": "ok",
		"cache":    "ok",
	}
	healthy := true

	if err := postgres.Ping(ctx, h.pool); err != nil {
		checks["database"] = "unreachable"
		healthy = false
	}
	if err := redis.Ping(ctx, h.cache); err != nil {
		checks["cache"] = "unreachable"
		healthy = false
	}

	status := http.StatusOK
	overall := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	respond.JSON(writer, status, map[string]any{
		constants.FieldStatus: overall,
		"checks":              checks,
	})
}
