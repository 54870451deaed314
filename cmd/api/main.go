// Copyright (c) 2026 Laurea. All rights reserved.

// Command api runs the Laurea platform API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/laurea-app/laurea/internal/api"
	"github.com/laurea-app/laurea/internal/identity"
	"github.com/laurea-app/laurea/internal/platform/config"
	"github.com/laurea-app/laurea/internal/platform/constants"
	"github.com/laurea-app/laurea/internal/platform/migration"
	"github.com/laurea-app/laurea/internal/platform/postgres"
	"github.com/laurea-app/laurea/internal/platform/redis"
	"github.com/laurea-app/laurea/internal/portal"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Debug {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		slog.SetDefault(logger)
	}

	logger.Info("starting",
		slog.String("app", constants.AppName),
		slog.String("version", constants.AppVersion),
		slog.String("environment", cfg.Environment),
	)

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger); err != nil {
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	cache, err := redis.NewClient(ctx, cfg.RedisURL, logger)
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	// Identity wiring: credential store, managed provider, session codec,
	// login throttle, and the judge credential notifier.
	store := identity.NewPostgresPrincipalStore(pool)
	provider := identity.NewHTTPProvider(cfg.ProviderURL, cfg.ProviderServiceKey)
	codec := identity.NewCodec(cfg.SessionSecret, cfg.SessionTTL)
	throttle := identity.NewRedisLoginThrottle(cache)
	notifier := identity.NewSMTPNotifier(
		cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom,
	)

	service := identity.NewService(store, provider, codec, throttle, notifier, logger)
	identityHandler := identity.NewHandler(service, cfg.IsProduction())

	server := api.NewServer(ctx, cfg, logger, service, identityHandler,
		portal.NewHandler(), api.NewHealthHandler(pool, cache))

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}
