// Copyright (c) 2026 Hunt360. All rights reserved.
// Author: dev@hunt360.app

// Command api is the entry point for the Hunt360 authentication API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect optional backends (PostgreSQL, Redis) when configured.
//  4. Run database migrations (idempotent, Postgres only).
//  5. Wire the auth service, notification sink, and captcha verifier.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hunt360/hunt360/internal/api"
	"github.com/hunt360/hunt360/internal/auth"
	"github.com/hunt360/hunt360/internal/captcha"
	"github.com/hunt360/hunt360/internal/notify"
	"github.com/hunt360/hunt360/internal/platform/config"
	"github.com/hunt360/hunt360/internal/platform/constants"
	"github.com/hunt360/hunt360/internal/platform/metrics"
	"github.com/hunt360/hunt360/internal/platform/migration"
	pgstore "github.com/hunt360/hunt360/internal/platform/postgres"
	redisstore "github.com/hunt360/hunt360/internal/platform/redis"
	"github.com/hunt360/hunt360/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Hunt360] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	health := api.HealthDependencies{}

	// ── 3. User Store (Postgres when configured, in-memory otherwise) ──────
	var userRepository auth.UserRepository = auth.NewMemoryUserRepository()
	if cfg.DatabaseURL != "" {
		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing postgres pool")
			pool.Close()
		}()

		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		userRepository = auth.NewPostgresUserRepository(pool)
		health.CheckDatabase = func() error {
			return pgstore.Ping(context.Background(), pool)
		}
	} else {
		log.Warn("user_store_volatile", slog.String("reason", "DATABASE_URL not set; accounts are lost on restart"))
	}

	// ── 4. Secret Store (Redis when configured, in-memory otherwise) ───────
	var secretRepository auth.SecretRepository = auth.NewMemorySecretRepository()
	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()

		secretRepository = auth.NewRedisSecretRepository(rdb)
		health.CheckCache = func() error {
			return redisstore.Ping(context.Background(), rdb)
		}
	}

	// ── 5. Session Tokens ──────────────────────────────────────────────────
	tokenService, err := sec.NewTokenService(cfg.SessionSecret, constants.AuthIssuer)
	must(log, err, "initialize token service")

	// ── 6. Notification Sink & Captcha ─────────────────────────────────────
	var sender notify.Sender = notify.NewLogSender(log, cfg.IsDevelopment())
	if cfg.SMTPConfigured() {
		sender = notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		log.Warn("smtp_unconfigured", slog.String("reason", "one-time codes are logged instead of mailed"))
	}

	var verifier captcha.Verifier = captcha.Bypass{}
	if cfg.CaptchaConfigured() {
		verifier = captcha.NewHTTPVerifier(cfg.CaptchaVerifyURL, cfg.CaptchaSecret)
	}

	// ── 7. Metrics & Health ────────────────────────────────────────────────
	collector := metrics.NewCollector()
	liveness, readiness := api.NewHealthHandlers(health, log)

	// ── 8. Domain Wiring ───────────────────────────────────────────────────
	authService := auth.NewService(
		userRepository,
		secretRepository,
		tokenService,
		sender,
		verifier,
		collector,
		auth.Policy{
			MaxLoginAttempts: cfg.MaxLoginAttempts,
			LockoutDuration:  time.Duration(cfg.LockoutMinutes) * time.Minute,
		},
	)
	authHandler := auth.NewHandler(authService)

	// ── 9. HTTP Server ─────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Metrics:   collector.Handler(),
	}

	// App-lifetime context for the middleware background workers.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	server := api.NewServer(appCtx, cfg, log, tokenService, collector, handlers)

	// ── 10. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
