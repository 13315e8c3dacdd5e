// Copyright (c) 2026 HKSD Tech. All rights reserved.

// Command api is the entry point for the HKSD HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration (.env in development, then environment variables).
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Seed the root admin account on an empty agent tree.
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
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

	"github.com/joho/godotenv"

	"github.com/hksd-tech/hksd-api/internal/agent"
	"github.com/hksd-tech/hksd-api/internal/api"
	"github.com/hksd-tech/hksd-api/internal/audit"
	"github.com/hksd-tech/hksd-api/internal/identity"
	"github.com/hksd-tech/hksd-api/internal/member"
	"github.com/hksd-tech/hksd-api/internal/platform/config"
	"github.com/hksd-tech/hksd-api/internal/platform/constants"
	"github.com/hksd-tech/hksd-api/internal/platform/migration"
	pgstore "github.com/hksd-tech/hksd-api/internal/platform/postgres"
	redisstore "github.com/hksd-tech/hksd-api/internal/platform/redis"
	"github.com/hksd-tech/hksd-api/internal/platform/sec"
	"github.com/hksd-tech/hksd-api/internal/sms"
	"github.com/hksd-tech/hksd-api/internal/verification"
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

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	// A local .env is a development convenience; absence is not an error.
	if err := godotenv.Load(); err == nil {
		log.Info("dotenv_loaded")
	}

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

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Token Service ──────────────────────────────────────────────────
	tokenService, err := sec.NewTokenService(cfg.SessionSecret, constants.AuthIssuer)
	must(log, err, "initialize token service")

	// ── 7. Collaborator Gateways ──────────────────────────────────────────
	// Without SMS credentials, codes go to the log instead of the carrier.
	var codeSender verification.Sender
	if cfg.SMSAccessKeyID != "" {
		codeSender = sms.NewAliyunSender(cfg.SMSAccessKeyID, cfg.SMSAccessKeySecret, cfg.SMSSignName, cfg.SMSTemplateCode)
		log.Info("sms_gateway_enabled")
	} else {
		codeSender = sms.NewLogSender(log)
		log.Warn("sms_gateway_disabled_using_log_sender")
	}

	// Without an app code, identity checks stop at the structural stage.
	var idChecker identity.Checker
	if cfg.IDVerifyAppCode != "" {
		idChecker = identity.NewRemoteChecker(cfg.IDVerifyAppCode, cfg.IDVerifyURL)
		log.Info("identity_gateway_enabled")
	} else {
		idChecker = identity.NewFormatChecker()
		log.Warn("identity_gateway_disabled_using_format_checker")
	}

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	auditor := audit.NewRecorder(audit.NewPostgresStore(pool), log)

	codeService := verification.NewService(
		verification.NewPostgresStore(pool),
		verification.NewRedisThrottle(rdb),
		codeSender,
		log,
	)

	accountStore := agent.NewAccountStore(pool)
	configStore := agent.NewConfigStore(pool)
	agentService := agent.NewService(
		accountStore,
		agent.NewOrderStore(pool),
		codeService,
		tokenService,
		idChecker,
		auditor,
	)
	agentHandler := agent.NewHandler(agentService)

	memberService := member.NewService(
		member.NewPostgresStore(pool),
		codeService,
		tokenService,
		idChecker,
		auditor,
	)
	memberHandler := member.NewHandler(memberService)

	// ── 9. Bootstrap Seeding ──────────────────────────────────────────────
	must(log, agent.Bootstrap(startupCtx, accountStore, configStore, cfg.AdminPhone, cfg.AdminPassword, log), "bootstrap root admin")

	// ── 10. Health handlers (wired with real dependency checkers) ─────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 11. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Member:    memberHandler,
		Agent:     agentHandler,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, tokenService, handlers)

	// ── 12. Graceful Shutdown ─────────────────────────────────────────────
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
