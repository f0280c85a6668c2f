package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ivankarpov/identity/internal/config"
	"github.com/ivankarpov/identity/internal/identity"
	"github.com/ivankarpov/identity/internal/server/handlers"
	"github.com/ivankarpov/identity/internal/server/router"
	"github.com/ivankarpov/identity/internal/server/storage/boltdb"
	"github.com/ivankarpov/identity/internal/server/storage/sqlite"
	"github.com/ivankarpov/identity/internal/token"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "identity server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.LogLevel)

	userStore, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open user storage: %w", err)
	}
	defer userStore.Close()

	revocations, err := boltdb.New(ctx, cfg.RevocationDBPath)
	if err != nil {
		return fmt.Errorf("failed to open revocation storage: %w", err)
	}
	defer revocations.Close()

	tokens, err := token.NewService(ctx, cfg.TokenSecret, cfg.TokenTTL, revocations, logger)
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}
	defer tokens.Stop()

	svc := identity.NewService(userStore, tokens, logger)

	handler := router.New(router.Deps{
		Logger: logger,
		Auth:   handlers.NewAuthHandler(logger, svc),
		Health: handlers.NewHealthHandler(logger, Version),
		Tokens: tokens,
		Limits: router.RateLimits{
			DefaultRate:      cfg.RateLimit,
			DefaultWindow:    cfg.RateLimitWindow,
			CredentialRate:   cfg.AuthRateLimit,
			CredentialWindow: cfg.AuthRateLimitWindow,
		},
	})

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler,
	}

	errC := make(chan error, 1)
	go func() {
		logger.Info("identity server listening",
			slog.String("addr", cfg.ListenAddr),
			slog.String("version", Version))
		errC <- srv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}

	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func printVersion() {
	fmt.Printf("Identity Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
