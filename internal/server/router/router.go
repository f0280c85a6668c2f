// Package router wires the HTTP endpoints to their handlers and stacks
// the middleware chain.
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ivankarpov/identity/internal/server/handlers"
	"github.com/ivankarpov/identity/internal/server/middleware"
)

// RateLimits carries the per-scope rate limiter settings.
type RateLimits struct {
	DefaultRate      int
	DefaultWindow    time.Duration
	CredentialRate   int
	CredentialWindow time.Duration
}

// Deps holds everything the router needs.
type Deps struct {
	Logger *slog.Logger
	Auth   *handlers.AuthHandler
	Health *handlers.HealthHandler
	Tokens middleware.TokenValidator
	Limits RateLimits
}

// New builds the full HTTP handler: recovery, logging and the default
// rate limiter wrap every route; the credential endpoints get a tighter
// limiter and the profile endpoints require a valid bearer token.
// Logout deliberately skips the auth middleware: revoking an expired
// token must stay idempotent instead of being rejected upfront.
func New(deps Deps) http.Handler {
	mux := http.NewServeMux()

	authRequired := middleware.AuthMiddleware(deps.Logger, deps.Tokens)
	credentialLimit := middleware.RateLimitMiddleware(deps.Limits.CredentialRate, deps.Limits.CredentialWindow, deps.Logger)

	mux.Handle("POST /api/v1/auth/register", credentialLimit(http.HandlerFunc(deps.Auth.Register)))
	mux.Handle("POST /api/v1/auth/login", credentialLimit(http.HandlerFunc(deps.Auth.Login)))
	mux.HandleFunc("POST /api/v1/auth/logout", deps.Auth.Logout)
	mux.Handle("GET /api/v1/auth/profile", authRequired(http.HandlerFunc(deps.Auth.Profile)))
	mux.Handle("GET /api/v1/auth/profile/{username}", authRequired(http.HandlerFunc(deps.Auth.Profile)))
	mux.HandleFunc("GET /api/v1/health", deps.Health.Health)

	var handler http.Handler = mux
	handler = middleware.RateLimitMiddleware(deps.Limits.DefaultRate, deps.Limits.DefaultWindow, deps.Logger)(handler)
	handler = middleware.LoggingWithSkip(deps.Logger, []string{"/api/v1/health"})(handler)
	handler = middleware.RecoveryMiddleware(deps.Logger)(handler)

	return handler
}
