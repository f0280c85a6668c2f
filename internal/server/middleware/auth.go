package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ivankarpov/identity/internal/server/handlers"
	"github.com/ivankarpov/identity/pkg/api"
)

// TokenValidator checks a bearer token and returns the bound subject.
type TokenValidator interface {
	Validate(tokenString string) (string, error)
}

// AuthMiddleware validates the bearer token on protected routes and
// stores the authenticated subject in the request context. Malformed,
// expired and revoked tokens are all rejected with 401; the message keeps
// the kinds apart so clients can decide whether to prompt re-login.
func AuthMiddleware(logger *slog.Logger, tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := handlers.BearerToken(r)
			if err != nil {
				logger.Warn("missing or malformed Authorization header")
				unauthorized(w, err.Error())
				return
			}

			subject, err := tokens.Validate(tokenString)
			if err != nil {
				logger.Warn("token rejected", "reason", handlers.TokenStatus(err))
				unauthorized(w, handlers.TokenStatus(err))
				return
			}

			ctx := handlers.WithSubject(r.Context(), subject)

			logger.Debug("request authenticated", "subject", subject)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{
		Error:   http.StatusText(http.StatusUnauthorized),
		Message: message,
	})
}
