package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ivankarpov/identity/internal/identity"
	"github.com/ivankarpov/identity/internal/server/storage"
	"github.com/ivankarpov/identity/internal/token"
	"github.com/ivankarpov/identity/internal/validation"
	"github.com/ivankarpov/identity/pkg/api"
)

// AuthHandler serves the registration, login, logout and profile endpoints.
// It maps the identity error taxonomy onto HTTP status codes; the core
// never sees HTTP.
type AuthHandler struct {
	logger   *slog.Logger
	identity *identity.Service
}

// NewAuthHandler creates a new handler for the auth endpoints
func NewAuthHandler(logger *slog.Logger, svc *identity.Service) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		identity: svc,
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode register request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.identity.Register(ctx, identity.RegisterParams{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrDuplicateUsername):
			h.sendError(w, "username already taken", http.StatusConflict)
		case errors.Is(err, identity.ErrDuplicateEmail):
			h.sendError(w, "email already taken", http.StatusConflict)
		default:
			h.logger.ErrorContext(ctx, "failed to register user", slog.Any("error", err))
			h.sendError(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.sendJSON(w, api.AuthResponse{
		Token:    result.Token,
		Username: result.Username,
		Email:    result.Email,
	}, http.StatusCreated)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode login request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Username
	}
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" || req.Password == "" {
		h.sendError(w, "identifier and password are required", http.StatusBadRequest)
		return
	}

	result, err := h.identity.Authenticate(ctx, identifier, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			// One undifferentiated message for every failure mode.
			h.sendError(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to authenticate user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.sendJSON(w, api.AuthResponse{
		Token:    result.Token,
		Username: result.Username,
		Email:    result.Email,
	}, http.StatusOK)
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tokenString, err := BearerToken(r)
	if err != nil {
		h.sendError(w, err.Error(), http.StatusUnauthorized)
		return
	}

	if err := h.identity.Logout(ctx, tokenString); err != nil {
		h.logger.ErrorContext(ctx, "failed to revoke token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Profile handles GET /api/v1/auth/profile and
// GET /api/v1/auth/profile/{username}. Both run behind the auth
// middleware; without a path username the authenticated subject is used.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := r.PathValue("username")
	if username == "" {
		subject, ok := SubjectFromContext(ctx)
		if !ok {
			h.sendError(w, "missing authenticated subject", http.StatusUnauthorized)
			return
		}
		username = subject
	}

	user, err := h.identity.Profile(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.sendError(w, "user not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get profile", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.sendJSON(w, api.ProfileResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
	}, http.StatusOK)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("Authorization header is required")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("invalid Authorization header format")
	}

	return parts[1], nil
}

// TokenStatus maps a token validation error onto an HTTP message. The
// kinds stay distinguishable so clients can prompt re-login on expiry or
// revocation but treat malformed tokens as plain rejections.
func TokenStatus(err error) string {
	switch {
	case errors.Is(err, token.ErrExpiredToken):
		return "token expired"
	case errors.Is(err, token.ErrRevokedToken):
		return "token revoked"
	default:
		return "invalid token"
	}
}

// sendJSON writes a JSON response
func (h *AuthHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError writes a JSON error response
func (h *AuthHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	h.sendJSON(w, resp, statusCode)
}
