// Package identity orchestrates account registration, authentication and
// token-bound profile resolution on top of the user store, the password
// hasher and the token provider.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ivankarpov/identity/internal/crypto"
	"github.com/ivankarpov/identity/internal/models"
	"github.com/ivankarpov/identity/internal/server/storage"
)

// TokenProvider mints, validates and revokes session tokens.
type TokenProvider interface {
	Issue(subject string) (string, error)
	Validate(tokenString string) (string, error)
	Revoke(ctx context.Context, tokenString string) error
}

// RegisterParams carries the fields of a registration request.
type RegisterParams struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthResult is returned on successful registration or authentication.
// It never carries the password hash.
type AuthResult struct {
	Token    string
	Username string
	Email    string
}

// Service implements the identity operations.
type Service struct {
	users  storage.UserStorage
	tokens TokenProvider
	logger *slog.Logger
}

// NewService creates a new identity service.
func NewService(users storage.UserStorage, tokens TokenProvider, logger *slog.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates an account and issues a session token for it.
// When both the username and the email collide, the username collision is
// reported: the username check runs first, and the store's insert maps its
// constraint violations in the same order.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*AuthResult, error) {
	if _, err := s.users.GetUserByUsername(ctx, p.Username); err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	if _, err := s.users.GetUserByEmail(ctx, p.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := crypto.HashPassword(p.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     p.Username,
		Email:        p.Email,
		PasswordHash: hash,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		CreatedAt:    time.Now(),
	}

	// The insert is the authority on uniqueness: a concurrent
	// registration that slipped past the checks above still loses here.
	if err := s.users.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, storage.ErrUsernameTaken):
			return nil, ErrDuplicateUsername
		case errors.Is(err, storage.ErrEmailTaken):
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	tokenString, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("username", user.Username),
		slog.String("user_id", user.ID))

	return &AuthResult{
		Token:    tokenString,
		Username: user.Username,
		Email:    user.Email,
	}, nil
}

// Authenticate verifies an identifier/password pair and issues a token.
// The identifier may be a username or an email; username match is tried
// first. Every failure mode is the same ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*AuthResult, error) {
	user, err := s.users.GetUserByUsername(ctx, identifier)
	if errors.Is(err, storage.ErrUserNotFound) {
		user, err = s.users.GetUserByEmail(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !crypto.VerifyPassword(password, user.PasswordHash) {
		s.logger.WarnContext(ctx, "authentication failed",
			slog.String("username", user.Username))
		return nil, ErrInvalidCredentials
	}

	tokenString, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "user authenticated",
		slog.String("username", user.Username))

	return &AuthResult{
		Token:    tokenString,
		Username: user.Username,
		Email:    user.Email,
	}, nil
}

// Logout revokes the presented token. Idempotent: revoking an
// already-revoked or already-expired token is not an error.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	if err := s.tokens.Revoke(ctx, tokenString); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// ResolveProfile validates the token and returns the bound account.
// Token failures propagate unchanged; a missing account is
// storage.ErrUserNotFound.
func (s *Service) ResolveProfile(ctx context.Context, tokenString string) (*models.User, error) {
	subject, err := s.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return s.Profile(ctx, subject)
}

// Profile returns the account for an already-resolved subject.
func (s *Service) Profile(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
