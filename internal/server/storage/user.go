package storage

import (
	"context"

	"github.com/ivankarpov/identity/internal/models"
)

// UserStorage defines interface for account persistence.
type UserStorage interface {
	// CreateUser inserts a new account. The insert is atomic with respect
	// to the uniqueness constraints: it returns ErrUsernameTaken or
	// ErrEmailTaken instead of ever storing a duplicate.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername retrieves an account by username.
	// Returns ErrUserNotFound if no account matches.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByEmail retrieves an account by email.
	// Returns ErrUserNotFound if no account matches.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves an account by ID.
	// Returns ErrUserNotFound if no account matches.
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}
