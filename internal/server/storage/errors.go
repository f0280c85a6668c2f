package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that no account matched the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken indicates an account with this username exists.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailTaken indicates an account with this email exists.
	ErrEmailTaken = errors.New("email already taken")
)
