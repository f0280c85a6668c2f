package identity

import "errors"

var (
	// ErrDuplicateUsername indicates registration with a taken username.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrDuplicateEmail indicates registration with a taken email.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrInvalidCredentials indicates an authentication failure. It is
	// deliberately a single kind: callers cannot tell whether the
	// identifier or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
