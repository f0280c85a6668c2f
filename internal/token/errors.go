package token

import "errors"

// Validation failures are distinguishable so callers can decide between
// re-login and plain rejection. All three are terminal.
var (
	// ErrMalformedToken indicates the token cannot be parsed or its
	// signature does not verify.
	ErrMalformedToken = errors.New("malformed token")

	// ErrExpiredToken indicates the token's expiry has passed.
	ErrExpiredToken = errors.New("token expired")

	// ErrRevokedToken indicates the token was explicitly revoked.
	ErrRevokedToken = errors.New("token revoked")
)
