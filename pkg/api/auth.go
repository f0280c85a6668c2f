package api

import "time"

// RegisterRequest is the body of POST /api/v1/auth/register.
type RegisterRequest struct {
	Username  string `json:"username"`             // unique account name
	Email     string `json:"email"`                // unique contact address
	Password  string `json:"password"`             // plaintext, hashed server-side
	FirstName string `json:"first_name,omitempty"` // optional display name
	LastName  string `json:"last_name,omitempty"`  // optional display name
}

// LoginRequest is the body of POST /api/v1/auth/login.
// Exactly one of identifier, username or email carries the login name;
// identifier wins when several are set. A username match is tried before
// an email match.
type LoginRequest struct {
	Identifier string `json:"identifier,omitempty"` // username or email
	Username   string `json:"username,omitempty"`   // username form
	Email      string `json:"email,omitempty"`      // email form
	Password   string `json:"password"`             // plaintext
}

// AuthResponse is returned on successful registration or login.
// It never carries the password hash.
type AuthResponse struct {
	Token    string `json:"token"`    // signed bearer token
	Username string `json:"username"` // account username
	Email    string `json:"email"`    // account email
}

// ProfileResponse is the public view of an account.
type ProfileResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorResponse is the error envelope for all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`             // HTTP status text
	Message string `json:"message,omitempty"` // human-readable detail
}
