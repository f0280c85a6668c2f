package models

import "time"

// User is an account in the identity system.
type User struct {
	ID           string    `json:"id"`         // UUID, assigned at creation
	Username     string    `json:"username"`   // unique, case-sensitive, immutable
	Email        string    `json:"email"`      // unique, immutable
	PasswordHash string    `json:"-"`          // bcrypt hash, never serialized
	FirstName    string    `json:"first_name"` // optional display name
	LastName     string    `json:"last_name"`  // optional display name
	CreatedAt    time.Time `json:"created_at"` // set once at creation
}
