package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{name: "valid simple", username: "alice", wantErr: false},
		{name: "valid with digits", username: "alice42", wantErr: false},
		{name: "valid with underscore", username: "alice_dev", wantErr: false},
		{name: "valid minimum length", username: "abc", wantErr: false},
		{name: "valid maximum length", username: strings.Repeat("a", MaxUsernameLen), wantErr: false},
		{name: "empty", username: "", wantErr: true},
		{name: "too short", username: "ab", wantErr: true},
		{name: "too long", username: strings.Repeat("a", MaxUsernameLen+1), wantErr: true},
		{name: "with space", username: "alice smith", wantErr: true},
		{name: "with dash", username: "alice-smith", wantErr: true},
		{name: "with at sign", username: "alice@x", wantErr: true},
		{name: "cyrillic", username: "алиса", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "valid", email: "a@x.com", wantErr: false},
		{name: "valid subdomain", email: "alice@mail.example.org", wantErr: false},
		{name: "valid plus tag", email: "alice+tag@example.org", wantErr: false},
		{name: "empty", email: "", wantErr: true},
		{name: "missing at", email: "alice.example.org", wantErr: true},
		{name: "missing domain", email: "alice@", wantErr: true},
		{name: "display name form", email: "Alice <a@x.com>", wantErr: true},
		{name: "too long", email: strings.Repeat("a", MaxEmailLen) + "@x.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("long-enough-password"))
	assert.Error(t, ValidatePassword(""))
	assert.Error(t, ValidatePassword("short"))
}
