package identity

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivankarpov/identity/internal/models"
	"github.com/ivankarpov/identity/internal/server/storage"
	"github.com/ivankarpov/identity/internal/token"
)

// mockUserStorage is a mock implementation of storage.UserStorage for testing
type mockUserStorage struct {
	users    map[string]*models.User // username -> User
	getError error
}

func newMockUserStorage() *mockUserStorage {
	return &mockUserStorage{users: make(map[string]*models.User)}
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	if _, exists := m.users[user.Username]; exists {
		return storage.ErrUsernameTaken
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return storage.ErrEmailTaken
		}
	}
	m.users[user.Username] = user
	return nil
}

func (m *mockUserStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	user, ok := m.users[username]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func newTestService(t *testing.T) (*Service, *mockUserStorage, *token.Service) {
	t.Helper()

	tokens, err := token.NewService(context.Background(), "test-secret", time.Hour, nil, nil)
	require.NoError(t, err)
	t.Cleanup(tokens.Stop)

	users := newMockUserStorage()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewService(users, tokens, logger), users, tokens
}

func registerAlice(t *testing.T, svc *Service) *AuthResult {
	t.Helper()
	result, err := svc.Register(context.Background(), RegisterParams{
		Username:  "alice",
		Email:     "a@x.com",
		Password:  "secret1",
		FirstName: "Alice",
		LastName:  "Smith",
	})
	require.NoError(t, err)
	return result
}

func TestRegister(t *testing.T) {
	svc, users, tokens := newTestService(t)

	result := registerAlice(t, svc)

	assert.Equal(t, "alice", result.Username)
	assert.Equal(t, "a@x.com", result.Email)
	require.NotEmpty(t, result.Token)

	// The returned token is bound to the new username.
	subject, err := tokens.Validate(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)

	// The stored hash is populated and never the plaintext.
	stored := users.users["alice"]
	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _, _ := newTestService(t)
	registerAlice(t, svc)

	_, err := svc.Register(context.Background(), RegisterParams{
		Username: "alice",
		Email:    "b@y.com",
		Password: "secret2",
	})
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	registerAlice(t, svc)

	_, err := svc.Register(context.Background(), RegisterParams{
		Username: "bob",
		Email:    "a@x.com",
		Password: "secret2",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegister_UsernameCollisionWinsOverEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	registerAlice(t, svc)

	// Both collide: the username error takes precedence.
	_, err := svc.Register(context.Background(), RegisterParams{
		Username: "alice",
		Email:    "a@x.com",
		Password: "secret2",
	})
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestRegister_EmptyPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterParams{
		Username: "alice",
		Email:    "a@x.com",
		Password: "",
	})
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	svc, _, tokens := newTestService(t)
	registered := registerAlice(t, svc)

	result, err := svc.Authenticate(context.Background(), "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", result.Username)
	assert.Equal(t, "a@x.com", result.Email)

	// A fresh token, distinct from the registration token.
	assert.NotEqual(t, registered.Token, result.Token)
	subject, err := tokens.Validate(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestAuthenticate_ByEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	registerAlice(t, svc)

	result, err := svc.Authenticate(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", result.Username)
}

func TestAuthenticate_InvalidCredentials(t *testing.T) {
	svc, _, _ := newTestService(t)
	registerAlice(t, svc)

	tests := []struct {
		name       string
		identifier string
		password   string
	}{
		{name: "wrong password", identifier: "alice", password: "wrongpass"},
		{name: "unknown username", identifier: "bob", password: "secret1"},
		{name: "unknown email", identifier: "b@y.com", password: "secret1"},
		{name: "empty password", identifier: "alice", password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(context.Background(), tt.identifier, tt.password)
			// Always the same undifferentiated error.
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestLogout(t *testing.T) {
	svc, _, _ := newTestService(t)
	result := registerAlice(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.Logout(ctx, result.Token))

	// The revoked token no longer resolves a profile.
	_, err := svc.ResolveProfile(ctx, result.Token)
	assert.ErrorIs(t, err, token.ErrRevokedToken)

	// Logout is idempotent.
	require.NoError(t, svc.Logout(ctx, result.Token))
	require.NoError(t, svc.Logout(ctx, "not.a.jwt"))
}

func TestResolveProfile(t *testing.T) {
	svc, _, _ := newTestService(t)
	result := registerAlice(t, svc)

	user, err := svc.ResolveProfile(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "Alice", user.FirstName)
}

func TestResolveProfile_MalformedToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ResolveProfile(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, token.ErrMalformedToken)
}

func TestProfile_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Profile(context.Background(), "ghost")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}
