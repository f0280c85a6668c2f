package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	clientapi "github.com/ivankarpov/identity/internal/client/api"
	"github.com/ivankarpov/identity/internal/client/session"
	"github.com/ivankarpov/identity/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIO feeds scripted answers to prompts and records output.
type fakeIO struct {
	inputs    []string
	passwords []string
	output    []string
}

func (f *fakeIO) Println(a ...any) {
	f.output = append(f.output, fmt.Sprintln(a...))
}

func (f *fakeIO) Printf(format string, a ...any) {
	f.output = append(f.output, fmt.Sprintf(format, a...))
}

func (f *fakeIO) ReadInput(prompt string) (string, error) {
	if len(f.inputs) == 0 {
		return "", fmt.Errorf("no input scripted for prompt %q", prompt)
	}
	v := f.inputs[0]
	f.inputs = f.inputs[1:]
	return v, nil
}

func (f *fakeIO) ReadPassword(prompt string) (string, error) {
	if len(f.passwords) == 0 {
		return "", fmt.Errorf("no password scripted for prompt %q", prompt)
	}
	v := f.passwords[0]
	f.passwords = f.passwords[1:]
	return v, nil
}

func (f *fakeIO) printed() string {
	var out string
	for _, s := range f.output {
		out += s
	}
	return out
}

func setupCli(t *testing.T, handler http.Handler, io *fakeIO) (*Cli, *session.Store) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store, err := session.Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return New(clientapi.NewClient(server.URL), store, io), store
}

func TestRunRegister(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/auth/register", r.URL.Path)

		var req api.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Username)
		assert.Equal(t, "alice@example.com", req.Email)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(api.AuthResponse{
			Token:    "token-1",
			Username: req.Username,
			Email:    req.Email,
		})
	})

	io := &fakeIO{
		inputs:    []string{"alice", "alice@example.com", "Alice", "Smith"},
		passwords: []string{"correct horse", "correct horse"},
	}
	c, store := setupCli(t, handler, io)

	require.NoError(t, c.RunRegister(context.Background()))

	sess, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", sess.Token)
	assert.Equal(t, "alice", sess.Username)
	assert.Contains(t, io.printed(), "Registered and logged in as alice")
}

func TestRunRegister_PasswordMismatch(t *testing.T) {
	io := &fakeIO{
		inputs:    []string{"alice", "alice@example.com", "", ""},
		passwords: []string{"correct horse", "wrong horse"},
	}
	c, store := setupCli(t, http.NotFoundHandler(), io)

	err := c.RunRegister(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "passwords do not match")

	_, err = store.Get(context.Background())
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)
}

func TestRunRegister_InvalidUsername(t *testing.T) {
	io := &fakeIO{inputs: []string{"a!"}}
	c, _ := setupCli(t, http.NotFoundHandler(), io)

	err := c.RunRegister(context.Background())
	require.Error(t, err)
}

func TestRunLogin(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/auth/login", r.URL.Path)

		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice@example.com", req.Identifier)

		_ = json.NewEncoder(w).Encode(api.AuthResponse{
			Token:    "token-2",
			Username: "alice",
			Email:    "alice@example.com",
		})
	})

	io := &fakeIO{
		inputs:    []string{"alice@example.com"},
		passwords: []string{"correct horse"},
	}
	c, store := setupCli(t, handler, io)

	require.NoError(t, c.RunLogin(context.Background()))

	sess, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-2", sess.Token)
}

func TestRunLogout(t *testing.T) {
	var revoked string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/auth/logout", r.URL.Path)
		revoked = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	})

	io := &fakeIO{}
	c, store := setupCli(t, handler, io)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &session.Session{Token: "token-3", Username: "alice"}))

	require.NoError(t, c.RunLogout(ctx))
	assert.Equal(t, "Bearer token-3", revoked)

	_, err := store.Get(ctx)
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)
}

func TestRunLogout_NotLoggedIn(t *testing.T) {
	io := &fakeIO{}
	c, _ := setupCli(t, http.NotFoundHandler(), io)

	require.NoError(t, c.RunLogout(context.Background()))
	assert.Contains(t, io.printed(), "Not logged in")
}

func TestRunLogout_ServerDown(t *testing.T) {
	io := &fakeIO{}
	store, err := session.Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	c := New(clientapi.NewClient("http://127.0.0.1:1"), store, io)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &session.Session{Token: "token", Username: "alice"}))

	// Local session is cleared even though revocation failed.
	require.NoError(t, c.RunLogout(ctx))
	_, err = store.Get(ctx)
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)
}

func TestRunWhoami(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/auth/profile", r.URL.Path)
		assert.Equal(t, "Bearer token-4", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(api.ProfileResponse{
			ID:       "user-1",
			Username: "alice",
			Email:    "alice@example.com",
		})
	})

	io := &fakeIO{}
	c, store := setupCli(t, handler, io)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &session.Session{Token: "token-4", Username: "alice"}))

	require.NoError(t, c.RunWhoami(ctx))
	assert.Contains(t, io.printed(), "alice@example.com")
}

func TestRunWhoami_NotLoggedIn(t *testing.T) {
	io := &fakeIO{}
	c, _ := setupCli(t, http.NotFoundHandler(), io)

	err := c.RunWhoami(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestRunProfile(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/auth/profile/bob", r.URL.Path)

		_ = json.NewEncoder(w).Encode(api.ProfileResponse{
			ID:       "user-2",
			Username: "bob",
			Email:    "bob@example.com",
		})
	})

	io := &fakeIO{}
	c, store := setupCli(t, handler, io)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &session.Session{Token: "token-5", Username: "alice"}))

	require.NoError(t, c.RunProfile(ctx, []string{"bob"}))
	assert.Contains(t, io.printed(), "bob@example.com")
}

func TestRunProfile_MissingArg(t *testing.T) {
	io := &fakeIO{}
	c, _ := setupCli(t, http.NotFoundHandler(), io)

	err := c.RunProfile(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage")
}
