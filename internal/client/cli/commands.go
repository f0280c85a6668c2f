package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ivankarpov/identity/internal/client/session"
	"github.com/ivankarpov/identity/internal/validation"
	"github.com/ivankarpov/identity/pkg/api"
)

// RunRegister prompts for account details, creates the account and
// stores the returned session token.
func (c *Cli) RunRegister(ctx context.Context) error {
	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}
	if err := validation.ValidateUsername(username); err != nil {
		return err
	}

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}

	firstName, err := c.io.ReadInput("First name (optional): ")
	if err != nil {
		return fmt.Errorf("failed to read first name: %w", err)
	}
	lastName, err := c.io.ReadInput("Last name (optional): ")
	if err != nil {
		return fmt.Errorf("failed to read last name: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return err
	}

	confirm, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read password confirmation: %w", err)
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	resp, err := c.apiClient.Register(ctx, api.RegisterRequest{
		Username:  username,
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
	})
	if err != nil {
		return err
	}

	if err := c.saveSession(ctx, resp); err != nil {
		return err
	}

	c.io.Printf("Registered and logged in as %s\n", resp.Username)
	return nil
}

// RunLogin authenticates by username or email and stores the token.
func (c *Cli) RunLogin(ctx context.Context) error {
	identifier, err := c.io.ReadInput("Username or email: ")
	if err != nil {
		return fmt.Errorf("failed to read identifier: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	resp, err := c.apiClient.Login(ctx, api.LoginRequest{
		Identifier: identifier,
		Password:   password,
	})
	if err != nil {
		return err
	}

	if err := c.saveSession(ctx, resp); err != nil {
		return err
	}

	c.io.Printf("Logged in as %s\n", resp.Username)
	return nil
}

// RunLogout revokes the stored token and clears the local session.
// The local session is cleared even when the server call fails, so a
// dead server cannot leave the client stuck logged in.
func (c *Cli) RunLogout(ctx context.Context) error {
	sess, err := c.sessions.Get(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNotLoggedIn) {
			c.io.Println("Not logged in")
			return nil
		}
		return err
	}

	revokeErr := c.apiClient.Logout(ctx, sess.Token)

	if err := c.sessions.Delete(ctx); err != nil && !errors.Is(err, session.ErrNotLoggedIn) {
		return err
	}

	if revokeErr != nil {
		c.io.Println("Logged out locally; server revocation failed:", revokeErr)
		return nil
	}

	c.io.Println("Logged out")
	return nil
}

// RunWhoami shows the profile of the current session's owner.
func (c *Cli) RunWhoami(ctx context.Context) error {
	sess, err := c.sessions.Get(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNotLoggedIn) {
			return fmt.Errorf("not logged in")
		}
		return err
	}

	profile, err := c.apiClient.Profile(ctx, sess.Token)
	if err != nil {
		return err
	}

	c.printProfile(profile)
	return nil
}

// RunProfile shows another user's profile by username.
func (c *Cli) RunProfile(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: profile <username>")
	}
	username := args[0]

	sess, err := c.sessions.Get(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNotLoggedIn) {
			return fmt.Errorf("not logged in")
		}
		return err
	}

	profile, err := c.apiClient.ProfileByUsername(ctx, sess.Token, username)
	if err != nil {
		return err
	}

	c.printProfile(profile)
	return nil
}

func (c *Cli) saveSession(ctx context.Context, resp *api.AuthResponse) error {
	err := c.sessions.Save(ctx, &session.Session{
		Token:     resp.Token,
		Username:  resp.Username,
		Email:     resp.Email,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (c *Cli) printProfile(p *api.ProfileResponse) {
	c.io.Printf("Username:   %s\n", p.Username)
	c.io.Printf("Email:      %s\n", p.Email)
	if p.FirstName != "" || p.LastName != "" {
		c.io.Printf("Name:       %s %s\n", p.FirstName, p.LastName)
	}
	if !p.CreatedAt.IsZero() {
		c.io.Printf("Registered: %s\n", p.CreatedAt.Format(time.RFC3339))
	}
}
