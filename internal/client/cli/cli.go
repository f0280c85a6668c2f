package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/ivankarpov/identity/internal/client/api"
	"github.com/ivankarpov/identity/internal/client/iocli"
	"github.com/ivankarpov/identity/internal/client/session"
)

type Cli struct {
	apiClient *api.Client
	sessions  *session.Store
	io        iocli.IO
}

func New(apiClient *api.Client, sessions *session.Store, io iocli.IO) *Cli {
	return &Cli{
		apiClient: apiClient,
		sessions:  sessions,
		io:        io,
	}
}

// Run dispatches a command by name. Unknown commands print usage.
func (c *Cli) Run(ctx context.Context, command string, args []string) {
	var err error

	switch command {
	case "register":
		err = c.RunRegister(ctx)
	case "login":
		err = c.RunLogin(ctx)
	case "logout":
		err = c.RunLogout(ctx)
	case "whoami":
		err = c.RunWhoami(ctx)
	case "profile":
		err = c.RunProfile(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		PrintUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func PrintUsage() {
	fmt.Println(`Usage: identity-cli [flags] <command> [args]

Commands:
  register            Create a new account
  login               Authenticate by username or email
  logout              Revoke the current session token
  whoami              Show the profile of the logged-in user
  profile <username>  Show another user's profile

Flags:
  -server  Server URL (default http://localhost:8080)
  -db      Path to the local session database
  -version Show version information`)
}
