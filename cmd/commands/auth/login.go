package auth

import (
	"fmt"
	"os"
	"strings"

	"sqldash/internal/services/auth"

	"golang.org/x/term"

	"github.com/spf13/cobra"
)

func LoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <backend>",
		Short: "Store an API token for a backend",
		Long: `Store an API token for a backend using the local keychain.

The token is sent as a bearer token on every metrics request.

Example:
  sqldash auth login prometheus`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			backend := strings.TrimSpace(args[0])
			if backend == "" {
				fmt.Fprintln(os.Stderr, "backend is required")
				return
			}

			token, err := cmd.Flags().GetString("token")
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return
			}

			token = strings.TrimSpace(token)
			if token == "" {
				fmt.Fprint(os.Stdout, "Enter API token: ")
				bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(os.Stdout)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					return
				}
				token = strings.TrimSpace(string(bytes))
			}

			if token == "" {
				fmt.Fprintln(os.Stderr, "token cannot be empty")
				return
			}

			store := auth.DefaultStore()
			if err := store.SetToken(backend, token); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return
			}

			fmt.Fprintf(os.Stdout, "Saved token for backend %s\n", backend)
		},
	}

	cmd.Flags().String("token", "", "API token (optional, overrides prompt)")

	return cmd
}
