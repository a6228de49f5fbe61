package auth

import (
	"errors"
	"fmt"
	"strings"

	"sqldash/internal/services/auth"

	"github.com/spf13/cobra"
)

func LogoutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout <backend>",
		Short: "Remove the stored API token for a backend",
		Long: `Remove the stored API token for a backend from the local keychain.

Example:
  sqldash auth logout prometheus`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend := strings.TrimSpace(args[0])

			store := auth.DefaultStore()
			if err := store.DeleteToken(backend); err != nil {
				if errors.Is(err, auth.ErrTokenNotFound) {
					fmt.Fprintf(cmd.OutOrStdout(), "No token stored for backend %s\n", backend)
					return nil
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed token for backend %s\n", backend)
			return nil
		},
		SilenceUsage: true,
	}

	return cmd
}
