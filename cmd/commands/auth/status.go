package auth

import (
	"errors"
	"fmt"
	"sort"

	"sqldash/internal/providers"
	"sqldash/internal/services/auth"

	"github.com/spf13/cobra"
)

func StatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show authentication status for backends",
		Long: `Show which backends have stored API tokens.

Example:
  sqldash auth status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := auth.DefaultStore()
			backends := providers.List()
			sort.Strings(backends)

			if len(backends) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No backends registered.")
				return nil
			}

			for _, backend := range backends {
				_, err := store.GetToken(backend)
				switch {
				case err == nil:
					fmt.Fprintf(cmd.OutOrStdout(), "%s: logged in\n", backend)
				case errors.Is(err, auth.ErrTokenNotFound):
					fmt.Fprintf(cmd.OutOrStdout(), "%s: not logged in\n", backend)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "%s: error (%v)\n", backend, err)
				}
			}
			return nil
		},
		SilenceUsage: true,
	}

	return cmd
}
