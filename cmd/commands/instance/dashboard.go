package instance

import (
	"errors"
	"fmt"

	"sqldash/internal/auditlog"
	"sqldash/internal/config"
	"sqldash/internal/domain"
	"sqldash/internal/providers"
	"sqldash/internal/series"
	"sqldash/internal/services/auth"
	"sqldash/internal/tui"

	"github.com/spf13/cobra"
)

func DashboardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive metrics dashboard",
		Long: `Open a full-screen dashboard with disk, I/O, transaction, and
statement panels for an instance.

When --id is omitted, an interactive picker lists the discovered
instances.

Keys: tab and arrows switch panels, 1-4 jump to a panel, u cycles the
byte unit, s toggles the 90% quota line, r refreshes, q quits.`,
		RunE:         runDashboard,
		SilenceUsage: true,
	}

	cmd.Flags().String("id", "", "Instance ID (prompts when omitted)")

	return cmd
}

func runDashboard(cmd *cobra.Command, args []string) error {
	backendName := cmd.Flag("backend").Value.String()

	provider, err := providers.Get(backendName, auth.DefaultStore())
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	unit := series.GiB
	if cfg.DefaultUnit != "" {
		unit = series.Unit(cfg.DefaultUnit)
	}

	id, _ := cmd.Flags().GetString("id")

	var instance *domain.Instance
	if id == "" {
		instance, err = tui.SelectInstanceForm(provider)
		if err != nil {
			if errors.Is(err, tui.ErrAborted) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			return err
		}
	} else {
		instance, err = provider.GetInstance(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to fetch instance %q: %w", id, err)
		}
	}

	cmd.SetContext(auditlog.WithMetadata(cmd.Context(), auditlog.Metadata{
		Backend:      backendName,
		InstanceID:   instance.ID,
		InstanceName: instance.Name,
	}))

	return tui.RunDashboard(provider, backendName, instance, unit)
}
