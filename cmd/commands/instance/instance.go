package instance

import (
	"fmt"

	"sqldash/internal/config"

	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instance",
		Short: "Inspect managed database instances",
		Long: `List database instances discovered through a metrics backend and
view their disk, transaction, and statement metrics.`,
		PersistentPreRunE: resolveBackend,
	}

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(EnvelopeCommand())
	cmd.AddCommand(MetricsCommand())
	cmd.AddCommand(DashboardCommand())
	cmd.AddCommand(ReportCommand())

	cmd.PersistentFlags().String("backend", "", "Metrics backend to use (overrides default)")

	return cmd
}

// resolveBackend ensures the --backend flag has a value, falling back to the
// configured default when the flag was not explicitly passed.
func resolveBackend(cmd *cobra.Command, args []string) error {
	if cmd.Flag("backend").Changed {
		return nil // explicitly provided -- nothing to do
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.DefaultBackend != "" {
		cmd.Flag("backend").Value.Set(cfg.DefaultBackend)
		return nil
	}

	return fmt.Errorf("no backend specified: use --backend flag or set a default with 'sqldash config set default-backend <name>'")
}
