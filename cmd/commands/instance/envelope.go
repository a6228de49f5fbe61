package instance

import (
	"sqldash/internal/capacity"
	"sqldash/internal/report"

	"github.com/spf13/cobra"
)

func EnvelopeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "envelope",
		Short: "Show the guaranteed disk performance envelope for a tier",
		Long: `Show the guaranteed IOPS and throughput ceilings for a machine tier
and availability mode.

Examples:
  sqldash instance envelope --tier db-custom-16-65536
  sqldash instance envelope --tier db-g1-small --availability REGIONAL
  sqldash instance envelope --tier db-custom-8-32768 -o json`,
		RunE:         runEnvelope,
		SilenceUsage: true,
		// The envelope is derived locally from the tier table and never
		// touches a backend, so skip backend resolution.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	}

	cmd.Flags().String("tier", "", "Machine tier identifier, e.g. db-custom-8-32768 (required)")
	cmd.MarkFlagRequired("tier")
	cmd.Flags().String("availability", string(capacity.Zonal), "Availability mode: ZONAL or REGIONAL")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runEnvelope(cmd *cobra.Command, args []string) error {
	tier, _ := cmd.Flags().GetString("tier")
	availability, _ := cmd.Flags().GetString("availability")

	mode, err := capacity.ParseAvailability(availability)
	if err != nil {
		return err
	}

	env, err := capacity.Lookup(tier, string(mode))
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "json" {
		return printJSON(cmd, env)
	}

	return report.EnvelopeTable(tier, mode, env).Render(cmd.OutOrStdout())
}
