package instance

import (
	"fmt"
	"time"

	"sqldash/internal/auditlog"
	"sqldash/internal/domain"
	"sqldash/internal/providers"
	"sqldash/internal/services/auth"
	"sqldash/internal/util"

	"github.com/spf13/cobra"
)

// allMetricKinds is what every fetch requests: the panels and tables
// always render the full set.
var allMetricKinds = []domain.MetricKind{
	domain.MetricDisk,
	domain.MetricTransactions,
	domain.MetricStatements,
}

func MetricsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show instance metrics",
		Long: `Display disk, transaction, and statement metrics for an instance.

Fetches metrics from the last hour by default and prints a summary with
current, minimum, maximum, and average values for each time series,
followed by compact sparkline charts.

Time flags take UTC timestamps at minute precision.

Examples:
  # Table output (default)
  sqldash instance metrics --backend prometheus --id orders-prod

  # Explicit window
  sqldash instance metrics --id orders-prod --start 2026-01-29T09:00 --end 2026-01-29T10:00

  # JSON output for scripting
  sqldash instance metrics --id orders-prod -o json`,
		RunE:         runInstanceMetrics,
		SilenceUsage: true,
	}

	cmd.Flags().String("id", "", "Instance ID (required)")
	cmd.MarkFlagRequired("id")
	cmd.Flags().String("start", "", "Window start (UTC, YYYY-MM-DDTHH:MM); defaults to one hour before end")
	cmd.Flags().String("end", "", "Window end (UTC, YYYY-MM-DDTHH:MM); defaults to now")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runInstanceMetrics(cmd *cobra.Command, args []string) error {
	backendName := cmd.Flag("backend").Value.String()

	provider, err := providers.Get(backendName, auth.DefaultStore())
	if err != nil {
		return err
	}

	id, _ := cmd.Flags().GetString("id")
	if err := util.ValidateInstanceID(id); err != nil {
		return err
	}

	start, end, err := resolveWindow(cmd)
	if err != nil {
		return err
	}

	cmd.SetContext(auditlog.WithMetadata(cmd.Context(), auditlog.Metadata{
		Backend:    backendName,
		InstanceID: id,
	}))

	metrics, err := provider.GetInstanceMetrics(cmd.Context(), id, allMetricKinds, start, end)
	if err != nil {
		return fmt.Errorf("failed to fetch metrics: %w", err)
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "json" {
		return printJSON(cmd, metrics)
	}

	printMetricsSummary(cmd, metrics)
	printMetricsCharts(cmd, metrics)
	return nil
}

// resolveWindow turns the --start/--end flags into a concrete window.
// Both are optional: end defaults to now truncated to the minute the
// backends sample at, start to one hour before end.
func resolveWindow(cmd *cobra.Command) (time.Time, time.Time, error) {
	startRaw, _ := cmd.Flags().GetString("start")
	endRaw, _ := cmd.Flags().GetString("end")

	start, err := util.ParseUTCMinute(startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := util.ParseUTCMinute(endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if end.IsZero() {
		end = time.Now().UTC().Truncate(time.Minute)
	}
	if start.IsZero() {
		start = end.Add(-time.Hour)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("window end %s is not after start %s",
			end.Format("2006-01-02T15:04"), start.Format("2006-01-02T15:04"))
	}

	return start, end, nil
}
