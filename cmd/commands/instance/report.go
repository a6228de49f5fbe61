package instance

import (
	"fmt"

	"sqldash/internal/auditlog"
	"sqldash/internal/capacity"
	"sqldash/internal/config"
	"sqldash/internal/providers"
	"sqldash/internal/report"
	"sqldash/internal/series"
	"sqldash/internal/services/auth"
	"sqldash/internal/util"

	"github.com/spf13/cobra"
)

func ReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write report tables for an instance",
		Long: `Write text report tables for an instance: the current disk usage
breakdown, the guaranteed performance envelope of its tier, and the
window totals per database counter.

Files are written to the configured output directory (current directory
by default) as <instance-id>_<table>.txt.

Examples:
  sqldash instance report --id orders-prod
  sqldash instance report --id orders-prod --start 2026-01-29T09:00 --end 2026-01-29T10:00
  sqldash instance report --id orders-prod --unit MiB`,
		RunE:         runReport,
		SilenceUsage: true,
	}

	cmd.Flags().String("id", "", "Instance ID (required)")
	cmd.MarkFlagRequired("id")
	cmd.Flags().String("start", "", "Window start (UTC, YYYY-MM-DDTHH:MM); defaults to one hour before end")
	cmd.Flags().String("end", "", "Window end (UTC, YYYY-MM-DDTHH:MM); defaults to now")
	cmd.Flags().String("unit", "", "Byte unit for the disk breakdown: B, MiB, or GiB (default from config)")

	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	backendName := cmd.Flag("backend").Value.String()

	provider, err := providers.Get(backendName, auth.DefaultStore())
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = "."
	}

	unit := series.GiB
	if cfg.DefaultUnit != "" {
		unit = series.Unit(cfg.DefaultUnit)
	}
	if flagUnit, _ := cmd.Flags().GetString("unit"); flagUnit != "" {
		unit = series.Unit(flagUnit)
	}

	id, _ := cmd.Flags().GetString("id")
	if err := util.ValidateInstanceID(id); err != nil {
		return err
	}

	start, end, err := resolveWindow(cmd)
	if err != nil {
		return err
	}

	instance, err := provider.GetInstance(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to fetch instance %q: %w", id, err)
	}

	cmd.SetContext(auditlog.WithMetadata(cmd.Context(), auditlog.Metadata{
		Backend:      backendName,
		InstanceID:   instance.ID,
		InstanceName: instance.Name,
	}))

	metrics, err := provider.GetInstanceMetrics(cmd.Context(), instance.ID, allMetricKinds, start, end)
	if err != nil {
		return fmt.Errorf("failed to fetch metrics: %w", err)
	}

	var written []string
	write := func(suffix string, t report.Table) error {
		path, err := report.WriteFile(outputDir, instance.ID+"_"+suffix+".txt", t)
		if err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	usages := make(map[string]*float64, len(metrics.DiskBytesUsedByType))
	for name, ts := range metrics.DiskBytesUsedByType {
		usages[name] = ts.Sorted().Last()
	}
	breakdown := series.Breakdown(metrics.DiskQuota.Sorted().Last(), usages, unit)
	if err := write("disk_breakdown", report.DiskBreakdown(breakdown, unit)); err != nil {
		return err
	}

	// An unknown tier or availability skips the envelope table instead
	// of failing the whole report.
	env, envErr := capacity.Lookup(instance.Tier, instance.Availability)
	if envErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Skipping envelope table: %v\n", envErr)
	} else {
		mode, _ := capacity.ParseAvailability(instance.Availability)
		if err := write("envelope", report.EnvelopeTable(instance.Tier, mode, env)); err != nil {
			return err
		}
	}

	if len(metrics.Transactions) > 0 {
		if err := write("transactions", report.DatabaseTotals(metrics.Transactions)); err != nil {
			return err
		}
	}
	if len(metrics.Statements) > 0 {
		if err := write("statements", report.DatabaseTotals(metrics.Statements)); err != nil {
			return err
		}
	}

	for _, path := range written {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	}
	return nil
}
