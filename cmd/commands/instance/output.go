package instance

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"text/tabwriter"

	"sqldash/internal/domain"
	"sqldash/internal/series"
	"sqldash/internal/tui/components"

	"github.com/spf13/cobra"
)

// chartWidth is the fixed width of the sparkline charts printed under
// the metrics summary table.
const chartWidth = 72

// printJSON encodes a value as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// summaryRow is one line of the metrics summary table.
type summaryRow struct {
	name   string
	points []domain.Point
	suffix string
}

// summaryRows flattens instance metrics into named rows in a stable
// order: the disk series first, then per-type usage alphabetically,
// then the per-database counters in provider order.
func summaryRows(metrics *domain.InstanceMetrics) []summaryRow {
	rows := []summaryRow{
		{"disk.quota", metrics.DiskQuota.Points, "B"},
		{"disk.bytes_used", metrics.DiskBytesUsed.Points, "B"},
		{"disk.read_ops", metrics.DiskReadOps.Points, ""},
		{"disk.write_ops", metrics.DiskWriteOps.Points, ""},
	}

	var typed []string
	for name := range metrics.DiskBytesUsedByType {
		typed = append(typed, name)
	}
	sort.Strings(typed)
	for _, name := range typed {
		rows = append(rows, summaryRow{"disk.bytes_used." + name, metrics.DiskBytesUsedByType[name].Points, "B"})
	}

	for _, ds := range metrics.Transactions {
		rows = append(rows, summaryRow{"transactions." + ds.Key(), ds.Series.Points, ""})
	}
	for _, ds := range metrics.Statements {
		rows = append(rows, summaryRow{"statements." + ds.Key(), ds.Series.Points, ""})
	}

	return rows
}

// printMetricsSummary prints a table with per-series metric summaries.
func printMetricsSummary(cmd *cobra.Command, metrics *domain.InstanceMetrics) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)

	fmt.Fprintln(w, "METRIC\tCUR\tMIN\tMAX\tAVG")
	fmt.Fprintln(w, "------\t---\t---\t---\t---")

	for _, row := range summaryRows(metrics) {
		if len(row.points) == 0 {
			continue
		}

		cur, min, max, avg := computeStats(row.points)

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			row.name,
			formatMetric(cur, row.suffix),
			formatMetric(min, row.suffix),
			formatMetric(max, row.suffix),
			formatMetric(avg, row.suffix),
		)
	}

	w.Flush()

	fmt.Fprintf(cmd.OutOrStdout(), "\nTime range: %s to %s (step: %s)\n",
		metrics.Start.UTC().Format("2006-01-02 15:04 UTC"),
		metrics.End.UTC().Format("2006-01-02 15:04 UTC"),
		metrics.Step,
	)
}

// printMetricsCharts prints sparklines for disk usage and disk
// operations under the summary table.
func printMetricsCharts(cmd *cobra.Command, metrics *domain.InstanceMetrics) {
	out := cmd.OutOrStdout()

	if len(metrics.DiskBytesUsed.Points) > 0 {
		used := series.ConvertSeries(metrics.DiskBytesUsed.Sorted(), series.GiB)
		fmt.Fprintln(out)
		fmt.Fprintln(out, components.MetricsChart("Disk used (GiB)", used, chartWidth, ""))
	}

	read := presentValues(metrics.DiskReadOps)
	write := presentValues(metrics.DiskWriteOps)
	if len(read) > 0 || len(write) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, components.MetricsDualChart("Disk operations", read, write, "read", "write", chartWidth, ""))
	}
}

// presentValues returns a series' samples in chronological order with
// absent samples as zero.
func presentValues(ts domain.TimeSeries) []float64 {
	sorted := ts.Sorted()
	out := make([]float64, len(sorted.Points))
	for i, p := range sorted.Points {
		if p.Value != nil {
			out[i] = *p.Value
		}
	}
	return out
}

// computeStats returns cur (last present sample), min, max, and avg
// over the present samples of a series. Absent samples are skipped
// rather than counted as zero so a flaky scrape does not drag the
// average down.
func computeStats(points []domain.Point) (cur, min, max, avg float64) {
	sum := 0.0
	n := 0

	for _, p := range points {
		if p.Value == nil {
			continue
		}
		v := *p.Value
		if n == 0 {
			min, max = v, v
		}
		cur = v
		sum += v
		n++
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if n == 0 {
		return 0, 0, 0, 0
	}
	avg = sum / float64(n)
	return cur, min, max, avg
}

// formatMetric renders a value with a suffix using human-readable scaling.
func formatMetric(v float64, suffix string) string {
	switch {
	case v >= 1_000_000_000:
		return fmt.Sprintf("%.1fG%s", v/1_000_000_000, suffix)
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM%s", v/1_000_000, suffix)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK%s", v/1_000, suffix)
	case v == 0:
		return "0" + suffix
	case math.Abs(v) < 0.01:
		return fmt.Sprintf("%.3f%s", v, suffix)
	default:
		return fmt.Sprintf("%.1f%s", v, suffix)
	}
}
