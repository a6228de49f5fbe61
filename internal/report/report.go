// Package report renders aligned text tables for instance summaries
// and writes them to the report output directory.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sqldash/internal/capacity"
	"sqldash/internal/domain"
	"sqldash/internal/series"
)

// Table is a set of rows under fixed column headers. Rows shorter than
// the header are padded with empty cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Render writes the table with columns padded to their widest cell and
// separated by " | ", with a dashed rule under the header.
func (t Table) Render(w io.Writer) error {
	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = len(col)
	}
	for _, row := range t.Rows {
		for i := range t.Columns {
			if i < len(row) && len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
	}

	formatRow := func(cells []string) string {
		parts := make([]string, len(t.Columns))
		for i := range t.Columns {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		return strings.Join(parts, " | ")
	}

	if _, err := fmt.Fprintln(w, formatRow(t.Columns)); err != nil {
		return err
	}

	rule := make([]string, len(t.Columns))
	for i, width := range widths {
		rule[i] = strings.Repeat("-", width)
	}
	if _, err := fmt.Fprintln(w, strings.Join(rule, " | ")); err != nil {
		return err
	}

	for _, row := range t.Rows {
		if _, err := fmt.Fprintln(w, formatRow(row)); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile renders the table to dir/filename, creating dir if needed,
// and returns the written path.
func WriteFile(dir, filename string, t Table) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("report: failed to create %s: %w", path, err)
	}

	if err := t.Render(f); err != nil {
		f.Close()
		return "", fmt.Errorf("report: failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("report: failed to write %s: %w", path, err)
	}
	return path, nil
}

// DiskBreakdown tabulates a usage breakdown in the given unit.
func DiskBreakdown(slices []series.Slice, unit series.Unit) Table {
	t := Table{Columns: []string{"Segment", fmt.Sprintf("Size (%s)", unit)}}
	for _, s := range slices {
		t.Rows = append(t.Rows, []string{s.Label, formatValue(s.Value)})
	}
	return t
}

// EnvelopeTable tabulates the performance ceilings of a configuration.
func EnvelopeTable(tier string, availability capacity.Availability, env capacity.Envelope) Table {
	return Table{
		Columns: []string{"Tier", "Availability", "Read IOPS", "Write IOPS", "Read MB/s", "Write MB/s"},
		Rows: [][]string{{
			tier,
			string(availability),
			strconv.Itoa(env.ReadIOPS),
			strconv.Itoa(env.WriteIOPS),
			strconv.Itoa(env.ReadThroughput),
			strconv.Itoa(env.WriteThroughput),
		}},
	}
}

// DatabaseTotals tabulates window totals per database counter series.
func DatabaseTotals(groups []domain.DatabaseSeries) Table {
	t := Table{Columns: []string{"Database", "Kind", "Total"}}
	for _, g := range groups {
		t.Rows = append(t.Rows, []string{g.Database, g.Kind, formatValue(g.Series.Sum())})
	}
	return t
}

// formatValue trims trailing zeros so integral counters print without
// a decimal tail while fractional sizes keep two digits.
func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
