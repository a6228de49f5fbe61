package domain

import (
	"sort"
	"time"
)

// MetricKind enumerates the metric families available from backends.
type MetricKind string

const (
	// MetricDisk covers disk quota, usage (total and by data type), and
	// read/write operation counts.
	MetricDisk MetricKind = "disk"
	// MetricTransactions covers per-database transaction counts.
	MetricTransactions MetricKind = "transactions"
	// MetricStatements covers per-database statement execution counts.
	MetricStatements MetricKind = "statements"
)

// Point is a single sample in a time series. A nil Value marks a
// sample the backend reported as absent.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     *float64  `json:"value"`
}

// TimeSeries is a named sequence of timestamped samples. Points are
// not guaranteed to arrive sorted by time; consumers that render along
// a time axis should call Sorted first.
type TimeSeries struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Timestamps returns the timestamp of every point, in point order.
func (ts TimeSeries) Timestamps() []time.Time {
	out := make([]time.Time, len(ts.Points))
	for i, p := range ts.Points {
		out[i] = p.Timestamp
	}
	return out
}

// Sorted returns a copy of the series with points in chronological
// order. The receiver is never modified.
func (ts TimeSeries) Sorted() TimeSeries {
	points := make([]Point, len(ts.Points))
	copy(points, ts.Points)
	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return TimeSeries{Name: ts.Name, Points: points}
}

// Sum returns the total of all present samples. Absent samples count
// as zero.
func (ts TimeSeries) Sum() float64 {
	total := 0.0
	for _, p := range ts.Points {
		if p.Value != nil {
			total += *p.Value
		}
	}
	return total
}

// Last returns the value of the final point in point order, or nil if
// the series is empty or ends in an absent sample.
func (ts TimeSeries) Last() *float64 {
	if len(ts.Points) == 0 {
		return nil
	}
	return ts.Points[len(ts.Points)-1].Value
}

// DatabaseSeries is a per-database counter series, keyed by the
// database name and the counter kind (e.g. "commit", "rollback" for
// transactions; "SELECT", "INSERT" for statements).
type DatabaseSeries struct {
	Database string     `json:"database"`
	Kind     string     `json:"kind"`
	Series   TimeSeries `json:"series"`
}

// Key returns the display identity of the series, e.g. "appdb(commit)".
func (ds DatabaseSeries) Key() string {
	return ds.Database + "(" + ds.Kind + ")"
}

// InstanceMetrics holds all metrics for an instance over a time range.
type InstanceMetrics struct {
	Start time.Time     `json:"start"`
	End   time.Time     `json:"end"`
	Step  time.Duration `json:"step"`

	DiskQuota     TimeSeries `json:"disk_quota"`
	DiskBytesUsed TimeSeries `json:"disk_bytes_used"`
	DiskReadOps   TimeSeries `json:"disk_read_ops"`
	DiskWriteOps  TimeSeries `json:"disk_write_ops"`

	// DiskBytesUsedByType splits DiskBytesUsed per data type
	// (e.g. "data", "wal", "tmp_data").
	DiskBytesUsedByType map[string]TimeSeries `json:"disk_bytes_used_by_type"`

	Transactions []DatabaseSeries `json:"transactions"`
	Statements   []DatabaseSeries `json:"statements"`
}
