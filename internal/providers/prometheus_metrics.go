package providers

import (
	"context"
	"fmt"
	"math"
	"time"

	"sqldash/internal/domain"

	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
	"golang.org/x/sync/errgroup"
)

// Metric families exposed by the managed-database exporter.
const (
	metricDiskQuota      = "cloudsql_disk_quota_bytes"
	metricDiskUsed       = "cloudsql_disk_bytes_used"
	metricDiskUsedByType = "cloudsql_disk_bytes_used_by_data_type"
	metricDiskReadOps    = "cloudsql_disk_read_ops_count"
	metricDiskWriteOps   = "cloudsql_disk_write_ops_count"
	metricTransactions   = "cloudsql_pg_transaction_count"
	metricStatements     = "cloudsql_pg_statements_executed_count"
)

// targetSamples is the number of points a range query aims for. A
// one-hour window resolves to one sample per minute.
const targetSamples = 60

// GetInstanceMetrics fetches the requested metric families in parallel
// and assembles them into a single InstanceMetrics.
func (p *PrometheusProvider) GetInstanceMetrics(ctx context.Context, id string, kinds []domain.MetricKind, start, end time.Time) (*domain.InstanceMetrics, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("invalid time range: end %s is not after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	// Reject unknown kinds up front: once the errgroup is running there
	// is no safe early return, the goroutines write into metrics.
	for _, kind := range kinds {
		switch kind {
		case domain.MetricDisk, domain.MetricTransactions, domain.MetricStatements:
		default:
			return nil, fmt.Errorf("unknown metric kind %q", kind)
		}
	}

	step := stepFor(start, end)
	r := v1.Range{Start: start, End: end, Step: step}
	metrics := &domain.InstanceMetrics{
		Start: start,
		End:   end,
		Step:  step,
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, kind := range kinds {
		switch kind {
		case domain.MetricDisk:
			g.Go(func() error { return p.fetchDisk(ctx, id, r, metrics) })
		case domain.MetricTransactions:
			g.Go(func() error {
				series, err := p.fetchDatabaseCounters(ctx, id, metricTransactions, "transaction_type", r)
				if err != nil {
					return err
				}
				metrics.Transactions = series
				return nil
			})
		case domain.MetricStatements:
			g.Go(func() error {
				series, err := p.fetchDatabaseCounters(ctx, id, metricStatements, "operation_type", r)
				if err != nil {
					return err
				}
				metrics.Statements = series
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to get metrics for instance %s: %w", id, err)
	}

	return metrics, nil
}

// fetchDisk populates the disk fields of metrics. The per-type
// breakdown comes from the same round trip as a label-split matrix.
func (p *PrometheusProvider) fetchDisk(ctx context.Context, id string, r v1.Range, metrics *domain.InstanceMetrics) error {
	single := []struct {
		metric string
		dest   *domain.TimeSeries
	}{
		{metricDiskQuota, &metrics.DiskQuota},
		{metricDiskUsed, &metrics.DiskBytesUsed},
		{metricDiskReadOps, &metrics.DiskReadOps},
		{metricDiskWriteOps, &metrics.DiskWriteOps},
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, q := range single {
		g.Go(func() error {
			matrix, err := p.queryMatrix(ctx, instanceQuery(q.metric, id), r)
			if err != nil {
				return err
			}
			*q.dest = firstSeries(q.metric, matrix)
			return nil
		})
	}
	g.Go(func() error {
		matrix, err := p.queryMatrix(ctx, instanceQuery(metricDiskUsedByType, id), r)
		if err != nil {
			return err
		}
		byType := make(map[string]domain.TimeSeries, len(matrix))
		for _, stream := range matrix {
			dataType := string(stream.Metric["data_type"])
			byType[dataType] = toTimeSeries(dataType, stream)
		}
		metrics.DiskBytesUsedByType = byType
		return nil
	})

	return g.Wait()
}

// fetchDatabaseCounters fetches a per-database counter family split by
// kindLabel, e.g. transaction counts split by transaction_type.
func (p *PrometheusProvider) fetchDatabaseCounters(ctx context.Context, id, metric, kindLabel string, r v1.Range) ([]domain.DatabaseSeries, error) {
	matrix, err := p.queryMatrix(ctx, instanceQuery(metric, id), r)
	if err != nil {
		return nil, err
	}

	series := make([]domain.DatabaseSeries, 0, len(matrix))
	for _, stream := range matrix {
		db := string(stream.Metric["database"])
		kind := string(stream.Metric[model.LabelName(kindLabel)])
		ds := domain.DatabaseSeries{
			Database: db,
			Kind:     kind,
			Series:   toTimeSeries(db+"("+kind+")", stream),
		}
		series = append(series, ds)
	}
	return series, nil
}

func instanceQuery(metric, id string) string {
	return fmt.Sprintf(`%s{instance_id=%q}`, metric, id)
}

// stepFor picks a resolution that yields about targetSamples points,
// never finer than the exporter's scrape interval.
func stepFor(start, end time.Time) time.Duration {
	step := end.Sub(start) / targetSamples
	if step < time.Minute {
		step = time.Minute
	}
	return step.Round(time.Second)
}

// firstSeries converts the first stream of a matrix, or returns an
// empty named series when the instance reported no samples.
func firstSeries(name string, matrix model.Matrix) domain.TimeSeries {
	if len(matrix) == 0 {
		return domain.TimeSeries{Name: name}
	}
	return toTimeSeries(name, matrix[0])
}

// toTimeSeries converts a Prometheus sample stream. NaN samples mark
// gaps and map to absent points.
func toTimeSeries(name string, stream *model.SampleStream) domain.TimeSeries {
	points := make([]domain.Point, len(stream.Values))
	for i, pair := range stream.Values {
		point := domain.Point{Timestamp: pair.Timestamp.Time().UTC()}
		if !math.IsNaN(float64(pair.Value)) {
			v := float64(pair.Value)
			point.Value = &v
		}
		points[i] = point
	}
	return domain.TimeSeries{Name: name, Points: points}
}
