package domain

import (
	"context"
	"time"
)

// Provider is a metrics backend capable of discovering database
// instances and fetching their time-series metrics.
type Provider interface {
	GetDisplayName() string
	ListInstances(ctx context.Context) ([]Instance, error)
	GetInstance(ctx context.Context, id string) (*Instance, error)

	// GetInstanceMetrics fetches the requested metric families for an
	// instance over [start, end]. Backends choose a step that yields
	// roughly one sample per minute of a one-hour window.
	GetInstanceMetrics(ctx context.Context, id string, kinds []MetricKind, start, end time.Time) (*InstanceMetrics, error)
}
