package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sqldash/internal/cache"
	"sqldash/internal/config"
	"sqldash/internal/domain"
	"sqldash/internal/retry"
	"sqldash/internal/services/auth"
	"sqldash/internal/swrcache"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

const (
	// BackendName is the registry key of the Prometheus backend.
	BackendName = "prometheus"

	defaultPrometheusURL = "http://localhost:9090"
	requestTimeout       = 15 * time.Second
	instanceCacheTTL     = 10 * time.Minute
)

// instanceInfoMetric is the discovery gauge whose labels describe each
// scraped database instance.
const instanceInfoMetric = "cloudsql_instance_info"

// PrometheusProvider serves database instance metrics from a
// Prometheus server scraping a managed-database exporter.
type PrometheusProvider struct {
	api     v1.API
	url     string
	cache   *cache.Cache
	catalog *swrcache.Cache
}

// RegisterPrometheus wires the Prometheus backend into the registry.
// Called once from the CLI entry point.
func RegisterPrometheus() {
	Register(BackendName, func(store auth.Store) (domain.Provider, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}

		url := cfg.PrometheusURL
		if url == "" {
			url = defaultPrometheusURL
		}

		token, err := store.GetToken(BackendName)
		if err != nil && !errors.Is(err, auth.ErrTokenNotFound) {
			return nil, err
		}

		return NewPrometheusProvider(url, token, cache.NewDefault(), swrcache.NewDefault())
	})
}

// NewPrometheusProvider builds a backend against the given base URL.
// An empty token disables the Authorization header. Either cache may
// be nil to disable caching.
func NewPrometheusProvider(url, token string, c *cache.Cache, catalog *swrcache.Cache) (*PrometheusProvider, error) {
	var rt http.RoundTripper = api.DefaultRoundTripper
	if token != "" {
		rt = &bearerRoundTripper{token: token, next: rt}
	}

	client, err := api.NewClient(api.Config{Address: url, RoundTripper: rt})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client: %w", err)
	}

	return &PrometheusProvider{
		api:     v1.NewAPI(client),
		url:     url,
		cache:   c,
		catalog: catalog,
	}, nil
}

func (p *PrometheusProvider) GetDisplayName() string {
	return "Prometheus"
}

// ListInstances discovers instances from the info gauge's labels. The
// catalog is cached with stale-while-revalidate semantics so repeated
// listings stay fast.
func (p *PrometheusProvider) ListInstances(ctx context.Context) ([]domain.Instance, error) {
	return swrcache.GetOrFetch(p.catalog, ctx, "instances", func(ctx context.Context) ([]domain.Instance, error) {
		vector, err := p.queryVector(ctx, instanceInfoMetric)
		if err != nil {
			return nil, fmt.Errorf("failed to list instances: %w", err)
		}

		instances := make([]domain.Instance, 0, len(vector))
		for _, sample := range vector {
			instances = append(instances, toDomainInstance(sample.Metric))
		}
		return instances, nil
	})
}

// GetInstance returns a single instance descriptor by id.
func (p *PrometheusProvider) GetInstance(ctx context.Context, id string) (*domain.Instance, error) {
	cacheKey := "instance:" + id
	if p.cache != nil {
		var cached domain.Instance
		hit, err := p.cache.Get(cacheKey, instanceCacheTTL, &cached)
		if err == nil && hit {
			return &cached, nil
		}
	}

	query := fmt.Sprintf(`%s{instance_id=%q}`, instanceInfoMetric, id)
	vector, err := p.queryVector(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get instance %s: %w", id, err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("failed to get instance %s: %w", id, domain.ErrNotFound)
	}

	instance := toDomainInstance(vector[0].Metric)
	if p.cache != nil {
		_ = p.cache.Set(cacheKey, instance)
	}

	return &instance, nil
}

// queryVector runs an instant query with retries and returns the
// resulting vector.
func (p *PrometheusProvider) queryVector(ctx context.Context, query string) (model.Vector, error) {
	var result model.Value
	err := retry.Do(ctx, retry.DefaultConfig(), retry.IsRetryable, func() error {
		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		var apiErr error
		result, _, apiErr = p.api.Query(reqCtx, query, time.Now())
		return mapAPIError(apiErr)
	})
	if err != nil {
		return nil, err
	}

	vector, ok := result.(model.Vector)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %q for query %s", result.Type(), query)
	}
	return vector, nil
}

// queryMatrix runs a range query with retries and returns the
// resulting matrix.
func (p *PrometheusProvider) queryMatrix(ctx context.Context, query string, r v1.Range) (model.Matrix, error) {
	var result model.Value
	err := retry.Do(ctx, retry.DefaultConfig(), retry.IsRetryable, func() error {
		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		var apiErr error
		result, _, apiErr = p.api.QueryRange(reqCtx, query, r)
		return mapAPIError(apiErr)
	})
	if err != nil {
		return nil, err
	}

	matrix, ok := result.(model.Matrix)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %q for query %s", result.Type(), query)
	}
	return matrix, nil
}

// toDomainInstance maps info-gauge labels to a domain.Instance.
func toDomainInstance(metric model.Metric) domain.Instance {
	label := func(name string) string { return string(metric[model.LabelName(name)]) }

	id := label("instance_id")
	return domain.Instance{
		ID:              id,
		Name:            id,
		Project:         label("project"),
		Region:          label("region"),
		Status:          label("state"),
		DatabaseVersion: label("database_version"),
		Tier:            label("tier"),
		Availability:    label("availability"),
		Backend:         BackendName,
	}
}

// mapAPIError wraps Prometheus API errors with the domain sentinels so
// the CLI and retry predicate can classify them without importing the
// client.
func mapAPIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *v1.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Type {
		case v1.ErrTimeout, v1.ErrServer:
			return fmt.Errorf("%s: %w", apiErr.Msg, domain.ErrUnavailable)
		case v1.ErrClient:
			return fmt.Errorf("%s: %w", apiErr.Msg, classifyClientError(apiErr))
		}
	}
	return err
}

func classifyClientError(apiErr *v1.Error) error {
	// The v1 client folds HTTP status into the message; 401/403 and
	// 429 are the cases worth distinguishing for retry behavior.
	switch {
	case containsAny(apiErr.Msg, "401", "403", "Unauthorized", "Forbidden"):
		return domain.ErrUnauthorized
	case containsAny(apiErr.Msg, "429", "Too Many Requests"):
		return domain.ErrRateLimited
	default:
		return errors.New(apiErr.Msg)
	}
}

func containsAny(s string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

// bearerRoundTripper injects a bearer token into every request.
type bearerRoundTripper struct {
	token string
	next  http.RoundTripper
}

func (b *bearerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	cloned.Header.Set("Authorization", "Bearer "+b.token)
	return b.next.RoundTrip(cloned)
}
