package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"sqldash/internal/domain"
	"sqldash/internal/services/auth"
)

// newTestPrometheusProvider creates a provider pointed at the given base
// URL with caching disabled.
func newTestPrometheusProvider(t *testing.T, baseURL, token string) *PrometheusProvider {
	t.Helper()
	p, err := NewPrometheusProvider(baseURL, token, nil, nil)
	if err != nil {
		t.Fatalf("NewPrometheusProvider: %v", err)
	}
	return p
}

// newPromAPI spins up an httptest.Server that answers every query with
// the given raw Prometheus API body. The server is closed when the test
// finishes.
func newPromAPI(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func vectorBody(results ...string) string {
	return fmt.Sprintf(`{"status":"success","data":{"resultType":"vector","result":[%s]}}`,
		strings.Join(results, ","))
}

func matrixBody(results ...string) string {
	return fmt.Sprintf(`{"status":"success","data":{"resultType":"matrix","result":[%s]}}`,
		strings.Join(results, ","))
}

func TestListInstances_HappyPath(t *testing.T) {
	body := vectorBody(
		`{"metric":{"__name__":"cloudsql_instance_info","instance_id":"orders-prod","project":"acme-prod","region":"us-central1","state":"RUNNABLE","database_version":"POSTGRES_16","tier":"db-custom-8-32768","availability":"REGIONAL"},"value":[1755000000,"1"]}`,
		`{"metric":{"__name__":"cloudsql_instance_info","instance_id":"analytics-dev","project":"acme-dev","region":"europe-west1","state":"STOPPED","database_version":"POSTGRES_15","tier":"db-f1-micro","availability":"ZONAL"},"value":[1755000000,"1"]}`,
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/query" {
			t.Errorf("expected path /api/v1/query, got %s", r.URL.Path)
		}
		if got := r.FormValue("query"); got != "cloudsql_instance_info" {
			t.Errorf("query = %q, want %q", got, "cloudsql_instance_info")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	provider := newTestPrometheusProvider(t, srv.URL, "")
	instances, err := provider.ListInstances(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(instances))
	}

	want := domain.Instance{
		ID:              "orders-prod",
		Name:            "orders-prod",
		Project:         "acme-prod",
		Region:          "us-central1",
		Status:          "RUNNABLE",
		DatabaseVersion: "POSTGRES_16",
		Tier:            "db-custom-8-32768",
		Availability:    "REGIONAL",
		Backend:         "prometheus",
	}
	if diff := cmp.Diff(want, instances[0]); diff != "" {
		t.Errorf("instance[0] mismatch (-want +got):\n%s", diff)
	}
	if instances[1].Tier != "db-f1-micro" {
		t.Errorf("instance[1].Tier = %q, want db-f1-micro", instances[1].Tier)
	}
}

func TestListInstances_BearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer test-token")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, vectorBody())
	}))
	t.Cleanup(srv.Close)

	provider := newTestPrometheusProvider(t, srv.URL, "test-token")
	if _, err := provider.ListInstances(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestGetInstance_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.FormValue("query"); !strings.Contains(got, `instance_id="orders-prod"`) {
			t.Errorf("query %q missing instance matcher", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, vectorBody(
			`{"metric":{"instance_id":"orders-prod","project":"acme-prod","region":"us-central1","state":"RUNNABLE","database_version":"POSTGRES_16","tier":"db-custom-16-65536","availability":"ZONAL"},"value":[1755000000,"1"]}`,
		))
	}))
	t.Cleanup(srv.Close)

	provider := newTestPrometheusProvider(t, srv.URL, "")
	instance, err := provider.GetInstance(context.Background(), "orders-prod")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if instance.Tier != "db-custom-16-65536" {
		t.Errorf("Tier = %q, want db-custom-16-65536", instance.Tier)
	}
}

func TestGetInstance_NotFound(t *testing.T) {
	srv := newPromAPI(t, vectorBody())

	provider := newTestPrometheusProvider(t, srv.URL, "")
	_, err := provider.GetInstance(context.Background(), "no-such-instance")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetInstance_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"status":"error","errorType":"client_error","error":"Unauthorized"}`)
	}))
	t.Cleanup(srv.Close)

	provider := newTestPrometheusProvider(t, srv.URL, "bad-token")
	_, err := provider.GetInstance(context.Background(), "orders-prod")
	if err == nil {
		t.Fatal("expected error for 401 response, got nil")
	}
}

func TestGetInstanceMetrics_Disk(t *testing.T) {
	start := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/query_range" {
			t.Errorf("expected path /api/v1/query_range, got %s", r.URL.Path)
		}
		query := r.FormValue("query")
		if !strings.Contains(query, `instance_id="orders-prod"`) {
			t.Errorf("query %q missing instance matcher", query)
		}

		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(query, "cloudsql_disk_quota_bytes"):
			fmt.Fprint(w, matrixBody(`{"metric":{},"values":[[1755684000,"107374182400"],[1755684060,"107374182400"]]}`))
		case strings.HasPrefix(query, "cloudsql_disk_bytes_used_by_data_type"):
			fmt.Fprint(w, matrixBody(
				`{"metric":{"data_type":"data"},"values":[[1755684000,"52000000000"]]}`,
				`{"metric":{"data_type":"wal"},"values":[[1755684000,"3000000000"]]}`,
			))
		case strings.HasPrefix(query, "cloudsql_disk_bytes_used"):
			fmt.Fprint(w, matrixBody(`{"metric":{},"values":[[1755684000,"55000000000"],[1755684060,"NaN"]]}`))
		case strings.HasPrefix(query, "cloudsql_disk_read_ops_count"):
			fmt.Fprint(w, matrixBody(`{"metric":{},"values":[[1755684000,"120"]]}`))
		case strings.HasPrefix(query, "cloudsql_disk_write_ops_count"):
			fmt.Fprint(w, matrixBody(`{"metric":{},"values":[[1755684000,"45"]]}`))
		default:
			t.Errorf("unexpected query %q", query)
			fmt.Fprint(w, matrixBody())
		}
	}))
	t.Cleanup(srv.Close)

	provider := newTestPrometheusProvider(t, srv.URL, "")
	metrics, err := provider.GetInstanceMetrics(context.Background(), "orders-prod", []domain.MetricKind{domain.MetricDisk}, start, end)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if metrics.Step != time.Minute {
		t.Errorf("Step = %v, want 1m for a one-hour window", metrics.Step)
	}
	if len(metrics.DiskQuota.Points) != 2 {
		t.Fatalf("DiskQuota points = %d, want 2", len(metrics.DiskQuota.Points))
	}
	if got := *metrics.DiskQuota.Points[0].Value; got != 107374182400 {
		t.Errorf("DiskQuota[0] = %v, want 107374182400", got)
	}
	if got := metrics.DiskQuota.Points[0].Timestamp; !got.Equal(time.Unix(1755684000, 0)) {
		t.Errorf("DiskQuota[0].Timestamp = %v, want %v", got, time.Unix(1755684000, 0).UTC())
	}

	// NaN samples come back as absent points.
	if len(metrics.DiskBytesUsed.Points) != 2 {
		t.Fatalf("DiskBytesUsed points = %d, want 2", len(metrics.DiskBytesUsed.Points))
	}
	if metrics.DiskBytesUsed.Points[1].Value != nil {
		t.Errorf("DiskBytesUsed[1].Value = %v, want nil", *metrics.DiskBytesUsed.Points[1].Value)
	}

	if len(metrics.DiskBytesUsedByType) != 2 {
		t.Fatalf("DiskBytesUsedByType = %d entries, want 2", len(metrics.DiskBytesUsedByType))
	}
	wal, ok := metrics.DiskBytesUsedByType["wal"]
	if !ok {
		t.Fatal("missing wal breakdown series")
	}
	if got := *wal.Points[0].Value; got != 3000000000 {
		t.Errorf("wal[0] = %v, want 3000000000", got)
	}

	if metrics.Transactions != nil {
		t.Errorf("Transactions fetched without being requested: %v", metrics.Transactions)
	}
}

func TestGetInstanceMetrics_Transactions(t *testing.T) {
	start := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	srv := newPromAPI(t, matrixBody(
		`{"metric":{"database":"appdb","transaction_type":"commit"},"values":[[1755684000,"310"],[1755684060,"290"]]}`,
		`{"metric":{"database":"appdb","transaction_type":"rollback"},"values":[[1755684000,"2"],[1755684060,"0"]]}`,
	))

	provider := newTestPrometheusProvider(t, srv.URL, "")
	metrics, err := provider.GetInstanceMetrics(context.Background(), "orders-prod", []domain.MetricKind{domain.MetricTransactions}, start, end)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(metrics.Transactions) != 2 {
		t.Fatalf("Transactions = %d series, want 2", len(metrics.Transactions))
	}
	if got := metrics.Transactions[0].Key(); got != "appdb(commit)" {
		t.Errorf("Key() = %q, want appdb(commit)", got)
	}
	if got := metrics.Transactions[1].Series.Sum(); got != 2 {
		t.Errorf("rollback Sum() = %v, want 2", got)
	}
}

func TestGetInstanceMetrics_Statements(t *testing.T) {
	start := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	srv := newPromAPI(t, matrixBody(
		`{"metric":{"database":"appdb","operation_type":"SELECT"},"values":[[1755684000,"9000"]]}`,
	))

	provider := newTestPrometheusProvider(t, srv.URL, "")
	metrics, err := provider.GetInstanceMetrics(context.Background(), "orders-prod", []domain.MetricKind{domain.MetricStatements}, start, end)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(metrics.Statements) != 1 {
		t.Fatalf("Statements = %d series, want 1", len(metrics.Statements))
	}
	if got := metrics.Statements[0].Kind; got != "SELECT" {
		t.Errorf("Kind = %q, want SELECT", got)
	}
}

func TestGetInstanceMetrics_InvalidRange(t *testing.T) {
	provider := newTestPrometheusProvider(t, "http://localhost:1", "")

	start := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	_, err := provider.GetInstanceMetrics(context.Background(), "orders-prod", nil, start, start)
	if err == nil {
		t.Fatal("expected error for empty time range, got nil")
	}
}

func TestGetInstanceMetrics_UnknownKind(t *testing.T) {
	provider := newTestPrometheusProvider(t, "http://localhost:1", "")

	start := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	_, err := provider.GetInstanceMetrics(context.Background(), "orders-prod", []domain.MetricKind{"cpu"}, start, start.Add(time.Hour))
	if err == nil {
		t.Fatal("expected error for unknown metric kind, got nil")
	}
}

func TestGetInstanceMetrics_UnknownKindFetchesNothing(t *testing.T) {
	// An unknown kind mixed in with valid ones must fail before any
	// fetch starts, not after goroutines are already querying.
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, `{"status":"success","data":{"resultType":"matrix","result":[]}}`)
	}))
	defer srv.Close()

	provider := newTestPrometheusProvider(t, srv.URL, "")

	start := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	kinds := []domain.MetricKind{domain.MetricDisk, "cpu", domain.MetricTransactions}
	_, err := provider.GetInstanceMetrics(context.Background(), "orders-prod", kinds, start, start.Add(time.Hour))
	if err == nil {
		t.Fatal("expected error for unknown metric kind, got nil")
	}
	if got := requests.Load(); got != 0 {
		t.Errorf("server received %d requests, want 0", got)
	}
}

func TestStepFor(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     time.Duration
	}{
		{"one hour resolves to a minute", time.Hour, time.Minute},
		{"short windows floor at a minute", 10 * time.Minute, time.Minute},
		{"one day resolves to 24 minutes", 24 * time.Hour, 24 * time.Minute},
	}

	start := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stepFor(start, start.Add(tt.duration)); got != tt.want {
				t.Errorf("stepFor(%v) = %v, want %v", tt.duration, got, tt.want)
			}
		})
	}
}

func TestFactoryViaRegistry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer registry-token" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer registry-token")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, vectorBody(
			`{"metric":{"instance_id":"registry-instance","tier":"db-custom-2-8192","availability":"ZONAL"},"value":[1755000000,"1"]}`,
		))
	}))
	t.Cleanup(srv.Close)

	Reset()
	t.Cleanup(Reset)

	Register("test-prometheus", func(store auth.Store) (domain.Provider, error) {
		token, err := store.GetToken("test-prometheus")
		if err != nil {
			return nil, err
		}
		return NewPrometheusProvider(srv.URL, token, nil, nil)
	})

	store := auth.NewMockStore()
	store.SetToken("test-prometheus", "registry-token")

	provider, err := Get("test-prometheus", store)
	if err != nil {
		t.Fatalf("expected no error from Get, got %v", err)
	}

	instances, err := provider.ListInstances(context.Background())
	if err != nil {
		t.Fatalf("expected no error from ListInstances, got %v", err)
	}
	if len(instances) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(instances))
	}
	if instances[0].ID != "registry-instance" {
		t.Errorf("ID = %q, want registry-instance", instances[0].ID)
	}
}

func TestFactoryMissingToken(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register("test-prometheus", func(store auth.Store) (domain.Provider, error) {
		token, err := store.GetToken("test-prometheus")
		if err != nil {
			return nil, err
		}
		return NewPrometheusProvider("http://unused", token, nil, nil)
	})

	store := auth.NewMockStore() // no token set

	if _, err := Get("test-prometheus", store); err == nil {
		t.Fatal("expected error for missing token, got nil")
	}
}

func TestGetUnknownBackend(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, err := Get("no-such-backend", auth.NewMockStore()); err == nil {
		t.Fatal("expected error for unknown backend, got nil")
	}
}
