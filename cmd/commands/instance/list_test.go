package instance

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"sqldash/internal/domain"
	"sqldash/internal/providers"
	"sqldash/internal/services/auth"
)

// mockProvider implements domain.Provider for CLI testing.
type mockProvider struct {
	displayName string
	instances   []domain.Instance
	instance    *domain.Instance
	metrics     *domain.InstanceMetrics
	listErr     error
	getErr      error
	metricsErr  error

	gotID    string
	gotKinds []domain.MetricKind
	gotStart time.Time
	gotEnd   time.Time
}

func (m *mockProvider) GetDisplayName() string { return m.displayName }

func (m *mockProvider) ListInstances(_ context.Context) ([]domain.Instance, error) {
	return m.instances, m.listErr
}

func (m *mockProvider) GetInstance(_ context.Context, id string) (*domain.Instance, error) {
	m.gotID = id
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.instance == nil {
		return nil, fmt.Errorf("not implemented")
	}
	return m.instance, nil
}

func (m *mockProvider) GetInstanceMetrics(_ context.Context, id string, kinds []domain.MetricKind, start, end time.Time) (*domain.InstanceMetrics, error) {
	m.gotID = id
	m.gotKinds = kinds
	m.gotStart = start
	m.gotEnd = end
	return m.metrics, m.metricsErr
}

// registerMockBackend resets the global registry and registers a mock
// backend factory.
func registerMockBackend(t *testing.T, name string, mock *mockProvider) {
	t.Helper()
	providers.Reset()
	t.Cleanup(providers.Reset)
	providers.Register(name, func(store auth.Store) (domain.Provider, error) {
		return mock, nil
	})
}

// execInstance creates the instance command, wires up output buffers,
// runs it with the given args, and returns stdout and stderr.
func execInstance(t *testing.T, args ...string) (stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	cmd.Execute()
	return outBuf.String(), errBuf.String()
}

// assertContainsAll verifies that output contains every expected substring.
func assertContainsAll(t *testing.T, output string, label string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in %s output:\n%s", want, label, output)
		}
	}
}

func TestListCommand_DisplaysInstances(t *testing.T) {
	mock := &mockProvider{
		displayName: "Mock",
		instances: []domain.Instance{
			{
				ID:              "orders-prod",
				Name:            "orders-prod",
				Status:          "RUNNABLE",
				Region:          "us-central1",
				Tier:            "db-custom-8-32768",
				Availability:    "REGIONAL",
				DatabaseVersion: "POSTGRES_16",
				Backend:         "mock",
			},
			{
				ID:              "billing-staging",
				Name:            "billing-staging",
				Status:          "STOPPED",
				Region:          "europe-west1",
				Tier:            "db-g1-small",
				Availability:    "ZONAL",
				DatabaseVersion: "POSTGRES_15",
				Backend:         "mock",
			},
		},
	}

	registerMockBackend(t, "mock", mock)

	stdout, _ := execInstance(t, "list", "--backend", "mock")

	assertContainsAll(t, stdout, "stdout", []string{
		// Headers
		"ID", "NAME", "STATUS", "TIER", "AVAILABILITY", "VERSION",
		// First instance
		"orders-prod", "RUNNABLE", "us-central1", "db-custom-8-32768", "REGIONAL", "POSTGRES_16",
		// Second instance
		"billing-staging", "STOPPED", "europe-west1", "db-g1-small", "ZONAL", "POSTGRES_15",
	})

	// Header + separator + 2 data rows = 4 lines.
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 4 {
		t.Errorf("expected 4 lines (header + separator + 2 rows), got %d:\n%s", len(lines), stdout)
	}
}

func TestListCommand_EmptyList(t *testing.T) {
	mock := &mockProvider{displayName: "Mock", instances: []domain.Instance{}}

	registerMockBackend(t, "mock", mock)

	stdout, _ := execInstance(t, "list", "--backend", "mock")

	if !strings.Contains(stdout, "No instances found") {
		t.Errorf("expected 'No instances found' message, got:\n%s", stdout)
	}
}

func TestListCommand_BackendListError(t *testing.T) {
	mock := &mockProvider{
		displayName: "Mock",
		listErr:     fmt.Errorf("query connection failed"),
	}

	registerMockBackend(t, "mock", mock)

	_, stderr := execInstance(t, "list", "--backend", "mock")

	if !strings.Contains(stderr, "query connection failed") {
		t.Errorf("expected error 'query connection failed' on stderr, got:\n%s", stderr)
	}
}

func TestListCommand_UnknownBackend(t *testing.T) {
	providers.Reset()
	t.Cleanup(providers.Reset)

	_, stderr := execInstance(t, "list", "--backend", "nonexistent")

	if !strings.Contains(stderr, "unknown backend") {
		t.Errorf("expected 'unknown backend' error on stderr, got:\n%s", stderr)
	}
}
