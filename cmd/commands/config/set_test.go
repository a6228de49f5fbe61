package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"sqldash/internal/config"
	"sqldash/internal/domain"
	"sqldash/internal/providers"
	"sqldash/internal/services/auth"
)

// useTempConfig points the config package at a throwaway file so tests
// never touch the real user configuration.
func useTempConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	config.SetPath(path)
	t.Cleanup(config.ResetPath)
	return path
}

// registerTestBackend resets the global registry and registers a stub
// backend factory under the given name.
func registerTestBackend(t *testing.T, name string) {
	t.Helper()
	providers.Reset()
	t.Cleanup(providers.Reset)
	providers.Register(name, func(store auth.Store) (domain.Provider, error) {
		return nil, nil
	})
}

// execConfig runs the config command with the given args and returns
// what was written to stdout and stderr.
func execConfig(t *testing.T, args ...string) (stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	cmd.Execute()
	return outBuf.String(), errBuf.String()
}

func TestSetCommand_PersistsValue(t *testing.T) {
	useTempConfig(t)
	registerTestBackend(t, "prometheus")

	stdout, stderr := execConfig(t, "set", "default-backend", "prometheus")

	if stderr != "" {
		t.Fatalf("unexpected stderr:\n%s", stderr)
	}
	if !strings.Contains(stdout, `default-backend set to "prometheus"`) {
		t.Errorf("expected confirmation message, got:\n%s", stdout)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("reloading config: %v", err)
	}
	if cfg.DefaultBackend != "prometheus" {
		t.Errorf("DefaultBackend = %q, want %q", cfg.DefaultBackend, "prometheus")
	}
}

func TestSetCommand_UnknownKey(t *testing.T) {
	useTempConfig(t)

	_, stderr := execConfig(t, "set", "no-such-key", "value")

	if !strings.Contains(stderr, "unknown configuration key") {
		t.Errorf("expected unknown key error, got:\n%s", stderr)
	}
}

func TestSetCommand_UnknownBackend(t *testing.T) {
	useTempConfig(t)
	registerTestBackend(t, "prometheus")

	_, stderr := execConfig(t, "set", "default-backend", "graphite")

	if !strings.Contains(stderr, "unknown backend") {
		t.Errorf("expected unknown backend error, got:\n%s", stderr)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("reloading config: %v", err)
	}
	if cfg.DefaultBackend != "" {
		t.Errorf("DefaultBackend = %q, want empty after rejected set", cfg.DefaultBackend)
	}
}

func TestSetCommand_NormalizesUnit(t *testing.T) {
	useTempConfig(t)

	stdout, _ := execConfig(t, "set", "default-unit", "gib")

	if !strings.Contains(stdout, `default-unit set to "GiB"`) {
		t.Errorf("expected canonical unit casing, got:\n%s", stdout)
	}
}

func TestSetCommand_RejectsUnknownUnit(t *testing.T) {
	useTempConfig(t)

	_, stderr := execConfig(t, "set", "default-unit", "TiB")

	if !strings.Contains(stderr, "unknown unit") {
		t.Errorf("expected unknown unit error, got:\n%s", stderr)
	}
}

func TestSetCommand_PreservesURLCase(t *testing.T) {
	useTempConfig(t)

	execConfig(t, "set", "prometheus-url", "http://Metrics.example:9090/Prom")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("reloading config: %v", err)
	}
	if cfg.PrometheusURL != "http://Metrics.example:9090/Prom" {
		t.Errorf("PrometheusURL = %q, casing not preserved", cfg.PrometheusURL)
	}
}
