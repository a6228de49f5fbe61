package tui

import (
	"testing"
	"time"

	"sqldash/internal/domain"
	"sqldash/internal/series"

	"github.com/google/go-cmp/cmp"
)

func TestNextUnitCycles(t *testing.T) {
	if got := nextUnit(series.Bytes); got != series.MiB {
		t.Errorf("nextUnit(B) = %v, want MiB", got)
	}
	if got := nextUnit(series.MiB); got != series.GiB {
		t.Errorf("nextUnit(MiB) = %v, want GiB", got)
	}
	if got := nextUnit(series.GiB); got != series.Bytes {
		t.Errorf("nextUnit(GiB) = %v, want B", got)
	}
}

func TestConvertedSeries(t *testing.T) {
	gib := 1024.0 * 1024 * 1024
	ts := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	in := domain.TimeSeries{
		Name: "data",
		Points: []domain.Point{
			{Timestamp: ts, Value: &gib},
			{Timestamp: ts.Add(time.Minute), Value: nil},
		},
	}

	out := convertedSeries(in, series.GiB)
	if got := *out.Points[0].Value; got != 1 {
		t.Errorf("converted[0] = %v, want 1", got)
	}
	if got := *out.Points[1].Value; got != 0 {
		t.Errorf("converted[1] = %v, want 0 for absent sample", got)
	}
	if in.Points[1].Value != nil {
		t.Error("input series mutated")
	}
}

func TestScaledOverlay(t *testing.T) {
	v1, v2 := 100.0, 200.0
	ts := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	in := domain.TimeSeries{Points: []domain.Point{
		{Timestamp: ts, Value: &v1},
		{Timestamp: ts.Add(time.Minute), Value: &v2},
	}}

	out := scaledOverlay(in, 0.9, series.Bytes)
	want := []float64{90, 180}
	for i, w := range want {
		if got := *out.Points[i].Value; got != w {
			t.Errorf("scaled[%d] = %v, want %v", i, got, w)
		}
	}
	if !out.Points[1].Timestamp.Equal(in.Points[1].Timestamp) {
		t.Error("timestamp axis not preserved")
	}
}

func TestFlatLine(t *testing.T) {
	got := flatLine(3, 12000)
	if diff := cmp.Diff([]float64{12000, 12000, 12000}, got); diff != "" {
		t.Errorf("flatLine mismatch (-want +got):\n%s", diff)
	}
}

func TestInstanceOptionLabel(t *testing.T) {
	inst := domain.Instance{
		Name:   "orders-prod",
		Status: "RUNNABLE",
		Tier:   "db-custom-8-32768",
		Region: "us-central1",
	}

	want := "orders-prod · RUNNABLE · db-custom-8-32768 · us-central1"
	if got := instanceOptionLabel(inst); got != want {
		t.Errorf("label = %q, want %q", got, want)
	}
}

func TestInstanceOptionLabel_SparseFields(t *testing.T) {
	inst := domain.Instance{Name: "bare"}
	if got := instanceOptionLabel(inst); got != "bare" {
		t.Errorf("label = %q, want %q", got, "bare")
	}
}
