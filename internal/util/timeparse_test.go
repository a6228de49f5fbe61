package util

import (
	"testing"
	"time"
)

func TestParseUTCMinute(t *testing.T) {
	want := time.Date(2026, 1, 29, 10, 15, 0, 0, time.UTC)

	cases := []string{
		"2026-01-29T10:15",
		"2026-01-29 10:15",
		"2026-01-29T10:15Z",
		"  2026-01-29T10:15  ",
	}
	for _, in := range cases {
		got, err := ParseUTCMinute(in)
		if err != nil {
			t.Errorf("ParseUTCMinute(%q) unexpected error: %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseUTCMinute(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseUTCMinute_Empty(t *testing.T) {
	got, err := ParseUTCMinute("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("empty input = %v, want zero time", got)
	}
}

func TestParseUTCMinute_Invalid(t *testing.T) {
	invalid := []string{
		"2026-01-29T10:15:30", // seconds not allowed
		"29/01/2026 10:15",
		"not-a-time",
	}
	for _, in := range invalid {
		if _, err := ParseUTCMinute(in); err == nil {
			t.Errorf("ParseUTCMinute(%q) succeeded, want error", in)
		}
	}
}
