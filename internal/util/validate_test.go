package util

import (
	"strings"
	"testing"
)

func TestValidateInstanceID_Valid(t *testing.T) {
	valid := []string{
		"prod-db",
		"a1",
		"psql-hotspots-replica-01",
		"db2",
	}
	for _, id := range valid {
		t.Run(id, func(t *testing.T) {
			if err := ValidateInstanceID(id); err != nil {
				t.Errorf("expected %q to be valid, got error: %v", id, err)
			}
		})
	}
}

func TestValidateInstanceID_Invalid(t *testing.T) {
	tests := []struct {
		id      string
		wantMsg string
	}{
		{"", "at least 2 characters"},
		{"a", "at least 2 characters"},
		{"prod db", "invalid characters"},
		{"Prod-DB", "invalid characters"},
		{"db_main", "invalid characters"},
		{"1db", "must start with a letter"},
		{"-db", "must start with a letter"},
		{"db-", "must not end with a hyphen"},
	}
	for _, tc := range tests {
		t.Run(tc.id, func(t *testing.T) {
			err := ValidateInstanceID(tc.id)
			if err == nil {
				t.Fatalf("expected %q to be invalid", tc.id)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tc.wantMsg)
			}
		})
	}
}
