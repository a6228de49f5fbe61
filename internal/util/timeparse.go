package util

import (
	"fmt"
	"strings"
	"time"
)

// utcMinuteLayout is the accepted flag format: UTC, minute precision,
// no seconds.
const utcMinuteLayout = "2006-01-02T15:04"

// ParseUTCMinute parses a "YYYY-MM-DDTHH:MM" timestamp as UTC. A space
// may stand in for the "T" separator and a trailing "Z" is tolerated
// (input is always treated as UTC regardless). An empty string returns
// the zero time with no error so optional flags can fall through to
// their defaults.
func ParseUTCMinute(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, nil
	}

	s = strings.ReplaceAll(s, " ", "T")
	s = strings.TrimSuffix(s, "Z")

	t, err := time.ParseInLocation(utcMinuteLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: use UTC format YYYY-MM-DDTHH:MM (no seconds), e.g. 2026-01-29T10:15", value)
	}

	return t, nil
}
