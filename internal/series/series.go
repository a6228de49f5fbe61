// Package series derives presentation-ready values from raw metric
// time series: byte-unit conversions, snapshot breakdowns with a
// computed remainder, cross-series running averages, and scaled
// reference lines.
//
// All functions are pure and allocate their results; input series are
// never mutated, so callers may share them across goroutines freely.
package series

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"sqldash/internal/domain"
)

// Unit is a byte display unit.
type Unit string

const (
	Bytes Unit = "B"
	MiB   Unit = "MiB"
	GiB   Unit = "GiB"
)

// noiseFloor is the window-sum threshold below which a series is
// treated as background noise and excluded from averages.
const noiseFloor = 5

// AvailableLabel names the synthesized remainder segment of a
// breakdown.
const AvailableLabel = "Available"

// ErrMisaligned indicates series expected to share a timestamp grid
// do not. Structural misalignment is a caller bug and is surfaced
// rather than patched.
var ErrMisaligned = errors.New("misaligned series")

// ConvertBytes converts a raw byte count to the requested unit. A nil
// value converts to 0 so downstream chart traces never see gaps.
// Unrecognized units return the byte count unchanged as a safe
// fallback. Unit matching is case-insensitive; "bytes" is accepted as
// an alias for "B".
func ConvertBytes(v *float64, unit Unit) float64 {
	if v == nil {
		return 0
	}

	switch strings.ToLower(string(unit)) {
	case "b", "bytes":
		return *v
	case "mib":
		return *v / (1024 * 1024)
	case "gib":
		return *v / (1024 * 1024 * 1024)
	}

	return *v
}

// ConvertSeries maps every sample of ts to the requested unit,
// preserving point order. Absent samples become 0.
func ConvertSeries(ts domain.TimeSeries, unit Unit) []float64 {
	out := make([]float64, len(ts.Points))
	for i, p := range ts.Points {
		out[i] = ConvertBytes(p.Value, unit)
	}
	return out
}

// Slice is one segment of a usage breakdown.
type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Breakdown decomposes a current quota into named usage segments plus
// an "Available" remainder, all converted to the requested unit.
//
// Usages with nil or negative current values are dropped. Segments are
// ordered ascending by value (ties broken by label) so stacked
// renderings keep the small segments visible; "Available" always comes
// last and equals max(quota - sum of kept usages, 0).
func Breakdown(quota *float64, usages map[string]*float64, unit Unit) []Slice {
	type segment struct {
		label string
		bytes float64
	}

	kept := make([]segment, 0, len(usages))
	used := 0.0
	for label, v := range usages {
		if v == nil || *v < 0 {
			continue
		}
		kept = append(kept, segment{label: label, bytes: *v})
		used += *v
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].bytes == kept[j].bytes {
			return kept[i].label < kept[j].label
		}
		return kept[i].bytes < kept[j].bytes
	})

	out := make([]Slice, 0, len(kept)+1)
	for _, seg := range kept {
		out = append(out, Slice{Label: seg.label, Value: ConvertBytes(&seg.bytes, unit)})
	}

	avail := math.Max(ConvertBytes(quota, Bytes)-used, 0)
	out = append(out, Slice{Label: AvailableLabel, Value: ConvertBytes(&avail, unit)})

	return out
}

// FlatAverage computes a single average across a group of aligned
// series and broadcasts it over the reference timestamp axis of the
// first retained series, producing a flat overlay line.
//
// Series whose window sum is below the noise floor are excluded. The
// average is the total of all retained samples divided by the sample
// count of one retained series, rounded to the nearest integer (the
// counters it overlays are integral). Retained series must share a
// timestamp grid; a length mismatch returns ErrMisaligned. With no
// qualifying series the result is an empty series, not an error.
func FlatAverage(name string, group []domain.TimeSeries) (domain.TimeSeries, error) {
	var (
		axis  []domain.Point
		total float64
		count int
	)

	for _, ts := range group {
		sum := ts.Sum()
		if sum < noiseFloor {
			continue
		}

		if count == 0 {
			axis = ts.Points
			count = len(ts.Points)
		} else if len(ts.Points) != count {
			return domain.TimeSeries{}, fmt.Errorf("%w: %q has %d samples, expected %d",
				ErrMisaligned, ts.Name, len(ts.Points), count)
		}

		total += sum
	}

	out := domain.TimeSeries{Name: name}
	if count == 0 {
		return out, nil
	}

	avg := math.Round(total / float64(count))
	out.Points = make([]domain.Point, count)
	for i, p := range axis {
		v := avg
		out.Points[i] = domain.Point{Timestamp: p.Timestamp, Value: &v}
	}

	return out, nil
}

// ScaledSeries returns every sample of ts multiplied by fraction and
// converted to the requested unit, preserving point order. Used for
// reference lines such as "90% of quota". Absent samples become 0.
func ScaledSeries(ts domain.TimeSeries, fraction float64, unit Unit) []float64 {
	out := make([]float64, len(ts.Points))
	for i, p := range ts.Points {
		if p.Value == nil {
			continue
		}
		scaled := *p.Value * fraction
		out[i] = ConvertBytes(&scaled, unit)
	}
	return out
}
