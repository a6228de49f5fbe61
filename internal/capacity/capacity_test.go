package capacity

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBucket(t *testing.T) {
	cases := []struct {
		vcpus int
		want  int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{4, 2},
		{7, 2},
		{8, 8},
		{12, 8},
		{15, 8},
		{16, 16},
		{31, 16},
		{32, 32},
		{63, 32},
		{64, 64},
		{96, 64},
		{100, 64},
	}

	for _, tc := range cases {
		if got := Bucket(tc.vcpus); got != tc.want {
			t.Errorf("Bucket(%d) = %d, want %d", tc.vcpus, got, tc.want)
		}
	}
}

func TestBucketMonotonic(t *testing.T) {
	valid := map[int]bool{1: true, 2: true, 8: true, 16: true, 32: true, 64: true}

	prev := 0
	for vcpus := 1; vcpus <= 128; vcpus++ {
		b := Bucket(vcpus)
		if !valid[b] {
			t.Fatalf("Bucket(%d) = %d, not a table bucket", vcpus, b)
		}
		if b < prev {
			t.Fatalf("Bucket(%d) = %d decreased from %d", vcpus, b, prev)
		}
		prev = b
	}
}

func TestTierVCPUs(t *testing.T) {
	cases := []struct {
		tier    string
		want    int
		wantErr bool
	}{
		{"db-custom-8-32768", 8, false},
		{"db-custom-1-3840", 1, false},
		{"db-custom-96-655360", 96, false},
		{"db-custom-0-1024", 0, true},
		{"db-custom--4-1024", 0, true},
		{"db-custom-4--1024", 0, true},
		{"db-custom-4-1024-", 0, true},
		{"db-n1-standard-16384", 0, true}, // "standard" in the vCPU position
		{"nonsense", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		got, err := TierVCPUs(tc.tier)
		if tc.wantErr {
			if err == nil {
				t.Errorf("TierVCPUs(%q) = %d, want error", tc.tier, got)
			} else if !errors.Is(err, ErrMalformedTier) {
				t.Errorf("TierVCPUs(%q) error = %v, want ErrMalformedTier", tc.tier, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("TierVCPUs(%q) unexpected error: %v", tc.tier, err)
			continue
		}
		if got != tc.want {
			t.Errorf("TierVCPUs(%q) = %d, want %d", tc.tier, got, tc.want)
		}
	}
}

func TestParseAvailability(t *testing.T) {
	cases := []struct {
		in      string
		want    Availability
		wantErr bool
	}{
		{"ZONAL", Zonal, false},
		{"zonal", Zonal, false},
		{"Regional", Regional, false},
		{"  REGIONAL  ", Regional, false},
		{"LOCAL", "", true},
		{"", "", true},
	}

	for _, tc := range cases {
		got, err := ParseAvailability(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrUnsupportedAvailability) {
				t.Errorf("ParseAvailability(%q) error = %v, want ErrUnsupportedAvailability", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAvailability(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseAvailability(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLookup(t *testing.T) {
	cases := []struct {
		name         string
		tier         string
		availability string
		want         Envelope
	}{
		{
			name:         "custom 8 vCPU regional",
			tier:         "db-custom-8-32768",
			availability: "REGIONAL",
			want:         Envelope{ReadIOPS: 15000, WriteIOPS: 15000, ReadThroughput: 800, WriteThroughput: 400},
		},
		{
			name:         "custom 16 vCPU zonal",
			tier:         "db-custom-16-65536",
			availability: "ZONAL",
			want:         Envelope{ReadIOPS: 25000, WriteIOPS: 25000, ReadThroughput: 1200, WriteThroughput: 1200},
		},
		{
			name:         "custom 12 vCPU falls into bucket 8",
			tier:         "db-custom-12-49152",
			availability: "ZONAL",
			want:         Envelope{ReadIOPS: 15000, WriteIOPS: 15000, ReadThroughput: 800, WriteThroughput: 800},
		},
		{
			name:         "custom 96 vCPU caps at bucket 64 regional",
			tier:         "db-custom-96-655360",
			availability: "regional",
			want:         Envelope{ReadIOPS: 100000, WriteIOPS: 80000, ReadThroughput: 1200, WriteThroughput: 1000},
		},
		{
			name:         "micro zonal",
			tier:         TierMicro,
			availability: "ZONAL",
			want:         Envelope{ReadIOPS: 15000, WriteIOPS: 15000, ReadThroughput: 200, WriteThroughput: 200},
		},
		{
			name:         "small regional has halved write throughput",
			tier:         TierSmall,
			availability: "REGIONAL",
			want:         Envelope{ReadIOPS: 15000, WriteIOPS: 15000, ReadThroughput: 200, WriteThroughput: 100},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Lookup(tc.tier, tc.availability)
			if err != nil {
				t.Fatalf("Lookup(%q, %q) unexpected error: %v", tc.tier, tc.availability, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Lookup(%q, %q) mismatch (-want +got):\n%s", tc.tier, tc.availability, diff)
			}
		})
	}
}

func TestLookupUnsupportedAvailability(t *testing.T) {
	tiers := []string{"db-custom-8-32768", TierMicro, TierSmall, "whatever"}
	for _, tier := range tiers {
		if _, err := Lookup(tier, "LOCAL"); !errors.Is(err, ErrUnsupportedAvailability) {
			t.Errorf("Lookup(%q, LOCAL) error = %v, want ErrUnsupportedAvailability", tier, err)
		}
	}
}

func TestLookupMalformedTier(t *testing.T) {
	// Tiers that resemble, but do not exactly match, the shared-core
	// names must not get the shared-core envelope.
	for _, tier := range []string{"db-f1-micro-2", "db-g1-smallish", "db-custom-x-1024", ""} {
		if _, err := Lookup(tier, "ZONAL"); !errors.Is(err, ErrMalformedTier) {
			t.Errorf("Lookup(%q, ZONAL) error = %v, want ErrMalformedTier", tier, err)
		}
	}
}

func TestRegionalWriteCeilingsNeverExceedZonal(t *testing.T) {
	for bucket, pair := range envelopeTable {
		if pair.regional.WriteIOPS > pair.zonal.WriteIOPS {
			t.Errorf("bucket %d: regional write IOPS %d exceeds zonal %d", bucket, pair.regional.WriteIOPS, pair.zonal.WriteIOPS)
		}
		if pair.regional.WriteThroughput > pair.zonal.WriteThroughput {
			t.Errorf("bucket %d: regional write throughput %d exceeds zonal %d", bucket, pair.regional.WriteThroughput, pair.zonal.WriteThroughput)
		}
		if pair.regional.ReadIOPS != pair.zonal.ReadIOPS {
			t.Errorf("bucket %d: read IOPS differ across modes", bucket)
		}
	}
}
