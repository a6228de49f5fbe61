// Package capacity maps a database instance's machine tier and
// availability configuration to its guaranteed disk performance
// envelope (IOPS and throughput ceilings).
//
// Ceilings come from a fixed SKU table indexed by discrete vCPU
// buckets. The table is deliberately hard-coded rather than derived
// from a formula: the published guarantees are a discrete pricing
// table, and keeping the literal values in one place keeps future
// edits localized.
package capacity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Availability selects the replication mode of an instance.
type Availability string

const (
	// Zonal instances run in a single zone.
	Zonal Availability = "ZONAL"
	// Regional instances replicate synchronously across zones, which
	// caps the write path below the zonal ceilings.
	Regional Availability = "REGIONAL"
)

var (
	// ErrMalformedTier indicates a tier identifier whose vCPU field
	// cannot be parsed as a positive integer.
	ErrMalformedTier = errors.New("malformed tier")

	// ErrUnsupportedAvailability indicates an availability mode other
	// than ZONAL or REGIONAL.
	ErrUnsupportedAvailability = errors.New("unsupported availability mode")
)

// Envelope is the guaranteed performance ceiling for one tier and
// availability combination. IOPS are operations per second;
// throughput is MB per second.
type Envelope struct {
	ReadIOPS        int `json:"read_iops"`
	WriteIOPS       int `json:"write_iops"`
	ReadThroughput  int `json:"read_throughput_mbps"`
	WriteThroughput int `json:"write_throughput_mbps"`
}

// Shared-core tiers have fixed guarantees and bypass the vCPU table.
// Matching is exact: any other tier must carry a parsable vCPU field.
const (
	TierMicro = "db-f1-micro"
	TierSmall = "db-g1-small"
)

// buckets holds the table thresholds, largest first. A vCPU count maps
// to the largest bucket that does not exceed it; counts below 2 land
// in bucket 1.
var buckets = []int{64, 32, 16, 8, 2, 1}

type bucketEnvelopes struct {
	zonal    Envelope
	regional Envelope
}

// envelopeTable holds the published per-bucket guarantees. The
// regional write-side ceilings trail the zonal ones where cross-zone
// replication caps writes; that asymmetry is part of the contract and
// must not be normalized away.
var envelopeTable = map[int]bucketEnvelopes{
	1: {
		zonal:    Envelope{ReadIOPS: 15000, WriteIOPS: 15000, ReadThroughput: 200, WriteThroughput: 200},
		regional: Envelope{ReadIOPS: 15000, WriteIOPS: 15000, ReadThroughput: 200, WriteThroughput: 100},
	},
	2: {
		zonal:    Envelope{ReadIOPS: 15000, WriteIOPS: 15000, ReadThroughput: 240, WriteThroughput: 240},
		regional: Envelope{ReadIOPS: 15000, WriteIOPS: 15000, ReadThroughput: 240, WriteThroughput: 120},
	},
	8: {
		zonal:    Envelope{ReadIOPS: 15000, WriteIOPS: 15000, ReadThroughput: 800, WriteThroughput: 800},
		regional: Envelope{ReadIOPS: 15000, WriteIOPS: 15000, ReadThroughput: 800, WriteThroughput: 400},
	},
	16: {
		zonal:    Envelope{ReadIOPS: 25000, WriteIOPS: 25000, ReadThroughput: 1200, WriteThroughput: 1200},
		regional: Envelope{ReadIOPS: 25000, WriteIOPS: 25000, ReadThroughput: 1200, WriteThroughput: 600},
	},
	32: {
		zonal:    Envelope{ReadIOPS: 60000, WriteIOPS: 60000, ReadThroughput: 1200, WriteThroughput: 1200},
		regional: Envelope{ReadIOPS: 60000, WriteIOPS: 60000, ReadThroughput: 1200, WriteThroughput: 600},
	},
	64: {
		zonal:    Envelope{ReadIOPS: 100000, WriteIOPS: 100000, ReadThroughput: 1200, WriteThroughput: 1200},
		regional: Envelope{ReadIOPS: 100000, WriteIOPS: 80000, ReadThroughput: 1200, WriteThroughput: 1000},
	},
}

// ParseAvailability normalizes a user-supplied availability mode.
// Input is case-insensitive; unrecognized values are rejected rather
// than defaulted, since a wrong ceiling silently displayed is worse
// than a visible failure.
func ParseAvailability(s string) (Availability, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(Zonal):
		return Zonal, nil
	case string(Regional):
		return Regional, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedAvailability, s)
}

// Bucket maps a vCPU count to its table bucket: the largest threshold
// in {1, 2, 8, 16, 32, 64} that is at most the count.
func Bucket(vcpus int) int {
	for _, b := range buckets {
		if vcpus >= b {
			return b
		}
	}
	return 1
}

// TierVCPUs extracts the vCPU count from a tier identifier such as
// "db-custom-8-32768". The count is the second-to-last hyphen field
// and must be a positive integer.
func TierVCPUs(tier string) (int, error) {
	fields := strings.Split(tier, "-")
	if len(fields) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTier, tier)
	}
	// An empty field means a doubled or trailing hyphen, e.g. a negative
	// vCPU notation like "db-custom--4-1024". Reject the identifier
	// outright instead of parsing the shifted fields.
	for _, f := range fields {
		if f == "" {
			return 0, fmt.Errorf("%w: %q has an empty field", ErrMalformedTier, tier)
		}
	}
	n, err := strconv.Atoi(fields[len(fields)-2])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q has no positive vCPU field", ErrMalformedTier, tier)
	}
	return n, nil
}

// Lookup returns the performance envelope guaranteed for a tier and
// availability mode. Shared-core tiers (db-f1-micro, db-g1-small)
// carry the bucket-1 guarantees regardless of mode-specific vCPU
// accounting; every other tier is bucketed by its vCPU count.
func Lookup(tier, availability string) (Envelope, error) {
	mode, err := ParseAvailability(availability)
	if err != nil {
		return Envelope{}, err
	}

	if tier == TierMicro || tier == TierSmall {
		return envelopeFor(1, mode), nil
	}

	vcpus, err := TierVCPUs(tier)
	if err != nil {
		return Envelope{}, err
	}

	return envelopeFor(Bucket(vcpus), mode), nil
}

func envelopeFor(bucket int, mode Availability) Envelope {
	pair := envelopeTable[bucket]
	if mode == Regional {
		return pair.regional
	}
	return pair.zonal
}
