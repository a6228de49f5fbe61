package domain

import "time"

// Instance represents a managed database instance across backends.
type Instance struct {
	// Core fields (common across all backends)
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Project         string    `json:"project,omitempty"`
	Region          string    `json:"region,omitempty"`
	Status          string    `json:"status"`
	DatabaseVersion string    `json:"database_version,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitzero"`

	// Tier is the machine class identifier, e.g. "db-custom-8-32768"
	// or "db-g1-small". The capacity model derives performance
	// ceilings from it.
	Tier string `json:"tier"`

	// Availability is "ZONAL" or "REGIONAL".
	Availability string `json:"availability"`

	// Backend names the metrics backend the instance was discovered
	// through.
	Backend string `json:"backend"`
}
