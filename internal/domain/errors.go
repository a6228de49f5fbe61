package domain

import "errors"

// Sentinel errors for cross-backend error classification.
// Metrics backends should wrap these so the CLI can handle error
// categories uniformly without importing backend-specific clients.
//
//	return fmt.Errorf("failed to fetch instance metrics: %w", domain.ErrNotFound)
var (
	// ErrNotFound indicates the requested instance or metric does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates the request was rejected due to
	// invalid, expired, or missing credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the metrics backend throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable indicates the metrics backend could not be reached.
	ErrUnavailable = errors.New("backend unavailable")
)
