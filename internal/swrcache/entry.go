package swrcache

import "time"

// Entry wraps cached data with the time it was fetched.
type Entry[T any] struct {
	Data      T         `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
}
