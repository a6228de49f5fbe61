package auth

import (
	"errors"

	"sqldash/internal/util"
)

const ServiceName = "sqldash"

var ErrTokenNotFound = errors.New("auth token not found")

// Store holds API bearer tokens for metrics backends.
type Store interface {
	SetToken(backend string, token string) error
	GetToken(backend string) (string, error)
	DeleteToken(backend string) error
}

// DefaultStore returns the standard auth store backed by the OS keychain.
func DefaultStore() Store {
	return NewKeyringStore(ServiceName)
}

// NormalizeBackend normalizes a backend name for consistent key lookup.
func NormalizeBackend(backend string) string {
	return util.NormalizeKey(backend)
}
