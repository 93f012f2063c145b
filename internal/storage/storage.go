// Package storage defines the key/value contract shared by the token storage tiers.
//
// A tier is either durable (survives restarts, e.g. the OS keychain) or session-scoped
// (cleared when the user's login session ends or after a TTL). Implementations live in
// subpackages named after their backing engine.
package storage

import "errors"

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("storage: key not found")

// Store is a string key/value tier.
//
// Get returns ErrNotFound (possibly wrapped) for a missing key. Delete of a missing key
// is not an error. Implementations must be safe for concurrent use.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}
