package session

import "context"

// Store is a key/value view of one logical user session.
// Values are raw bytes; callers own their encoding.
type Store interface {
	// Has reports whether key is set
	Has(ctx context.Context, key string) (bool, error)

	// Get returns the value stored under key or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
