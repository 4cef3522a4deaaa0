// Package store provides the durable key-value backends the metadata
// cache persists into.
package store

import "context"

// Store is a minimal byte store. Implementations must be safe for
// concurrent use and byte-for-byte transparent: Get returns exactly
// the bytes previously passed to Set for the same key.
type Store interface {
	// Get returns (value, true, nil) on hit and (nil, false, nil) on
	// miss; errors are reserved for backend failures.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear drops every entry.
	Clear(ctx context.Context) error

	Close() error
}
