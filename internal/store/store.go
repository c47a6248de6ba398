// ABOUTME: KV interface and errors for bot persistence
// ABOUTME: A flat namespaced key-value store holding JSON-encoded collections

package store

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned when a requested key does not exist.
var ErrKeyNotFound = errors.New("key not found")

// KV defines the interface for the bot's flat key-value persistence.
// Values are opaque bytes; callers store JSON-encoded collections under
// fixed logical keys.
type KV interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, overwriting any existing value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every key in the store.
	Clear(ctx context.Context) error

	// Close releases underlying resources.
	Close() error
}
