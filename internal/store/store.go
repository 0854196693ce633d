package store

import "context"

// Well-known keys in the key-value store.
const (
	KeyTasks    = "tasks"
	KeySettings = "settings"
)

// Store is an opaque persistent key-value collection. Values are encoded
// as JSON; callers pass and receive Go values.
type Store interface {
	// Get decodes the value stored under key into dst. It reports false
	// (and leaves dst untouched) when the key is absent.
	Get(ctx context.Context, key string, dst interface{}) (bool, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value interface{}) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
