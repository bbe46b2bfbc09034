package kv

import "context"

// Backend is a string-keyed document store. Values are opaque strings, usually JSON.
type Backend interface {
	// Get returns the value stored under key.
	// PRE: key is non-empty
	// POST: ok is false (and err nil) when the key is absent
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	// PRE: key is non-empty
	// POST: a subsequent Get returns value
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	// PRE: key is non-empty
	// POST: a subsequent Get reports ok == false
	Delete(ctx context.Context, key string) error
}

// Ensure both implementations satisfy Backend.
var (
	_ Backend = (*SQLiteStore)(nil)
	_ Backend = (*MemoryStore)(nil)
)
