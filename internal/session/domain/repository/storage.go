package repository

import "context"

// Storage is the persisted key-value store behind the session store. Every client
// gets its own scope; entries inside a scope are plain strings.
type Storage interface {
	// Get returns the value stored under key in scope and whether it was present.
	Get(ctx context.Context, scope, key string) (string, bool, error)
	// Put writes all entries of one call as a single unit: readers see all of them or none.
	Put(ctx context.Context, scope string, entries map[string]string) error
	// Remove deletes keys from scope. Missing keys are not an error.
	Remove(ctx context.Context, scope string, keys ...string) error
}

// HealthChecker is implemented by storages backed by a remote server.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
