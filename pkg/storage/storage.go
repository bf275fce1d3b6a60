// Package storage provides key-addressed persistent byte stores.
//
// A [Store] is the persistence boundary for everything GraphView keeps
// between sessions: serialized data sets, view-state layouts, and any other
// values routed through the state cache. Three implementations are provided:
//
//   - [FileStore]: files under a directory, for CLI usage
//   - [MemoryStore]: process-local map, for tests and ephemeral runs
//   - [RedisStore]: Redis-backed, for shared deployments
//
// Stores deal in raw bytes only; serialization policy lives with the caller
// (see the statecache package).
package storage

import "context"

// Store is a key-addressed byte store.
//
// Get returns the stored bytes and true, or nil and false when the key has
// never been written. Absence is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error

	// Keys returns all keys currently present in the store.
	Keys(ctx context.Context) ([]string, error)

	Close() error
}
