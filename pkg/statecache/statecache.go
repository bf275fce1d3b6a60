// Package statecache provides a process-wide keyed cache that mediates
// between a persistent byte store and its consumers.
//
// The cache is the single in-memory source of truth per key: the first read
// of a key loads and decodes the persisted bytes (falling back to a default
// on absence or decode failure), and every later read returns that same
// resolved value until a write replaces it. Because all consumers share the
// same [Cache] instance, a write by one consumer is immediately visible to
// all others without re-reading storage.
//
// The cache is an explicit service object passed to its consumers rather than
// package-level state; construct one per process and share it.
//
// Reads and writes are expected from a single logical thread of control
// (interactive use). A mutex guards the entry map only so that incidental
// cross-goroutine readers (e.g. an HTTP handler next to the CLI loop) do not
// race; at most one in-flight write per key is assumed.
package statecache

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphview/pkg/observability"
	"github.com/matzehuels/graphview/pkg/storage"
)

// Cache is a keyed view over a [storage.Store] with per-key memoization.
type Cache struct {
	store  storage.Store
	logger *log.Logger

	mu      sync.Mutex
	entries map[string]any
}

// New creates a cache backed by store. A nil logger falls back to
// log.Default().
func New(store storage.Store, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.Default()
	}
	return &Cache{
		store:   store,
		logger:  logger,
		entries: make(map[string]any),
	}
}

// Store returns the underlying byte store.
func (c *Cache) Store() storage.Store { return c.store }

// Forget drops the in-memory entry for key, forcing the next Read to go back
// to persistent storage. Persisted bytes are not touched.
func (c *Cache) Forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Read returns the value cached under key, populating it on first use.
//
// On a memory miss the persisted bytes are loaded and decoded. When storage
// has no bytes for the key, or the bytes fail to decode, Read logs a warning
// and resolves to def() instead; decode failures never propagate to the
// caller. The resolved value is memoized exactly once per key until a Write
// replaces it, so repeated reads return the identical value.
func Read[T any](c *Cache, ctx context.Context, key string, decode func([]byte) (T, error), def func() T) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.entries[key]; ok {
		return v.(T)
	}

	resolved := def
	fromDefault := true
	data, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("state read failed, using default", "key", key, "err", err)
	case ok:
		if v, derr := decode(data); derr != nil {
			c.logger.Warn("state entry unreadable, using default", "key", key, "err", derr)
		} else {
			resolved = func() T { return v }
			fromDefault = false
		}
	}

	v := resolved()
	c.entries[key] = v
	observability.State().OnStateLoad(ctx, key, fromDefault)
	return v
}

// Write encodes v, persists it synchronously, and then updates the in-memory
// entry for key. This is the only path by which a populated entry changes,
// which guarantees read-your-write consistency for every consumer sharing
// the cache. If encoding or persistence fails the in-memory entry is left
// unchanged and the error is returned.
func Write[T any](c *Cache, ctx context.Context, key string, v T, encode func(T) ([]byte, error)) error {
	data, err := encode(v)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, key, data); err != nil {
		return err
	}

	c.mu.Lock()
	c.entries[key] = v
	c.mu.Unlock()

	observability.State().OnStateWrite(ctx, key, len(data))
	return nil
}
