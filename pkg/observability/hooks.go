// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers can register
// hooks at startup to receive events about graph synchronization, data-source
// reloads, and state persistence.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach avoids import cycles (hooks are registered by main, not by
// libraries) and keeps the core library free of observability frameworks.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetSyncHooks(&mySyncHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Sync().OnSyncStart(ctx, nodeCount, edgeCount)
//	// ... rebuild ...
//	observability.Sync().OnSyncComplete(ctx, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Sync Hooks
// =============================================================================

// SyncHooks receives events from the graph synchronization engine.
type SyncHooks interface {
	// OnSyncStart records the start of a batched rebuild.
	OnSyncStart(ctx context.Context, nodeCount, edgeCount int)

	// OnSyncComplete records the outcome of a batched rebuild.
	OnSyncComplete(ctx context.Context, duration time.Duration, err error)

	// OnPlaceholder records synthesis of a placeholder for a dangling reference.
	OnPlaceholder(ctx context.Context, id string)

	// OnStaleReload records a reload response discarded for carrying an
	// outdated generation.
	OnStaleReload(ctx context.Context, generation uint64)
}

// =============================================================================
// Source Hooks
// =============================================================================

// SourceHooks receives events from data-source adapters.
type SourceHooks interface {
	// OnReloadStart records the start of a data-source reload.
	OnReloadStart(ctx context.Context, sourceType, descriptor string)

	// OnReloadComplete records the outcome of a data-source reload.
	OnReloadComplete(ctx context.Context, sourceType, descriptor string, nodeCount int, duration time.Duration, err error)
}

// =============================================================================
// State Hooks
// =============================================================================

// StateHooks receives events from state cache operations.
type StateHooks interface {
	// OnStateLoad records resolving a key from persistent storage.
	OnStateLoad(ctx context.Context, key string, fromDefault bool)

	// OnStateWrite records persisting a key.
	OnStateWrite(ctx context.Context, key string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSyncHooks is a no-op implementation of SyncHooks.
type NoopSyncHooks struct{}

func (NoopSyncHooks) OnSyncStart(context.Context, int, int)                {}
func (NoopSyncHooks) OnSyncComplete(context.Context, time.Duration, error) {}
func (NoopSyncHooks) OnPlaceholder(context.Context, string)                {}
func (NoopSyncHooks) OnStaleReload(context.Context, uint64)                {}

// NoopSourceHooks is a no-op implementation of SourceHooks.
type NoopSourceHooks struct{}

func (NoopSourceHooks) OnReloadStart(context.Context, string, string) {}
func (NoopSourceHooks) OnReloadComplete(context.Context, string, string, int, time.Duration, error) {
}

// NoopStateHooks is a no-op implementation of StateHooks.
type NoopStateHooks struct{}

func (NoopStateHooks) OnStateLoad(context.Context, string, bool) {}
func (NoopStateHooks) OnStateWrite(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	syncHooks   SyncHooks   = NoopSyncHooks{}
	sourceHooks SourceHooks = NoopSourceHooks{}
	stateHooks  StateHooks  = NoopStateHooks{}
	hooksMu     sync.RWMutex
)

// SetSyncHooks registers custom sync hooks.
// This should be called once at application startup before any synchronization.
func SetSyncHooks(h SyncHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		syncHooks = h
	}
}

// SetSourceHooks registers custom source hooks.
// This should be called once at application startup before any reloads.
func SetSourceHooks(h SourceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sourceHooks = h
	}
}

// SetStateHooks registers custom state hooks.
// This should be called once at application startup before any state access.
func SetStateHooks(h StateHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		stateHooks = h
	}
}

// Sync returns the registered sync hooks.
func Sync() SyncHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return syncHooks
}

// Source returns the registered source hooks.
func Source() SourceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sourceHooks
}

// State returns the registered state hooks.
func State() StateHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return stateHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	syncHooks = NoopSyncHooks{}
	sourceHooks = NoopSourceHooks{}
	stateHooks = NoopStateHooks{}
}
