package graphsync

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphview/pkg/canvas"
	"github.com/matzehuels/graphview/pkg/errors"
	"github.com/matzehuels/graphview/pkg/observability"
	"github.com/matzehuels/graphview/pkg/viewstate"
)

// LoadFunc produces a fresh data set, typically by delegating to a
// data-source adapter. It may take arbitrarily long; the reloader treats its
// completion as the reload-finished event.
type LoadFunc func(ctx context.Context) (*DataSet, error)

// Reloader drives reloads of a single canvas through the engine and resolves
// the race between overlapping reload requests: every request is stamped
// with a generation at start, and a response whose generation is older than
// the last one synchronized is discarded instead of stomping newer data.
//
// The view state prior to each synchronization is captured automatically,
// immediately before the rebuild, so in-session adjustments survive the
// reload.
type Reloader struct {
	engine *Engine
	canvas canvas.Canvas
	logger *log.Logger

	mu      sync.Mutex
	next    uint64 // generation handed to the next request
	applied uint64 // generation of the last synchronized response
}

// NewReloader creates a reloader for one canvas.
// A nil logger falls back to log.Default().
func NewReloader(engine *Engine, c canvas.Canvas, logger *log.Logger) *Reloader {
	if logger == nil {
		logger = log.Default()
	}
	return &Reloader{engine: engine, canvas: c, logger: logger}
}

// Pending is a fetched data set awaiting application to the canvas.
type Pending struct {
	reloader *Reloader
	gen      uint64
	ds       *DataSet
}

// Fetch obtains a data set via load and stamps the request with a generation,
// deferring the canvas rebuild to Apply. It never touches the canvas, so it
// may run on any goroutine; Apply must run on the goroutine that owns the
// canvas. If load fails the error is surfaced as a SOURCE_ERROR.
func (r *Reloader) Fetch(ctx context.Context, load LoadFunc) (*Pending, error) {
	r.mu.Lock()
	r.next++
	gen := r.next
	r.mu.Unlock()

	ds, err := load(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "reload data source")
	}
	return &Pending{reloader: r, gen: gen, ds: ds}, nil
}

// Apply synchronizes the canvas with the fetched data set, applying
// justLoaded (the persisted view state for this data set) under the state
// captured just before the rebuild.
//
// If a newer request was applied while this one was loading, the response is
// dropped with a STALE_RELOAD error and the canvas keeps the newer data.
// Errors out of the synchronization itself are surfaced as-is (structural
// errors) or wrapped as SYNC_FAILED.
func (p *Pending) Apply(ctx context.Context, justLoaded viewstate.ViewState) error {
	r := p.reloader

	r.mu.Lock()
	defer r.mu.Unlock()

	if p.gen < r.applied {
		observability.Sync().OnStaleReload(ctx, p.gen)
		r.logger.Warn("discarding stale reload response", "generation", p.gen, "applied", r.applied)
		return errors.New(errors.ErrCodeStale, "reload response %d superseded by %d", p.gen, r.applied)
	}

	prior := viewstate.Collect(r.canvas)
	if err := r.engine.Synchronize(ctx, r.canvas, p.ds, prior, justLoaded); err != nil {
		if errors.GetCode(err) != "" {
			return err
		}
		return errors.Wrap(errors.ErrCodeSyncFailed, err, "synchronize canvas")
	}
	r.applied = p.gen
	return nil
}

// Reload is Fetch followed immediately by Apply, for callers that already
// own the canvas for the duration of the load.
func (r *Reloader) Reload(ctx context.Context, load LoadFunc, justLoaded viewstate.ViewState) error {
	pending, err := r.Fetch(ctx, load)
	if err != nil {
		return err
	}
	return pending.Apply(ctx, justLoaded)
}
