// Package source defines the data-source adapter contract and a registry for
// selecting the right adapter for a source type.
//
// An adapter turns an external description of a graph - a file on disk, a
// database query - into a fresh [graphsync.DataSet]. Adapters are
// long-running-friendly: Reload takes a context and may block; its completion
// is the reload-finished event the caller feeds to the synchronization
// engine. A failing Reload never touches the live model; the registry wraps
// such failures as SOURCE_ERROR so callers can report them and keep the
// previous graph on screen.
package source

import (
	"context"
	"time"

	"github.com/matzehuels/graphview/pkg/errors"
	"github.com/matzehuels/graphview/pkg/graphsync"
	"github.com/matzehuels/graphview/pkg/observability"
)

// Adapter loads data sets from one kind of external source.
type Adapter interface {
	// Match reports whether this adapter handles the given source type
	// (e.g. "file", "mongo").
	Match(sourceType string) bool

	// Reload produces a fresh data set from the source described by
	// descriptor (a path, a connection string). The returned data set is
	// owned by the caller and must not be retained by the adapter.
	Reload(ctx context.Context, descriptor string) (*graphsync.DataSet, error)
}

// Registry selects adapters by source type. First match wins, in
// registration order.
type Registry struct {
	adapters []Adapter
}

// NewRegistry creates a registry with the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters}
}

// Register appends an adapter to the registry.
func (r *Registry) Register(a Adapter) {
	r.adapters = append(r.adapters, a)
}

// Lookup returns the first adapter matching sourceType, or an UNSUPPORTED
// error when none does.
func (r *Registry) Lookup(sourceType string) (Adapter, error) {
	for _, a := range r.adapters {
		if a.Match(sourceType) {
			return a, nil
		}
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "no adapter for source type %q", sourceType)
}

// Reload looks up the adapter for sourceType and loads a data set from
// descriptor. Adapter failures are wrapped as SOURCE_ERROR.
func (r *Registry) Reload(ctx context.Context, sourceType, descriptor string) (*graphsync.DataSet, error) {
	a, err := r.Lookup(sourceType)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Source().OnReloadStart(ctx, sourceType, descriptor)

	ds, err := a.Reload(ctx, descriptor)
	nodeCount := 0
	if ds != nil {
		nodeCount = len(ds.Nodes)
	}
	observability.Source().OnReloadComplete(ctx, sourceType, descriptor, nodeCount, time.Since(start), err)

	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "reload %s source %s", sourceType, descriptor)
	}
	return ds, nil
}
