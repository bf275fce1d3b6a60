package graphsync

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/graphview/pkg/canvas"
	"github.com/matzehuels/graphview/pkg/errors"
	"github.com/matzehuels/graphview/pkg/observability"
	"github.com/matzehuels/graphview/pkg/tree"
	"github.com/matzehuels/graphview/pkg/viewstate"
)

// Engine rebuilds a live canvas from data sets. It is stateless across runs
// apart from its configuration; a single Engine can serve any number of
// canvases as long as each canvas is only mutated from one logical thread.
type Engine struct {
	logger *log.Logger
	edgeID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithEdgeID replaces the edge identifier generator. The default produces
// "edge-" followed by a random UUID; tests inject a deterministic sequence.
func WithEdgeID(gen func() string) Option {
	return func(e *Engine) { e.edgeID = gen }
}

// NewEngine creates an engine. A nil logger falls back to log.Default().
func NewEngine(logger *log.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	e := &Engine{
		logger: logger,
		edgeID: func() string { return "edge-" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// record pairs a node with its identifier for the forest builder.
type record struct {
	id   string
	node Node
}

// Synchronize rebuilds c so it reflects ds, then reapplies view state:
// justLoaded first (the persisted state matching the data set), prior on top
// (the state captured immediately before this reload), so in-session
// adjustments win wherever both captured a value.
//
// The whole rebuild runs inside one batched mutation; the canvas redraws
// exactly once. Ordering follows the canvas contract: nodes are inserted in
// ascending parent-chain depth (stable within equal depth over the
// canonical, identifier-sorted input order), so every parent exists before
// its children and the immutable parent link can be set at creation.
// References to nodes absent from the data set - a dangling parent, an edge
// endpoint - are satisfied by synthesizing a placeholder node whose label is
// the identifier itself.
//
// A circular parent chain in ds is a structural inconsistency: Synchronize
// fails with a STRUCTURAL_ERROR before touching the canvas, so the previous
// contents stay on screen. Once mutation has begun there is no partial
// recovery; an error after that point leaves the canvas undefined and a
// fresh reload is the only way back.
func (e *Engine) Synchronize(ctx context.Context, c canvas.Canvas, ds *DataSet, prior, justLoaded viewstate.ViewState) (err error) {
	start := time.Now()
	observability.Sync().OnSyncStart(ctx, len(ds.Nodes), len(ds.Edges))
	defer func() {
		observability.Sync().OnSyncComplete(ctx, time.Since(start), err)
	}()

	ordered, err := orderByDepth(ds)
	if err != nil {
		return err
	}
	for i, edge := range ds.Edges {
		if edge.Source == "" || edge.Target == "" {
			return errors.New(errors.ErrCodeStructural, "edge %d has an empty endpoint", i)
		}
	}

	c.BeginBatch()
	defer c.EndBatch()

	c.Clear()

	for _, n := range ordered {
		if n.node.Parent != "" && !c.Has(n.node.Parent) {
			e.placeholder(ctx, c, n.node.Parent)
		}
		c.Add(canvas.Element{ID: n.id, Label: n.node.Label, Parent: n.node.Parent})
	}

	for _, edge := range ds.Edges {
		if !c.Has(edge.Source) {
			e.placeholder(ctx, c, edge.Source)
		}
		if !c.Has(edge.Target) {
			e.placeholder(ctx, c, edge.Target)
		}
		c.Add(canvas.Element{
			ID:     e.edgeID(),
			Label:  edge.Label,
			Source: edge.Source,
			Target: edge.Target,
		})
	}

	viewstate.Apply(c, justLoaded)
	viewstate.Apply(c, prior)

	e.logger.Debug("synchronized canvas",
		"nodes", len(ds.Nodes),
		"edges", len(ds.Edges),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// placeholder synthesizes a minimal node for a reference the data set
// omitted, using the identifier itself as label.
func (e *Engine) placeholder(ctx context.Context, c canvas.Canvas, id string) {
	observability.Sync().OnPlaceholder(ctx, id)
	e.logger.Debug("synthesized placeholder node", "id", id)
	c.Add(canvas.Element{ID: id, Label: id})
}

// orderByDepth returns the data set's nodes sorted ascending by parent-chain
// depth, stable over the canonical (identifier-sorted) input order for equal
// depths. A parent reference to an identifier absent from the data set makes
// the node a root - a broken reference is a documented edge case, not an
// error - while a circular chain fails with a structural error.
func orderByDepth(ds *DataSet) ([]record, error) {
	items := make([]record, 0, len(ds.Nodes))
	for _, id := range slices.Sorted(maps.Keys(ds.Nodes)) {
		items = append(items, record{id: id, node: ds.Nodes[id]})
	}

	roots := tree.Build(items,
		func(r record) string { return r.id },
		func(r record) (string, bool) { return r.node.Parent, r.node.Parent != "" })

	depth := make(map[string]int, len(items))
	for _, n := range tree.Flatten(roots) {
		depth[n.Item.id] = n.Depth
	}

	if len(depth) != len(items) {
		// Nodes unreachable from any root sit on a circular parent chain.
		for _, r := range items {
			if _, ok := depth[r.id]; !ok {
				return nil, errors.New(errors.ErrCodeStructural,
					"circular parent chain involving node %q", r.id)
			}
		}
	}

	slices.SortStableFunc(items, func(a, b record) int {
		return depth[a.id] - depth[b.id]
	})
	return items, nil
}
