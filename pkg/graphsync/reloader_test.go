package graphsync

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphview/pkg/canvas"
	"github.com/matzehuels/graphview/pkg/errors"
	"github.com/matzehuels/graphview/pkg/viewstate"
)

func loadOf(ds *DataSet) LoadFunc {
	return func(context.Context) (*DataSet, error) { return ds, nil }
}

func TestReloadSuccess(t *testing.T) {
	m := canvas.NewMemory()
	r := NewReloader(testEngine(), m, log.New(io.Discard))

	ds := &DataSet{Nodes: map[string]Node{"a": {Label: "a"}}}
	if err := r.Reload(context.Background(), loadOf(ds), viewstate.Empty()); err != nil {
		t.Fatalf("Reload error: %v", err)
	}
	if !m.Has("a") {
		t.Error("canvas should reflect the loaded data set")
	}
}

func TestReloadSourceErrorLeavesCanvas(t *testing.T) {
	m := canvas.NewMemory()
	r := NewReloader(testEngine(), m, log.New(io.Discard))

	// Seed with good data.
	if err := r.Reload(context.Background(), loadOf(&DataSet{Nodes: map[string]Node{"a": {Label: "a"}}}), viewstate.Empty()); err != nil {
		t.Fatal(err)
	}

	failing := func(context.Context) (*DataSet, error) {
		return nil, errors.New(errors.ErrCodeTimeout, "query timed out")
	}
	err := r.Reload(context.Background(), failing, viewstate.Empty())
	if !errors.Is(err, errors.ErrCodeSource) {
		t.Fatalf("err = %v, want SOURCE_ERROR", err)
	}
	if !m.Has("a") {
		t.Error("source failure must leave the live model untouched")
	}
}

func TestReloadPreservesInSessionAdjustments(t *testing.T) {
	m := canvas.NewMemory()
	r := NewReloader(testEngine(), m, log.New(io.Discard))
	ds := &DataSet{Nodes: map[string]Node{"a": {Label: "a"}}}

	if err := r.Reload(context.Background(), loadOf(ds), viewstate.Empty()); err != nil {
		t.Fatal(err)
	}

	// User drags "a" during the session.
	m.SetPosition("a", canvas.Point{X: 42, Y: 7})

	// Reload restores a persisted layout placing "a" elsewhere; the
	// in-session position must win.
	persisted := viewstate.ViewState{Positions: map[string]viewstate.Point{"a": {X: 1, Y: 1}}}
	if err := r.Reload(context.Background(), loadOf(ds), persisted); err != nil {
		t.Fatal(err)
	}

	if p, _ := m.Position("a"); p.X != 42 || p.Y != 7 {
		t.Errorf("position = %+v, want the pre-reload adjustment preserved", p)
	}
}

func TestFetchDefersCanvasRebuildToApply(t *testing.T) {
	m := canvas.NewMemory()
	r := NewReloader(testEngine(), m, log.New(io.Discard))
	ctx := context.Background()

	pending, err := r.Fetch(ctx, loadOf(&DataSet{Nodes: map[string]Node{"a": {Label: "a"}}}))
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if m.Has("a") {
		t.Fatal("Fetch must not touch the canvas")
	}
	if err := pending.Apply(ctx, viewstate.Empty()); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if !m.Has("a") {
		t.Error("Apply should rebuild the canvas from the fetched data set")
	}
}

func TestApplyDiscardsSupersededFetch(t *testing.T) {
	m := canvas.NewMemory()
	r := NewReloader(testEngine(), m, log.New(io.Discard))
	ctx := context.Background()

	old, err := r.Fetch(ctx, loadOf(&DataSet{Nodes: map[string]Node{"old": {Label: "old"}}}))
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Reload(ctx, loadOf(&DataSet{Nodes: map[string]Node{"new": {Label: "new"}}}), viewstate.Empty()); err != nil {
		t.Fatal(err)
	}

	if err := old.Apply(ctx, viewstate.Empty()); !errors.Is(err, errors.ErrCodeStale) {
		t.Fatalf("err = %v, want STALE_RELOAD", err)
	}
	if !m.Has("new") {
		t.Error("newer data must survive; stale response may not stomp it")
	}
}

func TestReloadDiscardsStaleResponse(t *testing.T) {
	m := canvas.NewMemory()
	r := NewReloader(testEngine(), m, log.New(io.Discard))
	ctx := context.Background()

	// Simulate overlap: the older request takes its generation first but
	// its load completes only after a newer request has synchronized.
	// The reloader stamps the generation before invoking load, so waiting
	// for the load call guarantees the old generation is registered.
	loading := make(chan struct{})
	release := make(chan struct{})
	oldDone := make(chan error, 1)

	slowLoad := func(context.Context) (*DataSet, error) {
		close(loading)
		<-release
		return &DataSet{Nodes: map[string]Node{"old": {Label: "old"}}}, nil
	}
	go func() {
		oldDone <- r.Reload(ctx, slowLoad, viewstate.Empty())
	}()
	<-loading

	// The newer request starts and finishes while the old one is in flight.
	if err := r.Reload(ctx, loadOf(&DataSet{Nodes: map[string]Node{"new": {Label: "new"}}}), viewstate.Empty()); err != nil {
		t.Fatal(err)
	}
	close(release)

	if err := <-oldDone; !errors.Is(err, errors.ErrCodeStale) {
		t.Fatalf("err = %v, want STALE_RELOAD", err)
	}

	if !m.Has("new") {
		t.Error("newer data must survive; stale response may not stomp it")
	}
}

func TestReloadSynchronizationErrorSurfaced(t *testing.T) {
	m := canvas.NewMemory()
	r := NewReloader(testEngine(), m, log.New(io.Discard))

	cyclic := &DataSet{Nodes: map[string]Node{
		"a": {Label: "a", Parent: "b"},
		"b": {Label: "b", Parent: "a"},
	}}
	err := r.Reload(context.Background(), loadOf(cyclic), viewstate.Empty())
	if !errors.Is(err, errors.ErrCodeStructural) {
		t.Errorf("err = %v, want STRUCTURAL_ERROR surfaced", err)
	}
}
