package cli

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphview/pkg/canvas"
	"github.com/matzehuels/graphview/pkg/errors"
	"github.com/matzehuels/graphview/pkg/graphsync"
	"github.com/matzehuels/graphview/pkg/viewstate"
)

func viewerCanvas() canvas.Canvas {
	c := canvas.NewMemory()
	c.Add(canvas.Element{ID: "root", Label: "Root"})
	c.Add(canvas.Element{ID: "a", Label: "Alpha", Parent: "root"})
	c.Add(canvas.Element{ID: "b", Label: "Beta", Parent: "root"})
	c.Add(canvas.Element{ID: "solo", Label: "Solo"})
	c.Add(canvas.Element{ID: "e1", Source: "a", Target: "solo"})
	return c
}

func TestBuildRows(t *testing.T) {
	rows := buildRows(viewerCanvas())

	if len(rows) != 4 {
		t.Fatalf("expected 4 rows (edges excluded), got %d", len(rows))
	}
	if rows[0].id != "root" || !rows[0].group {
		t.Errorf("expected root group first, got %+v", rows[0])
	}
	if rows[1].depth != 1 {
		t.Errorf("expected children indented, got depth %d", rows[1].depth)
	}
}

func TestBuildRows_CollapsedHidesChildren(t *testing.T) {
	c := viewerCanvas()
	c.Collapse("root")

	rows := buildRows(c)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows with root collapsed, got %d", len(rows))
	}
	if !rows[0].collapse {
		t.Error("expected root row marked collapsed")
	}
}

func TestViewerToggleCollapse(t *testing.T) {
	c := viewerCanvas()
	m := newViewerModel(c, "test", nil)

	// Cursor starts on root; enter collapses it.
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(viewerModel)

	if !c.IsCollapsed("root") {
		t.Error("expected root collapsed after enter")
	}
	if len(m.rows) != 2 {
		t.Errorf("expected rows rebuilt, got %d", len(m.rows))
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(viewerModel)
	if c.IsCollapsed("root") {
		t.Error("expected root expanded after second enter")
	}
}

func TestViewerToggleSelection(t *testing.T) {
	c := viewerCanvas()
	m := newViewerModel(c, "test", nil)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = updated.(viewerModel)

	sel := c.Selected()
	if len(sel) != 1 || sel[0] != "root" {
		t.Errorf("expected root selected, got %v", sel)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	_ = updated
	if len(c.Selected()) != 0 {
		t.Errorf("expected selection cleared, got %v", c.Selected())
	}
}

func TestViewerLock(t *testing.T) {
	c := viewerCanvas()
	m := newViewerModel(c, "test", nil)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'L'}})
	m = updated.(viewerModel)

	if !c.Locked() {
		t.Error("expected canvas locked")
	}
	if !strings.Contains(m.View(), "[locked]") {
		t.Error("expected lock indicator in view")
	}
}

func TestViewerReloadFetchLeavesCanvasUntouched(t *testing.T) {
	c := viewerCanvas()
	quiet := log.New(io.Discard)
	reloader := graphsync.NewReloader(graphsync.NewEngine(quiet), c, quiet)
	ds := &graphsync.DataSet{Nodes: map[string]graphsync.Node{"fresh": {Label: "Fresh"}}}

	fetch := func(ctx context.Context) (func(context.Context) error, error) {
		pending, err := reloader.Fetch(ctx, func(context.Context) (*graphsync.DataSet, error) {
			return ds, nil
		})
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) error {
			return pending.Apply(ctx, viewstate.Empty())
		}, nil
	}

	m := newViewerModel(c, "test", fetch)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = updated.(viewerModel)
	if cmd == nil {
		t.Fatal("expected a fetch command")
	}
	if !m.reloading {
		t.Error("expected reloading flag set")
	}

	// The command runs on its own goroutine in the real program, so it must
	// not mutate the canvas; only Update may, on receipt of the message.
	msg := cmd()
	if c.Has("fresh") || !c.Has("root") {
		t.Fatal("fetch command mutated the canvas")
	}

	updated, _ = m.Update(msg)
	m = updated.(viewerModel)
	if m.reloadErr != nil {
		t.Fatalf("reload error: %v", m.reloadErr)
	}
	if m.reloading {
		t.Error("expected reloading cleared")
	}
	if !c.Has("fresh") || c.Has("root") {
		t.Error("expected canvas rebuilt from the fresh data set")
	}
	if len(m.rows) != 1 || m.rows[0].id != "fresh" {
		t.Errorf("expected rows rebuilt, got %+v", m.rows)
	}
}

func TestViewerReloadFetchError(t *testing.T) {
	c := viewerCanvas()
	fetch := func(context.Context) (func(context.Context) error, error) {
		return nil, errors.New(errors.ErrCodeSource, "source unavailable")
	}
	m := newViewerModel(c, "test", fetch)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = updated.(viewerModel)

	updated, _ = m.Update(cmd())
	m = updated.(viewerModel)
	if m.reloadErr == nil {
		t.Fatal("expected reload error surfaced")
	}
	if !c.Has("root") {
		t.Error("failed fetch must leave the canvas untouched")
	}
	if !strings.Contains(m.View(), "reload failed") {
		t.Error("expected failure indicator in view")
	}
}

func TestViewerQuit(t *testing.T) {
	m := newViewerModel(viewerCanvas(), "test", nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if msg := cmd(); msg != (tea.QuitMsg{}) {
		t.Errorf("expected tea.QuitMsg, got %T", msg)
	}
}

func TestToggle(t *testing.T) {
	ids := toggle(nil, "a")
	if len(ids) != 1 || ids[0] != "a" {
		t.Errorf("expected [a], got %v", ids)
	}
	ids = toggle(ids, "b")
	ids = toggle(ids, "a")
	if len(ids) != 1 || ids[0] != "b" {
		t.Errorf("expected [b], got %v", ids)
	}
}
