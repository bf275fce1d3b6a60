package viewstate

import (
	"reflect"
	"slices"
	"testing"

	"github.com/matzehuels/graphview/pkg/canvas"
)

func boolPtr(b bool) *bool { return &b }

func populatedCanvas() *canvas.Memory {
	m := canvas.NewMemory()
	m.Add(canvas.Element{ID: "a", Label: "A"})
	m.Add(canvas.Element{ID: "b", Label: "B", Parent: "a"})
	m.Add(canvas.Element{ID: "e1", Source: "a", Target: "b"})
	m.SetPosition("a", canvas.Point{X: 10, Y: 20})
	m.SetPosition("b", canvas.Point{X: 30, Y: 40})
	m.SetCamera(canvas.Camera{Pan: canvas.Point{X: -5, Y: 3}, Zoom: 1.5})
	m.SetSelected([]string{"b"})
	m.Collapse("a")
	m.SetLocked(true)
	return m
}

func TestCollect(t *testing.T) {
	vs := Collect(populatedCanvas())

	if len(vs.Positions) != 2 {
		t.Fatalf("positions = %v, want entries for a and b only", vs.Positions)
	}
	if vs.Positions["a"] != (Point{X: 10, Y: 20}) {
		t.Errorf("position a = %+v", vs.Positions["a"])
	}
	if vs.Camera == nil || vs.Camera.Zoom != 1.5 || vs.Camera.Pan.X != -5 {
		t.Errorf("camera = %+v", vs.Camera)
	}
	if !slices.Equal(vs.Selected, []string{"b"}) {
		t.Errorf("selected = %v", vs.Selected)
	}
	if !slices.Equal(vs.Collapsed, []string{"a"}) {
		t.Errorf("collapsed = %v", vs.Collapsed)
	}
	if vs.Locked == nil || !*vs.Locked {
		t.Error("locked flag not captured")
	}
}

func TestCollectApplyIdempotent(t *testing.T) {
	m := populatedCanvas()

	first := Collect(m)
	Apply(m, first)
	second := Collect(m)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("collect/apply/collect drifted:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestApplySkipsUnknownIDs(t *testing.T) {
	m := canvas.NewMemory()
	m.Add(canvas.Element{ID: "a"})

	Apply(m, ViewState{
		Positions: map[string]Point{"a": {X: 1, Y: 2}, "ghost": {X: 9, Y: 9}},
		Selected:  []string{"a", "ghost"},
		Collapsed: []string{"ghost"},
	})

	if p, ok := m.Position("a"); !ok || p.X != 1 {
		t.Errorf("position a = %+v, %v", p, ok)
	}
	if _, ok := m.Position("ghost"); ok {
		t.Error("unknown id must not gain a position")
	}
	if got := m.Selected(); !slices.Equal(got, []string{"a"}) {
		t.Errorf("selected = %v, want [a]", got)
	}
	if len(m.Collapsed()) != 0 {
		t.Errorf("collapsed = %v, want empty", m.Collapsed())
	}
}

func TestApplyUncapturedFieldsLeaveCanvasAlone(t *testing.T) {
	m := populatedCanvas()
	before := Collect(m)

	Apply(m, ViewState{}) // nothing captured

	after := Collect(m)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("empty state must not mutate the canvas:\nbefore: %+v\nafter:  %+v", before, after)
	}
}

func TestApplyReplacesCollapsedSet(t *testing.T) {
	m := canvas.NewMemory()
	m.Add(canvas.Element{ID: "a"})
	m.Add(canvas.Element{ID: "b"})
	m.Collapse("a")

	Apply(m, ViewState{Collapsed: []string{"b"}})

	if m.IsCollapsed("a") {
		t.Error("a should have been expanded")
	}
	if !m.IsCollapsed("b") {
		t.Error("b should be collapsed")
	}
}

func TestMergeEmptyOverlayIsBase(t *testing.T) {
	base := ViewState{
		Positions: map[string]Point{"a": {X: 1}},
		Camera:    &Camera{Zoom: 2},
		Selected:  []string{"a"},
		Collapsed: []string{"a"},
		Locked:    boolPtr(true),
	}

	got := Merge(base, ViewState{})
	if !reflect.DeepEqual(got, base) {
		t.Errorf("Merge(base, empty) = %+v, want base", got)
	}
}

func TestMergeFullOverlayWins(t *testing.T) {
	base := ViewState{
		Positions: map[string]Point{"a": {X: 1}},
		Camera:    &Camera{Zoom: 2},
		Selected:  []string{"a"},
		Collapsed: []string{"a"},
		Locked:    boolPtr(true),
	}
	overlay := ViewState{
		Positions: map[string]Point{"a": {X: 7}},
		Camera:    &Camera{Zoom: 9},
		Selected:  []string{"b"},
		Collapsed: []string{"b"},
		Locked:    boolPtr(false),
	}

	got := Merge(base, overlay)
	if got.Positions["a"].X != 7 {
		t.Errorf("position a = %+v, want overlay value", got.Positions["a"])
	}
	if got.Camera.Zoom != 9 {
		t.Errorf("camera = %+v, want overlay camera", got.Camera)
	}
	if !slices.Equal(got.Selected, []string{"b"}) {
		t.Errorf("selected = %v, want overlay selection", got.Selected)
	}
	if !slices.Equal(got.Collapsed, []string{"b"}) {
		t.Errorf("collapsed = %v, want overlay set", got.Collapsed)
	}
	if *got.Locked {
		t.Error("locked should come from overlay")
	}
}

func TestMergeEmptySetsPreserveBase(t *testing.T) {
	base := ViewState{
		Selected:  []string{"a"},
		Collapsed: []string{"a"},
	}

	// An empty JSON array decodes to a non-nil slice; it still counts as
	// not captured.
	overlay, err := Decode([]byte(`{"selected": [], "collapsed": []}`))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	got := Merge(base, overlay)
	if !slices.Equal(got.Selected, []string{"a"}) {
		t.Errorf("selected = %v, want base preserved", got.Selected)
	}
	if !slices.Equal(got.Collapsed, []string{"a"}) {
		t.Errorf("collapsed = %v, want base preserved", got.Collapsed)
	}
}

func TestMergePreservesBaseOnlyKeys(t *testing.T) {
	base := ViewState{Positions: map[string]Point{"a": {X: 1}, "b": {X: 2}}}
	overlay := ViewState{Positions: map[string]Point{"b": {X: 20}, "c": {X: 30}}}

	got := Merge(base, overlay)
	want := map[string]Point{"a": {X: 1}, "b": {X: 20}, "c": {X: 30}}
	if !reflect.DeepEqual(got.Positions, want) {
		t.Errorf("positions = %v, want %v", got.Positions, want)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	vs := Collect(populatedCanvas())

	data, err := Encode(vs)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	back, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	if !reflect.DeepEqual(vs, back) {
		t.Errorf("round trip drifted:\nin:  %+v\nout: %+v", vs, back)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("not json")); err == nil {
		t.Error("Decode should fail on malformed input")
	}
}
