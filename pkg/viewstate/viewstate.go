// Package viewstate captures and reapplies transient visual state against a
// live canvas.
//
// View state is everything the user adjusts during a session that is not part
// of the underlying graph data: node positions, camera pan/zoom, selection,
// collapsed groups, and the autolock flag. It is collected on demand, merged
// across reload boundaries, and persisted as a JSON document that round-trips
// through Collect and Apply without loss.
package viewstate

import (
	"encoding/json"

	"github.com/matzehuels/graphview/pkg/canvas"
)

// Point is a node position as persisted.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Camera is the persisted viewport descriptor.
type Camera struct {
	Pan  Point   `json:"pan"`
	Zoom float64 `json:"zoom"`
}

// ViewState holds the transient visual attributes of one session.
//
// Nil-valued fields mean "not captured": Apply leaves the corresponding
// canvas state untouched, and Merge lets the base value through. A Locked
// pointer (rather than a plain bool) keeps absence distinguishable from an
// explicit false.
type ViewState struct {
	Positions map[string]Point `json:"positions,omitempty"`
	Camera    *Camera          `json:"camera,omitempty"`
	Selected  []string         `json:"selected,omitempty"`
	Collapsed []string         `json:"collapsed,omitempty"`
	Locked    *bool            `json:"locked,omitempty"`
}

// Empty returns a view state with nothing captured.
func Empty() ViewState { return ViewState{} }

// Collect reads the current view state of c. Pure read; the canvas is not
// mutated.
func Collect(c canvas.Canvas) ViewState {
	vs := ViewState{
		Positions: make(map[string]Point),
		Selected:  c.Selected(),
		Collapsed: c.Collapsed(),
	}

	for _, el := range c.Elements() {
		if el.IsEdge() {
			continue
		}
		if p, ok := c.Position(el.ID); ok {
			vs.Positions[el.ID] = Point{X: p.X, Y: p.Y}
		}
	}

	cam := c.Camera()
	vs.Camera = &Camera{Pan: Point{X: cam.Pan.X, Y: cam.Pan.Y}, Zoom: cam.Zoom}

	locked := c.Locked()
	vs.Locked = &locked

	return vs
}

// Apply restores vs onto c. Identifiers without a live element are silently
// skipped; applying a state full of unknown ids is not an error. Fields not
// captured in vs leave the corresponding canvas state untouched.
func Apply(c canvas.Canvas, vs ViewState) {
	for id, p := range vs.Positions {
		if c.Has(id) {
			c.SetPosition(id, canvas.Point{X: p.X, Y: p.Y})
		}
	}

	if vs.Camera != nil {
		c.SetCamera(canvas.Camera{
			Pan:  canvas.Point{X: vs.Camera.Pan.X, Y: vs.Camera.Pan.Y},
			Zoom: vs.Camera.Zoom,
		})
	}

	if vs.Selected != nil {
		c.SetSelected(vs.Selected)
	}

	if vs.Collapsed != nil {
		for _, id := range c.Collapsed() {
			c.Expand(id)
		}
		for _, id := range vs.Collapsed {
			c.Collapse(id)
		}
	}

	if vs.Locked != nil {
		c.SetLocked(*vs.Locked)
	}
}

// Merge combines two view states with overlay-wins precedence.
//
// Positions merge per key: overlay entries replace base entries, keys present
// only in base are preserved. Camera, selection, collapsed set and lock flag
// are taken from overlay where captured, from base otherwise. Merging an
// empty overlay reduces to base; an overlay that captures everything wins
// everywhere.
func Merge(base, overlay ViewState) ViewState {
	out := ViewState{}

	if len(base.Positions) > 0 || len(overlay.Positions) > 0 {
		out.Positions = make(map[string]Point, len(base.Positions)+len(overlay.Positions))
		for id, p := range base.Positions {
			out.Positions[id] = p
		}
		for id, p := range overlay.Positions {
			out.Positions[id] = p
		}
	}

	out.Camera = base.Camera
	if overlay.Camera != nil {
		out.Camera = overlay.Camera
	}

	// Empty sets count as not captured; Collect never distinguishes an
	// empty selection from an absent one, and decoded states should not
	// either.
	out.Selected = base.Selected
	if len(overlay.Selected) > 0 {
		out.Selected = overlay.Selected
	}

	out.Collapsed = base.Collapsed
	if len(overlay.Collapsed) > 0 {
		out.Collapsed = overlay.Collapsed
	}

	out.Locked = base.Locked
	if overlay.Locked != nil {
		out.Locked = overlay.Locked
	}

	return out
}

// Encode serializes vs to its persisted JSON layout.
func Encode(vs ViewState) ([]byte, error) {
	return json.MarshalIndent(vs, "", "  ")
}

// Decode parses the persisted JSON layout.
func Decode(data []byte) (ViewState, error) {
	var vs ViewState
	if err := json.Unmarshal(data, &vs); err != nil {
		return ViewState{}, err
	}
	return vs, nil
}
