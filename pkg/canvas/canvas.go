// Package canvas defines the rendering-engine surface the synchronization
// engine drives, together with a reference in-memory implementation.
//
// The real rendering engine is an external collaborator; this package pins
// down exactly the primitives the rest of GraphView is allowed to assume:
// element add/remove, batched mutation, per-element positions, camera,
// selection, collapse/expand grouping, and the autolock flag.
//
// Two behaviors of the engine's element graph drive the design of the
// synchronization engine and are part of this contract:
//
//   - An element's parent may only be set at creation time and is immutable
//     thereafter.
//   - Adding an element whose parent is not yet present silently detaches
//     it: the element is created with no parent, without error.
//
// Canvases are not safe for concurrent use; a single logical thread of
// control must drive all mutation.
package canvas

// Point is a position in canvas coordinates.
type Point struct {
	X float64
	Y float64
}

// Camera describes the viewport: a pan offset and a zoom factor.
type Camera struct {
	Pan  Point
	Zoom float64
}

// Element is a single record in the engine's element graph. Node elements
// carry ID, Label and optionally Parent; edge elements additionally carry
// Source and Target.
type Element struct {
	ID     string
	Label  string
	Parent string // Compound parent ID; fixed at creation, empty for top-level
	Source string // Edge source node ID (edges only)
	Target string // Edge target node ID (edges only)
}

// IsEdge reports whether the element is an edge record.
func (e Element) IsEdge() bool { return e.Source != "" || e.Target != "" }

// Canvas is the consumed interface of the rendering engine's live element
// graph.
type Canvas interface {
	// Add inserts an element. If the element names a parent that does not
	// exist yet, it is inserted detached (no parent) without error.
	Add(el Element)

	// Remove deletes the element with the given id along with its view
	// attributes. Removing an unknown id is a no-op.
	Remove(id string)

	// Clear removes every element and all per-element view attributes.
	// Camera and lock flag are left as-is.
	Clear()

	// Has reports whether an element with the given id exists.
	Has(id string) bool

	// Element returns the element with the given id.
	Element(id string) (Element, bool)

	// Elements returns all elements in insertion order.
	Elements() []Element

	// BeginBatch suspends redraw until the matching EndBatch. Batches
	// nest; only the outermost EndBatch triggers a redraw.
	BeginBatch()
	EndBatch()

	// Position returns the recorded position of a node element.
	Position(id string) (Point, bool)
	// SetPosition records the position of a node element. Unknown ids
	// are ignored.
	SetPosition(id string, p Point)

	Camera() Camera
	SetCamera(c Camera)

	// Selected returns the ids of currently selected elements.
	Selected() []string
	// SetSelected replaces the selection. Ids without a live element are
	// silently dropped.
	SetSelected(ids []string)

	// Collapse folds the compound group rooted at a node; Expand unfolds
	// it. Collapsed returns the collapsed node ids.
	Collapse(id string)
	Expand(id string)
	Collapsed() []string
	IsCollapsed(id string) bool

	// Locked is the autolock flag: when set, interactive position
	// changes are disabled.
	SetLocked(locked bool)
	Locked() bool
}
