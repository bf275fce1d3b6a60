package canvas

import "slices"

// Memory is the reference in-memory Canvas. It records insertion order
// (tests use it to observe parent-before-child ordering) and counts redraws
// so batched mutation is observable.
//
// Memory is not safe for concurrent use.
type Memory struct {
	order    []string
	elements map[string]Element

	positions map[string]Point
	camera    Camera
	selected  []string
	collapsed map[string]bool
	locked    bool

	batchDepth int
	redraws    int
}

// NewMemory creates an empty canvas with a neutral camera (zoom 1).
func NewMemory() *Memory {
	return &Memory{
		elements:  make(map[string]Element),
		positions: make(map[string]Point),
		collapsed: make(map[string]bool),
		camera:    Camera{Zoom: 1},
	}
}

// Add inserts an element, silently detaching it when its parent is absent.
// Adding an id that already exists is a no-op.
func (m *Memory) Add(el Element) {
	if el.ID == "" {
		return
	}
	if _, exists := m.elements[el.ID]; exists {
		return
	}
	if el.Parent != "" {
		if _, ok := m.elements[el.Parent]; !ok {
			el.Parent = ""
		}
	}
	m.elements[el.ID] = el
	m.order = append(m.order, el.ID)
	m.redraw()
}

// Remove deletes an element and its view attributes.
func (m *Memory) Remove(id string) {
	if _, ok := m.elements[id]; !ok {
		return
	}
	delete(m.elements, id)
	delete(m.positions, id)
	delete(m.collapsed, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
	m.selected = slices.DeleteFunc(m.selected, func(s string) bool { return s == id })
	m.redraw()
}

// Clear removes all elements and per-element attributes.
func (m *Memory) Clear() {
	m.order = nil
	m.elements = make(map[string]Element)
	m.positions = make(map[string]Point)
	m.collapsed = make(map[string]bool)
	m.selected = nil
	m.redraw()
}

// Has reports whether an element exists.
func (m *Memory) Has(id string) bool {
	_, ok := m.elements[id]
	return ok
}

// Element returns the element with the given id.
func (m *Memory) Element(id string) (Element, bool) {
	el, ok := m.elements[id]
	return el, ok
}

// Elements returns all elements in insertion order.
func (m *Memory) Elements() []Element {
	out := make([]Element, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.elements[id])
	}
	return out
}

// BeginBatch suspends redraws until the matching EndBatch.
func (m *Memory) BeginBatch() { m.batchDepth++ }

// EndBatch closes the innermost batch; the outermost close triggers a
// single redraw. Unbalanced calls are ignored.
func (m *Memory) EndBatch() {
	if m.batchDepth == 0 {
		return
	}
	m.batchDepth--
	if m.batchDepth == 0 {
		m.redraws++
	}
}

// Redraws returns the number of redraws performed so far.
func (m *Memory) Redraws() int { return m.redraws }

func (m *Memory) redraw() {
	if m.batchDepth == 0 {
		m.redraws++
	}
}

// Position returns the recorded position of a node element.
func (m *Memory) Position(id string) (Point, bool) {
	p, ok := m.positions[id]
	return p, ok
}

// SetPosition records a node position; unknown ids are ignored.
func (m *Memory) SetPosition(id string, p Point) {
	if _, ok := m.elements[id]; !ok {
		return
	}
	m.positions[id] = p
	m.redraw()
}

// Camera returns the current viewport.
func (m *Memory) Camera() Camera { return m.camera }

// SetCamera replaces the viewport.
func (m *Memory) SetCamera(c Camera) {
	m.camera = c
	m.redraw()
}

// Selected returns the current selection in the order it was set.
func (m *Memory) Selected() []string {
	return slices.Clone(m.selected)
}

// SetSelected replaces the selection, dropping ids without a live element.
func (m *Memory) SetSelected(ids []string) {
	m.selected = nil
	for _, id := range ids {
		if _, ok := m.elements[id]; ok {
			m.selected = append(m.selected, id)
		}
	}
	m.redraw()
}

// Collapse folds the group rooted at id; unknown ids are ignored.
func (m *Memory) Collapse(id string) {
	if _, ok := m.elements[id]; !ok {
		return
	}
	m.collapsed[id] = true
	m.redraw()
}

// Expand unfolds the group rooted at id.
func (m *Memory) Expand(id string) {
	if !m.collapsed[id] {
		return
	}
	delete(m.collapsed, id)
	m.redraw()
}

// Collapsed returns collapsed node ids in insertion order of the canvas.
func (m *Memory) Collapsed() []string {
	var out []string
	for _, id := range m.order {
		if m.collapsed[id] {
			out = append(out, id)
		}
	}
	return out
}

// IsCollapsed reports whether the group rooted at id is collapsed.
func (m *Memory) IsCollapsed(id string) bool { return m.collapsed[id] }

// SetLocked sets the autolock flag.
func (m *Memory) SetLocked(locked bool) {
	m.locked = locked
	m.redraw()
}

// Locked returns the autolock flag.
func (m *Memory) Locked() bool { return m.locked }

// Ensure Memory implements Canvas.
var _ Canvas = (*Memory)(nil)
