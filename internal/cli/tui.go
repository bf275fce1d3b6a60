package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/graphview/pkg/canvas"
	"github.com/matzehuels/graphview/pkg/tree"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listMarkedStyle   = lipgloss.NewStyle().Foreground(colorGreen)
)

// reloadFetchedMsg carries a fetched reload back to the event loop. The
// apply step mutates the canvas, which is not safe for concurrent use, so it
// runs in Update on the event-loop goroutine rather than on the command
// goroutine that did the fetch.
type reloadFetchedMsg struct {
	apply func(context.Context) error
	err   error
}

// viewerRow is one visible line of the node tree.
type viewerRow struct {
	id       string
	label    string
	depth    int
	group    bool // has children
	collapse bool
}

// viewerModel is the bubbletea model for the interactive graph viewer.
//
// The canvas is the single source of truth: every key toggles state on the
// canvas itself, and the visible rows are derived from it on each change.
// Quitting leaves the canvas holding exactly the state to persist.
type viewerModel struct {
	canvas     canvas.Canvas
	descriptor string
	fetch      fetchFunc

	rows      []viewerRow
	cursor    int
	offset    int
	height    int
	reloading bool
	reloadErr error
}

// fetchFunc loads fresh source data without touching the canvas and returns
// the apply step that rebuilds the canvas from it.
type fetchFunc func(context.Context) (func(context.Context) error, error)

func newViewerModel(c canvas.Canvas, descriptor string, fetch fetchFunc) viewerModel {
	m := viewerModel{
		canvas:     c,
		descriptor: descriptor,
		fetch:      fetch,
		height:     15,
	}
	m.rows = buildRows(c)
	return m
}

// buildRows derives the visible tree rows from the canvas. Children of
// collapsed groups are skipped.
func buildRows(c canvas.Canvas) []viewerRow {
	var nodes []canvas.Element
	for _, el := range c.Elements() {
		if !el.IsEdge() {
			nodes = append(nodes, el)
		}
	}

	roots := tree.Build(nodes,
		func(el canvas.Element) string { return el.ID },
		func(el canvas.Element) (string, bool) { return el.Parent, el.Parent != "" },
	)

	var rows []viewerRow
	var walk func(n *tree.Node[canvas.Element])
	walk = func(n *tree.Node[canvas.Element]) {
		collapsed := c.IsCollapsed(n.Item.ID)
		rows = append(rows, viewerRow{
			id:       n.Item.ID,
			label:    n.Item.Label,
			depth:    n.Depth,
			group:    len(n.Children) > 0,
			collapse: collapsed,
		})
		if collapsed {
			return
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return rows
}

func (m viewerModel) Init() tea.Cmd {
	return nil
}

func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}

	case reloadFetchedMsg:
		m.reloading = false
		m.reloadErr = msg.err
		if msg.err == nil {
			m.reloadErr = msg.apply(context.Background())
		}
		m.rows = buildRows(m.canvas)
		m.clampCursor()
	}
	return m, nil
}

func (m viewerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
		}

	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
		}

	case "enter", " ":
		if row := m.current(); row != nil && row.group {
			if row.collapse {
				m.canvas.Expand(row.id)
			} else {
				m.canvas.Collapse(row.id)
			}
			m.rows = buildRows(m.canvas)
			m.clampCursor()
		}

	case "s":
		if row := m.current(); row != nil {
			m.canvas.SetSelected(toggle(m.canvas.Selected(), row.id))
		}

	case "L":
		m.canvas.SetLocked(!m.canvas.Locked())

	case "r":
		if !m.reloading && m.fetch != nil {
			m.reloading = true
			fetch := m.fetch
			return m, func() tea.Msg {
				apply, err := fetch(context.Background())
				return reloadFetchedMsg{apply: apply, err: err}
			}
		}
	}
	return m, nil
}

func (m *viewerModel) current() *viewerRow {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return &m.rows[m.cursor]
}

func (m *viewerModel) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

// toggle adds id to ids or removes it if present.
func toggle(ids []string, id string) []string {
	for i, existing := range ids {
		if existing == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return append(ids, id)
}

func (m viewerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.descriptor))
	if m.canvas.Locked() {
		b.WriteString(" " + StyleWarning.Render("[locked]"))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ fold  s select  L lock  r reload  q quit"))
	b.WriteString("\n\n")

	selected := make(map[string]bool)
	for _, id := range m.canvas.Selected() {
		selected[id] = true
	}

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for i := m.offset; i < end; i++ {
		row := m.rows[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		fold := "  "
		if row.group {
			fold = "▾ "
			if row.collapse {
				fold = "▸ "
			}
		}

		label := row.label
		style := listNormalStyle
		if selected[row.id] {
			style = listMarkedStyle
			label += " *"
		}
		if i == m.cursor {
			style = listSelectedStyle
		}

		b.WriteString(cursor)
		b.WriteString(strings.Repeat("  ", row.depth))
		b.WriteString(listDimStyle.Render(fold))
		b.WriteString(style.Render(label))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.reloading:
		b.WriteString(listDimStyle.Render("reloading..."))
	case m.reloadErr != nil:
		b.WriteString(StyleWarning.Render(fmt.Sprintf("reload failed: %v", m.reloadErr)))
	default:
		b.WriteString(listDimStyle.Render(fmt.Sprintf("%d nodes", len(m.rows))))
	}
	b.WriteString("\n")

	return b.String()
}
