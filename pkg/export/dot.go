// Package export renders a snapshot of a live canvas for sharing outside the
// interactive viewer.
//
// The snapshot honors the canvas view state where the format allows it:
// compound parents become clusters, collapsed groups are folded into a single
// node, and recorded positions are emitted as layout hints.
package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/graphview/pkg/canvas"
)

// ToDOT converts the canvas to Graphviz DOT format.
//
// Node elements with a parent are nested in their parent's cluster. A
// collapsed group is emitted as one box standing in for its whole subtree.
// Recorded positions become pos attributes, which neato-family layouts use
// as hints; dot ignores them.
func ToDOT(c canvas.Canvas) string {
	children := make(map[string][]canvas.Element)
	var roots []canvas.Element
	var edges []canvas.Element

	for _, el := range c.Elements() {
		switch {
		case el.IsEdge():
			edges = append(edges, el)
		case el.Parent != "":
			children[el.Parent] = append(children[el.Parent], el)
		default:
			roots = append(roots, el)
		}
	}

	hidden := make(map[string]bool)
	for _, id := range c.Collapsed() {
		markHidden(id, children, hidden)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, el := range roots {
		writeNode(&buf, c, el, children, 1)
	}

	buf.WriteString("\n")
	for _, e := range edges {
		src, dst := visibleEndpoint(e.Source, c, hidden), visibleEndpoint(e.Target, c, hidden)
		if e.Label != "" {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", src, dst, e.Label)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", src, dst)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// markHidden records every transitive child of a collapsed group.
func markHidden(id string, children map[string][]canvas.Element, hidden map[string]bool) {
	for _, child := range children[id] {
		hidden[child.ID] = true
		markHidden(child.ID, children, hidden)
	}
}

// visibleEndpoint redirects an edge endpoint buried in a collapsed group to
// the nearest visible ancestor group.
func visibleEndpoint(id string, c canvas.Canvas, hidden map[string]bool) string {
	for hidden[id] {
		el, ok := c.Element(id)
		if !ok || el.Parent == "" {
			break
		}
		id = el.Parent
	}
	return id
}

func writeNode(buf *bytes.Buffer, c canvas.Canvas, el canvas.Element, children map[string][]canvas.Element, indent int) {
	pad := strings.Repeat("  ", indent)
	kids := children[el.ID]

	if len(kids) > 0 && !c.IsCollapsed(el.ID) {
		fmt.Fprintf(buf, "%ssubgraph \"cluster_%s\" {\n", pad, el.ID)
		fmt.Fprintf(buf, "%s  label=%q;\n", pad, el.Label)
		for _, child := range kids {
			writeNode(buf, c, child, children, indent+1)
		}
		fmt.Fprintf(buf, "%s}\n", pad)
		return
	}

	attrs := []string{fmt.Sprintf("label=%q", nodeLabel(c, el, kids))}
	if p, ok := c.Position(el.ID); ok {
		attrs = append(attrs, fmt.Sprintf("pos=\"%.2f,%.2f\"", p.X, p.Y))
	}
	if c.IsCollapsed(el.ID) {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	fmt.Fprintf(buf, "%s%q [%s];\n", pad, el.ID, strings.Join(attrs, ", "))
}

// nodeLabel folds the subtree size into the label of a collapsed group.
func nodeLabel(c canvas.Canvas, el canvas.Element, kids []canvas.Element) string {
	if c.IsCollapsed(el.ID) && len(kids) > 0 {
		return fmt.Sprintf("%s (+%d)", el.Label, len(kids))
	}
	return el.Label
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
