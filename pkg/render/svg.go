package render

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"

	"github.com/relblock/relblock/pkg/layout"
)

const diagramCSS = `
    .component { fill: #ffffff; stroke: #2b2b2b; stroke-width: 2; }
    .component.collapsed { stroke-dasharray: 6 3; }
    .gate-label { fill: #f2f2f2; stroke: #2b2b2b; stroke-width: 1.5; }
    .gate-area { stroke: #9a9a9a; stroke-width: 1; stroke-dasharray: 4 4; }
    .line { stroke: #2b2b2b; stroke-width: 2; fill: none; }
    .line.rail { stroke-width: 3; }
    .label { font-family: Helvetica, Arial, sans-serif; font-size: 16px; text-anchor: middle; }
    .label.gate { font-size: 13px; }
    .badge { font-family: Helvetica, Arial, sans-serif; font-size: 12px; text-anchor: end; fill: #555555; }`

// areaFill maps a gate subtype to the tint of its dimmed area.
var areaFill = map[string]string{
	"AND":  "#dce9f7",
	"OR":   "#fdeaea",
	"KOON": "#f3eafd",
}

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	showAreas bool
	title     string
}

// WithAreas draws dimmed gate bounding regions under the diagram.
func WithAreas() SVGOption { return func(r *svgRenderer) { r.showAreas = true } }

// WithTitle embeds an SVG title element for accessibility.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// RenderSVG draws layout geometry as a standalone SVG document. The
// output is deterministic for a given layout.
func RenderSVG(res *layout.Result, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		res.Width, res.Height, res.Width, res.Height)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(r.title))
	}
	renderDefs(&buf)

	if r.showAreas {
		renderAreas(&buf, res.Areas)
	}
	renderLines(&buf, res.Lines)
	renderNodes(&buf, res.Nodes)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <defs>\n")
	buf.WriteString(`    <marker id="arrow" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse">` + "\n")
	buf.WriteString(`      <path d="M 0 0 L 10 5 L 0 10 z" fill="#2b2b2b"/>` + "\n")
	buf.WriteString("    </marker>\n")
	buf.WriteString("  </defs>\n")
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", diagramCSS)
}

// renderAreas draws gate regions shallowest first so nested gates paint
// above their enclosing gate.
func renderAreas(buf *bytes.Buffer, areas []layout.GateArea) {
	sorted := make([]layout.GateArea, len(areas))
	copy(sorted, areas)
	slices.SortStableFunc(sorted, func(a, b layout.GateArea) int {
		return cmp.Compare(a.Depth, b.Depth)
	})

	for _, a := range sorted {
		fill := areaFill[string(a.Subtype)]
		if fill == "" {
			fill = "#eeeeee"
		}
		fmt.Fprintf(buf,
			`  <rect class="gate-area" data-node-id=%q x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6" fill=%q fill-opacity="0.45"/>`+"\n",
			a.ID, a.X, a.Y, a.Width, a.Height, fill)
	}
}

func renderLines(buf *bytes.Buffer, lines []layout.Line) {
	for _, l := range lines {
		marker := ""
		if l.Arrow {
			marker = ` marker-end="url(#arrow)"`
		}
		fmt.Fprintf(buf, `  <line class="line %s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"%s/>`+"\n",
			l.Kind, l.X1, l.Y1, l.X2, l.Y2, marker)
	}
}

func renderNodes(buf *bytes.Buffer, nodes []layout.Node) {
	for _, n := range nodes {
		switch n.Kind {
		case layout.VisualGate:
			renderGateLabel(buf, n)
		default:
			renderComponent(buf, n)
		}
	}
}

func renderComponent(buf *bytes.Buffer, n layout.Node) {
	class := "component"
	if n.Collapsed {
		class = "component collapsed"
	}
	fill := ""
	if n.Color != "" {
		fill = fmt.Sprintf(" fill=%q", n.Color)
	}
	fmt.Fprintf(buf, `  <rect class=%q data-node-id=%q x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="8"%s/>`+"\n",
		class, n.ID, n.X, n.Y, n.Width, n.Height, fill)
	fmt.Fprintf(buf, `  <text class="label" x="%.1f" y="%.1f">%s</text>`+"\n",
		n.X+n.Width/2, n.Y+n.Height/2+5, escapeXML(n.Label))

	// A collapsed gate shows how many children are hidden behind it.
	if n.Collapsed && n.ChildCount > 0 {
		fmt.Fprintf(buf, `  <text class="badge" x="%.1f" y="%.1f">+%d</text>`+"\n",
			n.X+n.Width-8, n.Y+18, n.ChildCount)
	}
}

func renderGateLabel(buf *bytes.Buffer, n layout.Node) {
	fmt.Fprintf(buf, `  <rect class="gate-label" data-node-id=%q x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4"/>`+"\n",
		n.ID, n.X, n.Y, n.Width, n.Height)
	fmt.Fprintf(buf, `  <text class="label gate" x="%.1f" y="%.1f">%s</text>`+"\n",
		n.X+n.Width/2, n.Y+n.Height/2+4, escapeXML(n.Label))
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
