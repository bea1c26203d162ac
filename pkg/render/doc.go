// Package render produces visual artifacts from layout geometry.
//
// # Overview
//
// This package turns a [layout.Result] into output formats:
//
//   - [RenderSVG] draws the diagram directly: boxes, rails, connectors,
//     and dimmed gate areas, exactly as the layout engine placed them.
//   - [RenderJSON] serializes the geometry for API consumers and editors.
//   - [ToDOT] exports the diagram tree in Graphviz DOT form, and
//     [RenderDOT] rasterizes that to SVG via Graphviz for a structural
//     node-link view that ignores the block layout.
//
// # SVG
//
// The SVG renderer is deterministic: the same layout produces the same
// bytes. Every node box carries a data-node-id attribute so a front end
// can hit-test and highlight without re-parsing geometry.
//
//	res := layout.Compute(g)
//	svg := render.RenderSVG(res)
//
// # Node-Link Diagrams
//
// The DOT export shows the tree structure (which gate owns which
// children) rather than the placed geometry:
//
//	dot := render.ToDOT(g, render.DOTOptions{})
//	svg, err := render.RenderDOT(dot)
package render
