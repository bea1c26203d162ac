package layout

import "github.com/relblock/relblock/pkg/graph"

// Option configures one Compute call.
type Option func(*config)

type config struct {
	collapsed map[string]bool
}

// WithCollapsed marks gate IDs to render as opaque component-shaped
// leaves. Both passes short-circuit at a collapsed gate, so its subtree
// contributes nothing to the geometry.
func WithCollapsed(ids map[string]bool) Option {
	return func(c *config) { c.collapsed = ids }
}

// Compute lays out the tree reachable from the graph's root. It never
// fails: a graph with no root yields an empty Result, and nodes not
// reachable from the root are simply not laid out.
func Compute(g *graph.Graph, opts ...Option) *Result {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.collapsed == nil {
		cfg.collapsed = map[string]bool{}
	}

	out := &Result{Anchors: make(map[string]Anchor)}
	root := g.Root()
	if root == "" {
		return out
	}
	if _, ok := g.Node(root); !ok {
		return out
	}

	m := newMeasurer(g, cfg.collapsed)
	p := &placer{g: g, collapsed: cfg.collapsed, sizes: m, out: out}
	p.place(root, PageMarginX, PageMarginY, "", 0, map[string]bool{})

	out.Width, out.Height = canvasSize(out)
	return out
}

// canvasSize returns the bounding box of all placed geometry extended by
// the outer canvas padding.
func canvasSize(r *Result) (float64, float64) {
	var maxX, maxY float64
	for _, n := range r.Nodes {
		maxX = max(maxX, n.X+n.Width)
		maxY = max(maxY, n.Y+n.Height)
	}
	for _, a := range r.Areas {
		maxX = max(maxX, a.X+a.Width)
		maxY = max(maxY, a.Y+a.Height)
	}
	if maxX == 0 && maxY == 0 {
		return 0, 0
	}
	return maxX + CanvasPadding, maxY + CanvasPadding
}
