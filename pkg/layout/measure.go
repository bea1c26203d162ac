package layout

import "github.com/relblock/relblock/pkg/graph"

// measurer runs the post-order size pass. Sizes are memoized per node ID
// for the lifetime of one Compute call.
type measurer struct {
	g         *graph.Graph
	collapsed map[string]bool
	memo      map[string]Size
}

func newMeasurer(g *graph.Graph, collapsed map[string]bool) *measurer {
	return &measurer{
		g:         g,
		collapsed: collapsed,
		memo:      make(map[string]Size),
	}
}

// componentBox is the fixed size of a leaf component or collapsed gate.
func componentBox() Size { return Size{W: ComponentW, H: ComponentH} }

// emptyGateBox sizes a gate with no children: the larger of the minimum
// label box and the component box, so an empty gate still renders as a
// usable drop target.
func emptyGateBox() Size {
	return Size{
		W: max(GateLabelMinW, ComponentW),
		H: max(GateHeaderH+GateLabelH, ComponentH),
	}
}

// measure computes the bounding box of the visible subtree rooted at id.
// path holds the IDs on the current ancestor chain: a node revisited on
// its own path returns the component box instead of recursing, bounding
// the walk on cyclic input. That fallback is deliberately not memoized.
func (m *measurer) measure(id string, path map[string]bool) Size {
	if path[id] {
		return componentBox()
	}
	if s, ok := m.memo[id]; ok {
		return s
	}

	s := m.measureNode(id, path)
	m.memo[id] = s
	return s
}

func (m *measurer) measureNode(id string, path map[string]bool) Size {
	n, ok := m.g.Node(id)
	if !ok {
		return componentBox()
	}
	if n.IsComponent() || m.collapsed[id] {
		return componentBox()
	}

	children := m.g.Children(id)
	if len(children) == 0 {
		return emptyGateBox()
	}

	path[id] = true
	defer delete(path, id)

	sizes := make([]Size, len(children))
	for i, c := range children {
		sizes[i] = m.measure(c, path)
	}

	switch n.Subtype {
	case graph.GateAND:
		var w, maxH float64
		for _, s := range sizes {
			w += s.W
			maxH = max(maxH, s.H)
		}
		w += SeriesSpacing * float64(len(sizes)-1)
		return Size{W: w, H: GateHeaderH + maxH}
	default: // OR and KOON stack vertically between rails
		var h, maxW float64
		for _, s := range sizes {
			h += s.H
			maxW = max(maxW, s.W)
		}
		h += BranchSpacing * float64(len(sizes)-1)
		return Size{
			W: max(railSpanMinW, maxW+2*RailPadding),
			H: GateHeaderH + h,
		}
	}
}
