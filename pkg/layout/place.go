package layout

import "github.com/relblock/relblock/pkg/graph"

// placer runs the pre-order placement pass, writing into the shared
// Result buffers. It relies on sizes already computed by the measurer.
type placer struct {
	g         *graph.Graph
	collapsed map[string]bool
	sizes     *measurer
	out       *Result
}

// place assigns absolute geometry to the subtree rooted at id. path is
// the same per-branch cycle guard as in measure: a node revisited on its
// own ancestor chain is placed as a plain leaf and not descended into.
func (p *placer) place(id string, x, y float64, parentGate string, depth int, path map[string]bool) {
	n, ok := p.g.Node(id)
	if !ok {
		// Dangling reference: nothing to draw, but give connectors a
		// degenerate anchor so siblings still line up.
		p.out.Anchors[id] = Anchor{LeftX: x, RightX: x, CenterY: y}
		return
	}

	if n.IsComponent() || p.collapsed[id] || path[id] {
		p.placeLeaf(n, x, y, parentGate)
		return
	}

	size := p.sizes.measure(id, path)
	p.out.Areas = append(p.out.Areas, GateArea{
		ID:           id,
		ParentGateID: parentGate,
		Subtype:      n.Subtype,
		Color:        n.Color,
		X:            x,
		Y:            y,
		Width:        size.W,
		Height:       size.H,
		Depth:        depth,
	})
	p.placeGateLabel(n, x, y, size.W, parentGate)

	children := p.g.Children(id)
	if len(children) == 0 {
		p.out.Anchors[id] = Anchor{LeftX: x, RightX: x + size.W, CenterY: y + size.H/2}
		return
	}

	path[id] = true
	defer delete(path, id)

	if n.Subtype == graph.GateAND {
		p.placeSeries(id, children, x, y, size, depth, path)
	} else {
		p.placeStack(id, children, x, y, size, depth, path)
	}
}

func (p *placer) placeLeaf(n *graph.Node, x, y float64, parentGate string) {
	ln := Node{
		ID:           n.ID,
		Kind:         VisualComponent,
		X:            x,
		Y:            y,
		Width:        ComponentW,
		Height:       ComponentH,
		ParentGateID: parentGate,
		Label:        n.DisplayLabel(),
		Color:        n.Color,
		DistKind:     n.DistKind,
		Reliability:  n.Reliability,
	}
	if n.IsGate() {
		ln.Subtype = n.Subtype
		ln.K = n.K
		ln.ChildCount = len(p.g.Children(n.ID))
		ln.Collapsed = true
	}
	p.out.Nodes = append(p.out.Nodes, ln)
	p.out.Anchors[n.ID] = Anchor{
		LeftX:   x,
		RightX:  x + ComponentW,
		CenterY: y + ComponentH/2,
	}
}

// placeGateLabel emits the gate's own label box, horizontally centered
// at the top of the gate area.
func (p *placer) placeGateLabel(n *graph.Node, x, y, gateW float64, parentGate string) {
	labelW := gateLabelW(gateW)
	p.out.Nodes = append(p.out.Nodes, Node{
		ID:           n.ID,
		Kind:         VisualGate,
		X:            x + (gateW-labelW)/2,
		Y:            y,
		Width:        labelW,
		Height:       GateLabelH,
		ParentGateID: parentGate,
		Subtype:      n.Subtype,
		K:            n.K,
		ChildCount:   len(p.g.Children(n.ID)),
		Label:        n.DisplayLabel(),
		Color:        n.Color,
		Reliability:  n.Reliability,
	})
}

// placeSeries lays out an AND gate: children left to right at a shared
// baseline, joined by series connectors.
func (p *placer) placeSeries(id string, children []string, x, y float64, size Size, depth int, path map[string]bool) {
	offsets := make([]float64, len(children))
	var maxOff float64
	for i, c := range children {
		offsets[i] = p.connectOffset(c, path)
		maxOff = max(maxOff, offsets[i])
	}
	baseline := y + GateHeaderH + maxOff

	cx := x
	prev := ""
	for i, c := range children {
		cs := p.sizes.measure(c, path)
		p.place(c, cx, baseline-offsets[i], id, depth+1, path)
		if prev != "" {
			pa := p.out.Anchors[prev]
			ca := p.out.Anchors[c]
			p.out.Lines = append(p.out.Lines, Line{
				X1:    pa.RightX,
				Y1:    pa.CenterY,
				X2:    ca.LeftX,
				Y2:    ca.CenterY,
				Kind:  LineSeries,
				Arrow: p.arrowInto(c),
			})
		}
		prev = c
		cx += cs.W + SeriesSpacing
	}

	p.out.Anchors[id] = Anchor{LeftX: x, RightX: x + size.W, CenterY: baseline}
}

// placeStack lays out an OR/KOON gate: children top to bottom between a
// pair of rails running along the gate box edges, each child joined to
// both rails by a horizontal connector at its anchor center.
func (p *placer) placeStack(id string, children []string, x, y float64, size Size, depth int, path map[string]bool) {
	leftRail := x
	rightRail := x + size.W

	cy := y + GateHeaderH
	for _, c := range children {
		cs := p.sizes.measure(c, path)
		cx := x + (size.W-cs.W)/2
		p.place(c, cx, cy, id, depth+1, path)

		// Connect at the child's effective edges: its own rails when the
		// child stacks further, its box edges otherwise. Both are what
		// the anchor already holds.
		a := p.out.Anchors[c]
		p.out.Lines = append(p.out.Lines,
			Line{X1: leftRail, Y1: a.CenterY, X2: a.LeftX, Y2: a.CenterY, Kind: LineConnector, Arrow: p.arrowInto(c)},
			Line{X1: a.RightX, Y1: a.CenterY, X2: rightRail, Y2: a.CenterY, Kind: LineConnector},
		)
		cy += cs.H + BranchSpacing
	}

	firstCY := p.out.Anchors[children[0]].CenterY
	lastCY := p.out.Anchors[children[len(children)-1]].CenterY
	p.out.Lines = append(p.out.Lines,
		Line{X1: leftRail, Y1: firstCY, X2: leftRail, Y2: lastCY, Kind: LineRail},
		Line{X1: rightRail, Y1: firstCY, X2: rightRail, Y2: lastCY, Kind: LineRail},
	)

	p.out.Anchors[id] = Anchor{LeftX: leftRail, RightX: rightRail, CenterY: (firstCY + lastCY) / 2}
}

// connectOffset predicts where a child's connection center will sit
// relative to its top edge, before the child is placed. It walks one
// level into expanded gates so AND chains passing through nested rail
// gates still join on a single straight line.
func (p *placer) connectOffset(id string, path map[string]bool) float64 {
	size := p.sizes.measure(id, path)
	n, ok := p.g.Node(id)
	if !ok || !n.IsGate() || p.collapsed[id] || path[id] {
		return size.H / 2
	}
	children := p.g.Children(id)
	if len(children) == 0 {
		return size.H / 2
	}

	if n.Subtype == graph.GateAND {
		return GateHeaderH + (size.H-GateHeaderH)/2
	}

	// Rail gate: the anchor sits midway between the first and last
	// child's stack centers.
	path[id] = true
	var cy, firstMid, lastMid float64
	for i, c := range children {
		cs := p.sizes.measure(c, path)
		mid := cy + cs.H/2
		if i == 0 {
			firstMid = mid
		}
		lastMid = mid
		cy += cs.H + BranchSpacing
	}
	delete(path, id)
	return GateHeaderH + (firstMid+lastMid)/2
}

// arrowInto reports whether a connector pointing at the child carries an
// arrowhead. Collapsed gates and AND gates do not take incoming arrows:
// AND gates draw their own series arrows at the point of convergence.
func (p *placer) arrowInto(id string) bool {
	n, ok := p.g.Node(id)
	if !ok {
		return false
	}
	if n.IsGate() && (p.collapsed[id] || n.Subtype == graph.GateAND) {
		return false
	}
	return true
}
