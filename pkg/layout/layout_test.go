package layout

import (
	"reflect"
	"testing"

	"github.com/relblock/relblock/pkg/graph"
)

func mustAdd(t *testing.T, g *graph.Graph, n graph.Node) {
	t.Helper()
	if err := g.AddNode(n); err != nil {
		t.Fatalf("AddNode(%s): %v", n.ID, err)
	}
}

func mustEdge(t *testing.T, g *graph.Graph, from, to string) {
	t.Helper()
	if err := g.AddEdge(from, to); err != nil {
		t.Fatalf("AddEdge(%s, %s): %v", from, to, err)
	}
}

func seriesPair(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	mustAdd(t, g, graph.Node{ID: "G1", Kind: graph.KindGate, Subtype: graph.GateAND})
	mustAdd(t, g, graph.Node{ID: "C1", Kind: graph.KindComponent})
	mustAdd(t, g, graph.Node{ID: "C2", Kind: graph.KindComponent})
	mustEdge(t, g, "G1", "C1")
	mustEdge(t, g, "G1", "C2")
	return g
}

func parallelTriple(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	mustAdd(t, g, graph.Node{ID: "G2", Kind: graph.KindGate, Subtype: graph.GateOR})
	mustAdd(t, g, graph.Node{ID: "C1", Kind: graph.KindComponent})
	mustAdd(t, g, graph.Node{ID: "C2", Kind: graph.KindComponent})
	mustAdd(t, g, graph.Node{ID: "C3", Kind: graph.KindComponent})
	mustEdge(t, g, "G2", "C1")
	mustEdge(t, g, "G2", "C2")
	mustEdge(t, g, "G2", "C3")
	return g
}

func TestComputeEmptyGraph(t *testing.T) {
	res := Compute(graph.New())
	if len(res.Nodes) != 0 || len(res.Lines) != 0 || len(res.Areas) != 0 {
		t.Errorf("empty graph produced geometry: %+v", res)
	}
	if res.Width != 0 || res.Height != 0 {
		t.Errorf("canvas = %v x %v, want 0 x 0", res.Width, res.Height)
	}
}

func TestComputeEmptyGate(t *testing.T) {
	g := graph.New()
	mustAdd(t, g, graph.Node{ID: "G1", Kind: graph.KindGate, Subtype: graph.GateAND})

	res := Compute(g)

	area := res.AreaByID("G1")
	if area == nil {
		t.Fatal("no gate area for G1")
	}
	if area.X != PageMarginX || area.Y != PageMarginY {
		t.Errorf("area origin = (%v, %v), want page margin", area.X, area.Y)
	}
	if area.Width != ComponentW || area.Height != ComponentH {
		t.Errorf("empty gate box = %v x %v, want component box", area.Width, area.Height)
	}
	label := res.NodeByID("G1")
	if label == nil || label.Kind != VisualGate {
		t.Fatalf("no gate label node: %+v", label)
	}
	if label.Height != GateLabelH {
		t.Errorf("label height = %v, want %v", label.Height, GateLabelH)
	}
	// Horizontally centered within the gate box.
	wantX := area.X + (area.Width-label.Width)/2
	if label.X != wantX {
		t.Errorf("label x = %v, want %v", label.X, wantX)
	}
}

func TestComputeSeriesPair(t *testing.T) {
	res := Compute(seriesPair(t))

	c1 := res.NodeByID("C1")
	c2 := res.NodeByID("C2")
	if c1 == nil || c2 == nil {
		t.Fatal("missing component nodes")
	}
	if c1.X != PageMarginX {
		t.Errorf("C1.X = %v, want %v", c1.X, PageMarginX)
	}
	if want := c1.X + ComponentW + SeriesSpacing; c2.X != want {
		t.Errorf("C2.X = %v, want %v", c2.X, want)
	}
	if c1.Y != c2.Y {
		t.Errorf("series children not on one baseline: %v vs %v", c1.Y, c2.Y)
	}

	var series []Line
	for _, l := range res.Lines {
		if l.Kind == LineSeries {
			series = append(series, l)
		}
	}
	if len(series) != 1 {
		t.Fatalf("series lines = %d, want 1", len(series))
	}
	l := series[0]
	if !l.Arrow {
		t.Error("series line into component should carry an arrowhead")
	}
	a1, a2 := res.Anchors["C1"], res.Anchors["C2"]
	if l.X1 != a1.RightX || l.X2 != a2.LeftX || l.Y1 != a1.CenterY || l.Y2 != a2.CenterY {
		t.Errorf("series line %+v does not join anchors %+v -> %+v", l, a1, a2)
	}
}

func TestComputeParallelTriple(t *testing.T) {
	res := Compute(parallelTriple(t))

	area := res.AreaByID("G2")
	if area == nil {
		t.Fatal("no gate area for G2")
	}

	var rails, connectors []Line
	for _, l := range res.Lines {
		switch l.Kind {
		case LineRail:
			rails = append(rails, l)
		case LineConnector:
			connectors = append(connectors, l)
		}
	}
	if len(rails) != 2 {
		t.Fatalf("rails = %d, want 2", len(rails))
	}
	// Rails run along the gate box edges.
	if rails[0].X1 != area.X || rails[1].X1 != area.X+area.Width {
		t.Errorf("rail x = %v, %v, want %v, %v", rails[0].X1, rails[1].X1, area.X, area.X+area.Width)
	}
	// Rails span first child center to last child center.
	first := res.Anchors["C1"].CenterY
	last := res.Anchors["C3"].CenterY
	for _, r := range rails {
		if r.Y1 != first || r.Y2 != last {
			t.Errorf("rail span = [%v, %v], want [%v, %v]", r.Y1, r.Y2, first, last)
		}
	}

	if len(connectors) != 6 {
		t.Fatalf("connectors = %d, want 6", len(connectors))
	}
	for _, c := range []string{"C1", "C2", "C3"} {
		node := res.NodeByID(c)
		cy := node.Y + node.Height/2
		var left, right *Line
		for i := range connectors {
			l := &connectors[i]
			if l.Y1 != cy {
				continue
			}
			if l.X1 == area.X {
				left = l
			} else {
				right = l
			}
		}
		if left == nil || right == nil {
			t.Fatalf("%s: missing connector pair at y=%v", c, cy)
		}
		if !left.Arrow {
			t.Errorf("%s: left connector should carry an arrowhead", c)
		}
		if right.Arrow {
			t.Errorf("%s: right connector should not carry an arrowhead", c)
		}
	}
}

func TestDeterminism(t *testing.T) {
	g := parallelTriple(t)
	a := Compute(g)
	b := Compute(g)
	if !reflect.DeepEqual(a, b) {
		t.Error("repeated Compute calls differ")
	}
}

func TestSizeMonotonicity(t *testing.T) {
	g := graph.New()
	mustAdd(t, g, graph.Node{ID: "and", Kind: graph.KindGate, Subtype: graph.GateAND})
	mustAdd(t, g, graph.Node{ID: "or", Kind: graph.KindGate, Subtype: graph.GateOR})
	for _, id := range []string{"A1", "A2", "P1", "P2", "P3"} {
		mustAdd(t, g, graph.Node{ID: id, Kind: graph.KindComponent})
	}
	mustEdge(t, g, "and", "A1")
	mustEdge(t, g, "and", "or")
	mustEdge(t, g, "and", "A2")
	mustEdge(t, g, "or", "P1")
	mustEdge(t, g, "or", "P2")
	mustEdge(t, g, "or", "P3")

	m := newMeasurer(g, map[string]bool{})
	path := map[string]bool{}

	orSize := m.measure("or", path)
	if orSize.H < 3*ComponentH {
		t.Errorf("or height %v < sum of child heights", orSize.H)
	}
	if orSize.W < ComponentW {
		t.Errorf("or width %v < max child width", orSize.W)
	}

	andSize := m.measure("and", path)
	if andSize.W < 2*ComponentW+orSize.W {
		t.Errorf("and width %v < sum of child widths", andSize.W)
	}
	if andSize.H < orSize.H {
		t.Errorf("and height %v < max child height %v", andSize.H, orSize.H)
	}
}

func TestContainment(t *testing.T) {
	g := graph.New()
	mustAdd(t, g, graph.Node{ID: "root", Kind: graph.KindGate, Subtype: graph.GateAND})
	mustAdd(t, g, graph.Node{ID: "or", Kind: graph.KindGate, Subtype: graph.GateOR})
	mustAdd(t, g, graph.Node{ID: "C1", Kind: graph.KindComponent})
	mustAdd(t, g, graph.Node{ID: "C2", Kind: graph.KindComponent})
	mustAdd(t, g, graph.Node{ID: "C3", Kind: graph.KindComponent})
	mustEdge(t, g, "root", "or")
	mustEdge(t, g, "root", "C3")
	mustEdge(t, g, "or", "C1")
	mustEdge(t, g, "or", "C2")

	res := Compute(g)

	for _, a := range res.Areas {
		parent := res.AreaByID(a.ParentGateID)
		if parent == nil {
			continue
		}
		if a.X < parent.X || a.Y < parent.Y ||
			a.X+a.Width > parent.X+parent.Width || a.Y+a.Height > parent.Y+parent.Height {
			t.Errorf("area %s escapes parent %s", a.ID, a.ParentGateID)
		}
	}
	for _, n := range res.Nodes {
		parent := res.AreaByID(n.ParentGateID)
		if parent == nil {
			continue
		}
		if n.X < parent.X || n.Y < parent.Y ||
			n.X+n.Width > parent.X+parent.Width || n.Y+n.Height > parent.Y+parent.Height {
			t.Errorf("node %s escapes parent %s", n.ID, n.ParentGateID)
		}
	}
}

func TestSeriesBaselineThroughRailGate(t *testing.T) {
	g := graph.New()
	mustAdd(t, g, graph.Node{ID: "root", Kind: graph.KindGate, Subtype: graph.GateAND})
	mustAdd(t, g, graph.Node{ID: "or", Kind: graph.KindGate, Subtype: graph.GateOR})
	mustAdd(t, g, graph.Node{ID: "C1", Kind: graph.KindComponent})
	mustAdd(t, g, graph.Node{ID: "C2", Kind: graph.KindComponent})
	mustAdd(t, g, graph.Node{ID: "C3", Kind: graph.KindComponent})
	mustEdge(t, g, "root", "or")
	mustEdge(t, g, "root", "C3")
	mustEdge(t, g, "or", "C1")
	mustEdge(t, g, "or", "C2")

	res := Compute(g)

	// The chain connects through one straight line: the rail gate's
	// anchor center and the plain component's anchor center coincide.
	if or, c3 := res.Anchors["or"], res.Anchors["C3"]; or.CenterY != c3.CenterY {
		t.Errorf("baseline mismatch: or at %v, C3 at %v", or.CenterY, c3.CenterY)
	}
	for _, l := range res.Lines {
		if l.Kind == LineSeries && l.Y1 != l.Y2 {
			t.Errorf("series line not horizontal: %+v", l)
		}
	}
}

func TestCollapseIdempotence(t *testing.T) {
	g := parallelTriple(t)

	res := Compute(g, WithCollapsed(map[string]bool{"G2": true}))

	if len(res.Areas) != 0 {
		t.Errorf("collapsed gate still emitted %d areas", len(res.Areas))
	}
	n := res.NodeByID("G2")
	if n == nil {
		t.Fatal("no node for collapsed gate")
	}
	if n.Width != ComponentW || n.Height != ComponentH {
		t.Errorf("collapsed gate box = %v x %v, want component box", n.Width, n.Height)
	}
	if n.Kind != VisualComponent || !n.Collapsed {
		t.Errorf("collapsed gate rendered as %+v", n)
	}
	if n.ChildCount != 3 {
		t.Errorf("ChildCount = %d, want 3", n.ChildCount)
	}
	// The hidden subtree contributes nothing.
	if res.NodeByID("C1") != nil {
		t.Error("hidden child was laid out")
	}
}

func TestArrowSuppression(t *testing.T) {
	g := graph.New()
	mustAdd(t, g, graph.Node{ID: "root", Kind: graph.KindGate, Subtype: graph.GateOR})
	mustAdd(t, g, graph.Node{ID: "and", Kind: graph.KindGate, Subtype: graph.GateAND})
	mustAdd(t, g, graph.Node{ID: "C1", Kind: graph.KindComponent})
	mustAdd(t, g, graph.Node{ID: "A1", Kind: graph.KindComponent})
	mustAdd(t, g, graph.Node{ID: "A2", Kind: graph.KindComponent})
	mustEdge(t, g, "root", "and")
	mustEdge(t, g, "root", "C1")
	mustEdge(t, g, "and", "A1")
	mustEdge(t, g, "and", "A2")

	res := Compute(g)

	andCY := res.Anchors["and"].CenterY
	c1CY := res.Anchors["C1"].CenterY
	rootArea := res.AreaByID("root")
	for _, l := range res.Lines {
		if l.Kind != LineConnector || l.X1 != rootArea.X {
			continue
		}
		switch l.Y1 {
		case andCY:
			if l.Arrow {
				t.Error("connector into AND gate should not carry an arrowhead")
			}
		case c1CY:
			if !l.Arrow {
				t.Error("connector into component should carry an arrowhead")
			}
		}
	}
}

func TestCycleGuard(t *testing.T) {
	g := graph.New()
	mustAdd(t, g, graph.Node{ID: "G1", Kind: graph.KindGate, Subtype: graph.GateAND})
	mustAdd(t, g, graph.Node{ID: "G2", Kind: graph.KindGate, Subtype: graph.GateOR})
	mustEdge(t, g, "G1", "G2")
	// G1 is the root so it has no parent, which lets a cycle sneak in.
	mustEdge(t, g, "G2", "G1")

	// Must terminate; the revisited node falls back to a leaf box.
	res := Compute(g)
	if len(res.Nodes) == 0 {
		t.Error("cyclic graph produced no geometry at all")
	}
}

func TestUnreachableNodesNotPlaced(t *testing.T) {
	g := parallelTriple(t)
	mustAdd(t, g, graph.Node{ID: "orphan", Kind: graph.KindComponent})

	res := Compute(g)
	if res.NodeByID("orphan") != nil {
		t.Error("orphan node was laid out")
	}
}

func TestCanvasPadding(t *testing.T) {
	res := Compute(seriesPair(t))
	var maxX, maxY float64
	for _, n := range res.Nodes {
		maxX = max(maxX, n.X+n.Width)
		maxY = max(maxY, n.Y+n.Height)
	}
	for _, a := range res.Areas {
		maxX = max(maxX, a.X+a.Width)
		maxY = max(maxY, a.Y+a.Height)
	}
	if res.Width != maxX+CanvasPadding || res.Height != maxY+CanvasPadding {
		t.Errorf("canvas = %v x %v, want %v x %v", res.Width, res.Height, maxX+CanvasPadding, maxY+CanvasPadding)
	}
}
