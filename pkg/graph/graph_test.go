package graph

import (
	"errors"
	"slices"
	"testing"
)

func buildParallel(t *testing.T) *Graph {
	t.Helper()
	g := New()
	mustAdd(t, g, Node{ID: "G1", Kind: KindGate, Subtype: GateOR})
	mustAdd(t, g, Node{ID: "C1", Kind: KindComponent})
	mustAdd(t, g, Node{ID: "C2", Kind: KindComponent})
	mustAdd(t, g, Node{ID: "C3", Kind: KindComponent})
	mustEdge(t, g, "G1", "C1")
	mustEdge(t, g, "G1", "C2")
	mustEdge(t, g, "G1", "C3")
	return g
}

func mustAdd(t *testing.T, g *Graph, n Node) {
	t.Helper()
	if err := g.AddNode(n); err != nil {
		t.Fatalf("AddNode(%s): %v", n.ID, err)
	}
}

func mustEdge(t *testing.T, g *Graph, from, to string) {
	t.Helper()
	if err := g.AddEdge(from, to); err != nil {
		t.Fatalf("AddEdge(%s, %s): %v", from, to, err)
	}
}

func TestAddNode(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{ID: "", Kind: KindComponent}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("empty ID: got %v, want ErrInvalidNodeID", err)
	}
	mustAdd(t, g, Node{ID: "C1", Kind: KindComponent})
	if g.Root() != "C1" {
		t.Errorf("first node should become root, got %q", g.Root())
	}
	if err := g.AddNode(Node{ID: "C1", Kind: KindComponent}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("duplicate: got %v, want ErrDuplicateNodeID", err)
	}
}

func TestAddEdge(t *testing.T) {
	g := buildParallel(t)

	if got := g.Children("G1"); !slices.Equal(got, []string{"C1", "C2", "C3"}) {
		t.Errorf("Children(G1) = %v", got)
	}
	if got := g.Parent("C2"); got != "G1" {
		t.Errorf("Parent(C2) = %q, want G1", got)
	}

	mustAdd(t, g, Node{ID: "G2", Kind: KindGate, Subtype: GateAND})
	if err := g.AddEdge("G2", "C1"); !errors.Is(err, ErrHasParent) {
		t.Errorf("second parent: got %v, want ErrHasParent", err)
	}
	if err := g.AddEdge("C1", "G2"); !errors.Is(err, ErrNotAGate) {
		t.Errorf("component parent: got %v, want ErrNotAGate", err)
	}
	if err := g.AddEdge("G1", "missing"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("missing child: got %v, want ErrUnknownNode", err)
	}
}

func TestInsertChildAt(t *testing.T) {
	g := buildParallel(t)
	mustAdd(t, g, Node{ID: "C4", Kind: KindComponent})

	if err := g.InsertChildAt("G1", "C4", 5); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("out of range: got %v, want ErrInvalidPosition", err)
	}
	if err := g.InsertChildAt("G1", "C4", 1); err != nil {
		t.Fatalf("InsertChildAt: %v", err)
	}
	if got := g.Children("G1"); !slices.Equal(got, []string{"C1", "C4", "C2", "C3"}) {
		t.Errorf("Children(G1) = %v", got)
	}
}

func TestRemoveComponent(t *testing.T) {
	g := buildParallel(t)
	if err := g.RemoveNode("C2"); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	if _, ok := g.Node("C2"); ok {
		t.Error("C2 still present")
	}
	if got := g.Children("G1"); !slices.Equal(got, []string{"C1", "C3"}) {
		t.Errorf("Children(G1) = %v", got)
	}
}

func TestRemoveGateAdoptsSoleChild(t *testing.T) {
	g := New()
	mustAdd(t, g, Node{ID: "G1", Kind: KindGate, Subtype: GateAND})
	mustAdd(t, g, Node{ID: "G2", Kind: KindGate, Subtype: GateOR})
	mustAdd(t, g, Node{ID: "C1", Kind: KindComponent})
	mustEdge(t, g, "G1", "G2")
	mustEdge(t, g, "G2", "C1")

	if err := g.RemoveNode("G2"); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	if got := g.Children("G1"); !slices.Equal(got, []string{"C1"}) {
		t.Errorf("Children(G1) = %v, want [C1]", got)
	}
	if got := g.Parent("C1"); got != "G1" {
		t.Errorf("Parent(C1) = %q, want G1", got)
	}
}

func TestRemoveGateWithManyChildren(t *testing.T) {
	g := buildParallel(t)
	if err := g.RemoveNode("G1"); !errors.Is(err, ErrGateNotEmpty) {
		t.Errorf("got %v, want ErrGateNotEmpty", err)
	}
}

func TestRemoveRootGate(t *testing.T) {
	g := New()
	mustAdd(t, g, Node{ID: "G1", Kind: KindGate, Subtype: GateOR})
	mustAdd(t, g, Node{ID: "C1", Kind: KindComponent})
	mustEdge(t, g, "G1", "C1")

	if err := g.RemoveNode("G1"); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	if g.Root() != "C1" {
		t.Errorf("root = %q, want C1", g.Root())
	}
}

func TestEditGateClampsK(t *testing.T) {
	g := buildParallel(t)

	tests := []struct {
		name string
		k    int
		want int
	}{
		{name: "below range", k: 0, want: 1},
		{name: "in range", k: 2, want: 2},
		{name: "above child count", k: 7, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.EditGate("G1", GateKOON, tt.k); err != nil {
				t.Fatalf("EditGate: %v", err)
			}
			n, _ := g.Node("G1")
			if n.K != tt.want {
				t.Errorf("K = %d, want %d", n.K, tt.want)
			}
		})
	}

	if err := g.EditGate("C1", GateAND, 0); !errors.Is(err, ErrNotAGate) {
		t.Errorf("component target: got %v, want ErrNotAGate", err)
	}
}

func TestEditComponentRename(t *testing.T) {
	g := buildParallel(t)
	err := g.EditComponent("C2", "pump", func(n *Node) { n.DistKind = "weibull" })
	if err != nil {
		t.Fatalf("EditComponent: %v", err)
	}
	if _, ok := g.Node("C2"); ok {
		t.Error("old ID still present")
	}
	n, ok := g.Node("pump")
	if !ok {
		t.Fatal("renamed node missing")
	}
	if n.DistKind != "weibull" {
		t.Errorf("DistKind = %q", n.DistKind)
	}
	// Rename keeps display position.
	if got := g.Children("G1"); !slices.Equal(got, []string{"C1", "pump", "C3"}) {
		t.Errorf("Children(G1) = %v", got)
	}
	if err := g.EditComponent("C1", "pump", nil); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("rename onto taken ID: got %v, want ErrDuplicateNodeID", err)
	}
}

func TestReorderChildren(t *testing.T) {
	tests := []struct {
		name    string
		order   []string
		wantErr error
	}{
		{name: "valid permutation", order: []string{"C3", "C1", "C2"}},
		{name: "identity", order: []string{"C1", "C2", "C3"}},
		{name: "too short", order: []string{"C1", "C2"}, wantErr: ErrInvalidOrder},
		{name: "duplicate", order: []string{"C1", "C1", "C2"}, wantErr: ErrInvalidOrder},
		{name: "foreign id", order: []string{"C1", "C2", "X"}, wantErr: ErrInvalidOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildParallel(t)
			err := g.ReorderChildren("G1", tt.order)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReorderChildren: %v", err)
			}
			if got := g.Children("G1"); !slices.Equal(got, tt.order) {
				t.Errorf("Children(G1) = %v, want %v", got, tt.order)
			}
		})
	}
}

func TestAddComponentRelativeJoinsMatchingGate(t *testing.T) {
	g := buildParallel(t)
	gateID, err := g.AddComponentRelative("G1", "C4", RelParallel, 0, -1)
	if err != nil {
		t.Fatalf("AddComponentRelative: %v", err)
	}
	if gateID != "G1" {
		t.Errorf("gate = %q, want G1", gateID)
	}
	if got := g.Children("G1"); !slices.Equal(got, []string{"C1", "C2", "C3", "C4"}) {
		t.Errorf("Children(G1) = %v", got)
	}
}

func TestAddComponentRelativeInterposes(t *testing.T) {
	g := buildParallel(t)
	gateID, err := g.AddComponentRelative("C2", "C4", RelSeries, 0, -1)
	if err != nil {
		t.Fatalf("AddComponentRelative: %v", err)
	}

	gate, ok := g.Node(gateID)
	if !ok {
		t.Fatalf("gate %q missing", gateID)
	}
	if gate.Subtype != GateAND {
		t.Errorf("subtype = %q, want AND", gate.Subtype)
	}
	if gate.GUID == "" {
		t.Error("interposed gate has no GUID")
	}
	// Gate takes C2's slot; C2 and C4 move under it in that order.
	if got := g.Children("G1"); !slices.Equal(got, []string{"C1", gateID, "C3"}) {
		t.Errorf("Children(G1) = %v", got)
	}
	if got := g.Children(gateID); !slices.Equal(got, []string{"C2", "C4"}) {
		t.Errorf("Children(%s) = %v", gateID, got)
	}
}

func TestAddComponentRelativeRoot(t *testing.T) {
	g := New()
	mustAdd(t, g, Node{ID: "C1", Kind: KindComponent})

	gateID, err := g.AddComponentRelative("C1", "C2", RelParallel, 0, -1)
	if err != nil {
		t.Fatalf("AddComponentRelative: %v", err)
	}
	if g.Root() != gateID {
		t.Errorf("root = %q, want %q", g.Root(), gateID)
	}
	if got := g.Children(gateID); !slices.Equal(got, []string{"C1", "C2"}) {
		t.Errorf("Children(%s) = %v", gateID, got)
	}
}

func TestAddComponentRelativeNestedKOON(t *testing.T) {
	g := New()
	mustAdd(t, g, Node{ID: "K1", Kind: KindGate, Subtype: GateKOON, K: 2})
	mustAdd(t, g, Node{ID: "C1", Kind: KindComponent})
	mustAdd(t, g, Node{ID: "C2", Kind: KindComponent})
	mustEdge(t, g, "K1", "C1")
	mustEdge(t, g, "K1", "C2")

	// A koon relation on a component already inside a KOON group nests a
	// fresh group around the target instead of joining the outer one.
	gateID, err := g.AddComponentRelative("C1", "C3", RelKOON, 1, -1)
	if err != nil {
		t.Fatalf("AddComponentRelative: %v", err)
	}
	if gateID == "K1" {
		t.Fatal("expected a nested gate, got the outer KOON")
	}
	if got := g.Children("K1"); !slices.Equal(got, []string{gateID, "C2"}) {
		t.Errorf("Children(K1) = %v", got)
	}
	if got := g.Children(gateID); !slices.Equal(got, []string{"C1", "C3"}) {
		t.Errorf("Children(%s) = %v", gateID, got)
	}
}

func TestCloneIsolation(t *testing.T) {
	g := buildParallel(t)
	c := g.Clone()

	mustAdd(t, c, Node{ID: "X", Kind: KindComponent})
	mustEdge(t, c, "G1", "X")
	if err := c.ReorderChildren("G1", []string{"X", "C3", "C2", "C1"}); err != nil {
		t.Fatalf("ReorderChildren on clone: %v", err)
	}
	n, _ := c.Node("C1")
	n.Color = "#ff0000"

	if _, ok := g.Node("X"); ok {
		t.Error("clone node leaked into base graph")
	}
	if got := g.Children("G1"); !slices.Equal(got, []string{"C1", "C2", "C3"}) {
		t.Errorf("base order changed: %v", got)
	}
	orig, _ := g.Node("C1")
	if orig.Color != "" {
		t.Error("clone node edit leaked into base graph")
	}
}

func TestUniqueID(t *testing.T) {
	g := buildParallel(t)
	if got := g.UniqueID("C9"); got != "C9" {
		t.Errorf("free base: got %q", got)
	}
	if got := g.UniqueID("C1"); got != "C1-1" {
		t.Errorf("taken base: got %q", got)
	}
	mustAdd(t, g, Node{ID: "C1-1", Kind: KindComponent})
	if got := g.UniqueID("C1"); got != "C1-2" {
		t.Errorf("taken base and first suffix: got %q", got)
	}
}

func TestValidate(t *testing.T) {
	g := buildParallel(t)
	if err := g.Validate(); err != nil {
		t.Fatalf("valid graph: %v", err)
	}
	// Corrupt the parent index directly.
	g.parent["C1"] = "G9"
	if err := g.Validate(); !errors.Is(err, ErrInvalidEdgeEndpoint) {
		t.Errorf("got %v, want ErrInvalidEdgeEndpoint", err)
	}
}
