package graph

import (
	"bytes"
	"slices"
	"testing"
)

func TestJSONRoundTrip(t *testing.T) {
	g := New()
	rel := 0.97
	mustAdd(t, g, Node{ID: "G1", Kind: KindGate, Subtype: GateKOON, K: 2, GUID: "guid-1"})
	mustAdd(t, g, Node{ID: "C1", Kind: KindComponent, DistKind: "exponential", Reliability: &rel})
	mustAdd(t, g, Node{ID: "C2", Kind: KindComponent, UnitType: "pump"})
	mustAdd(t, g, Node{ID: "C3", Kind: KindComponent})
	mustEdge(t, g, "G1", "C3")
	mustEdge(t, g, "G1", "C1")
	mustEdge(t, g, "G1", "C2")

	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	back, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	if back.Root() != "G1" {
		t.Errorf("root = %q, want G1", back.Root())
	}
	if back.NodeCount() != 4 {
		t.Errorf("node count = %d, want 4", back.NodeCount())
	}
	// Display order must survive the trip.
	if got := back.Children("G1"); !slices.Equal(got, []string{"C3", "C1", "C2"}) {
		t.Errorf("Children(G1) = %v, want [C3 C1 C2]", got)
	}
	n, ok := back.Node("G1")
	if !ok || n.Subtype != GateKOON || n.K != 2 || n.GUID != "guid-1" {
		t.Errorf("gate fields lost: %+v", n)
	}
	c, _ := back.Node("C1")
	if c.Reliability == nil || *c.Reliability != rel {
		t.Errorf("reliability lost: %+v", c.Reliability)
	}
}

func TestFromDataRejectsBadEdges(t *testing.T) {
	_, err := FromData(Data{
		Nodes: []NodeData{{ID: "G1", Kind: KindGate, Subtype: GateAND}},
		Edges: []Edge{{From: "G1", To: "missing"}},
	})
	if err == nil {
		t.Fatal("expected error for dangling edge")
	}
}

func TestFromDataExplicitRoot(t *testing.T) {
	g, err := FromData(Data{
		Nodes: []NodeData{
			{ID: "C1", Kind: KindComponent},
			{ID: "G1", Kind: KindGate, Subtype: GateOR},
		},
		Edges: []Edge{{From: "G1", To: "C1"}},
		Root:  "G1",
	})
	if err != nil {
		t.Fatalf("FromData: %v", err)
	}
	if g.Root() != "G1" {
		t.Errorf("root = %q, want G1 (declared root beats first node)", g.Root())
	}
}
