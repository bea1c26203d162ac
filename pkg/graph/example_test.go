package graph_test

import (
	"fmt"

	"github.com/relblock/relblock/pkg/graph"
)

func ExampleGraph_basic() {
	// A pump feeding two redundant filters: AND(pump, OR(f1, f2))
	g := graph.New()
	_ = g.AddNode(graph.Node{ID: "sys", Kind: graph.KindGate, Subtype: graph.GateAND})
	_ = g.AddNode(graph.Node{ID: "pump", Kind: graph.KindComponent})
	_ = g.AddNode(graph.Node{ID: "filters", Kind: graph.KindGate, Subtype: graph.GateOR})
	_ = g.AddNode(graph.Node{ID: "f1", Kind: graph.KindComponent})
	_ = g.AddNode(graph.Node{ID: "f2", Kind: graph.KindComponent})
	_ = g.AddEdge("sys", "pump")
	_ = g.AddEdge("sys", "filters")
	_ = g.AddEdge("filters", "f1")
	_ = g.AddEdge("filters", "f2")

	fmt.Println("Root:", g.Root())
	fmt.Println("Children of sys:", g.Children("sys"))
	fmt.Println("Parent of f1:", g.Parent("f1"))
	// Output:
	// Root: sys
	// Children of sys: [pump filters]
	// Parent of f1: filters
}

func ExampleGraph_AddComponentRelative() {
	g := graph.New()
	_ = g.AddNode(graph.Node{ID: "pump", Kind: graph.KindComponent})

	// Adding in parallel to the root interposes an OR gate above it.
	gateID, _ := g.AddComponentRelative("pump", "backup", graph.RelParallel, 0, -1)

	fmt.Println("New root:", g.Root())
	fmt.Println("Children:", g.Children(gateID))
	// Output:
	// New root: G_or_1
	// Children: [pump backup]
}
