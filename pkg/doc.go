// Package pkg provides the core libraries for Relblock reliability block
// diagram editing and layout.
//
// # Overview
//
// Relblock turns an edit history of a reliability block diagram into
// positioned geometry and rendered artifacts. The pkg directory is
// organized into these areas:
//
//  1. [graph] - Diagram model (components, gates, tree structure, mutations)
//  2. [layout] - Size estimation and placement (boxes, rails, connectors)
//  3. [organize] - Interactive insert/reorder preview and payload building
//  4. [store] - Versioned event log and replay (memory, JSONL, MongoDB)
//  5. [pipeline] - Orchestration (replay → layout → render) with caching
//
// # Architecture
//
// The typical data flow through Relblock:
//
//	Event log (store)
//	         ↓
//	    [graph] package (replayed diagram tree)
//	         ↓
//	    [layout] package (measure + place geometry)
//	         ↓
//	    [render] package (SVG / DOT / JSON artifacts)
//
// # Quick Start
//
// Build a diagram and compute its layout:
//
//	import (
//	    "github.com/relblock/relblock/pkg/graph"
//	    "github.com/relblock/relblock/pkg/layout"
//	)
//
//	// 1. Build the diagram tree
//	g := graph.New()
//	_ = g.AddNode(graph.Node{ID: "pump", Kind: graph.KindComponent})
//	_, _ = g.AddComponentRelative("pump", "backup", graph.RelParallel, 0, -1)
//
//	// 2. Compute layout geometry
//	res := layout.Compute(g)
//
//	// 3. Inspect placed nodes
//	for _, n := range res.Nodes {
//	    fmt.Printf("%s at (%d, %d)\n", n.ID, n.X, n.Y)
//	}
//
// # Main Packages
//
// ## Domain Model
//
// [graph] - The diagram tree: components and gates (AND, OR, KOON), with
// mutations for adding, removing, renaming, and reordering nodes. Also
// provides JSON serialization and deterministic gate GUIDs.
//
// ## Layout
//
// [layout] - Two-pass layout: a memoized post-order size estimator and a
// pre-order placer that emits boxes, rails, series connectors, gate areas,
// and per-node connection anchors. Supports collapsed gates.
//
// ## Interaction
//
// [organize] - Organization-mode overlays for interactive insertion: a
// cloned graph with a placeholder component (and virtual gate when the
// target is a component), plus a pointer-driven reorder session and the
// final insert/reorder payload.
//
// ## Persistence
//
// [store] - Append-only versioned event log with replay. Backends: memory
// (testing), JSONL files (CLI), and MongoDB (server deployments).
//
// ## Infrastructure
//
// [pipeline] - Complete pipeline (replay → layout → render) used by CLI
// and server. Caches each stage by content hash.
//
// [cache] - Byte caches (file, redis, null) and deterministic cache keys.
//
// [render] - SVG and Graphviz DOT output for layout results.
//
// [errors] - Structured errors with codes and user-friendly messages.
//
// [observability] - Hooks for metrics and tracing without hard backend
// dependencies.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/layout/...     # Specific package
//	go test -run Example         # Examples only
//
// [graph]: https://pkg.go.dev/github.com/relblock/relblock/pkg/graph
// [layout]: https://pkg.go.dev/github.com/relblock/relblock/pkg/layout
// [organize]: https://pkg.go.dev/github.com/relblock/relblock/pkg/organize
// [store]: https://pkg.go.dev/github.com/relblock/relblock/pkg/store
// [pipeline]: https://pkg.go.dev/github.com/relblock/relblock/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/relblock/relblock/pkg/cache
// [render]: https://pkg.go.dev/github.com/relblock/relblock/pkg/render
// [errors]: https://pkg.go.dev/github.com/relblock/relblock/pkg/errors
// [observability]: https://pkg.go.dev/github.com/relblock/relblock/pkg/observability
package pkg
