package organize

import "github.com/relblock/relblock/pkg/graph"

// PlaceholderBase is the ID stem for the synthetic component standing in
// for the not-yet-created one. Collisions with existing IDs are avoided
// by appending -1, -2, and so on.
const PlaceholderBase = "new-component"

// virtualGateBase is the ID stem for a gate spliced in above a selected
// leaf.
const virtualGateBase = "G_auto"

// Selection is what the user picked as the attachment target: an
// existing gate, or an existing component (or collapsed gate, which is
// shown as one) together with a chosen gate kind.
type Selection struct {
	NodeID string
	// GateKind is the kind of gate to create above a component target.
	// Ignored for gate targets; required for component targets.
	GateKind graph.GateType
}

// Overlay is the result of deriving an organization graph. When GateID
// is "" the selection could not be attached to and Graph is the
// unmodified base.
type Overlay struct {
	Graph *graph.Graph

	// GateID is the gate whose children are being organized.
	GateID string
	// PlaceholderID is the synthetic component's ID in Graph.
	PlaceholderID string
	// VirtualGate is true when GateID was spliced in by Build rather
	// than pre-existing in the base graph.
	VirtualGate bool
}

// Active reports whether the overlay has a gate to organize under.
func (o Overlay) Active() bool { return o.GateID != "" }

// Build derives the organization graph for a selection. The base graph
// is never modified.
//
// A gate target gains the placeholder as its last child. A component
// target (or collapsed-gate target) with a chosen gate kind gets a
// virtual gate spliced into its place, adopting the target and the
// placeholder in that order. Anything else - no selection, an unknown
// ID, a component target without a gate kind - returns the base graph
// unchanged with an inactive overlay, so the caller never enters
// reorder mode prematurely.
func Build(base *graph.Graph, sel *Selection, collapsed map[string]bool) Overlay {
	if sel == nil {
		return Overlay{Graph: base}
	}
	target, ok := base.Node(sel.NodeID)
	if !ok {
		return Overlay{Graph: base}
	}

	if target.IsGate() && !collapsed[sel.NodeID] {
		return appendPlaceholder(base, sel.NodeID)
	}
	if !sel.GateKind.Valid() {
		return Overlay{Graph: base}
	}
	return spliceVirtualGate(base, sel.NodeID, sel.GateKind)
}

func appendPlaceholder(base *graph.Graph, gateID string) Overlay {
	derived := base.Clone()
	placeholder := derived.UniqueID(PlaceholderBase)
	_ = derived.AddNode(graph.Node{ID: placeholder, Kind: graph.KindComponent})
	_ = derived.AddEdge(gateID, placeholder)
	return Overlay{
		Graph:         derived,
		GateID:        gateID,
		PlaceholderID: placeholder,
	}
}

// spliceVirtualGate inserts a gate of the chosen kind where the target
// used to sit, then hangs the target and the placeholder under it.
func spliceVirtualGate(base *graph.Graph, targetID string, kind graph.GateType) Overlay {
	derived := base.Clone()
	placeholder := derived.UniqueID(PlaceholderBase)
	gateID := derived.UniqueID(virtualGateBase)

	_ = derived.AddNode(graph.Node{ID: placeholder, Kind: graph.KindComponent})
	gate := graph.Node{ID: gateID, Kind: graph.KindGate, Subtype: kind}
	if kind == graph.GateKOON {
		gate.K = 1
	}
	_ = derived.AddNode(gate)

	if parent := derived.Parent(targetID); parent != "" {
		// Retarget the parent edge at the same display position.
		pos := indexOf(derived.Children(parent), targetID)
		_ = derived.RemoveEdge(parent, targetID)
		_ = derived.InsertChildAt(parent, gateID, pos)
	} else if derived.Root() == targetID {
		_ = derived.SetRoot(gateID)
	}
	_ = derived.AddEdge(gateID, targetID)
	_ = derived.AddEdge(gateID, placeholder)

	return Overlay{
		Graph:         derived,
		GateID:        gateID,
		PlaceholderID: placeholder,
		VirtualGate:   true,
	}
}

func indexOf(ids []string, id string) int {
	for i, s := range ids {
		if s == id {
			return i
		}
	}
	return len(ids)
}
