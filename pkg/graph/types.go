package graph

// Kind distinguishes the two node categories of a block diagram.
type Kind string

const (
	// KindComponent is a leaf node with its own failure model.
	KindComponent Kind = "component"
	// KindGate combines child reliabilities via AND, OR, or KOON logic.
	KindGate Kind = "gate"
)

// GateType identifies how a gate combines its children.
type GateType string

const (
	// GateAND chains children in series: all must survive.
	GateAND GateType = "AND"
	// GateOR stacks children in parallel: at least one must survive.
	GateOR GateType = "OR"
	// GateKOON requires at least K of N children to survive.
	GateKOON GateType = "KOON"
)

// Valid reports whether t is one of the known gate types.
func (t GateType) Valid() bool {
	return t == GateAND || t == GateOR || t == GateKOON
}

// Node is a vertex of the diagram. Components carry a failure model
// reference (DistKind, UnitType) and an optional evaluated reliability;
// gates carry a subtype and, for KOON, the threshold K.
//
// Reliability is an opaque scalar as far as this module is concerned: it
// is computed elsewhere and only copied into layout output for display.
type Node struct {
	ID      string
	Kind    Kind
	Subtype GateType // gates only
	K       int      // KOON gates only, clamped to [1, child count] on edit

	// Display attributes.
	Name  string
	Label string
	Color string

	// Component payload, treated as opaque by layout and organization.
	UnitType    string
	DistKind    string
	Reliability *float64

	// GUID is a stable identity for gates that survives renames.
	// Assigned by NewGateGUID (or DeterministicGateGUID during replay).
	GUID string
}

// IsComponent reports whether the node is a leaf component.
func (n *Node) IsComponent() bool { return n.Kind == KindComponent }

// IsGate reports whether the node is a gate.
func (n *Node) IsGate() bool { return n.Kind == KindGate }

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a directed parent→child connection. From is always a gate.
// The position of an edge among its parent's outgoing edges is the
// child's display position.
type Edge struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
}
