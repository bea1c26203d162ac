package graph

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] and the rename path
	// of [Graph.EditComponent] when a node with the same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownNode is returned by any operation referencing a node ID that
	// does not exist in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrHasParent is returned by [Graph.AddEdge] and [Graph.InsertChildAt]
	// when the child already has a parent. The diagram is a tree: every node
	// has at most one incoming edge.
	ErrHasParent = errors.New("node already has a parent")

	// ErrNotAGate is returned when a gate-only operation targets a component.
	ErrNotAGate = errors.New("node is not a gate")

	// ErrNotAComponent is returned when a component-only operation targets
	// a gate.
	ErrNotAComponent = errors.New("node is not a component")

	// ErrGateNotEmpty is returned by [Graph.RemoveNode] when the gate has
	// more than one child. Removal would be ambiguous; the caller must
	// rewire or remove children until at most one remains.
	ErrGateNotEmpty = errors.New("cannot remove gate with more than one child")

	// ErrInvalidOrder is returned by [Graph.ReorderChildren] when the new
	// order is not a permutation of the gate's current children.
	ErrInvalidOrder = errors.New("order is not a permutation of current children")

	// ErrInvalidPosition is returned by [Graph.InsertChildAt] when the
	// position is outside [0, len(children)].
	ErrInvalidPosition = errors.New("position out of range")

	// ErrInvalidRelation is returned by [Graph.AddComponentRelative] for an
	// unknown relation.
	ErrInvalidRelation = errors.New("invalid relation")

	// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a node that does not exist. This indicates corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")
)

// Relation describes where a new component attaches relative to an
// existing node: in series (AND), in parallel (OR), or under a K-out-of-N
// redundancy group.
type Relation string

const (
	RelSeries   Relation = "series"
	RelParallel Relation = "parallel"
	RelKOON     Relation = "koon"
)

// GateTypeFor maps a relation onto the gate type that realizes it.
func GateTypeFor(rel Relation) (GateType, bool) {
	switch rel {
	case RelSeries:
		return GateAND, true
	case RelParallel:
		return GateOR, true
	case RelKOON:
		return GateKOON, true
	}
	return "", false
}

// Graph is a reliability block diagram: a tree of components and gates
// with ordered children and a single root. Child order is display order
// and is preserved by every operation.
//
// The zero value is not usable - use New. Graph is not safe for
// concurrent use without external synchronization.
type Graph struct {
	nodes    map[string]*Node
	children map[string][]string // gateID -> ordered child IDs
	parent   map[string]string   // childID -> parent gate ID ("" = none)
	ids      []string            // insertion order, for deterministic iteration
	root     string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		children: make(map[string][]string),
		parent:   make(map[string]string),
	}
}

// ==================================================================
// Accessors
// ==================================================================

// Root returns the root node ID, or "" for an empty graph.
func (g *Graph) Root() string { return g.root }

// SetRoot designates an existing node as the root.
func (g *Graph) SetRoot(id string) error {
	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	g.root = id
	return nil
}

// Node returns the node with the given ID and true, or nil and false.
// The pointer refers to the actual node, so field edits affect the graph
// (ID changes must go through EditComponent).
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Children returns the ordered child IDs of a gate. The returned slice
// is a read-only view; callers must not modify it.
func (g *Graph) Children(id string) []string { return g.children[id] }

// Parent returns the parent gate ID of a node, or "" if it has none.
func (g *Graph) Parent(id string) string { return g.parent[id] }

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.ids))
	for _, id := range g.ids {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Edges returns every parent→child edge, parents in insertion order and
// children in display order.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, id := range g.ids {
		for _, c := range g.children[id] {
			edges = append(edges, Edge{From: id, To: c})
		}
	}
	return edges
}

// ==================================================================
// Mutation
// ==================================================================

// AddNode adds a node to the graph. The first node added becomes the
// root. Returns ErrInvalidNodeID for an empty ID or ErrDuplicateNodeID
// if the ID is taken.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateNodeID, n.ID)
	}
	node := &n
	g.nodes[node.ID] = node
	g.children[node.ID] = nil
	g.ids = append(g.ids, node.ID)
	if g.root == "" {
		g.root = node.ID
	}
	return nil
}

// AddEdge appends child to the end of parent's children. The parent must
// be a gate and the child must not already have a parent.
func (g *Graph) AddEdge(parentID, childID string) error {
	return g.InsertChildAt(parentID, childID, len(g.children[parentID]))
}

// RemoveEdge detaches child from parent without deleting either node.
// The child keeps its subtree and becomes parentless.
func (g *Graph) RemoveEdge(parentID, childID string) error {
	if _, ok := g.nodes[parentID]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, parentID)
	}
	if g.parent[childID] != parentID {
		return fmt.Errorf("%w: %q is not a child of %q", ErrUnknownNode, childID, parentID)
	}
	g.children[parentID] = slices.DeleteFunc(g.children[parentID], func(s string) bool { return s == childID })
	g.parent[childID] = ""
	return nil
}

// InsertChildAt attaches child to parent at the given position among the
// parent's children (0 = first). Position must be within
// [0, len(children)].
func (g *Graph) InsertChildAt(parentID, childID string, pos int) error {
	p, ok := g.nodes[parentID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, parentID)
	}
	if !p.IsGate() {
		return fmt.Errorf("%w: %q", ErrNotAGate, parentID)
	}
	if _, ok := g.nodes[childID]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, childID)
	}
	if g.parent[childID] != "" {
		return fmt.Errorf("%w: %q", ErrHasParent, childID)
	}
	chs := g.children[parentID]
	if pos < 0 || pos > len(chs) {
		return fmt.Errorf("%w: %d of %d", ErrInvalidPosition, pos, len(chs))
	}
	g.children[parentID] = slices.Insert(chs, pos, childID)
	g.parent[childID] = parentID
	return nil
}

// RemoveNode removes a node. A component is detached from its parent and
// deleted. A gate may only be removed when it has at most one child; the
// sole child, if any, takes the gate's place under the gate's parent (or
// becomes the root). Returns ErrGateNotEmpty otherwise.
func (g *Graph) RemoveNode(id string) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	if n.IsGate() {
		return g.removeGate(id)
	}
	g.detach(id)
	g.delete(id)
	return nil
}

func (g *Graph) removeGate(id string) error {
	chs := g.children[id]
	if len(chs) > 1 {
		return fmt.Errorf("%w: %q has %d", ErrGateNotEmpty, id, len(chs))
	}
	adopt := ""
	if len(chs) == 1 {
		adopt = chs[0]
	}
	p := g.parent[id]
	switch {
	case p == "" && adopt != "":
		g.parent[adopt] = ""
		if g.root == id {
			g.root = adopt
		}
	case p == "" && adopt == "":
		if g.root == id {
			g.root = ""
		}
	default:
		g.replaceChild(p, id, adopt)
	}
	g.children[id] = nil
	g.delete(id)
	return nil
}

// EditGate updates a gate's subtype and, for KOON gates, its threshold.
// K is clamped to [1, child count] so the badge never shows an
// unsatisfiable requirement.
func (g *Graph) EditGate(id string, subtype GateType, k int) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	if !n.IsGate() {
		return fmt.Errorf("%w: %q", ErrNotAGate, id)
	}
	if !subtype.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRelation, subtype)
	}
	n.Subtype = subtype
	if subtype == GateKOON {
		n.K = clampK(k, len(g.children[id]))
	} else {
		n.K = 0
	}
	return nil
}

func clampK(k, children int) int {
	if k < 1 {
		k = 1
	}
	if children > 0 && k > children {
		k = children
	}
	return k
}

// EditComponent updates a component's payload fields and optionally
// renames it, rewiring every reference to the old ID.
func (g *Graph) EditComponent(oldID, newID string, apply func(*Node)) error {
	n, ok := g.nodes[oldID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, oldID)
	}
	if !n.IsComponent() {
		return fmt.Errorf("%w: %q", ErrNotAComponent, oldID)
	}
	if newID != oldID {
		if newID == "" {
			return ErrInvalidNodeID
		}
		if _, exists := g.nodes[newID]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateNodeID, newID)
		}
	}
	if apply != nil {
		apply(n)
	}
	if newID == oldID {
		return nil
	}
	g.rename(oldID, newID)
	return nil
}

func (g *Graph) rename(oldID, newID string) {
	n := g.nodes[oldID]
	n.ID = newID
	delete(g.nodes, oldID)
	g.nodes[newID] = n

	g.children[newID] = g.children[oldID]
	delete(g.children, oldID)
	for _, c := range g.children[newID] {
		g.parent[c] = newID
	}

	if p := g.parent[oldID]; p != "" {
		chs := g.children[p]
		chs[slices.Index(chs, oldID)] = newID
		g.parent[newID] = p
	}
	delete(g.parent, oldID)

	g.ids[slices.Index(g.ids, oldID)] = newID
	if g.root == oldID {
		g.root = newID
	}
}

// ReorderChildren replaces a gate's child order. The new order must be a
// duplicate-free permutation of the current children.
func (g *Graph) ReorderChildren(gateID string, order []string) error {
	n, ok := g.nodes[gateID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, gateID)
	}
	if !n.IsGate() {
		return fmt.Errorf("%w: %q", ErrNotAGate, gateID)
	}
	current := g.children[gateID]
	if len(order) != len(current) {
		return fmt.Errorf("%w: expected %d children, got %d", ErrInvalidOrder, len(current), len(order))
	}
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if seen[id] {
			return fmt.Errorf("%w: duplicate %q", ErrInvalidOrder, id)
		}
		seen[id] = true
		if !slices.Contains(current, id) {
			return fmt.Errorf("%w: %q is not a child of %q", ErrInvalidOrder, id, gateID)
		}
	}
	g.children[gateID] = slices.Clone(order)
	return nil
}

// AddComponentRelative creates a new component attached relative to an
// existing node. The relation selects the gate type: series→AND,
// parallel→OR, koon→KOON (k applies to KOON only).
//
// If the target (or, for a component target, its parent) is already a
// gate of the wanted type, the component joins that gate's children.
// Otherwise a new gate of the wanted type is interposed between the
// target and its parent (or becomes the root when the target was root),
// adopting both the target and the new component.
//
// pos, when >= 0, is the final position of the new component among the
// gate's children; pos < 0 places it immediately after the target (or at
// the end when joining a pre-existing gate).
//
// Returns the ID of the gate the component ended up under.
func (g *Graph) AddComponentRelative(targetID, newID string, rel Relation, k, pos int) (string, error) {
	if _, exists := g.nodes[newID]; exists {
		return "", fmt.Errorf("%w: %q", ErrDuplicateNodeID, newID)
	}
	target, ok := g.nodes[targetID]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownNode, targetID)
	}
	want, ok := GateTypeFor(rel)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidRelation, rel)
	}

	if err := g.AddNode(Node{ID: newID, Kind: KindComponent}); err != nil {
		return "", err
	}

	targetParent := g.parent[targetID]

	// A KOON target inside a KOON group still gets its own nested group,
	// so the redundancy thresholds stay independent.
	if rel == RelKOON && target.IsComponent() && targetParent != "" && g.isGateOf(targetParent, GateKOON) {
		gateID := g.interpose(targetID, targetParent, want, k)
		g.insertRelative(gateID, newID, targetID, pos)
		return gateID, nil
	}

	// Target is already the wanted gate: join its children directly.
	if g.isGateOf(targetID, want) {
		g.insertRelative(targetID, newID, "", pos)
		return targetID, nil
	}

	gateID := g.interpose(targetID, targetParent, want, k)
	g.insertRelative(gateID, newID, targetID, pos)
	return gateID, nil
}

// AddComponentToGate creates a new component as a direct child of an
// existing gate, at pos when >= 0, else appended.
func (g *Graph) AddComponentToGate(gateID, newID string, pos int) error {
	if _, exists := g.nodes[newID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateNodeID, newID)
	}
	n, ok := g.nodes[gateID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, gateID)
	}
	if !n.IsGate() {
		return fmt.Errorf("%w: %q", ErrNotAGate, gateID)
	}
	if err := g.AddNode(Node{ID: newID, Kind: KindComponent}); err != nil {
		return err
	}
	g.insertRelative(gateID, newID, "", pos)
	return nil
}

// ==================================================================
// Derivation
// ==================================================================

// Clone returns a deep copy. Mutating the copy never affects the
// original, which is what lets speculative edits be discarded for free.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:    make(map[string]*Node, len(g.nodes)),
		children: make(map[string][]string, len(g.children)),
		parent:   maps.Clone(g.parent),
		ids:      slices.Clone(g.ids),
		root:     g.root,
	}
	for id, n := range g.nodes {
		nn := *n
		c.nodes[id] = &nn
	}
	for id, chs := range g.children {
		c.children[id] = slices.Clone(chs)
	}
	return c
}

// UniqueID returns base if no node carries it, otherwise base-1, base-2,
// and so on until an unused ID is found.
func (g *Graph) UniqueID(base string) string {
	if _, exists := g.nodes[base]; !exists {
		return base
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		if _, exists := g.nodes[candidate]; !exists {
			return candidate
		}
	}
}

// allocGateID allocates prefix_1, prefix_2, ... until unused.
func (g *Graph) allocGateID(prefix string) string {
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d", prefix, n)
		if _, exists := g.nodes[candidate]; !exists {
			return candidate
		}
	}
}

// Validate checks structural integrity: every child reference and parent
// reference resolves to an existing node, and parent/children maps agree.
// Returns ErrInvalidEdgeEndpoint on the first inconsistency.
func (g *Graph) Validate() error {
	for id, chs := range g.children {
		if _, ok := g.nodes[id]; !ok {
			return fmt.Errorf("%w: children of missing node %q", ErrInvalidEdgeEndpoint, id)
		}
		for _, c := range chs {
			if _, ok := g.nodes[c]; !ok {
				return fmt.Errorf("%w: %q -> %q", ErrInvalidEdgeEndpoint, id, c)
			}
			if g.parent[c] != id {
				return fmt.Errorf("%w: parent of %q is %q, expected %q", ErrInvalidEdgeEndpoint, c, g.parent[c], id)
			}
		}
	}
	if g.root != "" {
		if _, ok := g.nodes[g.root]; !ok {
			return fmt.Errorf("%w: root %q", ErrInvalidEdgeEndpoint, g.root)
		}
	}
	return nil
}

// ==================================================================
// Internal rewiring
// ==================================================================

func (g *Graph) detach(id string) {
	p := g.parent[id]
	if p == "" {
		if g.root == id {
			g.root = ""
		}
		return
	}
	g.children[p] = slices.DeleteFunc(g.children[p], func(s string) bool { return s == id })
	g.parent[id] = ""
}

func (g *Graph) delete(id string) {
	for _, c := range g.children[id] {
		if g.parent[c] == id {
			g.parent[c] = ""
		}
	}
	delete(g.children, id)
	delete(g.parent, id)
	delete(g.nodes, id)
	g.ids = slices.DeleteFunc(g.ids, func(s string) bool { return s == id })
}

// replaceChild swaps oldChild for newChild at the same position under
// parentID. An empty newChild just removes oldChild.
func (g *Graph) replaceChild(parentID, oldChild, newChild string) {
	chs := g.children[parentID]
	i := slices.Index(chs, oldChild)
	if i >= 0 {
		if newChild == "" {
			g.children[parentID] = slices.Delete(chs, i, i+1)
		} else {
			chs[i] = newChild
			g.parent[newChild] = parentID
		}
	}
	g.parent[oldChild] = ""
}

// interpose creates a new gate of the given type between target and its
// parent. The gate adopts the target (and the root, when the target was
// root). Returns the new gate's ID.
func (g *Graph) interpose(targetID, targetParent string, gateType GateType, k int) string {
	prefix := map[GateType]string{
		GateAND:  "G_and",
		GateOR:   "G_or",
		GateKOON: "G_koon",
	}[gateType]
	if prefix == "" {
		prefix = "G_auto"
	}
	gateID := g.allocGateID(prefix)

	gate := Node{ID: gateID, Kind: KindGate, Subtype: gateType, GUID: NewGateGUID()}
	if gateType == GateKOON {
		gate.K = clampK(k, 2)
	}
	_ = g.AddNode(gate)

	if targetParent == "" {
		if g.root == targetID {
			g.root = gateID
		}
	} else {
		g.replaceChild(targetParent, targetID, gateID)
	}
	g.parent[targetID] = ""
	_ = g.AddEdge(gateID, targetID)
	return gateID
}

// insertRelative places childID under gateID: at pos when pos >= 0,
// after afterID when given, else at the end.
func (g *Graph) insertRelative(gateID, childID, afterID string, pos int) {
	chs := g.children[gateID]
	idx := len(chs)
	if pos >= 0 && pos <= len(chs) {
		idx = pos
	} else if afterID != "" {
		if i := slices.Index(chs, afterID); i >= 0 {
			idx = i + 1
		}
	}
	g.children[gateID] = slices.Insert(chs, idx, childID)
	g.parent[childID] = gateID
}

func (g *Graph) isGateOf(id string, t GateType) bool {
	n, ok := g.nodes[id]
	return ok && n.IsGate() && n.Subtype == t
}
