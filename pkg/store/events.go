package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/relblock/relblock/pkg/graph"
)

// Kind identifies an event type.
type Kind string

const (
	// KindSnapshot replaces the diagram with a full serialized graph.
	// Always the cheapest way to seed a log or compact old history.
	KindSnapshot Kind = "snapshot"

	// KindAddRootComponent creates the first component of an empty diagram.
	KindAddRootComponent Kind = "add-root-component"

	// KindAddComponent attaches a new component relative to an existing
	// node, interposing a gate when needed.
	KindAddComponent Kind = "add-component"

	// KindRemoveNode removes a component, or a gate with at most one child.
	KindRemoveNode Kind = "remove-node"

	// KindEditComponent renames a component and replaces its display
	// attributes.
	KindEditComponent Kind = "edit-component"

	// KindEditGate changes a gate's subtype and K parameter.
	KindEditGate Kind = "edit-gate"

	// KindReorderChildren permutes a gate's children.
	KindReorderChildren Kind = "reorder-children"

	// KindSetHead rewinds the effective history to an earlier version.
	KindSetHead Kind = "set-head"
)

// Event is one versioned entry in a diagram's log. Exactly one payload
// field is set, matching Kind.
type Event struct {
	ID        string    `json:"id" bson:"id"`
	DiagramID string    `json:"diagram_id" bson:"diagram_id"`
	Version   int       `json:"version" bson:"version"`
	Kind      Kind      `json:"kind" bson:"kind"`
	Time      time.Time `json:"time" bson:"time"`
	Actor     string    `json:"actor,omitempty" bson:"actor,omitempty"`

	Snapshot *graph.Data              `json:"snapshot,omitempty" bson:"snapshot,omitempty"`
	AddRoot  *AddRootComponentPayload `json:"add_root,omitempty" bson:"add_root,omitempty"`
	Add      *AddComponentPayload     `json:"add,omitempty" bson:"add,omitempty"`
	Remove   *RemoveNodePayload       `json:"remove,omitempty" bson:"remove,omitempty"`
	EditComp *EditComponentPayload    `json:"edit_component,omitempty" bson:"edit_component,omitempty"`
	EditGate *EditGatePayload         `json:"edit_gate,omitempty" bson:"edit_gate,omitempty"`
	Reorder  *ReorderChildrenPayload  `json:"reorder,omitempty" bson:"reorder,omitempty"`
	Head     *SetHeadPayload          `json:"head,omitempty" bson:"head,omitempty"`
}

// AddRootComponentPayload seeds an empty diagram with its first component.
type AddRootComponentPayload struct {
	ID    string `json:"id" bson:"id"`
	Label string `json:"label,omitempty" bson:"label,omitempty"`
}

// AddComponentPayload attaches NewID next to TargetID. Position < 0
// places the component immediately after the target.
type AddComponentPayload struct {
	TargetID string         `json:"target_id" bson:"target_id"`
	NewID    string         `json:"new_id" bson:"new_id"`
	Relation graph.Relation `json:"relation" bson:"relation"`
	K        int            `json:"k,omitempty" bson:"k,omitempty"`
	Position int            `json:"position" bson:"position"`
}

// RemoveNodePayload removes one node.
type RemoveNodePayload struct {
	ID string `json:"id" bson:"id"`
}

// EditComponentPayload renames a component and replaces its display
// attributes wholesale. NewID equal to ID keeps the name.
type EditComponentPayload struct {
	ID          string   `json:"id" bson:"id"`
	NewID       string   `json:"new_id" bson:"new_id"`
	Name        string   `json:"name,omitempty" bson:"name,omitempty"`
	Label       string   `json:"label,omitempty" bson:"label,omitempty"`
	Color       string   `json:"color,omitempty" bson:"color,omitempty"`
	UnitType    string   `json:"unit_type,omitempty" bson:"unit_type,omitempty"`
	DistKind    string   `json:"dist_kind,omitempty" bson:"dist_kind,omitempty"`
	Reliability *float64 `json:"reliability,omitempty" bson:"reliability,omitempty"`
}

// EditGatePayload changes a gate's logic.
type EditGatePayload struct {
	ID      string         `json:"id" bson:"id"`
	Subtype graph.GateType `json:"subtype" bson:"subtype"`
	K       int            `json:"k,omitempty" bson:"k,omitempty"`
}

// ReorderChildrenPayload permutes a gate's children. Order must be a
// duplicate-free permutation of the current children.
type ReorderChildrenPayload struct {
	GateID string   `json:"gate_id" bson:"gate_id"`
	Order  []string `json:"order" bson:"order"`
}

// SetHeadPayload rewinds the effective history. Version 0 empties the
// diagram.
type SetHeadPayload struct {
	Version int `json:"version" bson:"version"`
}

// NewEvent builds an envelope with a fresh ID and timestamp. Version is
// assigned by the log on append.
func NewEvent(diagramID string, kind Kind) Event {
	return Event{
		ID:        uuid.NewString(),
		DiagramID: diagramID,
		Kind:      kind,
		Time:      time.Now().UTC(),
	}
}

// =============================================================================
// Replay
// =============================================================================

// Replay folds an event sequence into a graph. Set-head events rewind
// the effective history; everything else applies in order. Events must
// be sorted by version ascending.
func Replay(events []Event) (*graph.Graph, error) {
	g := graph.New()
	for _, ev := range effectiveEvents(events) {
		next, err := applyEvent(g, ev)
		if err != nil {
			return nil, fmt.Errorf("event %d (%s): %w", ev.Version, ev.Kind, err)
		}
		g = next
	}
	return g, nil
}

// effectiveEvents resolves set-head rewinds into the flat sequence of
// events that still count.
func effectiveEvents(events []Event) []Event {
	var active []Event
	for _, ev := range events {
		if ev.Kind != KindSetHead {
			active = append(active, ev)
			continue
		}
		target := 0
		if ev.Head != nil {
			target = ev.Head.Version
		}
		kept := active[:0]
		for _, e := range active {
			if e.Version <= target {
				kept = append(kept, e)
			}
		}
		active = kept
	}
	return active
}

// applyEvent applies one event. Snapshots replace the graph, so the
// (possibly new) graph is returned.
func applyEvent(g *graph.Graph, ev Event) (*graph.Graph, error) {
	switch ev.Kind {
	case KindSnapshot:
		if ev.Snapshot == nil {
			return nil, fmt.Errorf("snapshot event without payload")
		}
		return graph.FromData(*ev.Snapshot)

	case KindAddRootComponent:
		p := ev.AddRoot
		if p == nil {
			return nil, fmt.Errorf("add-root-component event without payload")
		}
		if g.NodeCount() != 0 {
			return nil, fmt.Errorf("diagram already has a root")
		}
		err := g.AddNode(graph.Node{ID: p.ID, Kind: graph.KindComponent, Label: p.Label})
		return g, err

	case KindAddComponent:
		p := ev.Add
		if p == nil {
			return nil, fmt.Errorf("add-component event without payload")
		}
		before := g.NodeCount()
		gateID, err := g.AddComponentRelative(p.TargetID, p.NewID, p.Relation, p.K, p.Position)
		if err != nil {
			return nil, err
		}
		// Two new nodes means a gate was interposed alongside the
		// component; only then is the gate's GUID this event's to stamp.
		if g.NodeCount() == before+2 {
			stampGateGUID(g, gateID, ev)
		}
		return g, nil

	case KindRemoveNode:
		if ev.Remove == nil {
			return nil, fmt.Errorf("remove-node event without payload")
		}
		return g, g.RemoveNode(ev.Remove.ID)

	case KindEditComponent:
		p := ev.EditComp
		if p == nil {
			return nil, fmt.Errorf("edit-component event without payload")
		}
		newID := p.NewID
		if newID == "" {
			newID = p.ID
		}
		return g, g.EditComponent(p.ID, newID, func(n *graph.Node) {
			n.Name = p.Name
			n.Label = p.Label
			n.Color = p.Color
			n.UnitType = p.UnitType
			n.DistKind = p.DistKind
			n.Reliability = p.Reliability
		})

	case KindEditGate:
		p := ev.EditGate
		if p == nil {
			return nil, fmt.Errorf("edit-gate event without payload")
		}
		return g, g.EditGate(p.ID, p.Subtype, p.K)

	case KindReorderChildren:
		p := ev.Reorder
		if p == nil {
			return nil, fmt.Errorf("reorder-children event without payload")
		}
		return g, g.ReorderChildren(p.GateID, p.Order)

	case KindSetHead:
		// Resolved by effectiveEvents before application.
		return g, nil
	}
	return nil, fmt.Errorf("unknown event kind %q", ev.Kind)
}

// stampGateGUID replaces the random GUID of a gate created by this event
// with a deterministic one, so replaying the log reproduces identities.
func stampGateGUID(g *graph.Graph, gateID string, ev Event) {
	n, ok := g.Node(gateID)
	if !ok || !n.IsGate() {
		return
	}
	n.GUID = graph.DeterministicGateGUID(string(ev.Kind), ev.Version, gateID, ev.Time.Format(time.RFC3339Nano))
}
