package store

import (
	"context"
	"time"

	"github.com/relblock/relblock/pkg/errors"
	"github.com/relblock/relblock/pkg/graph"
	"github.com/relblock/relblock/pkg/observability"
)

// Editor is the write-side service over an event log. Every mutation is
// validated by replaying the diagram with the candidate event appended;
// only a clean replay is committed. The read side (Head, Load) satisfies
// the pipeline's diagram source.
type Editor struct {
	log   Log
	actor string
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithActor records the given actor name on every appended event.
func WithActor(name string) EditorOption {
	return func(e *Editor) { e.actor = name }
}

// NewEditor creates an editor over the given log.
func NewEditor(l Log, opts ...EditorOption) *Editor {
	e := &Editor{log: l}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// =============================================================================
// Read Side
// =============================================================================

// Head returns the latest version of a diagram's log.
func (e *Editor) Head(ctx context.Context, diagramID string) (int, error) {
	return e.log.Head(ctx, diagramID)
}

// Load replays a diagram and returns the graph with its version.
func (e *Editor) Load(ctx context.Context, diagramID string) (*graph.Graph, int, error) {
	events, err := e.log.Events(ctx, diagramID)
	if err != nil {
		return nil, 0, err
	}

	start := time.Now()
	g, err := Replay(events)
	observability.Store().OnReplay(ctx, len(events), time.Since(start), err)
	if err != nil {
		return nil, 0, err
	}

	version := 0
	if len(events) > 0 {
		version = events[len(events)-1].Version
	}
	return g, version, nil
}

// Diagrams lists all diagrams in the log.
func (e *Editor) Diagrams(ctx context.Context) ([]string, error) {
	return e.log.Diagrams(ctx)
}

// =============================================================================
// Write Side
// =============================================================================

// Init seeds a diagram with a snapshot of the given graph.
func (e *Editor) Init(ctx context.Context, diagramID string, g *graph.Graph) error {
	if err := g.Validate(); err != nil {
		return err
	}
	ev := NewEvent(diagramID, KindSnapshot)
	data := g.ToData()
	ev.Snapshot = &data
	_, err := e.commit(ctx, ev)
	return err
}

// AddRootComponent creates the first component of an empty diagram.
func (e *Editor) AddRootComponent(ctx context.Context, diagramID, id, label string) error {
	if err := errors.ValidateNodeID(id); err != nil {
		return err
	}
	ev := NewEvent(diagramID, KindAddRootComponent)
	ev.AddRoot = &AddRootComponentPayload{ID: id, Label: label}
	_, err := e.commit(ctx, ev)
	return err
}

// AddComponent attaches a new component relative to an existing node.
// Returns the ID of the gate the component ended up under.
func (e *Editor) AddComponent(ctx context.Context, diagramID string, p AddComponentPayload) (string, error) {
	if err := errors.ValidateNodeID(p.NewID); err != nil {
		return "", err
	}
	ev := NewEvent(diagramID, KindAddComponent)
	ev.Add = &p
	g, err := e.commit(ctx, ev)
	if err != nil {
		return "", err
	}
	return g.Parent(p.NewID), nil
}

// RemoveNode removes a component, or a gate with at most one child.
func (e *Editor) RemoveNode(ctx context.Context, diagramID, id string) error {
	ev := NewEvent(diagramID, KindRemoveNode)
	ev.Remove = &RemoveNodePayload{ID: id}
	_, err := e.commit(ctx, ev)
	return err
}

// EditComponent renames a component and replaces its display attributes.
func (e *Editor) EditComponent(ctx context.Context, diagramID string, p EditComponentPayload) error {
	if p.NewID != "" {
		if err := errors.ValidateNodeID(p.NewID); err != nil {
			return err
		}
	}
	ev := NewEvent(diagramID, KindEditComponent)
	ev.EditComp = &p
	_, err := e.commit(ctx, ev)
	return err
}

// EditGate changes a gate's subtype and K parameter.
func (e *Editor) EditGate(ctx context.Context, diagramID string, p EditGatePayload) error {
	ev := NewEvent(diagramID, KindEditGate)
	ev.EditGate = &p
	_, err := e.commit(ctx, ev)
	return err
}

// ReorderChildren permutes a gate's children.
func (e *Editor) ReorderChildren(ctx context.Context, diagramID, gateID string, order []string) error {
	ev := NewEvent(diagramID, KindReorderChildren)
	ev.Reorder = &ReorderChildrenPayload{GateID: gateID, Order: order}
	_, err := e.commit(ctx, ev)
	return err
}

// SetHead rewinds the effective history to the given version. Version 0
// empties the diagram.
func (e *Editor) SetHead(ctx context.Context, diagramID string, version int) error {
	head, err := e.log.Head(ctx, diagramID)
	if err != nil {
		return err
	}
	if version < 0 || version > head {
		return errors.New(errors.ErrCodeInvalidInput, "version %d out of range [0, %d]", version, head)
	}
	ev := NewEvent(diagramID, KindSetHead)
	ev.Head = &SetHeadPayload{Version: version}
	_, err = e.commit(ctx, ev)
	return err
}

// Undo rewinds the diagram by one effective event. Undoing an empty
// history is an error.
func (e *Editor) Undo(ctx context.Context, diagramID string) error {
	events, err := e.log.Events(ctx, diagramID)
	if err != nil {
		return err
	}
	effective := effectiveEvents(events)
	if len(effective) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "nothing to undo in %q", diagramID)
	}

	target := 0
	if len(effective) > 1 {
		target = effective[len(effective)-2].Version
	}
	ev := NewEvent(diagramID, KindSetHead)
	ev.Head = &SetHeadPayload{Version: target}
	_, err = e.commit(ctx, ev)
	return err
}

// commit validates the event against the replayed diagram and appends
// it. The returned graph includes the event's effect.
func (e *Editor) commit(ctx context.Context, ev Event) (*graph.Graph, error) {
	events, err := e.log.Events(ctx, ev.DiagramID)
	if err != nil {
		return nil, err
	}

	head := 0
	if len(events) > 0 {
		head = events[len(events)-1].Version
	}
	ev.Version = head + 1
	ev.Actor = e.actor

	g, err := Replay(append(events, ev))
	if err != nil {
		return nil, err
	}

	if err := e.log.Append(ctx, &ev); err != nil {
		return nil, err
	}
	observability.Store().OnAppend(ctx, string(ev.Kind), ev.Version)
	return g, nil
}
