package organize

import (
	"slices"

	"github.com/relblock/relblock/pkg/graph"
	"github.com/relblock/relblock/pkg/layout"
)

// Axis is the coordinate a drag is projected onto, matching the gate's
// stacking direction from the layout pass.
type Axis string

const (
	// AxisHorizontal reorders along x: AND gates chain left to right.
	AxisHorizontal Axis = "horizontal"
	// AxisVertical reorders along y: OR/KOON gates stack top to bottom.
	AxisVertical Axis = "vertical"
)

// AxisFor returns the reorder axis for a gate subtype.
func AxisFor(subtype graph.GateType) Axis {
	if subtype == graph.GateAND {
		return AxisHorizontal
	}
	return AxisVertical
}

// Point is a pointer position already projected into diagram
// coordinates by the caller's viewport.
type Point struct {
	X float64
	Y float64
}

// Session tracks the explicit child order under the organization gate
// for the lifetime of one organize-mode session. It is a small state
// machine: idle until StartDrag, dragging until EndDrag, with Sample
// recomputing the order on every pointer move in between.
//
// The order is seeded from the overlay graph when the gate ID changes
// and only then, so user-driven reordering survives incidental
// re-layouts of the same overlay.
type Session struct {
	gateID       string
	axis         Axis
	order        []string
	initialOrder []string
	dragging     string
}

// NewSession returns an idle session with no active gate.
func NewSession() *Session { return &Session{} }

// Activate points the session at an overlay's organization gate. The
// order (and its initial snapshot) is re-seeded from the overlay graph
// only when the gate ID differs from the current one; re-activating the
// same gate is a no-op. An inactive overlay resets the session.
func (s *Session) Activate(ov Overlay) {
	if !ov.Active() {
		s.Reset()
		return
	}
	if ov.GateID == s.gateID {
		return
	}
	s.gateID = ov.GateID
	s.dragging = ""
	s.order = slices.Clone(ov.Graph.Children(ov.GateID))
	s.initialOrder = slices.Clone(s.order)
	s.axis = AxisVertical
	if n, ok := ov.Graph.Node(ov.GateID); ok {
		s.axis = AxisFor(n.Subtype)
	}
}

// Reset returns the session to idle with no active gate.
func (s *Session) Reset() { *s = Session{} }

// GateID returns the active organization gate, or "".
func (s *Session) GateID() string { return s.gateID }

// Order returns the current child order. The caller must not modify it.
func (s *Session) Order() []string { return s.order }

// InitialOrder returns the order snapshot taken at seeding time, for
// diffing against the final order.
func (s *Session) InitialOrder() []string { return s.initialOrder }

// Dragging returns the ID being dragged, or "".
func (s *Session) Dragging() string { return s.dragging }

// StartDrag begins dragging id. Only direct children of the active
// organization gate are draggable; anything else is a no-op and returns
// false.
func (s *Session) StartDrag(id string) bool {
	if s.gateID == "" || !slices.Contains(s.order, id) {
		return false
	}
	s.dragging = id
	return true
}

// EndDrag finishes the drag, keeping the current order.
func (s *Session) EndDrag() { s.dragging = "" }

// Sample recomputes the order from one pointer sample against the
// overlay's current layout. It reports whether the order changed; the
// caller re-runs layout only then, which keeps per-pointer-move work at
// O(children).
func (s *Session) Sample(p Point, res *layout.Result) bool {
	if s.dragging == "" {
		return false
	}
	coord := p.X
	if s.axis == AxisVertical {
		coord = p.Y
	}

	centers := make(map[string]float64, len(s.order))
	for _, id := range s.order {
		c, ok := ChildCenter(res, id)
		if !ok {
			continue
		}
		if s.axis == AxisVertical {
			centers[id] = c.Y
		} else {
			centers[id] = c.X
		}
	}

	next := InsertionOrder(s.order, s.dragging, centers, coord)
	if slices.Equal(next, s.order) {
		return false
	}
	s.order = next
	return true
}

// ChildCenter returns the center of a child's current laid-out box. An
// expanded gate occupies its whole gate area; its placed node is only
// the label box pinned to the area's top edge, so measuring that would
// put the center far above where the child visually sits. Leaves and
// collapsed gates have no area and use their node box.
func ChildCenter(res *layout.Result, id string) (Point, bool) {
	if a := res.AreaByID(id); a != nil {
		return Point{X: a.X + a.Width/2, Y: a.Y + a.Height/2}, true
	}
	if n := res.NodeByID(id); n != nil {
		return Point{X: n.X + n.Width/2, Y: n.Y + n.Height/2}, true
	}
	return Point{}, false
}

// InsertionOrder computes the child order with dragged moved to where
// the pointer coordinate falls: just before the first remaining child
// whose center the pointer has not yet passed, or at the end when it is
// past every center. Children without a known center keep their slot.
//
// Comparing against centers rather than edges is what makes the order
// stable at rest: a pointer sitting exactly on the dragged child's own
// center reproduces the current order.
func InsertionOrder(order []string, dragged string, centers map[string]float64, coord float64) []string {
	rest := make([]string, 0, len(order))
	for _, id := range order {
		if id != dragged {
			rest = append(rest, id)
		}
	}

	at := len(rest)
	for i, id := range rest {
		c, ok := centers[id]
		if !ok {
			continue
		}
		if coord < c {
			at = i
			break
		}
	}
	return slices.Insert(rest, at, dragged)
}
