package organize

import "slices"

// ChildPosition is one entry of an explicit reorder instruction.
// Positions are 1-based, matching what the persistence API expects.
type ChildPosition struct {
	Position int    `json:"position" bson:"position"`
	ID       string `json:"id" bson:"id"`
}

// Payload is the graph-mutation request handed to the persistence layer
// once the organize session is confirmed.
type Payload struct {
	// GateID is the gate the new component attaches under. When
	// VirtualGate is true the gate does not exist yet and must be
	// created by the mutation.
	GateID      string `json:"gate_id"`
	VirtualGate bool   `json:"virtual_gate,omitempty"`

	// Position is the 1-based slot of the new component within the
	// gate's children, nil when the placeholder is not in the order.
	Position *int `json:"position,omitempty"`

	// Reorder is the full explicit child list, nil when the final order
	// matches the initial snapshot element-wise. The placeholder ID is
	// substituted with the real component ID.
	Reorder []ChildPosition `json:"reorder,omitempty"`
}

// BuildPayload diffs the session's final order against its initial
// snapshot. realID is the ID the new component will actually get;
// occurrences of placeholderID are rewritten to it.
func BuildPayload(ov Overlay, s *Session, realID string) Payload {
	p := Payload{GateID: ov.GateID, VirtualGate: ov.VirtualGate}

	order := s.Order()
	if i := slices.Index(order, ov.PlaceholderID); i >= 0 {
		pos := i + 1
		p.Position = &pos
	}

	if slices.Equal(order, s.InitialOrder()) {
		return p
	}

	p.Reorder = make([]ChildPosition, len(order))
	for i, id := range order {
		if id == ov.PlaceholderID {
			id = realID
		}
		p.Reorder[i] = ChildPosition{Position: i + 1, ID: id}
	}
	return p
}
