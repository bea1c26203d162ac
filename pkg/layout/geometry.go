package layout

import "github.com/relblock/relblock/pkg/graph"

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Fixed diagram metrics. Every box, spacing, and padding in the layout
// derives from these; the renderer relies on them matching its assets.
const (
	// ComponentW and ComponentH are the fixed box dimensions of a leaf
	// component and of a collapsed gate.
	ComponentW = 200.0
	ComponentH = 120.0

	// SeriesSpacing separates consecutive children of an AND gate.
	SeriesSpacing = 80.0

	// BranchSpacing separates stacked children of an OR/KOON gate.
	BranchSpacing = 60.0

	// RailPadding is the horizontal gap between an OR/KOON gate's rails
	// and its widest child.
	RailPadding = 48.0

	// GateHeaderH reserves vertical room at the top of every expanded
	// gate for its label box.
	GateHeaderH = 40.0

	// GateLabelH is the height of the gate label box. Its width is 60%
	// of the gate width, clamped to [GateLabelMinW, GateLabelMaxW].
	GateLabelH    = 22.0
	GateLabelMinW = 60.0
	GateLabelMaxW = 140.0

	// PageMarginX and PageMarginY offset the root from the origin,
	// leaving room for toolbars and chrome.
	PageMarginX = 60.0
	PageMarginY = 40.0

	// CanvasPadding surrounds the bounding box of all placed geometry.
	CanvasPadding = 40.0
)

// railSpanMinW is the narrowest an OR/KOON gate can be: one component
// box plus rail padding on both sides.
const railSpanMinW = ComponentW + 2*RailPadding

// =============================================================================
// Geometry Types
// =============================================================================

// Size is a node's measured bounding box. Sizes are ephemeral: memoized
// for the duration of one [Compute] call and never persisted.
type Size struct {
	W float64
	H float64
}

// Anchor is the point set other nodes connect lines to, independent of
// whether the node is a leaf, a collapsed gate, or a rail gate. For rail
// gates LeftX/RightX are the rail positions and CenterY is the vertical
// center of the rail span.
type Anchor struct {
	LeftX   float64
	RightX  float64
	CenterY float64
}

// VisualKind tells the renderer which shape to draw. A collapsed gate is
// component-shaped even though its source node is a gate.
type VisualKind string

const (
	VisualComponent VisualKind = "component"
	VisualGate      VisualKind = "gate"
)

// Node is one placed box: a component, a collapsed gate, or an expanded
// gate's label. Display attributes are denormalized from the source node
// so the renderer never needs the graph.
type Node struct {
	ID     string     `json:"id"`
	Kind   VisualKind `json:"kind"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`

	// ParentGateID is the nearest enclosing expanded gate, "" at the root.
	ParentGateID string `json:"parent_gate_id,omitempty"`

	Subtype     graph.GateType `json:"subtype,omitempty"`
	K           int            `json:"k,omitempty"`
	ChildCount  int            `json:"child_count,omitempty"`
	Collapsed   bool           `json:"collapsed,omitempty"`
	Label       string         `json:"label,omitempty"`
	Color       string         `json:"color,omitempty"`
	DistKind    string         `json:"dist_kind,omitempty"`
	Reliability *float64       `json:"reliability,omitempty"`
}

// LineKind classifies a connector segment.
type LineKind string

const (
	// LineSeries joins consecutive AND children horizontally.
	LineSeries LineKind = "series"
	// LineRail is a vertical guide bounding an OR/KOON gate's stack.
	LineRail LineKind = "rail"
	// LineConnector joins a rail to a stacked child.
	LineConnector LineKind = "connector"
)

// Line is one connector segment. Arrow marks an arrowhead at (X2, Y2).
type Line struct {
	X1    float64  `json:"x1"`
	Y1    float64  `json:"y1"`
	X2    float64  `json:"x2"`
	Y2    float64  `json:"y2"`
	Kind  LineKind `json:"kind"`
	Arrow bool     `json:"arrow,omitempty"`
}

// GateArea is the bounding box of an expanded gate, used for hit-testing
// and dimmed-region drawing. Depth is the nesting level; the renderer
// uses it as a z-index so inner gates draw above outer ones.
type GateArea struct {
	ID           string         `json:"id"`
	ParentGateID string         `json:"parent_gate_id,omitempty"`
	Subtype      graph.GateType `json:"subtype"`
	Color        string         `json:"color,omitempty"`
	X            float64        `json:"x"`
	Y            float64        `json:"y"`
	Width        float64        `json:"width"`
	Height       float64        `json:"height"`
	Depth        int            `json:"depth"`
}

// Result is the complete geometry of one layout call.
type Result struct {
	Nodes   []Node            `json:"nodes"`
	Lines   []Line            `json:"lines"`
	Areas   []GateArea        `json:"areas"`
	Anchors map[string]Anchor `json:"-"`

	// Width and Height are the canvas dimensions: the bounding box of
	// all placed geometry plus CanvasPadding on every side.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NodeByID returns the placed node with the given ID, or nil.
func (r *Result) NodeByID(id string) *Node {
	for i := range r.Nodes {
		if r.Nodes[i].ID == id {
			return &r.Nodes[i]
		}
	}
	return nil
}

// AreaByID returns the gate area with the given ID, or nil.
func (r *Result) AreaByID(id string) *GateArea {
	for i := range r.Areas {
		if r.Areas[i].ID == id {
			return &r.Areas[i]
		}
	}
	return nil
}

// gateLabelW computes the label box width for a gate of the given width.
func gateLabelW(gateW float64) float64 {
	w := gateW * 0.6
	if w < GateLabelMinW {
		w = GateLabelMinW
	}
	if w > GateLabelMaxW {
		w = GateLabelMaxW
	}
	return w
}
