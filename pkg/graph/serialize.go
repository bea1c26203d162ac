package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Data is the canonical serialization format for a diagram. Used for API
// responses, storage, caching, and cross-tool compatibility.
//
// Edge order under each parent is display order, so the format preserves
// it exactly: export → re-import produces an identical graph.
type Data struct {
	Nodes []NodeData `json:"nodes" bson:"nodes"`
	Edges []Edge     `json:"edges" bson:"edges"`
	Root  string     `json:"root,omitempty" bson:"root,omitempty"`
}

// NodeData is the serialized form of a [Node].
type NodeData struct {
	ID          string   `json:"id" bson:"id"`
	Kind        Kind     `json:"kind" bson:"kind"`
	Subtype     GateType `json:"subtype,omitempty" bson:"subtype,omitempty"`
	K           int      `json:"k,omitempty" bson:"k,omitempty"`
	Name        string   `json:"name,omitempty" bson:"name,omitempty"`
	Label       string   `json:"label,omitempty" bson:"label,omitempty"`
	Color       string   `json:"color,omitempty" bson:"color,omitempty"`
	UnitType    string   `json:"unit_type,omitempty" bson:"unit_type,omitempty"`
	DistKind    string   `json:"dist_kind,omitempty" bson:"dist_kind,omitempty"`
	Reliability *float64 `json:"reliability,omitempty" bson:"reliability,omitempty"`
	GUID        string   `json:"guid,omitempty" bson:"guid,omitempty"`
}

// ToData converts a graph to its serialization format. Nodes keep
// insertion order, edges keep display order.
func (g *Graph) ToData() Data {
	nodes := g.Nodes()
	out := Data{
		Nodes: make([]NodeData, len(nodes)),
		Edges: g.Edges(),
		Root:  g.root,
	}
	for i, n := range nodes {
		out.Nodes[i] = NodeData{
			ID:          n.ID,
			Kind:        n.Kind,
			Subtype:     n.Subtype,
			K:           n.K,
			Name:        n.Name,
			Label:       n.Label,
			Color:       n.Color,
			UnitType:    n.UnitType,
			DistKind:    n.DistKind,
			Reliability: n.Reliability,
			GUID:        n.GUID,
		}
	}
	return out
}

// FromData builds a graph from its serialization format. Edges are
// applied in order, which restores the display order of every gate's
// children. A declared root wins over the first-node default.
func FromData(d Data) (*Graph, error) {
	g := New()
	for _, nd := range d.Nodes {
		n := Node{
			ID:          nd.ID,
			Kind:        nd.Kind,
			Subtype:     nd.Subtype,
			K:           nd.K,
			Name:        nd.Name,
			Label:       nd.Label,
			Color:       nd.Color,
			UnitType:    nd.UnitType,
			DistKind:    nd.DistKind,
			Reliability: nd.Reliability,
			GUID:        nd.GUID,
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, e := range d.Edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, fmt.Errorf("edge %q -> %q: %w", e.From, e.To, err)
		}
	}
	if d.Root != "" {
		if err := g.SetRoot(d.Root); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// WriteJSON encodes a graph as indented JSON and writes it to w.
func WriteJSON(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g.ToData()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a graph from JSON read from r.
func ReadJSON(r io.Reader) (*Graph, error) {
	var d Data
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return FromData(d)
}

// WriteFile writes a graph to a JSON file at path.
func WriteFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}

// ReadFile reads a graph from a JSON file at path.
func ReadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
