package render_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/relblock/relblock/pkg/graph"
	"github.com/relblock/relblock/pkg/layout"
	"github.com/relblock/relblock/pkg/render"
)

func seriesPair(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	if err := g.AddNode(graph.Node{ID: "G1", Kind: graph.KindGate, Subtype: graph.GateAND}); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"C1", "C2"} {
		if err := g.AddNode(graph.Node{ID: id, Kind: graph.KindComponent}); err != nil {
			t.Fatal(err)
		}
		if err := g.AddEdge("G1", id); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestRenderSVGStructure(t *testing.T) {
	g := seriesPair(t)
	res := layout.Compute(g)
	svg := string(render.RenderSVG(res))

	for _, want := range []string{
		`viewBox="0 0 580.0 240.0"`,
		`data-node-id="C1"`,
		`data-node-id="C2"`,
		`data-node-id="G1"`,
		`class="line series"`,
		`marker-end="url(#arrow)"`,
		"</svg>",
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}

	// No areas unless requested.
	if strings.Contains(svg, "gate-area") {
		t.Error("gate areas rendered without WithAreas")
	}
}

func TestRenderSVGAreas(t *testing.T) {
	g := seriesPair(t)
	res := layout.Compute(g)
	svg := string(render.RenderSVG(res, render.WithAreas()))

	if !strings.Contains(svg, `class="gate-area"`) {
		t.Error("expected gate area rect")
	}
}

func TestRenderSVGCollapsedBadge(t *testing.T) {
	g := seriesPair(t)
	res := layout.Compute(g, layout.WithCollapsed(map[string]bool{"G1": true}))
	svg := string(render.RenderSVG(res))

	if !strings.Contains(svg, `class="component collapsed"`) {
		t.Error("collapsed gate should draw as dashed component box")
	}
	if !strings.Contains(svg, ">+2</text>") {
		t.Error("collapsed gate should show hidden child count")
	}
}

func TestRenderSVGDeterministic(t *testing.T) {
	g := seriesPair(t)
	res := layout.Compute(g)

	a := render.RenderSVG(res, render.WithAreas())
	b := render.RenderSVG(res, render.WithAreas())
	if !bytes.Equal(a, b) {
		t.Error("identical input should produce identical SVG")
	}
}

func TestRenderSVGEscapesLabels(t *testing.T) {
	g := graph.New()
	if err := g.AddNode(graph.Node{ID: "c", Kind: graph.KindComponent, Label: `pump <"A" & B>`}); err != nil {
		t.Fatal(err)
	}
	res := layout.Compute(g)
	svg := string(render.RenderSVG(res))

	if !strings.Contains(svg, "pump &lt;&quot;A&quot; &amp; B&gt;") {
		t.Errorf("label not escaped:\n%s", svg)
	}
}

func TestToDOT(t *testing.T) {
	g := seriesPair(t)
	dot := render.ToDOT(g, render.DOTOptions{})

	for _, want := range []string{
		"digraph G {",
		`"G1" -> "C1";`,
		`"G1" -> "C2";`,
		"fillcolor=lightgrey",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q in:\n%s", want, dot)
		}
	}
}

func TestToDOTDetailed(t *testing.T) {
	rel := 0.99
	g := graph.New()
	if err := g.AddNode(graph.Node{ID: "G1", Kind: graph.KindGate, Subtype: graph.GateKOON, K: 2}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(graph.Node{ID: "C1", Kind: graph.KindComponent, Reliability: &rel}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge("G1", "C1"); err != nil {
		t.Fatal(err)
	}

	dot := render.ToDOT(g, render.DOTOptions{Detailed: true})
	if !strings.Contains(dot, "k=2") {
		t.Error("detailed DOT should include KOON parameter")
	}
	if !strings.Contains(dot, "R=0.9900") {
		t.Error("detailed DOT should include reliability")
	}
}

func TestRenderJSONRoundTrip(t *testing.T) {
	g := seriesPair(t)
	res := layout.Compute(g)

	data, err := render.RenderJSON(res)
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	var decoded layout.Result
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Width != res.Width || len(decoded.Nodes) != len(res.Nodes) {
		t.Errorf("round-trip mismatch: %d nodes, width %.0f", len(decoded.Nodes), decoded.Width)
	}
}
