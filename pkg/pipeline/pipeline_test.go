package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/relblock/relblock/pkg/cache"
	"github.com/relblock/relblock/pkg/graph"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"json", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsValidateForLoad(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("Missing diagram_id should fail")
	}

	opts = Options{DiagramID: "plant-a"}
	if err := opts.ValidateForLoad(); err != nil {
		t.Errorf("Valid options should pass: %v", err)
	}
	if opts.Logger == nil {
		t.Error("Logger default should be set")
	}
}

func TestSetLayoutDefaultsNormalizesCollapsed(t *testing.T) {
	opts := Options{Collapsed: []string{"g2", "g1", "g2"}}
	opts.SetLayoutDefaults()

	if len(opts.Collapsed) != 2 || opts.Collapsed[0] != "g1" || opts.Collapsed[1] != "g2" {
		t.Errorf("Collapsed should be sorted and deduplicated, got %v", opts.Collapsed)
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{DiagramID: "plant-a", Collapsed: []string{"g1"}}

	// First call
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	originalFormats := len(opts.Formats)

	// Second call should be idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if len(opts.Formats) != originalFormats {
		t.Error("Formats changed on second call")
	}
}

func TestCollapsedSet(t *testing.T) {
	opts := Options{}
	if opts.CollapsedSet() != nil {
		t.Error("Empty collapsed should produce nil set")
	}

	opts.Collapsed = []string{"g1", "g2"}
	set := opts.CollapsedSet()
	if !set["g1"] || !set["g2"] || set["g3"] {
		t.Errorf("CollapsedSet = %v", set)
	}
}

// =============================================================================
// Runner
// =============================================================================

// memorySource serves a fixed graph and counts replays.
type memorySource struct {
	graph   *graph.Graph
	version int
	loads   int
}

func (s *memorySource) Head(ctx context.Context, diagramID string) (int, error) {
	return s.version, nil
}

func (s *memorySource) Load(ctx context.Context, diagramID string) (*graph.Graph, int, error) {
	s.loads++
	return s.graph, s.version, nil
}

func testSource(t *testing.T) *memorySource {
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
	return &memorySource{graph: g, version: 3}
}

func testCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRunnerExecute(t *testing.T) {
	src := testSource(t)
	runner := NewRunner(nil, nil, src, nil)
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{
		DiagramID: "plant-a",
		Formats:   []string{"svg", "json", "dot"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Version != 3 {
		t.Errorf("Version = %d, want 3", result.Version)
	}
	if result.Stats.NodeCount != 3 {
		t.Errorf("NodeCount = %d, want 3", result.Stats.NodeCount)
	}
	if result.GraphHash == "" {
		t.Error("GraphHash should be set")
	}
	if len(result.Artifacts) != 3 {
		t.Fatalf("Artifacts = %d, want 3", len(result.Artifacts))
	}
	if !strings.Contains(string(result.Artifacts["svg"]), "<svg") {
		t.Error("svg artifact should contain an svg element")
	}
	if !strings.Contains(string(result.Artifacts["dot"]), "digraph G {") {
		t.Error("dot artifact should contain a digraph")
	}
}

func TestRunnerCachesStages(t *testing.T) {
	src := testSource(t)
	c := testCache(t)
	runner := NewRunner(c, nil, src, nil)

	opts := Options{DiagramID: "plant-a", Formats: []string{"svg"}}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.LoadHit || first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss every stage: %+v", first.CacheInfo)
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.LoadHit || !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit every stage: %+v", second.CacheInfo)
	}
	if src.loads != 1 {
		t.Errorf("source replayed %d times, want 1", src.loads)
	}
}

func TestRunnerRefreshBypassesGraphCache(t *testing.T) {
	src := testSource(t)
	c := testCache(t)
	runner := NewRunner(c, nil, src, nil)

	opts := Options{DiagramID: "plant-a"}
	if _, err := runner.Execute(context.Background(), opts); err != nil {
		t.Fatal(err)
	}

	opts.Refresh = true
	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if result.CacheInfo.LoadHit {
		t.Error("refresh should bypass the graph cache")
	}
	if src.loads != 2 {
		t.Errorf("source replayed %d times, want 2", src.loads)
	}
}

func TestRunnerCollapsedChangesLayoutKey(t *testing.T) {
	src := testSource(t)
	c := testCache(t)
	runner := NewRunner(c, nil, src, nil)

	base := Options{DiagramID: "plant-a"}
	if _, err := runner.Execute(context.Background(), base); err != nil {
		t.Fatal(err)
	}

	collapsed := Options{DiagramID: "plant-a", Collapsed: []string{"G1"}}
	result, err := runner.Execute(context.Background(), collapsed)
	if err != nil {
		t.Fatal(err)
	}
	if result.CacheInfo.LayoutHit {
		t.Error("different collapsed set should not hit the layout cache")
	}
	if result.Layout.NodeByID("C1") != nil {
		t.Error("collapsed root should hide its children")
	}
}

func TestRunnerWithoutSource(t *testing.T) {
	runner := NewRunner(nil, nil, nil, nil)
	if _, err := runner.Execute(context.Background(), Options{DiagramID: "x"}); err == nil {
		t.Error("Execute without a source should fail")
	}
}
