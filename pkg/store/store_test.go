package store

import (
	"context"
	"testing"

	"github.com/relblock/relblock/pkg/graph"
)

func TestMemoryLogAppendAssignsVersions(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLog()

	for want := 1; want <= 3; want++ {
		ev := NewEvent("d1", KindAddRootComponent)
		ev.AddRoot = &AddRootComponentPayload{ID: "c"}
		if err := l.Append(ctx, &ev); err != nil {
			t.Fatalf("Append: %v", err)
		}
		if ev.Version != want {
			t.Errorf("version = %d, want %d", ev.Version, want)
		}
	}

	head, err := l.Head(ctx, "d1")
	if err != nil || head != 3 {
		t.Errorf("Head = %d, %v", head, err)
	}
	if head, _ := l.Head(ctx, "other"); head != 0 {
		t.Errorf("unknown diagram head = %d", head)
	}
}

func TestMemoryLogRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLog()

	ev := NewEvent("d1", KindAddRootComponent)
	ev.AddRoot = &AddRootComponentPayload{ID: "c"}
	if err := l.Append(ctx, &ev); err != nil {
		t.Fatal(err)
	}

	stale := NewEvent("d1", KindRemoveNode)
	stale.Remove = &RemoveNodePayload{ID: "c"}
	stale.Version = 1 // already taken
	if err := l.Append(ctx, &stale); err == nil {
		t.Error("stale version should be rejected")
	}
}

func TestEditorBuildsDiagram(t *testing.T) {
	ctx := context.Background()
	e := NewEditor(NewMemoryLog(), WithActor("tester"))

	if err := e.AddRootComponent(ctx, "plant", "pump", "Main pump"); err != nil {
		t.Fatalf("AddRootComponent: %v", err)
	}
	gateID, err := e.AddComponent(ctx, "plant", AddComponentPayload{
		TargetID: "pump",
		NewID:    "backup",
		Relation: graph.RelParallel,
		Position: -1,
	})
	if err != nil {
		t.Fatalf("AddComponent: %v", err)
	}
	if gateID != "G_or_1" {
		t.Errorf("gateID = %q, want G_or_1", gateID)
	}

	g, version, err := e.Load(ctx, "plant")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}
	if g.Root() != "G_or_1" {
		t.Errorf("root = %q", g.Root())
	}
	children := g.Children("G_or_1")
	if len(children) != 2 || children[0] != "pump" || children[1] != "backup" {
		t.Errorf("children = %v", children)
	}
}

func TestReplayDeterministicGateGUID(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryLog()
	e := NewEditor(log)

	if err := e.AddRootComponent(ctx, "plant", "pump", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddComponent(ctx, "plant", AddComponentPayload{
		TargetID: "pump", NewID: "backup", Relation: graph.RelParallel, Position: -1,
	}); err != nil {
		t.Fatal(err)
	}

	first, _, err := e.Load(ctx, "plant")
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := NewEditor(log).Load(ctx, "plant")
	if err != nil {
		t.Fatal(err)
	}

	g1, _ := first.Node("G_or_1")
	g2, _ := second.Node("G_or_1")
	if g1.GUID == "" {
		t.Fatal("replayed gate should carry a GUID")
	}
	if g1.GUID != g2.GUID {
		t.Errorf("replay produced different GUIDs: %q vs %q", g1.GUID, g2.GUID)
	}
}

func TestEditorRejectsInvalidMutation(t *testing.T) {
	ctx := context.Background()
	e := NewEditor(NewMemoryLog())

	if err := e.AddRootComponent(ctx, "plant", "pump", ""); err != nil {
		t.Fatal(err)
	}
	if err := e.RemoveNode(ctx, "plant", "ghost"); err == nil {
		t.Error("removing an unknown node should fail")
	}

	// The failed mutation must not have been appended.
	head, err := e.Head(ctx, "plant")
	if err != nil || head != 1 {
		t.Errorf("head = %d, %v; want 1", head, err)
	}
}

func TestEditorUndo(t *testing.T) {
	ctx := context.Background()
	e := NewEditor(NewMemoryLog())

	if err := e.AddRootComponent(ctx, "plant", "pump", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddComponent(ctx, "plant", AddComponentPayload{
		TargetID: "pump", NewID: "backup", Relation: graph.RelParallel, Position: -1,
	}); err != nil {
		t.Fatal(err)
	}

	if err := e.Undo(ctx, "plant"); err != nil {
		t.Fatalf("Undo: %v", err)
	}

	g, _, err := e.Load(ctx, "plant")
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 1 || g.Root() != "pump" {
		t.Errorf("after undo: %d nodes, root %q", g.NodeCount(), g.Root())
	}

	// Edits continue on top of the rewound history.
	if _, err := e.AddComponent(ctx, "plant", AddComponentPayload{
		TargetID: "pump", NewID: "standby", Relation: graph.RelSeries, Position: -1,
	}); err != nil {
		t.Fatalf("AddComponent after undo: %v", err)
	}
	g, _, err = e.Load(ctx, "plant")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := g.Node("backup"); ok {
		t.Error("undone component should stay gone")
	}
	if _, ok := g.Node("standby"); !ok {
		t.Error("post-undo component should exist")
	}
}

func TestEditorSetHeadRange(t *testing.T) {
	ctx := context.Background()
	e := NewEditor(NewMemoryLog())

	if err := e.AddRootComponent(ctx, "plant", "pump", ""); err != nil {
		t.Fatal(err)
	}
	if err := e.SetHead(ctx, "plant", 5); err == nil {
		t.Error("set-head beyond the log should fail")
	}
	if err := e.SetHead(ctx, "plant", 0); err != nil {
		t.Fatalf("SetHead(0): %v", err)
	}

	g, _, err := e.Load(ctx, "plant")
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 0 {
		t.Errorf("set-head 0 should empty the diagram, got %d nodes", g.NodeCount())
	}
}

func TestEditorInitSnapshot(t *testing.T) {
	ctx := context.Background()
	e := NewEditor(NewMemoryLog())

	src := graph.New()
	if err := src.AddNode(graph.Node{ID: "G1", Kind: graph.KindGate, Subtype: graph.GateAND}); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"C1", "C2"} {
		if err := src.AddNode(graph.Node{ID: id, Kind: graph.KindComponent}); err != nil {
			t.Fatal(err)
		}
		if err := src.AddEdge("G1", id); err != nil {
			t.Fatal(err)
		}
	}

	if err := e.Init(ctx, "plant", src); err != nil {
		t.Fatalf("Init: %v", err)
	}
	g, _, err := e.Load(ctx, "plant")
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 3 || g.Root() != "G1" {
		t.Errorf("snapshot replay: %d nodes, root %q", g.NodeCount(), g.Root())
	}
}

func TestEffectiveEventsNestedSetHead(t *testing.T) {
	mk := func(version int) Event {
		return Event{Version: version, Kind: KindAddRootComponent}
	}
	setHead := func(version, target int) Event {
		return Event{Version: version, Kind: KindSetHead, Head: &SetHeadPayload{Version: target}}
	}

	events := []Event{mk(1), mk(2), setHead(3, 1), mk(4), setHead(5, 0)}
	if got := effectiveEvents(events); len(got) != 0 {
		t.Errorf("set-head 0 should drop everything, got %d events", len(got))
	}

	events = []Event{mk(1), mk(2), setHead(3, 1), mk(4)}
	got := effectiveEvents(events)
	if len(got) != 2 || got[0].Version != 1 || got[1].Version != 4 {
		t.Errorf("effective = %v", got)
	}
}

func TestJSONLLogPersistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	l, err := NewJSONLLog(dir)
	if err != nil {
		t.Fatal(err)
	}
	e := NewEditor(l)
	if err := e.AddRootComponent(ctx, "plant", "pump", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddComponent(ctx, "plant", AddComponentPayload{
		TargetID: "pump", NewID: "backup", Relation: graph.RelParallel, Position: -1,
	}); err != nil {
		t.Fatal(err)
	}

	// A fresh log instance over the same directory sees the history.
	reopened, err := NewJSONLLog(dir)
	if err != nil {
		t.Fatal(err)
	}
	head, err := reopened.Head(ctx, "plant")
	if err != nil || head != 2 {
		t.Fatalf("reopened head = %d, %v", head, err)
	}

	g, version, err := NewEditor(reopened).Load(ctx, "plant")
	if err != nil {
		t.Fatal(err)
	}
	if version != 2 || g.NodeCount() != 3 {
		t.Errorf("reopened replay: version %d, %d nodes", version, g.NodeCount())
	}

	diagrams, err := reopened.Diagrams(ctx)
	if err != nil || len(diagrams) != 1 || diagrams[0] != "plant" {
		t.Errorf("Diagrams = %v, %v", diagrams, err)
	}
}

func TestJSONLLogRejectsUnsafeIDs(t *testing.T) {
	ctx := context.Background()
	l, err := NewJSONLLog(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{"", "../escape", "a/b"} {
		ev := NewEvent(id, KindAddRootComponent)
		ev.AddRoot = &AddRootComponentPayload{ID: "c"}
		if err := l.Append(ctx, &ev); err == nil {
			t.Errorf("diagram id %q should be rejected", id)
		}
	}
}
