package persistence

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/petrijr/canvasflow/pkg/api"
)

func newTestSQLiteStore(t *testing.T) *SQLiteGraphStore {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	// Every pooled connection would get its own :memory: database.
	db.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = db.Close()
	})

	store, err := NewSQLiteGraphStore(db)
	if err != nil {
		t.Fatalf("NewSQLiteGraphStore failed: %v", err)
	}

	return store
}

func sampleGraph() api.Graph {
	return api.Graph{
		Nodes: []api.Node{
			{ID: "p", Type: "prompt", Data: map[string]any{"output": "a cat in a hat"}},
			{ID: "gen", Type: "image-gen", Data: map[string]any{"size": float64(512)}},
		},
		Edges: []api.Edge{
			{ID: "e1", Source: "p", Target: "gen", TargetHandle: "prompt"},
		},
	}
}

// storeContract runs the behaviour every GraphStore must provide.
func storeContract(t *testing.T, store GraphStore) {
	t.Helper()

	if _, err := store.GetGraph("missing"); !errors.Is(err, ErrGraphNotFound) {
		t.Fatalf("expected ErrGraphNotFound, got %v", err)
	}

	if err := store.SaveGraph(GraphRecord{ID: "canvas-b", Name: "second", Graph: api.Graph{}}); err != nil {
		t.Fatalf("SaveGraph failed: %v", err)
	}
	if err := store.SaveGraph(GraphRecord{ID: "canvas-a", Name: "first", Graph: sampleGraph()}); err != nil {
		t.Fatalf("SaveGraph failed: %v", err)
	}

	got, err := store.GetGraph("canvas-a")
	if err != nil {
		t.Fatalf("GetGraph failed: %v", err)
	}
	if got.Name != "first" || len(got.Graph.Nodes) != 2 || len(got.Graph.Edges) != 1 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if got.Graph.Nodes[0].Data["output"] != "a cat in a hat" {
		t.Fatalf("node data not preserved: %+v", got.Graph.Nodes[0].Data)
	}
	if got.Graph.Edges[0].TargetHandle != "prompt" {
		t.Fatalf("edge handle not preserved: %+v", got.Graph.Edges[0])
	}
	if got.UpdatedAt.IsZero() {
		t.Fatalf("expected UpdatedAt to be set")
	}

	// Overwrite keeps a single record.
	if err := store.SaveGraph(GraphRecord{ID: "canvas-a", Name: "renamed", Graph: sampleGraph()}); err != nil {
		t.Fatalf("SaveGraph overwrite failed: %v", err)
	}

	list, err := store.ListGraphs()
	if err != nil {
		t.Fatalf("ListGraphs failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != "canvas-a" || list[1].ID != "canvas-b" {
		t.Fatalf("unexpected list: %+v", list)
	}
	if list[0].Name != "renamed" {
		t.Fatalf("expected overwritten name, got %q", list[0].Name)
	}

	if err := store.DeleteGraph("canvas-b"); err != nil {
		t.Fatalf("DeleteGraph failed: %v", err)
	}
	if err := store.DeleteGraph("canvas-b"); !errors.Is(err, ErrGraphNotFound) {
		t.Fatalf("expected ErrGraphNotFound on second delete, got %v", err)
	}

	if err := store.SaveGraph(GraphRecord{Name: "no id"}); err == nil {
		t.Fatalf("expected error for empty id")
	}
	bad := api.Graph{Nodes: []api.Node{{ID: "x"}, {ID: "x"}}}
	if err := store.SaveGraph(GraphRecord{ID: "bad", Graph: bad}); !errors.Is(err, api.ErrInvalidGraph) {
		t.Fatalf("expected ErrInvalidGraph, got %v", err)
	}
}

func TestInMemoryStore_Contract(t *testing.T) {
	storeContract(t, NewInMemoryStore())
}

func TestSQLiteGraphStore_Contract(t *testing.T) {
	storeContract(t, newTestSQLiteStore(t))
}

func TestInMemoryStore_SnapshotsAreIsolated(t *testing.T) {
	store := NewInMemoryStore()

	g := sampleGraph()
	if err := store.SaveGraph(GraphRecord{ID: "c", Graph: g}); err != nil {
		t.Fatalf("SaveGraph failed: %v", err)
	}

	// Mutating the caller's copy does not change the stored graph.
	g.Nodes[0].Data["output"] = "changed"
	g.Nodes[1].ID = "renamed"

	got, err := store.GetGraph("c")
	if err != nil {
		t.Fatalf("GetGraph failed: %v", err)
	}
	if got.Graph.Nodes[0].Data["output"] != "a cat in a hat" || got.Graph.Nodes[1].ID != "gen" {
		t.Fatalf("stored graph was mutated: %+v", got.Graph)
	}

	got.Graph.Nodes[0].Data["output"] = "also changed"
	again, _ := store.GetGraph("c")
	if again.Graph.Nodes[0].Data["output"] != "a cat in a hat" {
		t.Fatalf("returned graph aliases the stored one")
	}
}

func TestSQLiteGraphStore_UpdatedAtUsesClock(t *testing.T) {
	store := newTestSQLiteStore(t)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	if err := store.SaveGraph(GraphRecord{ID: "c", Graph: sampleGraph()}); err != nil {
		t.Fatalf("SaveGraph failed: %v", err)
	}
	got, err := store.GetGraph("c")
	if err != nil {
		t.Fatalf("GetGraph failed: %v", err)
	}
	if !got.UpdatedAt.Equal(fixed) {
		t.Fatalf("UpdatedAt = %v, want %v", got.UpdatedAt, fixed)
	}
}

func TestDecodeGraph(t *testing.T) {
	g, err := DecodeGraph(nil)
	if err != nil || len(g.Nodes) != 0 {
		t.Fatalf("expected empty graph for empty data, got %+v, %v", g, err)
	}

	if _, err := DecodeGraph([]byte("{not json")); err == nil {
		t.Fatalf("expected decode error")
	}

	data, err := EncodeGraph(sampleGraph())
	if err != nil {
		t.Fatalf("EncodeGraph failed: %v", err)
	}
	back, err := DecodeGraph(data)
	if err != nil {
		t.Fatalf("DecodeGraph failed: %v", err)
	}
	if back.Nodes[1].Data["size"] != float64(512) {
		t.Fatalf("expected numeric data to decode as float64, got %T", back.Nodes[1].Data["size"])
	}
}
