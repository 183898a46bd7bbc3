package storage

import (
	"context"
	"testing"

	"github.com/bennycheung/PyFireSQL/firesql"
)

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	seed := firesql.Documents{
		"u1": {"tags": []interface{}{"a"}, "profile": map[string]interface{}{"city": "NYC"}},
	}
	store.Seed("Users", seed)

	// Mutating the seed map must not affect the store.
	seed["u1"]["tags"].([]interface{})[0] = "changed"

	got, err := store.GetDocument(ctx, "Users", "u1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got["tags"].([]interface{})[0] != "a" {
		t.Error("store shares memory with the seed map")
	}

	// Mutating a fetched document must not affect the store either.
	got["profile"].(map[string]interface{})["city"] = "SF"
	again, _ := store.GetDocument(ctx, "Users", "u1")
	if again["profile"].(map[string]interface{})["city"] != "NYC" {
		t.Error("store shares memory with fetched documents")
	}
}

func TestMemoryStoreQuery(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Seed("Users", firesql.Documents{
		"u1": {"state": "ACTIVE"},
		"u2": {"state": "CLOSED"},
	})

	docs, err := store.QueryByTuples(ctx, "Users", []firesql.Predicate{
		{Field: "state", Op: firesql.OpEqual, Value: "ACTIVE"},
	})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("expected 1 match, got %d", len(docs))
	}
}

func TestMemoryStoreDocidShortcutWithConjunct(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Seed("Users", firesql.Documents{
		"u1": {"state": "ACTIVE"},
	})

	// The docid shortcut still honors the remaining predicates.
	docs, err := store.QueryByTuples(ctx, "Users", []firesql.Predicate{
		{Field: firesql.DocID, Op: firesql.OpEqual, Value: "u1"},
		{Field: "state", Op: firesql.OpEqual, Value: "CLOSED"},
	})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("conjunct should have filtered the document: %v", docs)
	}
}

func TestMemoryStoreWriteCycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.GenerateDocumentID(ctx, "Users")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if err := store.SetDocument(ctx, "Users", id, firesql.Document{"n": int64(1)}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := store.UpdateDocument(ctx, "Users", id, firesql.Document{"m": int64(2)}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, _ := store.GetDocument(ctx, "Users", id)
	if got["n"] != int64(1) || got["m"] != int64(2) {
		t.Errorf("merge wrong: %v", got)
	}

	if err := store.DeleteDocument(ctx, "Users", id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.GetDocument(ctx, "Users", id); !firesql.IsKind(err, firesql.NotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}
