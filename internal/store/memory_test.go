package store

import (
	"context"
	"errors"
	"testing"
)

type doc struct {
	Value string `json:"value"`
}

func TestMemoryTreeGetSet(t *testing.T) {
	tree := NewMemoryTree()
	ctx := context.Background()

	var out doc
	if err := tree.Get(ctx, "clients/123", &out); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing: got %v, want ErrNotFound", err)
	}

	if err := tree.Set(ctx, "clients/123", doc{Value: "a"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := tree.Get(ctx, "clients/123", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.Value != "a" {
		t.Errorf("got %q, want a", out.Value)
	}

	// Set is a full replace.
	if err := tree.Set(ctx, "clients/123", doc{Value: "b"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := tree.Get(ctx, "clients/123", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.Value != "b" {
		t.Errorf("got %q, want b", out.Value)
	}

	ok, err := tree.Exists(ctx, "clients/123")
	if err != nil || !ok {
		t.Errorf("exists = %v, %v, want true", ok, err)
	}
	ok, err = tree.Exists(ctx, "clients/999")
	if err != nil || ok {
		t.Errorf("exists missing = %v, %v, want false", ok, err)
	}
}

func TestMemoryTreeSubtree(t *testing.T) {
	tree := NewMemoryTree()
	ctx := context.Background()

	paths := []string{
		"clients/123",
		"clients/123/schedules/2025-06-10/09:00",
		"clients/123/schedules/2025-06-10/11:00",
		"clients/123/schedules/2025-06-11/09:00",
		"clients/456",
	}
	for _, p := range paths {
		if err := tree.Set(ctx, p, doc{Value: p}); err != nil {
			t.Fatalf("set %s: %v", p, err)
		}
	}

	day, err := tree.ListSubtree(ctx, "clients/123/schedules/2025-06-10")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(day) != 2 {
		t.Errorf("day subtree has %d docs, want 2", len(day))
	}
	if _, ok := day["09:00"]; !ok {
		t.Errorf("missing relative key 09:00 in %v", day)
	}

	all, err := tree.ListSubtree(ctx, "clients")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("clients subtree has %d docs, want 5", len(all))
	}

	// Deleting the client removes its schedules but not other clients.
	if err := tree.DeleteSubtree(ctx, "clients/123"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	all, err = tree.ListSubtree(ctx, "clients")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("after delete %d docs remain, want 1: %v", len(all), all)
	}
	if _, ok := all["456"]; !ok {
		t.Errorf("unrelated client deleted: %v", all)
	}
}

func TestMemoryTreeDeleteLeaf(t *testing.T) {
	tree := NewMemoryTree()
	ctx := context.Background()

	if err := tree.Set(ctx, "clients/123/schedules/2025-06-10/09:00", doc{Value: "x"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := tree.DeleteSubtree(ctx, "clients/123/schedules/2025-06-10/09:00"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ok, _ := tree.Exists(ctx, "clients/123/schedules/2025-06-10/09:00")
	if ok {
		t.Error("leaf survived delete")
	}

	// Deleting a missing path is a no-op.
	if err := tree.DeleteSubtree(ctx, "clients/nope"); err != nil {
		t.Errorf("delete missing: %v", err)
	}
}
