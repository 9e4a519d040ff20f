package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// MemoryTree is an in-process Tree used by tests and by the memory
// store driver for local development. It keeps the same flat
// path->document layout as RedisTree.
type MemoryTree struct {
	mu   sync.RWMutex
	docs map[string]json.RawMessage
}

func NewMemoryTree() *MemoryTree {
	return &MemoryTree{docs: make(map[string]json.RawMessage)}
}

func (t *MemoryTree) Get(ctx context.Context, path string, out any) error {
	t.mu.RLock()
	raw, ok := t.docs[path]
	t.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (t *MemoryTree) Set(ctx context.Context, path string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	t.mu.Lock()
	t.docs[path] = raw
	t.mu.Unlock()
	return nil
}

func (t *MemoryTree) Exists(ctx context.Context, path string) (bool, error) {
	t.mu.RLock()
	_, ok := t.docs[path]
	t.mu.RUnlock()
	return ok, nil
}

func (t *MemoryTree) ListSubtree(ctx context.Context, path string) (map[string]json.RawMessage, error) {
	prefix := path + "/"

	t.mu.RLock()
	defer t.mu.RUnlock()

	docs := make(map[string]json.RawMessage)
	for p, raw := range t.docs {
		if strings.HasPrefix(p, prefix) {
			docs[strings.TrimPrefix(p, prefix)] = raw
		}
	}
	return docs, nil
}

func (t *MemoryTree) DeleteSubtree(ctx context.Context, path string) error {
	prefix := path + "/"

	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.docs, path)
	for p := range t.docs {
		if strings.HasPrefix(p, prefix) {
			delete(t.docs, p)
		}
	}
	return nil
}
