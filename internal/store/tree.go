// Package store exposes the client/appointment data as a hierarchical
// document tree addressed by slash-separated paths, mirroring the layout
// the service keeps in Redis:
//
//	clients/{phone}                          -> client document
//	clients/{phone}/schedules/{date}/{time}  -> appointment document
//
// The tree has no query language and no cross-path transactions. Writes
// replace the whole document at a path; deletes remove a path and
// everything beneath it.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

var ErrNotFound = errors.New("document not found")

// Tree is the minimal surface the scheduling service needs from the
// remote store.
type Tree interface {
	// Get unmarshals the leaf document at path into out. Returns
	// ErrNotFound when nothing is stored there.
	Get(ctx context.Context, path string, out any) error

	// Set marshals doc and fully replaces the leaf document at path.
	Set(ctx context.Context, path string, doc any) error

	// Exists reports whether a leaf document is stored at exactly path.
	Exists(ctx context.Context, path string) (bool, error)

	// ListSubtree returns every leaf document strictly below path, keyed
	// by the path relative to it. An empty subtree is not an error.
	ListSubtree(ctx context.Context, path string) (map[string]json.RawMessage, error)

	// DeleteSubtree removes the leaf at path, if any, and every leaf
	// below it. Deleting a missing path is a no-op.
	DeleteSubtree(ctx context.Context, path string) error
}
