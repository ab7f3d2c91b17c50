package search

import (
	"context"

	"github.com/google/uuid"
)

// Searcher is the read side used by the HTTP and terminal front ends.
type Searcher interface {
	Query(ctx context.Context, text string) ([]Hit, error)
}

// Indexer is the write side used by article flows. Errors only report that a
// command could not be queued.
type Indexer interface {
	Add(doc Document) error
	Update(doc Document) error
	Delete(id uuid.UUID) error
}

// DebugStatser provides lightweight stats for visibility/debugging.
type DebugStatser interface {
	DocCount(ctx context.Context) (uint64, error)
}

var (
	_ Searcher     = (*Client)(nil)
	_ Indexer      = (*Client)(nil)
	_ DebugStatser = (*Client)(nil)
)
