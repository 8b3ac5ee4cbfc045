package vectorstore

import (
	"context"
	"fmt"
)

// Entry is one indexed case: its stable id, embedding vector, the
// display-metadata subset, and the text the vector was computed from
// (kept so search results can show an excerpt without re-reading the
// corpus). Entries are never mutated in place; updates are upserts.
type Entry struct {
	ID       string
	Vector   []float32
	Metadata map[string]string
	Text     string
}

// Match is one similarity search hit, similarity in [0,1] (cosine).
type Match struct {
	ID         string
	Similarity float32
	Metadata   map[string]string
	Text       string
}

// Index is the persistent nearest-neighbor store over case embeddings.
//
// Implementations must support concurrent Query calls while at most one
// Upsert proceeds at a time. Scores are only comparable within a single
// query.
type Index interface {
	// Upsert inserts or replaces entries by id. Safe to call repeatedly
	// with overlapping ids. A wrong-dimension vector anywhere in the
	// batch fails the whole batch with *DimensionMismatchError and
	// writes nothing.
	Upsert(ctx context.Context, entries []Entry) (int, error)

	// Query returns at most topK entries ordered by descending
	// similarity. An empty index yields an empty slice, not an error.
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)

	// Count returns the number of indexed entries.
	Count(ctx context.Context) (int, error)

	// Reset drops all entries (full reload only).
	Reset(ctx context.Context) error

	Close() error
}

// DimensionMismatchError means the index was built (or configured) for a
// different embedding dimensionality than the vectors now being written
// or queried. This is systemic misconfiguration: mixing embedding model
// versions silently degrades ranking with no error signal, so callers
// must halt rather than skip.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: index expects %d, got %d", e.Want, e.Got)
}

// ModelMismatchError means the persisted index was built with a different
// embedding model than is currently configured. Fatal for the same reason
// as DimensionMismatchError.
type ModelMismatchError struct {
	IndexModel      string
	ConfiguredModel string
}

func (e *ModelMismatchError) Error() string {
	return fmt.Sprintf("embedding model mismatch: index was built with %q, configured model is %q", e.IndexModel, e.ConfiguredModel)
}
