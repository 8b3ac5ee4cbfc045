package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"
)

const collectionName = "legal_cases"

// indexManifest records which embedding model produced the persisted
// vectors. Reopening the index with a different model or dimension must
// fail fast, see ModelMismatchError.
type indexManifest struct {
	EmbeddingModel string    `json:"embedding_model"`
	Dimension      int       `json:"dimension"`
	CreatedAt      time.Time `json:"created_at"`
}

// ChromemStore is the default Index implementation: an embedded,
// directory-persistent vector store (chromem-go), the Go counterpart of
// a local ChromaDB deployment. No database server is needed; the backing
// store is plain files under dataDir.
//
// A RWMutex keeps the single-writer / many-readers contract: queries run
// concurrently, upserts are serialized, and a reader may transiently miss
// entries from an in-flight upsert (eventual consistency is fine here).
type ChromemStore struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection

	dataDir   string // "" for the in-memory variant
	model     string
	dimension int
}

// NewChromemStore opens (or creates) the persistent index under dataDir.
// model names the embedding model the vectors come from; dimension may be
// 0 to adopt it from the manifest or the first upserted batch.
func NewChromemStore(dataDir, model string, dimension int) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(dataDir, false)
	if err != nil {
		return nil, fmt.Errorf("open vector store at %s: %w", dataDir, err)
	}

	s := &ChromemStore{
		db:        db,
		dataDir:   dataDir,
		model:     model,
		dimension: dimension,
	}

	if err := s.checkManifest(); err != nil {
		return nil, err
	}

	s.collection, err = db.GetOrCreateCollection(collectionName, nil, rejectLazyEmbedding)
	if err != nil {
		return nil, fmt.Errorf("open collection %s: %w", collectionName, err)
	}
	return s, nil
}

// NewMemoryStore returns a non-persistent store with the same semantics.
// Used in tests and available for ephemeral deployments.
func NewMemoryStore(model string, dimension int) (*ChromemStore, error) {
	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection(collectionName, nil, rejectLazyEmbedding)
	if err != nil {
		return nil, fmt.Errorf("create collection %s: %w", collectionName, err)
	}
	return &ChromemStore{
		db:         db,
		collection: collection,
		model:      model,
		dimension:  dimension,
	}, nil
}

// rejectLazyEmbedding is the chromem EmbeddingFunc for the collection.
// The retrieval core always supplies precomputed vectors, so chromem
// should never need to embed on its own; if it tries, something upstream
// dropped a vector.
func rejectLazyEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("index only accepts precomputed vectors")
}

func (s *ChromemStore) manifestPath() string {
	return filepath.Join(s.dataDir, "manifest.json")
}

// checkManifest verifies model/dimension against a previously persisted
// index, or writes a fresh manifest for a new one.
func (s *ChromemStore) checkManifest() error {
	if s.dataDir == "" {
		return nil
	}
	raw, err := os.ReadFile(s.manifestPath())
	if errors.Is(err, os.ErrNotExist) {
		return s.writeManifest()
	}
	if err != nil {
		return fmt.Errorf("read index manifest: %w", err)
	}

	var m indexManifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("parse index manifest: %w", err)
	}
	if m.EmbeddingModel != s.model {
		return &ModelMismatchError{IndexModel: m.EmbeddingModel, ConfiguredModel: s.model}
	}
	if s.dimension == 0 {
		s.dimension = m.Dimension
	} else if m.Dimension != 0 && m.Dimension != s.dimension {
		return &DimensionMismatchError{Want: m.Dimension, Got: s.dimension}
	}
	return nil
}

func (s *ChromemStore) writeManifest() error {
	if s.dataDir == "" {
		return nil
	}
	m := indexManifest{
		EmbeddingModel: s.model,
		Dimension:      s.dimension,
		CreatedAt:      time.Now().UTC(),
	}
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index manifest: %w", err)
	}
	if err := os.WriteFile(s.manifestPath(), raw, 0o644); err != nil {
		return fmt.Errorf("write index manifest: %w", err)
	}
	return nil
}

func (s *ChromemStore) Upsert(ctx context.Context, entries []Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate the whole batch before writing anything: a partial batch
	// with mixed dimensionality is worse than a failed one.
	for _, e := range entries {
		if s.dimension != 0 && len(e.Vector) != s.dimension {
			return 0, &DimensionMismatchError{Want: s.dimension, Got: len(e.Vector)}
		}
	}
	if s.dimension == 0 {
		s.dimension = len(entries[0].Vector)
		for _, e := range entries {
			if len(e.Vector) != s.dimension {
				s.dimension = 0
				return 0, &DimensionMismatchError{Want: len(entries[0].Vector), Got: len(e.Vector)}
			}
		}
		if err := s.writeManifest(); err != nil {
			s.dimension = 0
			return 0, err
		}
	}

	docs := make([]chromem.Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, chromem.Document{
			ID:        e.ID,
			Metadata:  e.Metadata,
			Embedding: e.Vector,
			Content:   e.Text,
		})
	}

	// chromem replaces documents by id, which gives us idempotent upsert
	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return 0, fmt.Errorf("upsert %d entries: %w", len(docs), err)
	}
	return len(docs), nil
}

func (s *ChromemStore) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dimension != 0 && len(vector) != s.dimension {
		return nil, &DimensionMismatchError{Want: s.dimension, Got: len(vector)}
	}

	// chromem errors when asked for more results than documents exist,
	// so clamp; an empty index is a valid empty result, never an error.
	count := s.collection.Count()
	if count == 0 {
		return []Match{}, nil
	}
	if topK > count {
		topK = count
	}

	results, err := s.collection.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, Match{
			ID:         r.ID,
			Similarity: r.Similarity,
			Metadata:   r.Metadata,
			Text:       r.Content,
		})
	}
	return matches, nil
}

func (s *ChromemStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection.Count(), nil
}

// Reset drops every entry. Only the full-reload path uses this.
func (s *ChromemStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	collection, err := s.db.GetOrCreateCollection(collectionName, nil, rejectLazyEmbedding)
	if err != nil {
		return fmt.Errorf("recreate collection: %w", err)
	}
	s.collection = collection
	return nil
}

func (s *ChromemStore) Close() error {
	// chromem persists on every write, nothing to flush
	return nil
}
