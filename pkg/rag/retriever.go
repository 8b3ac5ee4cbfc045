package rag

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/sanketexe/legal-chatbot/pkg/vectorstore"
)

const (
	DefaultTopK      = 5
	DefaultThreshold = 0.7

	// candidatePoolFactor widens the index query so threshold filtering
	// still has topK survivors to pick from.
	candidatePoolFactor = 3
)

// QueryEmbedder is the slice of the embedding generator the retriever needs.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Result is one retrieved precedent with its per-query relevance score.
// Scores are only comparable within a single query.
type Result struct {
	CaseID   string  `json:"case_id"`
	Title    string  `json:"title"`
	Court    string  `json:"court"`
	Date     string  `json:"date"`
	URL      string  `json:"url"`
	Category string  `json:"category"`
	Score    float32 `json:"score"`
	Rank     int     `json:"rank"`
	Excerpt  string  `json:"-"`
}

// RetrieveOption overrides the retriever's configured defaults per call.
type RetrieveOption func(*retrieveParams)

type retrieveParams struct {
	topK      int
	threshold float32
}

func WithTopK(k int) RetrieveOption {
	return func(p *retrieveParams) { p.topK = k }
}

func WithThreshold(t float32) RetrieveOption {
	return func(p *retrieveParams) { p.threshold = t }
}

// Retriever turns a free-text legal question into a ranked, threshold-
// filtered set of precedent cases.
type Retriever struct {
	embedder  QueryEmbedder
	index     vectorstore.Index
	topK      int
	threshold float32
	logger    *log.Logger
}

func NewRetriever(embedder QueryEmbedder, index vectorstore.Index, topK int, threshold float32, logger *log.Logger) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Retriever{
		embedder:  embedder,
		index:     index,
		topK:      topK,
		threshold: threshold,
		logger:    logger,
	}
}

// Retrieve embeds queryText, searches the index over a widened candidate
// pool, drops candidates under the similarity threshold and returns at
// most topK results in descending score order. The threshold is a quality
// gate: when everything is filtered out the result is empty, never padded
// with unrelated cases.
func (r *Retriever) Retrieve(ctx context.Context, queryText string, opts ...RetrieveOption) ([]Result, error) {
	query := strings.TrimSpace(queryText)
	if query == "" {
		return nil, ErrInvalidQuery
	}

	params := retrieveParams{topK: r.topK, threshold: r.threshold}
	for _, opt := range opts {
		opt(&params)
	}
	if params.topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", ErrInvalidArgument, params.topK)
	}

	start := time.Now()
	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := r.index.Query(ctx, vector, params.topK*candidatePoolFactor)
	if err != nil {
		return nil, fmt.Errorf("index query: %w", err)
	}

	results := make([]Result, 0, params.topK)
	for _, m := range matches {
		if m.Similarity < params.threshold {
			continue
		}
		results = append(results, Result{
			CaseID:   m.ID,
			Title:    m.Metadata["title"],
			Court:    m.Metadata["court"],
			Date:     m.Metadata["date"],
			URL:      m.Metadata["url"],
			Category: m.Metadata["category"],
			Score:    m.Similarity,
			Excerpt:  m.Text,
		})
	}

	// Index order is already descending by score; the stable sort only
	// resolves exact ties, ranking entries with a decision date above
	// those without so ordering stays deterministic.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Date != "" && results[j].Date == ""
	})

	if len(results) > params.topK {
		results = results[:params.topK]
	}
	for i := range results {
		results[i].Rank = i + 1
	}

	r.logger.Printf("[DEBUG] Retrieved %d/%d candidates above threshold %.2f in %s",
		len(results), len(matches), params.threshold, time.Since(start).Round(time.Millisecond))
	return results, nil
}
