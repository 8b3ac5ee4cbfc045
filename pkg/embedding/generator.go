package embedding

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const warmupProbeText = "warmup probe"

// Generator wraps a Provider with the policies the retrieval core needs:
// head-truncation of over-length input, output validation (dimension,
// NaN/Inf), a single-flight warmup so concurrent first calls load the
// model at most once, and a TTL cache for query embeddings (users repeat
// and refine the same legal questions within a session).
//
// Generator is safe for concurrent use.
type Generator struct {
	provider Provider
	logger   *log.Logger

	maxInputRunes int
	dimension     int // 0 until warmup when auto-detected

	warmMu sync.Mutex
	warmed bool

	queryCache *gocache.Cache
}

// GeneratorConfig holds the tunables. Zero values fall back to defaults.
type GeneratorConfig struct {
	// MaxInputRunes bounds the text sent to the provider. Over-length
	// input is head-truncated, never rejected. Default 2048, roughly the
	// short-context window of sentence-embedding models.
	MaxInputRunes int

	// Dimension is the expected vector size. 0 means detect it from the
	// provider's first response and enforce it afterwards.
	Dimension int

	// QueryCacheTTL bounds how long query embeddings are reused.
	// Default 5 minutes.
	QueryCacheTTL time.Duration
}

func NewGenerator(provider Provider, cfg GeneratorConfig, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.MaxInputRunes <= 0 {
		cfg.MaxInputRunes = 2048
	}
	if cfg.QueryCacheTTL <= 0 {
		cfg.QueryCacheTTL = 5 * time.Minute
	}
	return &Generator{
		provider:      provider,
		logger:        logger,
		maxInputRunes: cfg.MaxInputRunes,
		dimension:     cfg.Dimension,
		queryCache:    gocache.New(cfg.QueryCacheTTL, 2*cfg.QueryCacheTTL),
	}
}

// Dimension returns the embedding dimensionality. It is 0 until the first
// successful embed when the generator was configured with auto-detection.
func (g *Generator) Dimension() int {
	return g.dimension
}

// warmup performs the initial provider probe. With Ollama this is what
// actually pulls the model into memory, so at most one probe is in flight
// no matter how many requests race on first use: callers queue on the lock
// and see the recorded success without re-probing. A failed probe is not
// recorded, so the next call tries again once the provider recovers.
func (g *Generator) warmup(ctx context.Context) error {
	g.warmMu.Lock()
	defer g.warmMu.Unlock()
	if g.warmed {
		return nil
	}

	start := time.Now()
	res, err := g.provider.Generate(ctx, warmupProbeText, TaskRetrievalDocument)
	if err != nil {
		return &EmbeddingError{Reason: "provider warmup", Err: err}
	}
	if len(res.Values) == 0 {
		return &EmbeddingError{Reason: "provider warmup returned empty vector"}
	}
	if g.dimension == 0 {
		g.dimension = len(res.Values)
	} else if g.dimension != len(res.Values) {
		return &DimensionError{Want: g.dimension, Got: len(res.Values)}
	}
	g.warmed = true
	g.logger.Printf("[DEBUG] Embedding provider warmed up in %s (dimension=%d)", time.Since(start).Round(time.Millisecond), g.dimension)
	return nil
}

// Embed generates a document embedding for text. Over-length input is
// head-truncated; the result is validated before being returned.
func (g *Generator) Embed(ctx context.Context, text string) ([]float32, error) {
	return g.embed(ctx, text, TaskRetrievalDocument)
}

// EmbedQuery generates (and caches) a query embedding for text.
func (g *Generator) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	truncated := g.truncate(text)
	if cached, ok := g.queryCache.Get(truncated); ok {
		return cached.([]float32), nil
	}
	vec, err := g.embed(ctx, truncated, TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	g.queryCache.Set(truncated, vec, gocache.DefaultExpiration)
	return vec, nil
}

// EmbedBatch generates document embeddings for each text in order. A
// failure on any text fails the whole batch: the caller (batch loader)
// skips the batch and reports it rather than indexing a partial one.
func (g *Generator) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := g.embed(ctx, text, TaskRetrievalDocument)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

func (g *Generator) embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	if err := g.warmup(ctx); err != nil {
		return nil, err
	}

	res, err := g.provider.Generate(ctx, g.truncate(text), taskType)
	if err != nil {
		return nil, &EmbeddingError{Reason: "provider call", Err: err}
	}
	if err := g.validate(res.Values); err != nil {
		return nil, err
	}
	return res.Values, nil
}

func (g *Generator) validate(vec []float32) error {
	if len(vec) == 0 {
		return &EmbeddingError{Reason: "provider returned empty vector"}
	}
	if g.dimension != 0 && len(vec) != g.dimension {
		return &DimensionError{Want: g.dimension, Got: len(vec)}
	}
	for _, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return &EmbeddingError{Reason: "vector contains NaN or Inf components"}
		}
	}
	return nil
}

// truncate head-truncates to the configured rune budget. Head-truncation
// keeps the case headnote, which carries most of the topical signal.
func (g *Generator) truncate(text string) string {
	if len(text) <= g.maxInputRunes {
		return text // fast path: byte length bounds rune count
	}
	runes := []rune(text)
	if len(runes) <= g.maxInputRunes {
		return text
	}
	return string(runes[:g.maxInputRunes])
}
