package rag

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sanketexe/legal-chatbot/pkg/legal"
	"github.com/sanketexe/legal-chatbot/pkg/vectorstore"
)

const DefaultBatchSize = 50

// BatchEmbedder is the slice of the embedding generator the loader needs.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// LoadReport summarizes one corpus load run.
type LoadReport struct {
	TotalInput            int           `json:"total_input"`
	TotalIndexed          int           `json:"total_indexed"`
	TotalSkippedDuplicate int           `json:"total_skipped_duplicate"`
	FailedIDs             []string      `json:"failed_ids"`
	Elapsed               time.Duration `json:"elapsed"`
}

// Loader is the offline pipeline that embeds a case corpus and populates
// the vector index. Batches are processed sequentially: embedding is the
// bottleneck, and sequential batches bound peak memory.
type Loader struct {
	embedder  BatchEmbedder
	index     vectorstore.Index
	batchSize int
	logger    *log.Logger
}

func NewLoader(embedder BatchEmbedder, index vectorstore.Index, batchSize int, logger *log.Logger) *Loader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{
		embedder:  embedder,
		index:     index,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Load deduplicates records by id (last write wins), then embeds and
// upserts them in sequential batches. A failing batch is logged, skipped
// and reported in FailedIDs; one bad record must not abort a multi-hour
// load. Re-running Load with the same input is idempotent because the
// index upserts by id.
func (l *Loader) Load(ctx context.Context, records []legal.CaseRecord, batchSize int) (*LoadReport, error) {
	if batchSize <= 0 {
		batchSize = l.batchSize
	}
	start := time.Now()
	report := &LoadReport{TotalInput: len(records)}

	// Last-write-wins dedup: later records with the same id replace
	// earlier ones, keeping the original input order of first appearance.
	seen := make(map[string]int, len(records))
	deduped := make([]legal.CaseRecord, 0, len(records))
	for _, rec := range records {
		rec.EnsureID()
		if pos, ok := seen[rec.Id]; ok {
			deduped[pos] = rec
			report.TotalSkippedDuplicate++
			continue
		}
		seen[rec.Id] = len(deduped)
		deduped = append(deduped, rec)
	}

	for offset := 0; offset < len(deduped); offset += batchSize {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("load aborted: %w", err)
		}

		end := offset + batchSize
		if end > len(deduped) {
			end = len(deduped)
		}
		batch := deduped[offset:end]

		indexed, err := l.loadBatch(ctx, batch)
		if err != nil {
			l.logger.Printf("[WARN] Batch %d-%d failed, skipping: %v", offset, end-1, err)
			for _, rec := range batch {
				report.FailedIDs = append(report.FailedIDs, rec.Id)
			}
			continue
		}
		report.TotalIndexed += indexed
		l.logger.Printf("[DEBUG] Indexed batch %d-%d (%d cases)", offset, end-1, indexed)
	}

	report.Elapsed = time.Since(start)
	return report, nil
}

func (l *Loader) loadBatch(ctx context.Context, batch []legal.CaseRecord) (int, error) {
	texts := make([]string, len(batch))
	for i, rec := range batch {
		texts[i] = rec.EmbeddingText()
	}

	vectors, err := l.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed batch: %w", err)
	}
	if len(vectors) != len(batch) {
		return 0, fmt.Errorf("embed batch returned %d vectors for %d texts", len(vectors), len(batch))
	}

	entries := make([]vectorstore.Entry, len(batch))
	for i, rec := range batch {
		entries[i] = vectorstore.Entry{
			ID:       rec.Id,
			Vector:   vectors[i],
			Metadata: rec.IndexMetadata(),
			Text:     texts[i],
		}
	}

	return l.index.Upsert(ctx, entries)
}
