package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// caseEmbedding is the gorm model backing the pgvector index.
type caseEmbedding struct {
	Id        string          `gorm:"type:text;primaryKey"`
	Document  string          `gorm:"type:text"`
	Embedding pgvector.Vector `gorm:"type:vector"`
	Metadata  datatypes.JSON  `gorm:"type:jsonb"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
}

func (caseEmbedding) TableName() string { return "case_embeddings" }

// indexMeta is a single-row table recording which embedding model built
// the index, the pgvector counterpart of the chromem manifest file.
type indexMeta struct {
	Id             int    `gorm:"primaryKey"`
	EmbeddingModel string `gorm:"type:text"`
	Dimension      int
}

func (indexMeta) TableName() string { return "case_index_meta" }

// PGVectorStore is the cloud-deployment Index implementation: PostgreSQL
// with the pgvector extension, cosine distance via the <=> operator.
// Postgres handles reader/writer concurrency, so no extra locking here.
type PGVectorStore struct {
	db        *gorm.DB
	model     string
	dimension int
}

func NewPGVectorStore(dsn, model string, dimension int) (*PGVectorStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("enable pgvector extension: %w", err)
	}
	if err := db.AutoMigrate(&caseEmbedding{}, &indexMeta{}); err != nil {
		return nil, fmt.Errorf("migrate case_embeddings: %w", err)
	}

	s := &PGVectorStore{db: db, model: model, dimension: dimension}
	if err := s.checkMeta(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PGVectorStore) checkMeta() error {
	var meta indexMeta
	err := s.db.First(&meta, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.writeMeta()
	}
	if err != nil {
		return fmt.Errorf("read index meta: %w", err)
	}
	if meta.EmbeddingModel != s.model {
		return &ModelMismatchError{IndexModel: meta.EmbeddingModel, ConfiguredModel: s.model}
	}
	if s.dimension == 0 {
		s.dimension = meta.Dimension
	} else if meta.Dimension != 0 && meta.Dimension != s.dimension {
		return &DimensionMismatchError{Want: meta.Dimension, Got: s.dimension}
	}
	return nil
}

func (s *PGVectorStore) writeMeta() error {
	meta := indexMeta{Id: 1, EmbeddingModel: s.model, Dimension: s.dimension}
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&meta).Error; err != nil {
		return fmt.Errorf("write index meta: %w", err)
	}
	return nil
}

func (s *PGVectorStore) Upsert(ctx context.Context, entries []Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

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
		if err := s.writeMeta(); err != nil {
			s.dimension = 0
			return 0, err
		}
	}

	models := make([]*caseEmbedding, 0, len(entries))
	for _, e := range entries {
		metaJSON, err := json.Marshal(e.Metadata)
		if err != nil {
			return 0, fmt.Errorf("marshal metadata for %s: %w", e.ID, err)
		}
		models = append(models, &caseEmbedding{
			Id:        e.ID,
			Document:  e.Text,
			Embedding: pgvector.NewVector(e.Vector),
			Metadata:  metaJSON,
		})
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"document", "embedding", "metadata"}),
		}).
		Create(models).Error
	if err != nil {
		return 0, fmt.Errorf("upsert %d entries: %w", len(models), err)
	}
	return len(models), nil
}

func (s *PGVectorStore) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}
	if s.dimension != 0 && len(vector) != s.dimension {
		return nil, &DimensionMismatchError{Want: s.dimension, Got: len(vector)}
	}

	// Cosine distance in pgvector is 1 - cosine_similarity, so
	// 1 - (embedding <=> query) gives the similarity score directly.
	type row struct {
		caseEmbedding
		Similarity float64
	}
	var rows []row

	queryVector := pgvector.NewVector(vector)
	err := s.db.WithContext(ctx).
		Table("case_embeddings").
		Select("case_embeddings.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Order("similarity DESC").
		Limit(topK).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}

	matches := make([]Match, 0, len(rows))
	for _, r := range rows {
		var metadata map[string]string
		if err := json.Unmarshal(r.Metadata, &metadata); err != nil {
			metadata = map[string]string{}
		}
		matches = append(matches, Match{
			ID:         r.Id,
			Similarity: float32(r.Similarity),
			Metadata:   metadata,
			Text:       r.Document,
		})
	}
	return matches, nil
}

func (s *PGVectorStore) Count(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&caseEmbedding{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return int(count), nil
}

func (s *PGVectorStore) Reset(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Exec("TRUNCATE case_embeddings").Error; err != nil {
		return fmt.Errorf("truncate case_embeddings: %w", err)
	}
	return nil
}

func (s *PGVectorStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
