package service

import (
	"context"
	"fmt"

	"github.com/sanketexe/legal-chatbot/internal/pkg/logger"
	"github.com/sanketexe/legal-chatbot/pkg/legal"
	"github.com/sanketexe/legal-chatbot/pkg/rag"
	"github.com/sanketexe/legal-chatbot/pkg/vectorstore"
)

type ILoaderService interface {
	LoadFromFile(ctx context.Context, path string, batchSize int, reset bool) (*rag.LoadReport, error)
}

type loaderService struct {
	loader *rag.Loader
	index  vectorstore.Index
	logger logger.ILogger
}

func NewLoaderService(loader *rag.Loader, index vectorstore.Index, logger logger.ILogger) ILoaderService {
	return &loaderService{
		loader: loader,
		index:  index,
		logger: logger,
	}
}

func (s *loaderService) LoadFromFile(ctx context.Context, path string, batchSize int, reset bool) (*rag.LoadReport, error) {
	records, err := legal.ReadCasesFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cases: %w", err)
	}

	if reset {
		if err := s.index.Reset(ctx); err != nil {
			return nil, fmt.Errorf("reset index: %w", err)
		}
		s.logger.Warn("LoaderService", "Index reset before load", map[string]interface{}{
			"path": path,
		})
	}

	report, err := s.loader.Load(ctx, records, batchSize)
	if err != nil {
		return report, err
	}

	s.logger.Info("LoaderService", "Corpus load finished", map[string]interface{}{
		"path":            path,
		"total_input":     report.TotalInput,
		"total_indexed":   report.TotalIndexed,
		"skipped_dup":     report.TotalSkippedDuplicate,
		"failed_batches":  len(report.FailedIDs),
		"elapsed_seconds": report.Elapsed.Seconds(),
	})
	return report, nil
}
