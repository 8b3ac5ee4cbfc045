package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sanketexe/legal-chatbot/internal/dto"
	"github.com/sanketexe/legal-chatbot/internal/pkg/logger"
	"github.com/sanketexe/legal-chatbot/pkg/rag"
	"github.com/sanketexe/legal-chatbot/pkg/vectorstore"
)

type IChatService interface {
	Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error)
	SearchCases(ctx context.Context, query string, topK int) ([]dto.SearchResultDTO, error)
	Health(ctx context.Context) (*dto.HealthResponse, error)
}

type chatService struct {
	answerer  *rag.Answerer
	retriever *rag.Retriever
	index     vectorstore.Index
	logger    logger.ILogger
}

func NewChatService(answerer *rag.Answerer, retriever *rag.Retriever, index vectorstore.Index, logger logger.ILogger) IChatService {
	return &chatService{
		answerer:  answerer,
		retriever: retriever,
		index:     index,
		logger:    logger,
	}
}

func (s *chatService) Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error) {
	start := time.Now()
	answer, err := s.answerer.Answer(ctx, req.Question)
	if err != nil {
		s.logger.Error("ChatService", "Failed to answer question", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	s.logger.Info("ChatService", "Answered question", map[string]interface{}{
		"citations":       len(answer.Citations),
		"precedent_found": answer.PrecedentFound,
		"fallback":        answer.Fallback,
		"elapsed_ms":      time.Since(start).Milliseconds(),
	})

	citations := make([]dto.CitationDTO, 0, len(answer.Citations))
	for _, c := range answer.Citations {
		citations = append(citations, dto.CitationDTO{
			CaseId: c.CaseID,
			Title:  c.Title,
			Court:  c.Court,
			Date:   c.Date,
			Url:    c.URL,
			Score:  c.Score,
			Rank:   c.Rank,
		})
	}

	return &dto.AskResponse{
		Id:             uuid.New(),
		Answer:         answer.Text,
		Citations:      citations,
		PrecedentFound: answer.PrecedentFound,
		Fallback:       answer.Fallback,
		Model:          answer.Model,
		Timestamp:      answer.Timestamp,
	}, nil
}

func (s *chatService) SearchCases(ctx context.Context, query string, topK int) ([]dto.SearchResultDTO, error) {
	var opts []rag.RetrieveOption
	if topK > 0 {
		opts = append(opts, rag.WithTopK(topK))
	}

	results, err := s.retriever.Retrieve(ctx, query, opts...)
	if err != nil {
		s.logger.Error("ChatService", "Case search failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	out := make([]dto.SearchResultDTO, 0, len(results))
	for _, r := range results {
		out = append(out, dto.SearchResultDTO{
			CaseId:   r.CaseID,
			Title:    r.Title,
			Court:    r.Court,
			Date:     r.Date,
			Url:      r.URL,
			Category: r.Category,
			Score:    r.Score,
			Rank:     r.Rank,
		})
	}
	return out, nil
}

func (s *chatService) Health(ctx context.Context) (*dto.HealthResponse, error) {
	count, err := s.index.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.HealthResponse{
		Status:       "ok",
		IndexedCases: count,
	}, nil
}
