package rag

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/sanketexe/legal-chatbot/pkg/llm"
)

// Citation is one retrieved precedent attached to an answer.
type Citation struct {
	CaseID string  `json:"case_id"`
	Title  string  `json:"title"`
	Court  string  `json:"court"`
	Date   string  `json:"date"`
	URL    string  `json:"url"`
	Score  float32 `json:"score"`
	Rank   int     `json:"rank"`
}

// Answer is the orchestrated result of one legal question.
type Answer struct {
	Text           string     `json:"text"`
	Citations      []Citation `json:"citations"`
	PrecedentFound bool       `json:"precedent_found"`
	Fallback       bool       `json:"fallback"`
	Model          string     `json:"model"`
	Timestamp      time.Time  `json:"timestamp"`
}

// AnswererConfig holds the generation policy knobs. Zero values fall back
// to defaults.
type AnswererConfig struct {
	// Model is the reported model name on answers.
	Model string

	// AttemptBudget bounds generation attempts per question. Default 3.
	AttemptBudget int

	// AttemptTimeout bounds a single generation call. Default 30s.
	AttemptTimeout time.Duration

	// RetryWallClock caps the total time spent retrying so an abandoned
	// client does not leak a retry loop. Default 90s.
	RetryWallClock time.Duration

	// Temperature for generation. Default 0.3.
	Temperature float64

	// MaxOutputTokens for generation. 0 leaves it to the provider.
	MaxOutputTokens int
}

func (c *AnswererConfig) applyDefaults() {
	if c.AttemptBudget <= 0 {
		c.AttemptBudget = 3
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = 30 * time.Second
	}
	if c.RetryWallClock <= 0 {
		c.RetryWallClock = 90 * time.Second
	}
	if c.Temperature <= 0 {
		c.Temperature = 0.3
	}
}

// Answerer ties retrieval, context assembly and the generation provider
// into one query-answering operation. It is the error boundary for the
// answer path: everything below it either resolves internally via retry
// and fallback or surfaces as one of the package's error kinds.
type Answerer struct {
	retriever *Retriever
	assembler *ContextBuilder
	provider  llm.Provider
	cfg       AnswererConfig
	logger    *log.Logger
}

func NewAnswerer(retriever *Retriever, assembler *ContextBuilder, provider llm.Provider, cfg AnswererConfig, logger *log.Logger) *Answerer {
	cfg.applyDefaults()
	if logger == nil {
		logger = log.Default()
	}
	return &Answerer{
		retriever: retriever,
		assembler: assembler,
		provider:  provider,
		cfg:       cfg,
		logger:    logger,
	}
}

// Answer retrieves precedents for queryText, assembles the context,
// generates the answer with bounded retries and degrades to a canned
// keyword-matched response when every attempt fails on a transient error.
// Retrieved citations are attached even on the degraded path so the
// caller can still show related cases.
func (a *Answerer) Answer(ctx context.Context, queryText string) (*Answer, error) {
	results, err := a.retriever.Retrieve(ctx, queryText)
	if err != nil {
		return nil, err
	}

	citations := make([]Citation, 0, len(results))
	for _, r := range results {
		citations = append(citations, Citation{
			CaseID: r.CaseID,
			Title:  r.Title,
			Court:  r.Court,
			Date:   r.Date,
			URL:    r.URL,
			Score:  r.Score,
			Rank:   r.Rank,
		})
	}

	prompt := buildPrompt(a.assembler.Assemble(results), queryText)

	text, err := a.generate(ctx, prompt)
	if err != nil {
		if llm.IsAuthError(err) {
			return nil, fmt.Errorf("%w: %v", ErrAssistantUnavailable, err)
		}
		a.logger.Printf("[WARN] Generation failed after retries, serving fallback: %v", err)
		return &Answer{
			Text:           fallbackResponse(queryText),
			Citations:      citations,
			PrecedentFound: len(results) > 0,
			Fallback:       true,
			Model:          a.cfg.Model,
			Timestamp:      time.Now().UTC(),
		}, nil
	}

	return &Answer{
		Text:           text,
		Citations:      citations,
		PrecedentFound: len(results) > 0,
		Fallback:       false,
		Model:          a.cfg.Model,
		Timestamp:      time.Now().UTC(),
	}, nil
}

// generate calls the provider with a per-attempt timeout and exponential
// backoff between attempts. Auth errors and caller cancellation stop the
// loop immediately; anything transient is retried up to the attempt
// budget inside the wall-clock cap.
func (a *Answerer) generate(ctx context.Context, prompt string) (string, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = a.cfg.RetryWallClock

	policy := backoff.WithContext(
		backoff.WithMaxRetries(bo, uint64(a.cfg.AttemptBudget-1)),
		ctx,
	)

	opts := []llm.Option{llm.WithTemperature(a.cfg.Temperature)}
	if a.cfg.MaxOutputTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(a.cfg.MaxOutputTokens))
	}

	attempt := 0
	return backoff.RetryWithData(func() (string, error) {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, a.cfg.AttemptTimeout)
		defer cancel()

		text, err := a.provider.Generate(attemptCtx, prompt, opts...)
		if err != nil {
			if llm.IsAuthError(err) || !llm.IsTransient(err) {
				return "", backoff.Permanent(err)
			}
			a.logger.Printf("[WARN] Generation attempt %d/%d failed: %v", attempt, a.cfg.AttemptBudget, err)
			return "", err
		}
		if text == "" {
			return "", fmt.Errorf("provider returned empty response")
		}
		return text, nil
	}, policy)
}
