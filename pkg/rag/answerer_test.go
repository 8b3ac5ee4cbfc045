package rag

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanketexe/legal-chatbot/pkg/llm"
	"github.com/sanketexe/legal-chatbot/pkg/vectorstore"
)

// fakeLLM scripts the generation provider.
type fakeLLM struct {
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return f.Generate(ctx, history[len(history)-1].Content, opts...)
}

func testAnswerer(t *testing.T, matches []vectorstore.Match, provider llm.Provider) *Answerer {
	t.Helper()
	retriever := NewRetriever(&fakeEmbedder{vector: []float32{1}}, &fakeIndex{matches: matches}, 5, 0.7, nil)
	return NewAnswerer(retriever, NewContextBuilder(2000), provider, AnswererConfig{
		Model:          "test-model",
		AttemptBudget:  2,
		AttemptTimeout: time.Second,
		RetryWallClock: 5 * time.Second,
	}, nil)
}

func precedentMatches() []vectorstore.Match {
	return []vectorstore.Match{
		{
			ID:         "c1",
			Similarity: 0.9,
			Metadata:   map[string]string{"title": "A v. B", "court": "High Court", "date": "2020-01-01"},
			Text:       "contract breach judgment text",
		},
		{
			ID:         "c2",
			Similarity: 0.8,
			Metadata:   map[string]string{"title": "C v. D", "date": "2019-01-01"},
			Text:       "another contract judgment",
		},
	}
}

func TestAnswerSuccess(t *testing.T) {
	provider := &fakeLLM{response: "Under the cited precedents, damages are the usual remedy."}
	a := testAnswerer(t, precedentMatches(), provider)

	answer, err := a.Answer(context.Background(), "What is the penalty for breach of contract?")
	require.NoError(t, err)
	assert.Equal(t, provider.response, answer.Text)
	assert.False(t, answer.Fallback)
	assert.True(t, answer.PrecedentFound)
	assert.Equal(t, "test-model", answer.Model)
	require.Len(t, answer.Citations, 2)
	assert.Equal(t, "c1", answer.Citations[0].CaseID)
	assert.Equal(t, 1, answer.Citations[0].Rank)

	assert.Contains(t, provider.lastPrompt, "A v. B", "prompt must carry the assembled precedent context")
	assert.Contains(t, provider.lastPrompt, "breach of contract")
}

func TestAnswerFallbackKeepsCitations(t *testing.T) {
	provider := &fakeLLM{err: llm.NewStatusError(429, "rate limited")}
	a := testAnswerer(t, precedentMatches(), provider)

	answer, err := a.Answer(context.Background(), "What is the penalty for breach of contract?")
	require.NoError(t, err, "transient exhaustion degrades to a fallback, never an error")
	assert.True(t, answer.Fallback)
	assert.NotEmpty(t, answer.Text)
	assert.Contains(t, answer.Text, "Contract law", "fallback is keyword-matched to the query topic")
	require.Len(t, answer.Citations, 2, "citations survive generation failure")
	assert.True(t, answer.PrecedentFound)
	assert.Equal(t, 2, provider.calls, "transient errors are retried up to the attempt budget")
}

func TestAnswerAuthErrorFailsFast(t *testing.T) {
	provider := &fakeLLM{err: llm.NewStatusError(401, "bad key")}
	a := testAnswerer(t, precedentMatches(), provider)

	_, err := a.Answer(context.Background(), "What is the penalty for breach of contract?")
	require.ErrorIs(t, err, ErrAssistantUnavailable)
	assert.Equal(t, 1, provider.calls, "auth errors must not be retried")
}

func TestAnswerNoPrecedentStillAnswers(t *testing.T) {
	provider := &fakeLLM{response: "No directly relevant precedent was found; in general..."}
	a := testAnswerer(t, nil, provider)

	answer, err := a.Answer(context.Background(), "maritime salvage law compensation")
	require.NoError(t, err)
	assert.NotEmpty(t, answer.Text)
	assert.False(t, answer.PrecedentFound)
	assert.Empty(t, answer.Citations)
	assert.Contains(t, provider.lastPrompt, "No directly relevant precedent cases were found")
}

func TestAnswerInvalidQueryPropagates(t *testing.T) {
	a := testAnswerer(t, nil, &fakeLLM{response: "x"})

	_, err := a.Answer(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestFallbackResponseTopics(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"my landlord started an eviction", "Property law"},
		{"breach of agreement damages", "Contract law"},
		{"child custody after divorce", "Family law"},
		{"can I get bail after arrest", "Criminal law"},
		{"something entirely different", "consult a qualified lawyer"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := fallbackResponse(tt.query)
			assert.NotEmpty(t, got)
			assert.True(t, strings.Contains(got, tt.want), "response %q should contain %q", got, tt.want)
		})
	}
}
