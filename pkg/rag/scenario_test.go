package rag

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanketexe/legal-chatbot/pkg/legal"
	"github.com/sanketexe/legal-chatbot/pkg/vectorstore"
)

// topicEmbedder maps text to a deterministic axis per legal topic, so
// same-topic texts are maximally similar and cross-topic texts are
// orthogonal. It stands in for a real embedding model end to end.
type topicEmbedder struct{}

func topicVector(text string) []float32 {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "contract"):
		return []float32{1, 0, 0, 0}
	case strings.Contains(t, "eviction") || strings.Contains(t, "tenant"):
		return []float32{0, 1, 0, 0}
	case strings.Contains(t, "maritime"):
		return []float32{0, 0, 1, 0}
	default:
		return []float32{0, 0, 0, 1}
	}
}

func (topicEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return topicVector(text), nil
}

func (topicEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = topicVector(text)
	}
	return vectors, nil
}

func loadScenarioCorpus(t *testing.T) vectorstore.Index {
	t.Helper()
	index, err := vectorstore.NewMemoryStore("topic-model", 4)
	require.NoError(t, err)

	corpus := []legal.CaseRecord{
		{Id: "k1", Title: "A v. B", Category: "contract", DecisionDate: "2020-02-02", FullText: "breach of contract damages awarded"},
		{Id: "k2", Title: "C v. D", Category: "contract", DecisionDate: "2019-07-07", FullText: "contract rescission and penalty clause"},
		{Id: "k3", Title: "E v. F", Category: "contract", FullText: "specific performance of a sale contract"},
		{Id: "e1", Title: "G v. H", Category: "property", DecisionDate: "2021-01-01", FullText: "tenant eviction notice period"},
		{Id: "e2", Title: "I v. J", Category: "property", FullText: "unlawful eviction of a tenant"},
		{Id: "e3", Title: "K v. L", Category: "property", DecisionDate: "2018-09-09", FullText: "eviction for non-payment of rent"},
	}

	loader := NewLoader(topicEmbedder{}, index, 50, nil)
	report, err := loader.Load(context.Background(), corpus, 0)
	require.NoError(t, err)
	require.Equal(t, 6, report.TotalIndexed)
	return index
}

func TestScenarioContractQuery(t *testing.T) {
	index := loadScenarioCorpus(t)
	r := NewRetriever(topicEmbedder{}, index, 5, 0.7, nil)

	results, err := r.Retrieve(context.Background(), "What is the penalty for breach of contract?", WithTopK(2))
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.Equal(t, "contract", res.Category)
		assert.Greater(t, res.Score, float32(0.7))
	}
}

func TestScenarioNoMatch(t *testing.T) {
	index := loadScenarioCorpus(t)
	r := NewRetriever(topicEmbedder{}, index, 5, 0.7, nil)

	results, err := r.Retrieve(context.Background(), "maritime salvage law compensation")
	require.NoError(t, err)
	assert.Empty(t, results, "a topic absent from the index yields no results under the default threshold")

	// The orchestrator still answers, flagged as precedent-free
	provider := &fakeLLM{response: "There is no directly relevant precedent; generally, salvage awards..."}
	a := NewAnswerer(r, NewContextBuilder(2000), provider, AnswererConfig{
		AttemptBudget:  2,
		AttemptTimeout: time.Second,
		RetryWallClock: 5 * time.Second,
	}, nil)

	answer, err := a.Answer(context.Background(), "maritime salvage law compensation")
	require.NoError(t, err)
	assert.NotEmpty(t, answer.Text)
	assert.Empty(t, answer.Citations)
	assert.False(t, answer.PrecedentFound)
}

func TestScenarioSelfSimilarityRoundTrip(t *testing.T) {
	index := loadScenarioCorpus(t)
	r := NewRetriever(topicEmbedder{}, index, 5, 0.7, nil)

	// Querying with a record's own embedding text must surface its topic
	// with a score above the threshold
	results, err := r.Retrieve(context.Background(), "contract A v. B breach of contract damages awarded")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Greater(t, results[0].Score, float32(0.7))
	assert.Equal(t, "contract", results[0].Category)
}
