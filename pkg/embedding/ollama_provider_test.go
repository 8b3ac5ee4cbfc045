package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProviderGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embeddings", r.URL.Path)
		var req ollamaEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		json.NewEncoder(w).Encode(ollamaEmbeddingResponse{Embedding: []float64{3, 4, 0}})
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "")
	res, err := p.Generate(context.Background(), "some legal text", TaskRetrievalDocument)
	require.NoError(t, err)
	require.Len(t, res.Values, 3)

	// Output is unit-normalized: (3,4,0) -> (0.6, 0.8, 0)
	assert.InDelta(t, 0.6, float64(res.Values[0]), 0.0001)
	assert.InDelta(t, 0.8, float64(res.Values[1]), 0.0001)
}

func TestOllamaProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("model not loaded"))
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "nomic-embed-text")
	_, err := p.Generate(context.Background(), "text", TaskRetrievalQuery)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestNormalizeVector(t *testing.T) {
	t.Run("unit length", func(t *testing.T) {
		out := normalizeVector([]float32{3, 4})
		var mag float64
		for _, v := range out {
			mag += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(mag), 0.0001)
	})

	t.Run("zero vector unchanged", func(t *testing.T) {
		out := normalizeVector([]float32{0, 0, 0})
		assert.Equal(t, []float32{0, 0, 0}, out)
	})
}
