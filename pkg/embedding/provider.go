package embedding

import "context"

// Task types that distinguish query vs document embeddings.
// Gemini uses these for asymmetric retrieval; Ollama ignores them.
const (
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

// Provider defines the interface for generating text embeddings
type Provider interface {
	Generate(ctx context.Context, text string, taskType string) (*Response, error)
}

// Response is the provider-agnostic embedding result
type Response struct {
	Values []float32
}
