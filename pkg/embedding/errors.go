package embedding

import "fmt"

// EmbeddingError reports a model/provider failure while producing a vector
// (bad response, NaN/Inf components, empty output). The batch loader treats
// it as skip-and-continue; the retriever treats it as a hard failure for
// that query.
type EmbeddingError struct {
	Reason string
	Err    error
}

func (e *EmbeddingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("embedding failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("embedding failed: %s", e.Reason)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// DimensionError reports a provider that produced vectors of a different
// dimensionality than the generator was configured for. This is version
// skew between config and model, not a data problem, so it is never
// retried or skipped.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: configured %d, provider returned %d", e.Want, e.Got)
}
