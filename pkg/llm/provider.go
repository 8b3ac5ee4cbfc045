package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Provider defines the contract for any LLM backend
type Provider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// ProviderError carries the HTTP status of a failed model call plus the
// transient/fatal classification the retry policy depends on: timeouts,
// rate limits and 5xx are worth retrying; bad credentials are not.
type ProviderError struct {
	StatusCode int
	Body       string
	Transient  bool
}

func (e *ProviderError) Error() string {
	kind := "fatal"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("llm provider error (%s): status %d, body %s", kind, e.StatusCode, e.Body)
}

// NewStatusError classifies an HTTP status into a ProviderError.
func NewStatusError(statusCode int, body string) *ProviderError {
	transient := statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= 500
	return &ProviderError{StatusCode: statusCode, Body: body, Transient: transient}
}

// IsTransient reports whether err is worth retrying: a transient provider
// error, a timeout, or a plain network failure. Context cancellation from
// the caller is not transient; the request was abandoned.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient
	}
	// Network-level failures (connection refused, DNS, reset) come back
	// as url.Error and friends; treat anything unclassified as transient
	// so a flaky network does not bypass the retry budget.
	return true
}

// IsAuthError reports whether err means the provider rejected our
// credentials or configuration. Fail fast, never retry.
func IsAuthError(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.StatusCode == http.StatusUnauthorized || pe.StatusCode == http.StatusForbidden
	}
	return false
}
