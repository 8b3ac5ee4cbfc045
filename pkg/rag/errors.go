package rag

import "errors"

var (
	// ErrInvalidQuery is returned for empty or whitespace-only query text,
	// before any embedding call is spent on it.
	ErrInvalidQuery = errors.New("query text is empty")

	// ErrInvalidArgument is returned for out-of-range caller parameters
	// such as topK <= 0.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAssistantUnavailable means the generation provider rejected our
	// credentials or configuration. Not retried; the web layer shows a
	// clear status instead of a generic error.
	ErrAssistantUnavailable = errors.New("assistant unavailable: generation provider rejected credentials or configuration")
)
