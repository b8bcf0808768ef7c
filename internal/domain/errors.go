package domain

import "errors"

var (
	// ErrInvalidDomain signals a domain tag outside the closed set.
	ErrInvalidDomain = errors.New("invalid domain")
	// ErrMissingQuery signals an empty query text.
	ErrMissingQuery = errors.New("query is required")
	// ErrMissingPrompt signals an empty chat prompt.
	ErrMissingPrompt = errors.New("prompt is required")
	// ErrGenerationFailed signals an LLM provider failure.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrEmbeddingFailed signals an embedding provider failure.
	ErrEmbeddingFailed = errors.New("embedding failed")
)
