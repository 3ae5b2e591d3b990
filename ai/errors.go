package ai

import "errors"

var (
	// ErrEmbeddingFailed indicates the embedding provider failed after all
	// retry attempts were exhausted.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrEmptyBatch indicates an EmbedTexts call with no inputs.
	ErrEmptyBatch = errors.New("no texts to embed")

	// ErrInvalidMaxAttempts indicates a retry policy with a non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than zero")
)
