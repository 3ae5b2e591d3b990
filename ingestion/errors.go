package ingestion

import "errors"

var (
	// ErrClipRepositoryRequired is returned when a clip repository is not provided.
	ErrClipRepositoryRequired = errors.New("clip repository required")

	// ErrEmbeddingRepositoryRequired is returned when an embedding repository is not provided.
	ErrEmbeddingRepositoryRequired = errors.New("embedding repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrNothingToEmbed is returned when a clip carries no embeddable content.
	ErrNothingToEmbed = errors.New("clip has no embeddable content")
)
