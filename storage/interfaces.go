package storage

import (
	"context"

	"github.com/lumenframe/cliplens/core"
)

// ClipRepository provides read/write access to clip documents. Clip documents
// are produced by the ingestion collaborators; this layer stores them for
// content preparation and result hydration.
type ClipRepository interface {
	// Put stores clip documents, replacing any existing document with the
	// same id. Sets ProcessedAt if not already set.
	Put(ctx context.Context, docs ...*core.ClipDocument) error

	// Get retrieves a single clip document by id.
	// Returns ErrNotFound if the document doesn't exist.
	Get(ctx context.Context, id core.ID) (*core.ClipDocument, error)

	// GetMany retrieves multiple clip documents by their ids.
	// Returns only the documents that exist (no error for missing ones).
	GetMany(ctx context.Context, ids ...core.ID) ([]*core.ClipDocument, error)

	// Delete removes a clip document by id.
	// Returns ErrNotFound if the document doesn't exist.
	Delete(ctx context.Context, id core.ID) error

	// GetRecent retrieves up to limit clip documents ordered by ProcessedAt
	// descending, most recent first.
	GetRecent(ctx context.Context, limit int) ([]*core.ClipDocument, error)

	// Close releases repository resources.
	Close() error
}

// EmbeddingRepository persists embedding records with their audit trail.
// A record's natural key is (clip id, segment id, embedding type); at most
// one current record exists per key.
type EmbeddingRepository interface {
	// Upsert validates and writes records, replacing any existing record
	// with the same natural key. Validation failures are fatal for that
	// write and nothing is stored. Sets CreatedAt.
	Upsert(ctx context.Context, records ...*core.EmbeddingRecord) error

	// Get retrieves the record for a natural key.
	// Returns ErrNotFound if no record exists.
	Get(ctx context.Context, clipID, segmentID core.ID, embeddingType core.EmbeddingType) (*core.EmbeddingRecord, error)

	// GetVector retrieves the summary vector of the whole-clip record of the
	// given embedding type. Returns ErrNotFound if the record doesn't exist
	// or carries no summary vector.
	GetVector(ctx context.Context, clipID core.ID, embeddingType core.EmbeddingType) ([]float32, error)

	// FindSimilar ranks stored records by similarity of the selected channel
	// vector to the query vector. Records without that channel are skipped.
	// Returns hits with similarity >= minSimilarity, best first, up to limit.
	FindSimilar(ctx context.Context, vector []float32, channel core.VectorChannel, minSimilarity float32, limit int) ([]core.SimilarHit, error)

	// DeleteByClip removes all embedding records belonging to a clip.
	// Deleting a clip with no records is not an error.
	DeleteByClip(ctx context.Context, clipID core.ID) error

	// Close releases repository resources.
	Close() error
}
