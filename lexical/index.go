package lexical

import (
	"context"
	"errors"

	"github.com/lumenframe/cliplens/core"
)

var (
	// ErrEmptyQuery is returned when a query sanitizes down to nothing.
	ErrEmptyQuery = errors.New("empty search query")
)

// ScoredClip is a full-text match with its relevance score, higher is better.
type ScoredClip struct {
	ClipID core.ID
	Score  float64
}

// Index maintains a keyword-searchable view of clip documents.
type Index interface {
	// Put indexes clip documents, replacing any prior entry for the same id.
	Put(ctx context.Context, docs ...*core.ClipDocument) error

	// Delete removes a clip from the index. Unknown ids are not an error.
	Delete(ctx context.Context, id core.ID) error

	// Search ranks clips matching the query across all indexed fields,
	// best first, up to limit.
	Search(ctx context.Context, query string, limit int) ([]ScoredClip, error)

	// SearchTranscripts ranks clips whose transcript preview matches the
	// query, best first, up to limit.
	SearchTranscripts(ctx context.Context, query string, limit int) ([]ScoredClip, error)

	// Close releases index resources.
	Close() error
}
