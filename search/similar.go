package search

import (
	"context"
	"errors"

	"github.com/lumenframe/cliplens/core"
	"github.com/lumenframe/cliplens/storage"
)

// DefaultSimilarityThreshold filters out weak nearest-neighbor matches.
const DefaultSimilarityThreshold float32 = 0.5

// FindSimilar returns clips whose summary vectors are nearest to the source
// clip's, best first, excluding the source itself. A source clip without a
// stored vector yields an empty result, not an error: the clip simply has
// nothing to be similar to yet.
func (s *Searcher) FindSimilar(ctx context.Context, clipID core.ID, limit int, threshold float32) ([]core.SimilarHit, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	vector, err := s.embeddingRepository.GetVector(ctx, clipID, core.EmbeddingTypeFullClip)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []core.SimilarHit{}, nil
		}
		return nil, err
	}

	// Fetch one extra so excluding the source still fills the limit
	hits, err := s.embeddingRepository.FindSimilar(ctx, vector, core.ChannelSummary, threshold, limit+1)
	if err != nil {
		return nil, err
	}

	results := make([]core.SimilarHit, 0, len(hits))
	for _, hit := range hits {
		if hit.ClipID == clipID {
			continue
		}
		results = append(results, hit)
		if len(results) == limit {
			break
		}
	}
	return results, nil
}
