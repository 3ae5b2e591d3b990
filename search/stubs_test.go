package search

import (
	"context"
	"time"

	"github.com/lumenframe/cliplens/core"
	"github.com/lumenframe/cliplens/lexical"
	"github.com/lumenframe/cliplens/storage"
)

// stubLexical serves canned ranked lists, optionally failing or stalling.
type stubLexical struct {
	results           []lexical.ScoredClip
	transcriptResults []lexical.ScoredClip
	err               error
	delay             time.Duration
}

var _ lexical.Index = (*stubLexical)(nil)

func (f *stubLexical) Put(ctx context.Context, docs ...*core.ClipDocument) error { return nil }
func (f *stubLexical) Delete(ctx context.Context, id core.ID) error              { return nil }
func (f *stubLexical) Close() error                                              { return nil }

func (f *stubLexical) Search(ctx context.Context, query string, limit int) ([]lexical.ScoredClip, error) {
	return f.serve(ctx, f.results, limit)
}

func (f *stubLexical) SearchTranscripts(ctx context.Context, query string, limit int) ([]lexical.ScoredClip, error) {
	return f.serve(ctx, f.transcriptResults, limit)
}

func (f *stubLexical) serve(ctx context.Context, results []lexical.ScoredClip, limit int) ([]lexical.ScoredClip, error) {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// stubEmbeddings serves canned per-channel similarity lists.
type stubEmbeddings struct {
	vectors     map[core.ID][]float32
	summaryHits []core.SimilarHit
	keywordHits []core.SimilarHit
	err         error
}

var _ storage.EmbeddingRepository = (*stubEmbeddings)(nil)

func (f *stubEmbeddings) Upsert(ctx context.Context, records ...*core.EmbeddingRecord) error {
	return nil
}

func (f *stubEmbeddings) Get(ctx context.Context, clipID, segmentID core.ID, embeddingType core.EmbeddingType) (*core.EmbeddingRecord, error) {
	return nil, storage.ErrNotFound
}

func (f *stubEmbeddings) GetVector(ctx context.Context, clipID core.ID, embeddingType core.EmbeddingType) ([]float32, error) {
	vector, ok := f.vectors[clipID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return vector, nil
}

func (f *stubEmbeddings) FindSimilar(ctx context.Context, vector []float32, channel core.VectorChannel, minSimilarity float32, limit int) ([]core.SimilarHit, error) {
	if f.err != nil {
		return nil, f.err
	}
	source := f.summaryHits
	if channel == core.ChannelKeyword {
		source = f.keywordHits
	}
	var hits []core.SimilarHit
	for _, hit := range source {
		if hit.Similarity >= minSimilarity {
			hits = append(hits, hit)
		}
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (f *stubEmbeddings) DeleteByClip(ctx context.Context, clipID core.ID) error { return nil }
func (f *stubEmbeddings) Close() error                                           { return nil }

// stubClips serves a canned recency list.
type stubClips struct {
	recent []*core.ClipDocument
}

var _ storage.ClipRepository = (*stubClips)(nil)

func (f *stubClips) Put(ctx context.Context, docs ...*core.ClipDocument) error { return nil }

func (f *stubClips) Get(ctx context.Context, id core.ID) (*core.ClipDocument, error) {
	return nil, storage.ErrNotFound
}

func (f *stubClips) GetMany(ctx context.Context, ids ...core.ID) ([]*core.ClipDocument, error) {
	return nil, nil
}

func (f *stubClips) Delete(ctx context.Context, id core.ID) error { return storage.ErrNotFound }

func (f *stubClips) GetRecent(ctx context.Context, limit int) ([]*core.ClipDocument, error) {
	recent := f.recent
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent, nil
}

func (f *stubClips) Close() error { return nil }
