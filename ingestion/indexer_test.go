package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenframe/cliplens/ai"
	"github.com/lumenframe/cliplens/ai/mock"
	"github.com/lumenframe/cliplens/core"
	"github.com/lumenframe/cliplens/storage"
	"github.com/lumenframe/cliplens/storage/badger"
)

func newTestIndexer(t *testing.T, embedder ai.Embedder) (*Indexer, storage.ClipRepository, storage.EmbeddingRepository) {
	t.Helper()

	clipRepo, embeddingRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		embeddingRepo.Close()
		clipRepo.Close()
		backend.Close()
	})

	ix, err := NewIndexer(clipRepo, embeddingRepo, embedder,
		WithRetryPolicy(ai.RetryPolicy{MaxAttempts: 1}),
		WithPoolSize(2),
	)
	require.NoError(t, err)
	t.Cleanup(ix.Release)

	return ix, clipRepo, embeddingRepo
}

func putTestClip(t *testing.T, clipRepo storage.ClipRepository, fileName string) *core.ClipDocument {
	t.Helper()
	doc := &core.ClipDocument{
		Id:         core.IDFromContent(fileName),
		FileName:   fileName,
		Summary:    "A short film about " + fileName,
		Transcript: "spoken words from " + fileName,
		Tags:       []string{"test", fileName},
		Entities:   []string{"camera"},
		Activities: []string{"filming"},
	}
	require.NoError(t, clipRepo.Put(context.Background(), doc))
	return doc
}

func TestIndexClip(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	ix, clipRepo, embeddingRepo := newTestIndexer(t, embedder)
	ctx := context.Background()

	doc := putTestClip(t, clipRepo, "surf.mp4")
	require.NoError(t, ix.IndexClip(ctx, doc.Id))

	// Two embedding calls: one per channel
	assert.Equal(t, 2, embedder.CallCount())

	record, err := embeddingRepo.Get(ctx, doc.Id, 0, core.EmbeddingTypeFullClip)
	require.NoError(t, err)
	assert.Equal(t, core.EmbeddingSourceCombined, record.EmbeddingSource)
	assert.Len(t, record.SummaryVector, core.VectorDimensions)
	assert.Len(t, record.KeywordVector, core.VectorDimensions)
	assert.Contains(t, record.EmbeddedContent, "Summary: A short film about surf.mp4")
	assert.Contains(t, record.EmbeddedContent, "Transcript:")
	assert.Equal(t, core.TruncationNone, record.TruncationMethod)
	assert.Greater(t, record.TokenCount, 0)
	assert.Equal(t, "test surf.mp4", record.KeywordContent)
	assert.Greater(t, record.KeywordTokenCount, 0)
}

func TestIndexClipIdempotent(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	ix, clipRepo, embeddingRepo := newTestIndexer(t, embedder)
	ctx := context.Background()

	doc := putTestClip(t, clipRepo, "loop.mp4")
	require.NoError(t, ix.IndexClip(ctx, doc.Id))

	first, err := embeddingRepo.Get(ctx, doc.Id, 0, core.EmbeddingTypeFullClip)
	require.NoError(t, err)

	require.NoError(t, ix.IndexClip(ctx, doc.Id))
	second, err := embeddingRepo.Get(ctx, doc.Id, 0, core.EmbeddingTypeFullClip)
	require.NoError(t, err)

	assert.Equal(t, first.EmbeddedContent, second.EmbeddedContent)
	assert.Equal(t, first.TruncationMethod, second.TruncationMethod)
	assert.Equal(t, first.SummaryVector, second.SummaryVector)

	// Exactly one record per natural key
	hits, err := embeddingRepo.FindSimilar(ctx, second.SummaryVector, core.ChannelSummary, 0.99, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestIndexClipMissingClip(t *testing.T) {
	ix, _, _ := newTestIndexer(t, mock.NewMockEmbedder())

	err := ix.IndexClip(context.Background(), core.ID(404))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIndexClipNothingToEmbed(t *testing.T) {
	ix, clipRepo, _ := newTestIndexer(t, mock.NewMockEmbedder())
	ctx := context.Background()

	doc := &core.ClipDocument{Id: core.IDFromContent("blank.mp4"), FileName: "blank.mp4"}
	require.NoError(t, clipRepo.Put(ctx, doc))

	err := ix.IndexClip(ctx, doc.Id)
	assert.ErrorIs(t, err, ErrNothingToEmbed)
}

func TestIndexClipSummaryOnlySource(t *testing.T) {
	ix, clipRepo, embeddingRepo := newTestIndexer(t, mock.NewMockEmbedder())
	ctx := context.Background()

	doc := &core.ClipDocument{
		Id:       core.IDFromContent("silent.mp4"),
		FileName: "silent.mp4",
		Summary:  "A silent clip with no transcript",
	}
	require.NoError(t, clipRepo.Put(ctx, doc))
	require.NoError(t, ix.IndexClip(ctx, doc.Id))

	record, err := embeddingRepo.Get(ctx, doc.Id, 0, core.EmbeddingTypeFullClip)
	require.NoError(t, err)
	assert.Equal(t, core.EmbeddingSourceSummary, record.EmbeddingSource)
	assert.Empty(t, record.KeywordVector)
}

func TestIndexClipRetriesTransientFailure(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	failures := 2
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if failures > 0 {
			failures--
			return nil, errors.New("transient network error")
		}
		return mock.DeterministicVector(text, core.VectorDimensions), nil
	}

	clipRepo, embeddingRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { embeddingRepo.Close(); clipRepo.Close(); backend.Close() })

	ix, err := NewIndexer(clipRepo, embeddingRepo, embedder,
		WithRetryPolicy(ai.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}))
	require.NoError(t, err)
	t.Cleanup(ix.Release)

	ctx := context.Background()
	doc := putTestClip(t, clipRepo, "flaky.mp4")
	require.NoError(t, ix.IndexClip(ctx, doc.Id))

	_, err = embeddingRepo.Get(ctx, doc.Id, 0, core.EmbeddingTypeFullClip)
	assert.NoError(t, err)
}

func TestIndexClipsBatchIsolatesFailures(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if strings.Contains(text, "poison") {
			return nil, errors.New("embedding failed")
		}
		return mock.DeterministicVector(text, core.VectorDimensions), nil
	}

	ix, clipRepo, embeddingRepo := newTestIndexer(t, embedder)
	ctx := context.Background()

	good := putTestClip(t, clipRepo, "good.mp4")
	bad := &core.ClipDocument{
		Id:       core.IDFromContent("bad.mp4"),
		FileName: "bad.mp4",
		Summary:  "poison",
	}
	require.NoError(t, clipRepo.Put(ctx, bad))

	require.NoError(t, ix.IndexClips(ctx, good.Id, bad.Id, core.ID(987654)))

	// The healthy clip was indexed despite its neighbors failing
	_, err := embeddingRepo.Get(ctx, good.Id, 0, core.EmbeddingTypeFullClip)
	assert.NoError(t, err)
}
