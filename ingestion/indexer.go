package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/lumenframe/cliplens/ai"
	"github.com/lumenframe/cliplens/core"
	"github.com/lumenframe/cliplens/storage"
	"github.com/lumenframe/cliplens/token"
)

// Indexer builds and stores embedding records for clips.
// Each clip is processed sequentially (prepare, embed, upsert) and the whole
// unit is retried on transient failure. Batches run over a bounded worker
// pool.
type Indexer struct {
	clipRepository      storage.ClipRepository
	embeddingRepository storage.EmbeddingRepository
	embedder            ai.Embedder
	preparer            *Preparer
	pool                *ants.Pool
	retry               ai.RetryPolicy
	logger              *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer) error

// WithPoolSize sets the worker pool size for batch indexing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(ix *Indexer) error {
		if size < 1 {
			size = 1
		}
		if ix.pool != nil {
			ix.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		ix.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// WithRetryPolicy sets the bounded-retry policy for the embed-and-store unit.
// Tests can inject a single-attempt policy to disable retries.
func WithRetryPolicy(policy ai.RetryPolicy) Option {
	return func(ix *Indexer) error {
		ix.retry = policy
		return nil
	}
}

// WithBudgeter sets the token budgeter used for content preparation.
func WithBudgeter(budgeter *token.Budgeter) Option {
	return func(ix *Indexer) error {
		ix.preparer = NewPreparer(budgeter)
		return nil
	}
}

// NewIndexer creates a new Indexer.
func NewIndexer(
	clipRepository storage.ClipRepository,
	embeddingRepository storage.EmbeddingRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Indexer, error) {
	if clipRepository == nil {
		return nil, ErrClipRepositoryRequired
	}
	if embeddingRepository == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	ix := &Indexer{
		clipRepository:      clipRepository,
		embeddingRepository: embeddingRepository,
		embedder:            embedder,
		preparer:            NewPreparer(nil),
		pool:                pool,
		retry:               ai.DefaultConfig().Retry,
		logger:              slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(ix); optErr != nil {
			ix.Release()
			return nil, optErr
		}
	}

	return ix, nil
}

// IndexClip prepares, embeds, and stores the whole-clip embedding record.
// Safe to call repeatedly: the same document converges on the same record.
func (ix *Indexer) IndexClip(ctx context.Context, clipID core.ID) error {
	doc, err := ix.clipRepository.Get(ctx, clipID)
	if err != nil {
		return err
	}

	summaryContent, keywordContent, meta := ix.preparer.PrepareContent(SignalsFromDocument(doc))
	if summaryContent == "" && keywordContent == "" {
		return ErrNothingToEmbed
	}

	source := core.EmbeddingSourceSummary
	if meta.TranscriptIncluded {
		source = core.EmbeddingSourceCombined
	}

	record := &core.EmbeddingRecord{
		ClipID:             doc.Id,
		EmbeddingType:      core.EmbeddingTypeFullClip,
		EmbeddingSource:    source,
		EmbeddedContent:    summaryContent,
		OriginalContent:    meta.SummaryOriginalContent,
		TokenCount:         meta.SummaryTokenCount,
		OriginalTokenCount: meta.SummaryOriginalTokenCount,
		KeywordContent:     keywordContent,
		KeywordTokenCount:  meta.KeywordTokenCount,
		TruncationMethod:   meta.SummaryTruncation,
	}

	// Embed both channels and store as one retryable unit
	return ai.RetryWithBackoff(ctx, func() error {
		if summaryContent != "" {
			vector, err := ix.embedder.EmbedText(ctx, summaryContent)
			if err != nil {
				return err
			}
			record.SummaryVector = vector
		}
		if keywordContent != "" {
			vector, err := ix.embedder.EmbedText(ctx, keywordContent)
			if err != nil {
				return err
			}
			record.KeywordVector = vector
		}
		return ix.embeddingRepository.Upsert(ctx, record)
	}, ix.retry)
}

// IndexClips indexes a batch of clips over the worker pool. Per-clip failures
// are logged and do not block the rest of the batch. Blocks until every clip
// has been attempted.
func (ix *Indexer) IndexClips(ctx context.Context, clipIDs ...core.ID) error {
	var wg sync.WaitGroup
	for _, clipID := range clipIDs {
		clipID := clipID
		wg.Add(1)
		err := ix.pool.Submit(func() {
			defer wg.Done()
			if err := ix.IndexClip(ctx, clipID); err != nil {
				ix.logger.Error("error indexing clip", "clip", clipID, "err", err)
			}
		})
		if err != nil {
			wg.Done()
			return err
		}
	}
	wg.Wait()
	return nil
}

// Release releases the worker pool.
// The indexer should not be used after calling Release.
func (ix *Indexer) Release() {
	if ix.pool != nil {
		ix.pool.Release()
	}
}
