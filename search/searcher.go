// Copyright 2025 Lumenframe Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/lumenframe/cliplens/ai"
	"github.com/lumenframe/cliplens/core"
	"github.com/lumenframe/cliplens/lexical"
	"github.com/lumenframe/cliplens/storage"
)

// Mode selects the retrieval strategy for a query.
type Mode string

const (
	// ModeHybrid fuses lexical and both vector sources.
	ModeHybrid Mode = "hybrid"
	// ModeSemantic fuses the two vector sources only.
	ModeSemantic Mode = "semantic"
	// ModeFulltext ranks by lexical relevance alone, no fusion.
	ModeFulltext Mode = "fulltext"
	// ModeTranscripts is lexical search restricted to transcript text.
	ModeTranscripts Mode = "transcripts"
)

// Defaults for Params. The weights and fusion constant are per-request
// tunables with fixed defaults rather than global configuration.
const (
	DefaultLimit          = 10
	DefaultFulltextWeight = 1.0
	DefaultSummaryWeight  = 1.0
	DefaultKeywordWeight  = 0.8
	DefaultRRFK           = 50.0
	DefaultSourceTimeout  = 2 * time.Second
)

// Params tunes a single search request. Zero values take the defaults.
type Params struct {
	Mode  Mode
	Limit int

	// Per-source fusion weights.
	FulltextWeight float64
	SummaryWeight  float64
	KeywordWeight  float64

	// RRFK is the Reciprocal Rank Fusion smoothing constant.
	RRFK float64

	// SourceTimeout bounds each fan-out fetch. A source that misses the
	// deadline contributes nothing and is reported as dropped.
	SourceTimeout time.Duration

	// Precomputed query vectors. When nil the query text is embedded once
	// and used for both channels.
	QuerySummaryVector []float32
	QueryKeywordVector []float32
}

func (p *Params) normalize() {
	if p.Mode == "" {
		p.Mode = ModeHybrid
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.FulltextWeight == 0 {
		p.FulltextWeight = DefaultFulltextWeight
	}
	if p.SummaryWeight == 0 {
		p.SummaryWeight = DefaultSummaryWeight
	}
	if p.KeywordWeight == 0 {
		p.KeywordWeight = DefaultKeywordWeight
	}
	if p.RRFK == 0 {
		p.RRFK = DefaultRRFK
	}
	if p.SourceTimeout == 0 {
		p.SourceTimeout = DefaultSourceTimeout
	}
}

// Response is a ranked result set plus degradation reporting. An empty Hits
// with no error means the query legitimately matched nothing.
type Response struct {
	Hits []core.SearchHit

	// Degraded is true when at least one source was dropped.
	Degraded bool

	// DroppedSources names the sources that contributed nothing.
	DroppedSources []string
}

// Searcher runs hybrid retrieval over the clip catalog.
type Searcher struct {
	clipRepository      storage.ClipRepository
	embeddingRepository storage.EmbeddingRepository
	lexicalIndex        lexical.Index
	embedder            ai.Embedder
	logger              *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	clipRepository storage.ClipRepository,
	embeddingRepository storage.EmbeddingRepository,
	lexicalIndex lexical.Index,
	embedder ai.Embedder,
	opts ...Option,
) (*Searcher, error) {
	if clipRepository == nil {
		return nil, ErrClipRepositoryRequired
	}
	if embeddingRepository == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if lexicalIndex == nil {
		return nil, ErrLexicalIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		clipRepository:      clipRepository,
		embeddingRepository: embeddingRepository,
		lexicalIndex:        lexicalIndex,
		embedder:            embedder,
		logger:              slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search runs a query and returns ranked hits.
func (s *Searcher) Search(ctx context.Context, query string, params Params) (*Response, error) {
	return s.SearchWithMonitor(ctx, query, params, nil)
}

// SearchWithMonitor runs a query with observability callbacks at each stage.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, params Params, monitor SearchMonitor) (*Response, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	params.normalize()

	switch params.Mode {
	case ModeHybrid, ModeSemantic, ModeFulltext, ModeTranscripts:
	default:
		return nil, ErrInvalidMode
	}

	monitor.Start(query, params.Mode)

	query = strings.TrimSpace(query)
	if query == "" {
		if params.Mode == ModeHybrid {
			return s.searchRecent(ctx, params.Limit, monitor)
		}
		resp := &Response{Hits: []core.SearchHit{}}
		monitor.Finish(resp.Hits)
		return resp, nil
	}

	switch params.Mode {
	case ModeFulltext, ModeTranscripts:
		return s.searchLexicalOnly(ctx, query, params, monitor)
	default:
		return s.searchFused(ctx, query, params, monitor)
	}
}

// searchRecent serves the empty-query degenerate ordering: most recently
// processed clips first, no fusion.
func (s *Searcher) searchRecent(ctx context.Context, limit int, monitor SearchMonitor) (*Response, error) {
	docs, err := s.clipRepository.GetRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	hits := make([]core.SearchHit, 0, len(docs))
	for _, doc := range docs {
		hits = append(hits, core.SearchHit{
			ClipID:     doc.Id,
			Provenance: core.ProvenanceRecent,
		})
	}
	monitor.Finish(hits)
	return &Response{Hits: hits}, nil
}

// searchLexicalOnly ranks directly by lexical relevance.
func (s *Searcher) searchLexicalOnly(ctx context.Context, query string, params Params, monitor SearchMonitor) (*Response, error) {
	fetch := s.lexicalIndex.Search
	if params.Mode == ModeTranscripts {
		fetch = s.lexicalIndex.SearchTranscripts
	}

	scored, err := fetch(ctx, query, params.Limit)
	if err != nil {
		if errors.Is(err, lexical.ErrEmptyQuery) {
			resp := &Response{Hits: []core.SearchHit{}}
			monitor.Finish(resp.Hits)
			return resp, nil
		}
		s.logger.Error("lexical search failed", "err", err)
		return nil, ErrSearchUnavailable
	}

	hits := make([]core.SearchHit, 0, len(scored))
	for _, sc := range scored {
		hits = append(hits, core.SearchHit{
			ClipID:     sc.ClipID,
			Score:      sc.Score,
			Provenance: core.ProvenanceFulltext,
		})
	}
	monitor.Finish(hits)
	return &Response{Hits: hits}, nil
}

// sourceResult is one fan-out fetch outcome.
type sourceResult struct {
	source  string
	clipIDs []core.ID
	err     error
}

// sourceFetch is a single candidate source bound to its fusion weight.
type sourceFetch struct {
	source string
	weight float64
	fn     func(ctx context.Context) ([]core.ID, error)
}

// searchFused runs the concurrent fan-out and fuses the surviving lists.
func (s *Searcher) searchFused(ctx context.Context, query string, params Params, monitor SearchMonitor) (*Response, error) {
	limit := fetchCap(params.Limit)
	resp := &Response{}

	summaryVector, keywordVector := params.QuerySummaryVector, params.QueryKeywordVector
	if summaryVector == nil || keywordVector == nil {
		vector, err := s.embedder.EmbedText(ctx, query)
		if err != nil {
			// Both vector sources are lost; the lexical list may still serve
			s.logger.Warn("query embedding failed", "err", err)
			if summaryVector == nil {
				resp.DroppedSources = append(resp.DroppedSources, SourceSummary)
			}
			if keywordVector == nil {
				resp.DroppedSources = append(resp.DroppedSources, SourceKeyword)
			}
		} else {
			if summaryVector == nil {
				summaryVector = vector
			}
			if keywordVector == nil {
				keywordVector = vector
			}
		}
	}

	var fetches []sourceFetch
	if params.Mode == ModeHybrid {
		fetches = append(fetches, sourceFetch{
			source: SourceLexical,
			weight: params.FulltextWeight,
			fn: func(ctx context.Context) ([]core.ID, error) {
				scored, err := s.lexicalIndex.Search(ctx, query, limit)
				if err != nil {
					if errors.Is(err, lexical.ErrEmptyQuery) {
						return nil, nil
					}
					return nil, err
				}
				clipIDs := make([]core.ID, len(scored))
				for i, sc := range scored {
					clipIDs[i] = sc.ClipID
				}
				return clipIDs, nil
			},
		})
	}
	if summaryVector != nil {
		fetches = append(fetches, sourceFetch{
			source: SourceSummary,
			weight: params.SummaryWeight,
			fn:     s.vectorFetch(summaryVector, core.ChannelSummary, limit),
		})
	}
	if keywordVector != nil {
		fetches = append(fetches, sourceFetch{
			source: SourceKeyword,
			weight: params.KeywordWeight,
			fn:     s.vectorFetch(keywordVector, core.ChannelKeyword, limit),
		})
	}

	if len(fetches) == 0 {
		return nil, ErrSearchUnavailable
	}

	results := make(chan sourceResult, len(fetches))
	for _, fetch := range fetches {
		fetch := fetch
		go func() {
			fctx, cancel := context.WithTimeout(ctx, params.SourceTimeout)
			defer cancel()
			clipIDs, err := fetch.fn(fctx)
			results <- sourceResult{source: fetch.source, clipIDs: clipIDs, err: err}
		}()
	}

	weights := make(map[string]float64, len(fetches))
	for _, fetch := range fetches {
		weights[fetch.source] = fetch.weight
	}

	var lists []rankedList
	for range fetches {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case result := <-results:
			if result.err != nil {
				s.logger.Warn("search source dropped", "source", result.source, "err", result.err)
				monitor.SourceDropped(result.source, result.err)
				resp.DroppedSources = append(resp.DroppedSources, result.source)
				continue
			}
			monitor.AfterSourceFetch(result.source, result.clipIDs)
			lists = append(lists, rankedList{
				source:  result.source,
				weight:  weights[result.source],
				clipIDs: result.clipIDs,
			})
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(lists) == 0 {
		return nil, ErrSearchUnavailable
	}

	resp.Degraded = len(resp.DroppedSources) > 0
	resp.Hits = fuse(lists, params.RRFK, params.Limit)
	monitor.Finish(resp.Hits)
	return resp, nil
}

// vectorFetch builds a fan-out fetch over one embedding channel.
func (s *Searcher) vectorFetch(vector []float32, channel core.VectorChannel, limit int) func(ctx context.Context) ([]core.ID, error) {
	return func(ctx context.Context) ([]core.ID, error) {
		hits, err := s.embeddingRepository.FindSimilar(ctx, vector, channel, 0, limit)
		if err != nil {
			return nil, err
		}
		clipIDs := make([]core.ID, len(hits))
		for i, hit := range hits {
			clipIDs[i] = hit.ClipID
		}
		return clipIDs, nil
	}
}
