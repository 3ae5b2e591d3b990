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


package cliplens

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/lumenframe/cliplens/ai"
	"github.com/lumenframe/cliplens/ai/openai"
	"github.com/lumenframe/cliplens/core"
	"github.com/lumenframe/cliplens/ingestion"
	"github.com/lumenframe/cliplens/lexical"
	"github.com/lumenframe/cliplens/search"
	"github.com/lumenframe/cliplens/storage"
	"github.com/lumenframe/cliplens/storage/badger"
)

// Catalog is the top-level handle to a clip catalog: record storage, the
// full-text index, and the embedding provider, wired together.
type Catalog struct {
	backend       *badger.Backend
	clipRepo      storage.ClipRepository
	embeddingRepo storage.EmbeddingRepository
	lexicalIndex  lexical.Index
	embedder      ai.Embedder
	logger        *slog.Logger
}

// CatalogOption configures a Catalog.
type CatalogOption func(*catalogOptions)

type catalogOptions struct {
	aiConfig *ai.Config
	embedder ai.Embedder
	inMemory bool
}

// WithAIConfig sets the embedding provider configuration.
func WithAIConfig(cfg *ai.Config) CatalogOption {
	return func(o *catalogOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithEmbedder injects an embedder directly, bypassing provider construction.
// Intended for tests.
func WithEmbedder(embedder ai.Embedder) CatalogOption {
	return func(o *catalogOptions) {
		o.embedder = embedder
	}
}

// WithInMemory keeps all storage in memory. Intended for tests.
func WithInMemory() CatalogOption {
	return func(o *catalogOptions) {
		o.inMemory = true
	}
}

// OpenCatalog opens a catalog rooted at dir. Records live in a BadgerDB
// under dir, the full-text index in a SQLite file next to it.
func OpenCatalog(dir string, opts ...CatalogOption) (*Catalog, error) {
	options := &catalogOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	recordsPath, indexPath := filepath.Join(dir, "records"), filepath.Join(dir, "fulltext.db")
	if options.inMemory {
		recordsPath, indexPath = "", ":memory:"
	}

	backend, err := badger.OpenBackend(recordsPath, options.inMemory)
	if err != nil {
		return nil, err
	}

	clipRepo, err := badger.NewClipRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	embeddingRepo, err := badger.NewEmbeddingRepository(backend)
	if err != nil {
		clipRepo.Close()
		backend.Close()
		return nil, err
	}

	lexicalIndex, err := lexical.OpenSQLiteIndex(indexPath)
	if err != nil {
		embeddingRepo.Close()
		clipRepo.Close()
		backend.Close()
		return nil, err
	}

	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			lexicalIndex.Close()
			embeddingRepo.Close()
			clipRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Catalog{
		backend:       backend,
		clipRepo:      clipRepo,
		embeddingRepo: embeddingRepo,
		lexicalIndex:  lexicalIndex,
		embedder:      embedder,
		logger:        slog.Default(),
	}, nil
}

// Close releases every resource the catalog owns.
func (c *Catalog) Close() error {
	var firstErr error
	if err := c.lexicalIndex.Close(); err != nil {
		c.logger.Error("error closing lexical index", "err", err)
		firstErr = err
	}
	if err := c.embeddingRepo.Close(); err != nil {
		c.logger.Error("error closing embedding repository", "err", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	if err := c.clipRepo.Close(); err != nil {
		c.logger.Error("error closing clip repository", "err", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	if err := c.backend.Close(); err != nil {
		c.logger.Error("error closing backend storage", "err", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ClipRepository exposes the clip document store.
func (c *Catalog) ClipRepository() storage.ClipRepository {
	return c.clipRepo
}

// EmbeddingRepository exposes the embedding record store.
func (c *Catalog) EmbeddingRepository() storage.EmbeddingRepository {
	return c.embeddingRepo
}

// LexicalIndex exposes the full-text index.
func (c *Catalog) LexicalIndex() lexical.Index {
	return c.lexicalIndex
}

// PutClip stores a clip document and keeps the full-text index in sync.
// Assigns a content-derived id from the file name when the id is unset.
func (c *Catalog) PutClip(ctx context.Context, doc *core.ClipDocument) error {
	if doc != nil && doc.Id == 0 && doc.FileName != "" {
		doc.Id = core.IDFromContent(doc.FileName)
	}
	if err := core.ValidateClipDocument(doc); err != nil {
		return err
	}
	if err := c.clipRepo.Put(ctx, doc); err != nil {
		return err
	}
	return c.lexicalIndex.Put(ctx, doc)
}

// DeleteClip removes a clip and cascades to its embedding records and its
// full-text entry.
func (c *Catalog) DeleteClip(ctx context.Context, clipID core.ID) error {
	if err := c.clipRepo.Delete(ctx, clipID); err != nil {
		return err
	}
	if err := c.embeddingRepo.DeleteByClip(ctx, clipID); err != nil {
		return err
	}
	return c.lexicalIndex.Delete(ctx, clipID)
}

// NewIndexer creates an embedding indexer over this catalog's stores.
func (c *Catalog) NewIndexer(opts ...ingestion.Option) (*ingestion.Indexer, error) {
	return ingestion.NewIndexer(c.clipRepo, c.embeddingRepo, c.embedder, opts...)
}

// NewSearcher creates a searcher over this catalog's stores.
func (c *Catalog) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(c.clipRepo, c.embeddingRepo, c.lexicalIndex, c.embedder, opts...)
}

// IndexClip runs the embedding path for one stored clip.
func (c *Catalog) IndexClip(ctx context.Context, clipID core.ID, opts ...ingestion.Option) error {
	indexer, err := c.NewIndexer(opts...)
	if err != nil {
		return err
	}
	defer indexer.Release()
	return indexer.IndexClip(ctx, clipID)
}

// Search runs a query through a searcher built on this catalog.
func (c *Catalog) Search(ctx context.Context, query string, params search.Params) (*search.Response, error) {
	searcher, err := c.NewSearcher()
	if err != nil {
		return nil, err
	}
	return searcher.Search(ctx, query, params)
}

// FindSimilar returns clips nearest to the given clip's summary embedding.
func (c *Catalog) FindSimilar(ctx context.Context, clipID core.ID, limit int, threshold float32) ([]core.SimilarHit, error) {
	searcher, err := c.NewSearcher()
	if err != nil {
		return nil, err
	}
	return searcher.FindSimilar(ctx, clipID, limit, threshold)
}

// HydrateHits resolves search hits to their clip documents, preserving hit
// order and skipping hits whose documents have since been deleted.
func (c *Catalog) HydrateHits(ctx context.Context, hits []core.SearchHit) ([]*core.ClipDocument, error) {
	ids := make([]core.ID, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ClipID
	}
	docs, err := c.clipRepo.GetMany(ctx, ids...)
	if err != nil {
		return nil, err
	}
	byID := make(map[core.ID]*core.ClipDocument, len(docs))
	for _, doc := range docs {
		byID[doc.Id] = doc
	}
	ordered := make([]*core.ClipDocument, 0, len(hits))
	for _, hit := range hits {
		if doc, ok := byID[hit.ClipID]; ok {
			ordered = append(ordered, doc)
		}
	}
	return ordered, nil
}
