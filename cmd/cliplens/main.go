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


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/lumenframe/cliplens"
	"github.com/lumenframe/cliplens/ai"
	"github.com/lumenframe/cliplens/core"
	"github.com/lumenframe/cliplens/ingestion"
	"github.com/lumenframe/cliplens/search"
)

// allClipsLimit bounds the "index everything" scan.
const allClipsLimit = 100000

func main() {
	catalogFlags := []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to the catalog data directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "bge-m3",
		},
	}

	app := &cli.App{
		Name:  "cliplens",
		Usage: "Hybrid search over a video clip catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Load clip documents from a JSON file into the catalog",
				Action: ingestCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to a JSON array of clip documents",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "index",
						Usage: "Generate embeddings for the loaded clips",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size for embedding generation",
						Value: 4,
					},
				}, catalogFlags...),
			},
			{
				Name:   "index",
				Usage:  "Generate embeddings for every clip in the catalog",
				Action: indexCommand,
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size for embedding generation",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per embedding operation",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 500 * time.Millisecond,
					},
				}, catalogFlags...),
			},
			{
				Name:      "search",
				Usage:     "Search the catalog",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Search mode (hybrid, semantic, fulltext, transcripts)",
						Value: "hybrid",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum results",
						Value: search.DefaultLimit,
					},
					&cli.Float64Flag{
						Name:  "fulltext-weight",
						Usage: "Fusion weight of the lexical source",
						Value: search.DefaultFulltextWeight,
					},
					&cli.Float64Flag{
						Name:  "summary-weight",
						Usage: "Fusion weight of the summary vector source",
						Value: search.DefaultSummaryWeight,
					},
					&cli.Float64Flag{
						Name:  "keyword-weight",
						Usage: "Fusion weight of the keyword vector source",
						Value: search.DefaultKeywordWeight,
					},
					&cli.Float64Flag{
						Name:  "rrf-k",
						Usage: "Reciprocal Rank Fusion smoothing constant",
						Value: search.DefaultRRFK,
					},
				}, catalogFlags...),
			},
			{
				Name:   "similar",
				Usage:  "Find clips similar to a clip",
				Action: similarCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "File name of the source clip",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum results",
						Value: search.DefaultLimit,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum similarity",
						Value: float64(search.DefaultSimilarityThreshold),
					},
				}, catalogFlags...),
			},
			{
				Name:   "delete",
				Usage:  "Delete a clip, its embeddings, and its index entry",
				Action: deleteCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "File name of the clip to delete",
						Required: true,
					},
				}, catalogFlags...),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openCatalog(c *cli.Context) (*cliplens.Catalog, error) {
	cfg := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
	)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedding configuration: %w", err)
	}
	return cliplens.OpenCatalog(c.String("db"), cliplens.WithAIConfig(cfg))
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read clip file: %w", err)
	}
	var docs []*core.ClipDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return fmt.Errorf("failed to parse clip file: %w", err)
	}

	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	ids := make([]core.ID, 0, len(docs))
	for _, doc := range docs {
		if err := catalog.PutClip(ctx, doc); err != nil {
			return fmt.Errorf("failed to store clip %q: %w", doc.FileName, err)
		}
		ids = append(ids, doc.Id)
	}
	fmt.Fprintf(os.Stderr, "Stored %d clips\n", len(ids))

	if !c.Bool("index") {
		return nil
	}

	indexer, err := catalog.NewIndexer(ingestion.WithPoolSize(c.Int("pool-size")))
	if err != nil {
		return err
	}
	defer indexer.Release()

	if err := indexer.IndexClips(ctx, ids...); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Indexed %d clips\n", len(ids))
	return nil
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	docs, err := catalog.ClipRepository().GetRecent(ctx, allClipsLimit)
	if err != nil {
		return fmt.Errorf("failed to list clips: %w", err)
	}
	if len(docs) == 0 {
		fmt.Fprintln(os.Stderr, "No clips to index")
		return nil
	}

	indexer, err := catalog.NewIndexer(
		ingestion.WithPoolSize(c.Int("pool-size")),
		ingestion.WithRetryPolicy(ai.RetryPolicy{
			MaxAttempts: c.Int("max-retries"),
			BaseDelay:   c.Duration("retry-delay"),
		}),
	)
	if err != nil {
		return err
	}
	defer indexer.Release()

	ids := make([]core.ID, len(docs))
	for i, doc := range docs {
		ids[i] = doc.Id
	}

	if err := indexer.IndexClips(ctx, ids...); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Indexed %d clips\n", len(ids))
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.Join(c.Args().Slice(), " ")

	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	resp, err := catalog.Search(ctx, query, search.Params{
		Mode:           search.Mode(c.String("mode")),
		Limit:          c.Int("limit"),
		FulltextWeight: c.Float64("fulltext-weight"),
		SummaryWeight:  c.Float64("summary-weight"),
		KeywordWeight:  c.Float64("keyword-weight"),
		RRFK:           c.Float64("rrf-k"),
	})
	if err != nil {
		return err
	}

	if resp.Degraded {
		fmt.Fprintf(os.Stderr, "Warning: degraded results, dropped sources: %s\n",
			strings.Join(resp.DroppedSources, ", "))
	}

	docs, err := catalog.HydrateHits(ctx, resp.Hits)
	if err != nil {
		return err
	}
	names := make(map[core.ID]string, len(docs))
	for _, doc := range docs {
		names[doc.Id] = doc.FileName
	}

	fmt.Printf("Found %d hits\n", len(resp.Hits))
	for i, hit := range resp.Hits {
		name := names[hit.ClipID]
		if name == "" {
			name = "(missing)"
		}
		fmt.Printf("%d: %s (%d)[%0.4f] %s\n", i+1, name, hit.ClipID, hit.Score, hit.Provenance)
	}
	return nil
}

func similarCommand(c *cli.Context) error {
	ctx := context.Background()

	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	clipID := core.IDFromContent(c.String("file"))
	hits, err := catalog.FindSimilar(ctx, clipID, c.Int("limit"), float32(c.Float64("threshold")))
	if err != nil {
		return err
	}

	fmt.Printf("Found %d similar clips\n", len(hits))
	for i, hit := range hits {
		doc, err := catalog.ClipRepository().Get(ctx, hit.ClipID)
		name := "(missing)"
		if err == nil {
			name = doc.FileName
		}
		fmt.Printf("%d: %s (%d)[%0.3f]\n", i+1, name, hit.ClipID, hit.Similarity)
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	ctx := context.Background()

	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	clipID := core.IDFromContent(c.String("file"))
	if err := catalog.DeleteClip(ctx, clipID); err != nil {
		return fmt.Errorf("failed to delete clip: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Deleted clip %s\n", c.String("file"))
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
