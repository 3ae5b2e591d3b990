// Package ingestion turns clip analysis signals into stored embedding
// records. The Preparer assembles the two embedding channels under a token
// budget; the Indexer runs the per-clip prepare, embed, and upsert sequence
// over a bounded worker pool.
//
// Indexing the same clip twice is idempotent: preparation is a pure function
// of the clip document, and the embedding store replaces by natural key.
// Errors during batch indexing are logged per clip and do not block the rest
// of the batch.
package ingestion
