// Package token provides deterministic token counting and budget truncation
// for embedding content.
//
// Counting uses a fixed reference tokenizer (tiktoken cl100k_base). When the
// tokenizer is unavailable the package falls back to a character-ratio
// estimate of four characters per token; counting and truncation never fail.
// Both operations are pure functions of their inputs, which is what makes
// re-indexing a clip idempotent.
package token
