// Package openai provides an ai.Embedder backed by any OpenAI-compatible
// embedding API (Ollama, LocalAI, vLLM, OpenAI itself).
//
// The adapter is a boundary: it embeds text, retries transient failures per
// the configured policy, verifies the response shape, and nothing else.
package openai
