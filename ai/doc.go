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


// Package ai defines the embedding-provider boundary for cliplens.
//
// The Embedder interface is the only business the package has: text in,
// fixed-dimension vector out. Implementations live in sub-packages:
//
//   - ai/openai: production adapter for OpenAI-compatible embedding APIs
//   - ai/mock: deterministic test doubles, no network
//
// Public constructors (openai.NewEmbedder) return the ai.Embedder interface
// to keep callers decoupled from the concrete client; mock constructors
// return concrete types so tests can inject behavior and assert call counts.
//
// Transient provider failures are retried here with a bounded exponential
// backoff policy (see RetryPolicy); after the attempts are exhausted the
// error is surfaced to the caller wrapped in ErrEmbeddingFailed. No other
// logic belongs in this package.
package ai
