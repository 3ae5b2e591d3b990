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


// Package storage provides the storage abstraction layer for cliplens.
//
// It defines repository interfaces that decouple the storage backend from the
// indexing and search logic, so different backends (BadgerDB, in-memory) can
// be used interchangeably.
//
// # Repositories
//
//   - ClipRepository: clip documents, keyed by clip id, with a recency index
//   - EmbeddingRepository: embedding records, keyed by the natural key
//     (clip, segment, embedding type); writes are atomic per-key upserts
//
// Public constructors in backend packages return these interfaces to prevent
// accidental coupling to backend specifics.
//
// # Thread Safety
//
// All repository implementations must be thread-safe. Upserts for different
// clips never block each other; concurrent upserts of the same key resolve
// with last-write-wins semantics, which is acceptable because indexing the
// same inputs is idempotent.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and timeout
// support.
package storage
