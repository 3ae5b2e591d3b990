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


// Package search provides hybrid retrieval over the clip catalog.
//
// The Searcher type fans out up to three ranked candidate fetches per query:
//   - Lexical full-text matching over the clip's searchable document
//   - Summary-channel vector similarity
//   - Keyword-channel vector similarity
//
// The lists are combined with weighted Reciprocal Rank Fusion, which ranks
// by position rather than raw score and so tolerates incomparable scoring
// scales across sources. A source that times out or fails contributes
// nothing; the response reports the degradation instead of failing the
// whole query.
package search
