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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidEmbeddingRecord indicates an EmbeddingRecord failed validation.
	ErrInvalidEmbeddingRecord = errors.New("invalid embedding record")

	// ErrInvalidClipDocument indicates a ClipDocument failed validation.
	ErrInvalidClipDocument = errors.New("invalid clip document")

	// ErrScopeViolation indicates the embedding type and segment scope disagree.
	ErrScopeViolation = errors.New("embedding type and segment scope disagree")

	// ErrVectorDimension indicates a vector whose length is not the deployment dimension.
	ErrVectorDimension = errors.New("wrong vector dimension")

	// ErrTokenCountOrder indicates token count exceeds the original token count.
	ErrTokenCountOrder = errors.New("token count exceeds original token count")

	// ErrNegativeTokenCount indicates a negative token count.
	ErrNegativeTokenCount = errors.New("token count cannot be negative")

	// ErrTokenBudgetExceeded indicates a token count above the embedding budget.
	ErrTokenBudgetExceeded = errors.New("token count exceeds embedding budget")

	// ErrInvalidEmbeddingType indicates an unknown EmbeddingType value.
	ErrInvalidEmbeddingType = errors.New("invalid embedding type")

	// ErrInvalidEmbeddingSource indicates an unknown EmbeddingSource value.
	ErrInvalidEmbeddingSource = errors.New("invalid embedding source")

	// ErrMissingClipID indicates a record without a clip reference.
	ErrMissingClipID = errors.New("clip id is required")
)
