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

import "fmt"

// ValidateEmbeddingRecord validates an EmbeddingRecord according to domain rules.
//
// Validation rules:
//   - ClipID must be set
//   - EmbeddingType and EmbeddingSource must be known values
//   - full_clip records must have SegmentID 0; segment and keyword records must not
//   - each present vector must have exactly VectorDimensions elements
//   - 0 <= TokenCount <= OriginalTokenCount
//   - TokenCount and KeywordTokenCount must not exceed MaxTokenBudget
//
// NOT validated:
//   - EmbeddedContent (empty content is a legal, if useless, embedding input)
//   - CreatedAt (populated by the store on write)
func ValidateEmbeddingRecord(record *EmbeddingRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidEmbeddingRecord)
	}

	if record.ClipID == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidEmbeddingRecord, ErrMissingClipID)
	}

	if err := ValidateEmbeddingType(record.EmbeddingType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEmbeddingRecord, err)
	}

	if err := ValidateEmbeddingSource(record.EmbeddingSource); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEmbeddingRecord, err)
	}

	if err := validateScope(record); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEmbeddingRecord, err)
	}

	if err := validateVector(record.SummaryVector); err != nil {
		return fmt.Errorf("%w: summary vector: %w", ErrInvalidEmbeddingRecord, err)
	}
	if err := validateVector(record.KeywordVector); err != nil {
		return fmt.Errorf("%w: keyword vector: %w", ErrInvalidEmbeddingRecord, err)
	}

	if record.TokenCount < 0 || record.OriginalTokenCount < 0 || record.KeywordTokenCount < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidEmbeddingRecord, ErrNegativeTokenCount)
	}
	if record.TokenCount > record.OriginalTokenCount {
		return fmt.Errorf("%w: %w (%d > %d)", ErrInvalidEmbeddingRecord,
			ErrTokenCountOrder, record.TokenCount, record.OriginalTokenCount)
	}
	if record.TokenCount > MaxTokenBudget {
		return fmt.Errorf("%w: %w (%d > %d)", ErrInvalidEmbeddingRecord,
			ErrTokenBudgetExceeded, record.TokenCount, MaxTokenBudget)
	}
	if record.KeywordTokenCount > MaxTokenBudget {
		return fmt.Errorf("%w: keyword channel: %w (%d > %d)", ErrInvalidEmbeddingRecord,
			ErrTokenBudgetExceeded, record.KeywordTokenCount, MaxTokenBudget)
	}

	return nil
}

// ValidateClipDocument validates a ClipDocument before it enters the catalog.
//
// Validation rules:
//   - Id must be set
//   - FileName must not be empty
//
// Textual signals (summary, transcript, tags, entities, activities) may all be
// empty; the content preparer handles absent channels.
func ValidateClipDocument(doc *ClipDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidClipDocument)
	}
	if doc.Id == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidClipDocument, ErrMissingClipID)
	}
	if doc.FileName == "" {
		return fmt.Errorf("%w: file name cannot be empty", ErrInvalidClipDocument)
	}
	return nil
}

// ValidateEmbeddingType validates that an EmbeddingType has a known value.
func ValidateEmbeddingType(t EmbeddingType) error {
	switch t {
	case EmbeddingTypeFullClip, EmbeddingTypeSegment, EmbeddingTypeKeyword:
		return nil
	}
	return fmt.Errorf("%w: value %d", ErrInvalidEmbeddingType, t)
}

// ValidateEmbeddingSource validates that an EmbeddingSource has a known value.
func ValidateEmbeddingSource(s EmbeddingSource) error {
	switch s {
	case EmbeddingSourceSummary, EmbeddingSourceKeywords, EmbeddingSourceTranscript, EmbeddingSourceCombined:
		return nil
	}
	return fmt.Errorf("%w: value %d", ErrInvalidEmbeddingSource, s)
}

// validateScope enforces the structural rule binding the embedding type to the
// presence of a segment reference.
func validateScope(record *EmbeddingRecord) error {
	switch record.EmbeddingType {
	case EmbeddingTypeFullClip:
		if record.SegmentID != 0 {
			return fmt.Errorf("%w: full_clip record carries segment %d", ErrScopeViolation, record.SegmentID)
		}
	case EmbeddingTypeSegment, EmbeddingTypeKeyword:
		if record.SegmentID == 0 {
			return fmt.Errorf("%w: %s record requires a segment", ErrScopeViolation, record.EmbeddingType)
		}
	}
	return nil
}

func validateVector(v []float32) error {
	if len(v) == 0 {
		return nil
	}
	if len(v) != VectorDimensions {
		return fmt.Errorf("%w: got %d, want %d", ErrVectorDimension, len(v), VectorDimensions)
	}
	return nil
}
