package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// VectorDimensions is the fixed embedding dimensionality for a deployment.
// Vectors of any other length are rejected at write time.
const VectorDimensions = 1024

// MaxTokenBudget is the per-channel token ceiling for embedded content.
// Records reporting a count above it are rejected at write time.
const MaxTokenBudget = 3500

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs, so re-ingesting
// the same clip converges on the same key.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// EmbeddingType classifies what was embedded.
type EmbeddingType int

const (
	// EmbeddingTypeFullClip represents a whole-clip embedding.
	EmbeddingTypeFullClip EmbeddingType = iota + 1
	// EmbeddingTypeSegment represents an embedding of a single clip segment.
	EmbeddingTypeSegment
	// EmbeddingTypeKeyword represents a keyword-channel embedding of a segment.
	EmbeddingTypeKeyword
)

// String returns the wire name of the embedding type.
func (t EmbeddingType) String() string {
	switch t {
	case EmbeddingTypeFullClip:
		return "full_clip"
	case EmbeddingTypeSegment:
		return "segment"
	case EmbeddingTypeKeyword:
		return "keyword"
	default:
		return "unknown"
	}
}

// EmbeddingSource classifies which content channel produced an embedding.
type EmbeddingSource int

const (
	// EmbeddingSourceSummary is the narrative summary channel.
	EmbeddingSourceSummary EmbeddingSource = iota + 1
	// EmbeddingSourceKeywords is the sparse keyword/tag channel.
	EmbeddingSourceKeywords
	// EmbeddingSourceTranscript is transcript-only content.
	EmbeddingSourceTranscript
	// EmbeddingSourceCombined is summary plus transcript excerpt.
	EmbeddingSourceCombined
)

// String returns the wire name of the embedding source.
func (s EmbeddingSource) String() string {
	switch s {
	case EmbeddingSourceSummary:
		return "summary"
	case EmbeddingSourceKeywords:
		return "keywords"
	case EmbeddingSourceTranscript:
		return "transcript"
	case EmbeddingSourceCombined:
		return "combined"
	default:
		return "unknown"
	}
}

// VectorChannel selects one of the two independent embedding channels a
// record can carry.
type VectorChannel int

const (
	// ChannelSummary selects the narrative summary vector.
	ChannelSummary VectorChannel = iota + 1
	// ChannelKeyword selects the sparse keyword vector.
	ChannelKeyword
)

// String returns the wire name of the vector channel.
func (c VectorChannel) String() string {
	switch c {
	case ChannelSummary:
		return "summary"
	case ChannelKeyword:
		return "keyword"
	default:
		return "unknown"
	}
}

// TruncationMethod records how embedded content was reduced to fit the token budget.
type TruncationMethod int

const (
	// TruncationNone means the content fit within the budget unchanged.
	TruncationNone TruncationMethod = iota + 1
	// TruncationFirstNTokens means the content was cut to the first N tokens.
	TruncationFirstNTokens
	// TruncationSummary means a condensed summary replaced the content.
	TruncationSummary
	// TruncationKeyExcerpts means selected excerpts replaced the content.
	TruncationKeyExcerpts
	// TruncationCharEstimate means a character-ratio cut was used because the
	// tokenizer was unavailable.
	TruncationCharEstimate
)

// String returns the wire name of the truncation method.
func (m TruncationMethod) String() string {
	switch m {
	case TruncationNone:
		return "none"
	case TruncationFirstNTokens:
		return "first_n_tokens"
	case TruncationSummary:
		return "summary"
	case TruncationKeyExcerpts:
		return "key_excerpts"
	case TruncationCharEstimate:
		return "char_estimate"
	default:
		return "unknown"
	}
}

// ClipDocument is the per-clip record produced by the ingestion collaborators.
// This core reads it to prepare embedding content and to hydrate search
// results; it never mutates one.
type ClipDocument struct {
	Id                ID
	FileName          string
	Summary           string
	Tags              []string
	Transcript        string
	TranscriptPreview string
	Category          string
	Entities          []string
	Activities        []string
	ProcessedAt       time.Time
}

// EmbeddingRecord is the unit of storage this core owns. It carries the
// vectors for one clip scope together with a full audit trail of what was
// actually embedded.
//
// SegmentID of zero means whole-clip scope.
type EmbeddingRecord struct {
	ClipID             ID
	SegmentID          ID
	EmbeddingType      EmbeddingType
	EmbeddingSource    EmbeddingSource
	SummaryVector      []float32
	KeywordVector      []float32
	EmbeddedContent    string // exact post-truncation summary-channel text, immutable
	OriginalContent    string // full pre-truncation summary-channel text, immutable
	TokenCount         int
	OriginalTokenCount int
	KeywordContent     string // exact post-truncation keyword-channel text, immutable
	KeywordTokenCount  int
	TruncationMethod   TruncationMethod
	CreatedAt          time.Time
}

// SearchHit is a single fused search result.
type SearchHit struct {
	ClipID     ID
	Score      float64
	Provenance Provenance
}

// Provenance labels which search source(s) contributed to a hit's ranking.
type Provenance string

const (
	// ProvenanceHybrid marks a hit that appeared in two or more sources.
	ProvenanceHybrid Provenance = "hybrid"
	// ProvenanceFulltext marks a hit contributed only by the lexical source.
	ProvenanceFulltext Provenance = "fulltext"
	// ProvenanceSemantic marks a hit contributed only by vector sources.
	ProvenanceSemantic Provenance = "semantic"
	// ProvenanceRecent marks a hit from the empty-query recency ordering.
	ProvenanceRecent Provenance = "recent"
)

// SimilarHit is a single nearest-neighbor result from the similarity finder.
type SimilarHit struct {
	ClipID     ID
	Similarity float32
}
