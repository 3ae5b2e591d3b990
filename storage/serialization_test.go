package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenframe/cliplens/core"
)

func TestEmbeddingRecordRoundTrip(t *testing.T) {
	summary := make([]float32, core.VectorDimensions)
	keyword := make([]float32, core.VectorDimensions)
	for i := range summary {
		summary[i] = float32(i) * 0.001
		keyword[i] = -float32(i) * 0.002
	}

	record := &core.EmbeddingRecord{
		ClipID:             core.IDFromContent("clips/beach.mp4"),
		SegmentID:          0,
		EmbeddingType:      core.EmbeddingTypeFullClip,
		EmbeddingSource:    core.EmbeddingSourceCombined,
		SummaryVector:      summary,
		KeywordVector:      keyword,
		EmbeddedContent:    "Summary: waves at sunset Transcript: the tide is coming in",
		OriginalContent:    "Summary: waves at sunset Transcript: the tide is coming in and the light is going",
		TokenCount:         14,
		OriginalTokenCount: 20,
		KeywordContent:     "waves, sunset, beach",
		KeywordTokenCount:  6,
		TruncationMethod:   core.TruncationFirstNTokens,
		CreatedAt:          time.Now().UTC().Truncate(time.Microsecond),
	}

	data := MarshalEmbeddingRecord(record)
	got, err := UnmarshalEmbeddingRecord(data)
	require.NoError(t, err)
	assert.Equal(t, record, got)
}

func TestClipDocumentRoundTrip(t *testing.T) {
	doc := &core.ClipDocument{
		Id:                42,
		FileName:          "city_drone.mp4",
		Summary:           "Aerial shot over downtown at dusk",
		Tags:              []string{"aerial", "city", "dusk"},
		Transcript:        "no dialogue",
		TranscriptPreview: "no dialogue",
		Category:          "b-roll",
		Entities:          []string{"skyline", "traffic"},
		Activities:        []string{"flying"},
		ProcessedAt:       time.Now().UTC().Truncate(time.Microsecond),
	}

	data := MarshalClipDocument(doc)
	got, err := UnmarshalClipDocument(data)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestUnmarshal_TruncatedData(t *testing.T) {
	record := &core.EmbeddingRecord{
		ClipID:          7,
		EmbeddingType:   core.EmbeddingTypeFullClip,
		EmbeddingSource: core.EmbeddingSourceSummary,
		EmbeddedContent: "some content",
		CreatedAt:       time.Now().UTC(),
	}
	data := MarshalEmbeddingRecord(record)

	_, err := UnmarshalEmbeddingRecord(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestIDRoundTrip(t *testing.T) {
	id := core.ID(18446744073709551615 / 3)
	got, err := UnmarshalID(MarshalID(id))
	require.NoError(t, err)
	assert.Equal(t, id, got)
}
