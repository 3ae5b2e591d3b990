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


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"

	"github.com/lumenframe/cliplens/core"
)

// Hand-maintained MUS codecs for the two stored record types. The schema is
// small and changes rarely; field order here is the wire format.

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	return core.ID(v), nil
}

// MarshalEmbeddingRecord serializes an EmbeddingRecord to bytes.
func MarshalEmbeddingRecord(record *core.EmbeddingRecord) []byte {
	buf := make([]byte, sizeEmbeddingRecord(record))
	n := varint.Uint64.Marshal(uint64(record.ClipID), buf)
	n += varint.Uint64.Marshal(uint64(record.SegmentID), buf[n:])
	n += varint.Int.Marshal(int(record.EmbeddingType), buf[n:])
	n += varint.Int.Marshal(int(record.EmbeddingSource), buf[n:])
	n += marshalVector(record.SummaryVector, buf[n:])
	n += marshalVector(record.KeywordVector, buf[n:])
	n += ord.String.Marshal(record.EmbeddedContent, buf[n:])
	n += ord.String.Marshal(record.OriginalContent, buf[n:])
	n += varint.Int.Marshal(record.TokenCount, buf[n:])
	n += varint.Int.Marshal(record.OriginalTokenCount, buf[n:])
	n += ord.String.Marshal(record.KeywordContent, buf[n:])
	n += varint.Int.Marshal(record.KeywordTokenCount, buf[n:])
	n += varint.Int.Marshal(int(record.TruncationMethod), buf[n:])
	varint.Int64.Marshal(record.CreatedAt.UnixMicro(), buf[n:])
	return buf
}

// UnmarshalEmbeddingRecord deserializes an EmbeddingRecord from bytes.
func UnmarshalEmbeddingRecord(data []byte) (record *core.EmbeddingRecord, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("%w: embedding record: %w", ErrSerializationFailed, err)
		}
	}()

	record = &core.EmbeddingRecord{}
	var n, m int

	clipID, n, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	record.ClipID = core.ID(clipID)

	segmentID, m, err := varint.Uint64.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += m
	record.SegmentID = core.ID(segmentID)

	embeddingType, m, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += m
	record.EmbeddingType = core.EmbeddingType(embeddingType)

	source, m, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += m
	record.EmbeddingSource = core.EmbeddingSource(source)

	record.SummaryVector, m, err = unmarshalVector(data[n:])
	if err != nil {
		return nil, err
	}
	n += m

	record.KeywordVector, m, err = unmarshalVector(data[n:])
	if err != nil {
		return nil, err
	}
	n += m

	record.EmbeddedContent, m, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += m

	record.OriginalContent, m, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += m

	record.TokenCount, m, err = varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += m

	record.OriginalTokenCount, m, err = varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += m

	record.KeywordContent, m, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += m

	record.KeywordTokenCount, m, err = varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += m

	method, m, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += m
	record.TruncationMethod = core.TruncationMethod(method)

	createdAt, _, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	record.CreatedAt = time.UnixMicro(createdAt).UTC()

	return record, nil
}

func sizeEmbeddingRecord(record *core.EmbeddingRecord) int {
	return varint.Uint64.Size(uint64(record.ClipID)) +
		varint.Uint64.Size(uint64(record.SegmentID)) +
		varint.Int.Size(int(record.EmbeddingType)) +
		varint.Int.Size(int(record.EmbeddingSource)) +
		sizeVector(record.SummaryVector) +
		sizeVector(record.KeywordVector) +
		ord.String.Size(record.EmbeddedContent) +
		ord.String.Size(record.OriginalContent) +
		varint.Int.Size(record.TokenCount) +
		varint.Int.Size(record.OriginalTokenCount) +
		ord.String.Size(record.KeywordContent) +
		varint.Int.Size(record.KeywordTokenCount) +
		varint.Int.Size(int(record.TruncationMethod)) +
		varint.Int64.Size(record.CreatedAt.UnixMicro())
}

// MarshalClipDocument serializes a ClipDocument to bytes.
func MarshalClipDocument(doc *core.ClipDocument) []byte {
	buf := make([]byte, sizeClipDocument(doc))
	n := varint.Uint64.Marshal(uint64(doc.Id), buf)
	n += ord.String.Marshal(doc.FileName, buf[n:])
	n += ord.String.Marshal(doc.Summary, buf[n:])
	n += marshalStrings(doc.Tags, buf[n:])
	n += ord.String.Marshal(doc.Transcript, buf[n:])
	n += ord.String.Marshal(doc.TranscriptPreview, buf[n:])
	n += ord.String.Marshal(doc.Category, buf[n:])
	n += marshalStrings(doc.Entities, buf[n:])
	n += marshalStrings(doc.Activities, buf[n:])
	varint.Int64.Marshal(doc.ProcessedAt.UnixMicro(), buf[n:])
	return buf
}

// UnmarshalClipDocument deserializes a ClipDocument from bytes.
func UnmarshalClipDocument(data []byte) (doc *core.ClipDocument, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("%w: clip document: %w", ErrSerializationFailed, err)
		}
	}()

	doc = &core.ClipDocument{}
	var n, m int

	id, n, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	doc.Id = core.ID(id)

	doc.FileName, m, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += m

	doc.Summary, m, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += m

	doc.Tags, m, err = unmarshalStrings(data[n:])
	if err != nil {
		return nil, err
	}
	n += m

	doc.Transcript, m, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += m

	doc.TranscriptPreview, m, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += m

	doc.Category, m, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += m

	doc.Entities, m, err = unmarshalStrings(data[n:])
	if err != nil {
		return nil, err
	}
	n += m

	doc.Activities, m, err = unmarshalStrings(data[n:])
	if err != nil {
		return nil, err
	}
	n += m

	processedAt, _, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	doc.ProcessedAt = time.UnixMicro(processedAt).UTC()

	return doc, nil
}

func sizeClipDocument(doc *core.ClipDocument) int {
	return varint.Uint64.Size(uint64(doc.Id)) +
		ord.String.Size(doc.FileName) +
		ord.String.Size(doc.Summary) +
		sizeStrings(doc.Tags) +
		ord.String.Size(doc.Transcript) +
		ord.String.Size(doc.TranscriptPreview) +
		ord.String.Size(doc.Category) +
		sizeStrings(doc.Entities) +
		sizeStrings(doc.Activities) +
		varint.Int64.Size(doc.ProcessedAt.UnixMicro())
}

// Vector and string-slice codecs: length-prefixed element sequences.

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, ErrTruncatedData
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]float32, length)
	var m int
	for i := 0; i < length; i++ {
		v[i], m, err = raw.Float32.Unmarshal(bs[n:])
		if err != nil {
			return nil, n, err
		}
		n += m
	}
	return v, n, nil
}

func sizeVector(v []float32) int {
	size := varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

func marshalStrings(ss []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(ss), bs)
	for _, s := range ss {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func unmarshalStrings(bs []byte) (ss []string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, ErrTruncatedData
	}
	if length == 0 {
		return nil, n, nil
	}
	ss = make([]string, length)
	var m int
	for i := 0; i < length; i++ {
		ss[i], m, err = ord.String.Unmarshal(bs[n:])
		if err != nil {
			return nil, n, err
		}
		n += m
	}
	return ss, n, nil
}

func sizeStrings(ss []string) int {
	size := varint.Int.Size(len(ss))
	for _, s := range ss {
		size += ord.String.Size(s)
	}
	return size
}
