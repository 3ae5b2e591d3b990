package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/lumenframe/cliplens/core"
)

// Key prefixes for different data types
const (
	clipRecordPrefix     = "cliprec"
	clipRecordDatePrefix = "cliprecd"
	embeddingRecPrefix   = "embrec"
)

// makeClipKey generates a key for a clip document by ID.
func makeClipKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", clipRecordPrefix, id))
}

// makeClipDateKey generates a composite key for the recency index.
// Format: prefix:processedAt:id
func makeClipDateKey(processedAt time.Time, id core.ID) []byte {
	prefix := clipRecordDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(processedAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialClipDateKey generates a partial key for recency range scans.
// Format: prefix:processedAt
func makePartialClipDateKey(processedAt time.Time) []byte {
	prefix := clipRecordDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(processedAt.UnixMicro()))
	return buf
}

// makeEmbeddingKey generates the natural key for an embedding record.
// Format: prefix:clipID:segmentID:type, all fixed width so a clip prefix
// scan covers every scope the clip owns.
func makeEmbeddingKey(clipID, segmentID core.ID, embeddingType core.EmbeddingType) []byte {
	prefix := embeddingRecPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 24 // clipID + segmentID + type, 8 bytes each
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(clipID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(segmentID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(embeddingType))
	return buf
}

// makePartialEmbeddingKey generates a partial key covering all embedding
// records of one clip. Format: prefix:clipID
func makePartialEmbeddingKey(clipID core.ID) []byte {
	prefix := embeddingRecPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(clipID))
	return buf
}
