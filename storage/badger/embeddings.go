package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/lumenframe/cliplens/core"
	"github.com/lumenframe/cliplens/storage"
)

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
type EmbeddingRepository struct {
	backend *Backend
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a new EmbeddingRepository.
func NewEmbeddingRepository(backend *Backend) (*EmbeddingRepository, error) {
	return &EmbeddingRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *EmbeddingRepository) Close() error {
	return nil
}

// Upsert validates and writes embedding records. A record replaces any
// existing record with the same (clip id, segment id, embedding type) key.
func (r *EmbeddingRepository) Upsert(ctx context.Context, records ...*core.EmbeddingRecord) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if err := core.ValidateEmbeddingRecord(record); err != nil {
				return err
			}
			record.CreatedAt = time.Now().UTC()

			key := makeEmbeddingKey(record.ClipID, record.SegmentID, record.EmbeddingType)
			if err := tx.Set(key, storage.MarshalEmbeddingRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Get retrieves the embedding record for a natural key.
func (r *EmbeddingRepository) Get(ctx context.Context, clipID, segmentID core.ID, embeddingType core.EmbeddingType) (*core.EmbeddingRecord, error) {
	var result *core.EmbeddingRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEmbeddingKey(clipID, segmentID, embeddingType))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			result, err = storage.UnmarshalEmbeddingRecord(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetVector retrieves the summary vector of the whole-clip record of the
// given embedding type.
func (r *EmbeddingRepository) GetVector(ctx context.Context, clipID core.ID, embeddingType core.EmbeddingType) ([]float32, error) {
	record, err := r.Get(ctx, clipID, 0, embeddingType)
	if err != nil {
		return nil, err
	}
	if len(record.SummaryVector) == 0 {
		return nil, storage.ErrNotFound
	}
	return record.SummaryVector, nil
}

// FindSimilar ranks stored records by similarity of the selected channel
// vector to the query vector. Vectors are unit length, so cosine similarity
// reduces to a dot product.
func (r *EmbeddingRepository) FindSimilar(ctx context.Context, vector []float32, channel core.VectorChannel, minSimilarity float32, limit int) ([]core.SimilarHit, error) {
	var results []core.SimilarHit

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(embeddingRecPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.EmbeddingRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalEmbeddingRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil {
				continue
			}

			candidate := record.SummaryVector
			if channel == core.ChannelKeyword {
				candidate = record.KeywordVector
			}
			if len(candidate) == 0 {
				continue
			}

			similarity := dotProduct(vector, candidate)
			if similarity >= minSimilarity {
				results = append(results, core.SimilarHit{
					ClipID:     record.ClipID,
					Similarity: similarity,
				})
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Best first, clip id breaks ties deterministically
	slices.SortFunc(results, func(a, b core.SimilarHit) int {
		if a.Similarity > b.Similarity {
			return -1
		}
		if a.Similarity < b.Similarity {
			return 1
		}
		if a.ClipID < b.ClipID {
			return -1
		}
		if a.ClipID > b.ClipID {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// DeleteByClip removes all embedding records belonging to a clip.
func (r *EmbeddingRepository) DeleteByClip(ctx context.Context, clipID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialEmbeddingKey(clipID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)

		var keys [][]byte
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
