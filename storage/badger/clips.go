package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/lumenframe/cliplens/core"
	"github.com/lumenframe/cliplens/storage"
)

// ClipRepository implements storage.ClipRepository for BadgerDB.
type ClipRepository struct {
	backend *Backend
}

var _ storage.ClipRepository = (*ClipRepository)(nil)

// NewClipRepository creates a new ClipRepository.
func NewClipRepository(backend *Backend) (*ClipRepository, error) {
	return &ClipRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *ClipRepository) Close() error {
	return nil
}

// Put stores clip documents, replacing any existing document with the same id.
func (r *ClipRepository) Put(ctx context.Context, docs ...*core.ClipDocument) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			if err := core.ValidateClipDocument(doc); err != nil {
				return err
			}
			if doc.ProcessedAt.IsZero() {
				doc.ProcessedAt = time.Now().UTC()
			}

			key := makeClipKey(doc.Id)

			// Drop the old recency entry when replacing
			old, err := r.readClip(tx, key)
			if err != nil {
				return err
			}
			if old != nil && !old.ProcessedAt.Equal(doc.ProcessedAt) {
				if err := tx.Delete(makeClipDateKey(old.ProcessedAt, old.Id)); err != nil {
					return err
				}
			}

			if err := tx.Set(key, storage.MarshalClipDocument(doc)); err != nil {
				return err
			}
			dateKey := makeClipDateKey(doc.ProcessedAt, doc.Id)
			if err := tx.Set(dateKey, storage.MarshalID(doc.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Get retrieves a single clip document by id.
func (r *ClipRepository) Get(ctx context.Context, id core.ID) (*core.ClipDocument, error) {
	var result *core.ClipDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readClip(tx, makeClipKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetMany retrieves multiple clip documents by their ids.
// Missing documents are skipped without error.
func (r *ClipRepository) GetMany(ctx context.Context, ids ...core.ID) ([]*core.ClipDocument, error) {
	results := make([]*core.ClipDocument, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			doc, err := r.readClip(tx, makeClipKey(id))
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	}, false)
	return results, err
}

// Delete removes a clip document by id.
func (r *ClipRepository) Delete(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeClipKey(id)
		doc, err := r.readClip(tx, key)
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		if err := tx.Delete(makeClipDateKey(doc.ProcessedAt, doc.Id)); err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetRecent retrieves up to limit clip documents, most recently processed first.
func (r *ClipRepository) GetRecent(ctx context.Context, limit int) ([]*core.ClipDocument, error) {
	var results []*core.ClipDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek to the last possible key in the recency index
		startKey := makePartialClipDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		prefix := []byte(clipRecordDatePrefix + ":")

		count := 0
		for iter.Seek(startKey); iter.Valid() && count < limit; iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var clipID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				clipID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			doc, err := r.readClip(tx, makeClipKey(clipID))
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
				count++
			}
		}
		return nil
	}, false)

	return results, err
}

// readClip reads and deserializes a clip document, returning nil if absent.
func (r *ClipRepository) readClip(tx *badger.Txn, key []byte) (*core.ClipDocument, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.ClipDocument
	err = item.Value(func(val []byte) error {
		var err error
		doc, err = storage.UnmarshalClipDocument(val)
		return err
	})
	return doc, err
}
