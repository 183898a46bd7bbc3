package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/bennycheung/PyFireSQL/firesql"
)

// keySeparator joins collection and document id in the Badger keyspace.
// Document ids are UUIDs and never contain it.
const keySeparator = "/"

// BadgerStore implements Client using BadgerDB. Documents are stored as
// JSON under collection/docid keys; predicate evaluation scans the
// collection prefix.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens or creates a BadgerDB-backed document store at
// the given path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Badger's own logging is too chatty for a CLI

	db, err := badger.Open(opts)
	if err != nil {
		return nil, firesql.NewError(firesql.StoreError, "failed to open badger: %v", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func documentKey(collection, docID string) []byte {
	return []byte(collection + keySeparator + docID)
}

// GetCollectionDocuments returns every document in a collection.
func (s *BadgerStore) GetCollectionDocuments(ctx context.Context, collection string) (firesql.Documents, error) {
	return s.scanCollection(ctx, collection, nil)
}

// QueryByTuples returns the documents matching the conjunction of the
// given predicates. A docid == or docid in predicate short-circuits to
// per-id fetches.
func (s *BadgerStore) QueryByTuples(ctx context.Context, collection string, predicates []firesql.Predicate) (firesql.Documents, error) {
	if ids, ok := docIDShortcut(predicates); ok {
		return fetchByIDs(ctx, s, collection, ids, predicates)
	}
	return s.scanCollection(ctx, collection, predicates)
}

func (s *BadgerStore) scanCollection(ctx context.Context, collection string, predicates []firesql.Predicate) (firesql.Documents, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := firesql.Documents{}
	prefix := []byte(collection + keySeparator)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			docID := strings.TrimPrefix(string(item.Key()), string(prefix))

			err := item.Value(func(val []byte) error {
				doc, err := firesql.JSONToDocument(val)
				if err != nil {
					return fmt.Errorf("corrupt document %s/%s: %w", collection, docID, err)
				}
				if len(predicates) > 0 {
					ok, err := MatchDocument(doc, predicates)
					if err != nil || !ok {
						return err
					}
				}
				results[docID] = doc
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if fe, ok := err.(*firesql.Error); ok {
			return nil, fe
		}
		return nil, firesql.NewError(firesql.StoreError, "scan %s: %v", collection, err)
	}
	return results, nil
}

// GetDocument fetches a single document by id.
func (s *BadgerStore) GetDocument(ctx context.Context, collection, docID string) (firesql.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc firesql.Document
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(documentKey(collection, docID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			doc, err = firesql.JSONToDocument(val)
			return err
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, firesql.NewError(firesql.NotFound, "document %s/%s not found", collection, docID)
	}
	if err != nil {
		return nil, firesql.NewError(firesql.StoreError, "get %s/%s: %v", collection, docID, err)
	}
	return doc, nil
}

// GenerateDocumentID returns a fresh document id.
func (s *BadgerStore) GenerateDocumentID(ctx context.Context, collection string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return uuid.NewString(), nil
}

// SetDocument writes a full document under the given id.
func (s *BadgerStore) SetDocument(ctx context.Context, collection, docID string, doc firesql.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := firesql.DocumentToJSON(doc)
	if err != nil {
		return firesql.NewError(firesql.StoreError, "encode %s/%s: %v", collection, docID, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(documentKey(collection, docID), data)
	})
	if err != nil {
		return firesql.NewError(firesql.StoreError, "set %s/%s: %v", collection, docID, err)
	}
	return nil
}

// UpdateDocument merges the partial document into the stored one.
// Top-level fields absent from partial are preserved.
func (s *BadgerStore) UpdateDocument(ctx context.Context, collection, docID string, partial firesql.Document) error {
	existing, err := s.GetDocument(ctx, collection, docID)
	if err != nil {
		if !firesql.IsKind(err, firesql.NotFound) {
			return err
		}
		existing = firesql.Document{}
	}

	merged := firesql.Document{}
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range partial {
		merged[k] = v
	}
	return s.SetDocument(ctx, collection, docID, merged)
}

// DeleteDocument removes a document by id.
func (s *BadgerStore) DeleteDocument(ctx context.Context, collection, docID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(documentKey(collection, docID))
	})
	if err != nil && err != badger.ErrKeyNotFound {
		return firesql.NewError(firesql.StoreError, "delete %s/%s: %v", collection, docID, err)
	}
	return nil
}
