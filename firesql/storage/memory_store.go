package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/bennycheung/PyFireSQL/firesql"
)

// MemoryStore is an in-memory Client, used by tests and as an emulator
// stand-in. It shares the native predicate evaluation with the Badger
// backend.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]firesql.Documents
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: map[string]firesql.Documents{}}
}

// Seed loads a collection wholesale, replacing any existing content.
func (s *MemoryStore) Seed(collection string, docs firesql.Documents) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := firesql.Documents{}
	for id, doc := range docs {
		copied[id] = copyDocument(doc)
	}
	s.collections[collection] = copied
}

// GetCollectionDocuments returns every document in a collection.
func (s *MemoryStore) GetCollectionDocuments(ctx context.Context, collection string) (firesql.Documents, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	results := firesql.Documents{}
	for id, doc := range s.collections[collection] {
		results[id] = copyDocument(doc)
	}
	return results, nil
}

// QueryByTuples returns the documents matching the conjunction of the
// given predicates, with the docid short-circuit.
func (s *MemoryStore) QueryByTuples(ctx context.Context, collection string, predicates []firesql.Predicate) (firesql.Documents, error) {
	if ids, ok := docIDShortcut(predicates); ok {
		return fetchByIDs(ctx, s, collection, ids, predicates)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	results := firesql.Documents{}
	for id, doc := range s.collections[collection] {
		ok, err := MatchDocument(doc, predicates)
		if err != nil {
			return nil, err
		}
		if ok {
			results[id] = copyDocument(doc)
		}
	}
	return results, nil
}

// GetDocument fetches a single document by id.
func (s *MemoryStore) GetDocument(ctx context.Context, collection, docID string) (firesql.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.collections[collection][docID]
	if !ok {
		return nil, firesql.NewError(firesql.NotFound, "document %s/%s not found", collection, docID)
	}
	return copyDocument(doc), nil
}

// GenerateDocumentID returns a fresh document id.
func (s *MemoryStore) GenerateDocumentID(ctx context.Context, collection string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return uuid.NewString(), nil
}

// SetDocument writes a full document under the given id.
func (s *MemoryStore) SetDocument(ctx context.Context, collection, docID string, doc firesql.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collections[collection] == nil {
		s.collections[collection] = firesql.Documents{}
	}
	s.collections[collection][docID] = copyDocument(doc)
	return nil
}

// UpdateDocument merges the partial document into the stored one.
func (s *MemoryStore) UpdateDocument(ctx context.Context, collection, docID string, partial firesql.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collections[collection] == nil {
		s.collections[collection] = firesql.Documents{}
	}
	merged := firesql.Document{}
	for k, v := range s.collections[collection][docID] {
		merged[k] = v
	}
	for k, v := range partial {
		merged[k] = v
	}
	s.collections[collection][docID] = merged
	return nil
}

// DeleteDocument removes a document by id.
func (s *MemoryStore) DeleteDocument(ctx context.Context, collection, docID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], docID)
	return nil
}

func copyDocument(doc firesql.Document) firesql.Document {
	copied := make(firesql.Document, len(doc))
	for k, v := range doc {
		copied[k] = copyValue(v)
	}
	return copied
}

func copyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return copyDocument(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, e := range val {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
