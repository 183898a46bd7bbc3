// Package storage defines the narrow document-store surface the query
// engine consumes, and provides two implementations: a persistent
// BadgerDB-backed store and an in-memory store.
package storage

import (
	"context"

	"github.com/bennycheung/PyFireSQL/firesql"
)

// Client is the store interface consumed by the engine. Implementations
// must be safe for sequential reuse across statements; the engine holds
// no locks of its own.
//
// QueryByTuples must recognize the pushdown operators (==, !=, <, <=,
// >, >=, in, not_in, array_contains, array_contains_any) and the
// synthetic field name "docid": a docid == or docid in predicate
// short-circuits the query to per-id fetches, with the remaining
// predicates applied to the fetched documents.
type Client interface {
	// GetCollectionDocuments returns every document in a collection.
	GetCollectionDocuments(ctx context.Context, collection string) (firesql.Documents, error)

	// QueryByTuples returns the documents matching the conjunction of
	// the given predicate tuples.
	QueryByTuples(ctx context.Context, collection string, predicates []firesql.Predicate) (firesql.Documents, error)

	// GetDocument fetches a single document by id. A missing id yields
	// a NotFound error.
	GetDocument(ctx context.Context, collection, docID string) (firesql.Document, error)

	// GenerateDocumentID returns a fresh document id for the collection.
	GenerateDocumentID(ctx context.Context, collection string) (string, error)

	// SetDocument writes a full document under the given id.
	SetDocument(ctx context.Context, collection, docID string, doc firesql.Document) error

	// UpdateDocument merges the partial document into the stored one:
	// fields absent from partial are preserved.
	UpdateDocument(ctx context.Context, collection, docID string, partial firesql.Document) error

	// DeleteDocument removes a document by id. Deleting a missing id is
	// not an error.
	DeleteDocument(ctx context.Context, collection, docID string) error
}

// docIDShortcut inspects predicates for a docid equality or membership
// test. When present, the query collapses to per-id fetches; the
// remaining predicates are applied to the fetched documents.
func docIDShortcut(predicates []firesql.Predicate) ([]string, bool) {
	for _, pred := range predicates {
		if pred.Field != firesql.DocID {
			continue
		}
		switch pred.Op {
		case firesql.OpEqual:
			if id, ok := pred.Value.(string); ok {
				return []string{id}, true
			}
		case firesql.OpIn:
			if list, ok := pred.Value.([]interface{}); ok {
				ids := make([]string, 0, len(list))
				for _, v := range list {
					if id, ok := v.(string); ok {
						ids = append(ids, id)
					}
				}
				return ids, true
			}
		}
		// docid with any other operator matches nothing.
		return nil, true
	}
	return nil, false
}

// fetchByIDs resolves a docid shortcut against any client. Missing ids
// are skipped rather than failing the whole query; the non-docid
// predicates still apply as a conjunction.
func fetchByIDs(ctx context.Context, c Client, collection string, ids []string, predicates []firesql.Predicate) (firesql.Documents, error) {
	var rest []firesql.Predicate
	for _, pred := range predicates {
		if pred.Field != firesql.DocID {
			rest = append(rest, pred)
		}
	}

	results := firesql.Documents{}
	for _, id := range ids {
		doc, err := c.GetDocument(ctx, collection, id)
		if err != nil {
			if firesql.IsKind(err, firesql.NotFound) {
				continue
			}
			return nil, err
		}
		ok, err := MatchDocument(doc, rest)
		if err != nil {
			return nil, err
		}
		if ok {
			results[id] = doc
		}
	}
	return results, nil
}
