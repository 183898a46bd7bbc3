package storage

import (
	"github.com/bennycheung/PyFireSQL/firesql"
)

// MatchDocument reports whether a document satisfies the conjunction of
// the given predicates. This is the store's native predicate
// evaluation, shared by the Badger and memory backends.
func MatchDocument(doc firesql.Document, predicates []firesql.Predicate) (bool, error) {
	for _, pred := range predicates {
		ok, err := matchPredicate(doc, pred)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchPredicate(doc firesql.Document, pred firesql.Predicate) (bool, error) {
	value, present := firesql.FieldValue(doc, pred.Field)

	switch pred.Op {
	case firesql.OpEqual:
		if pred.Value == nil {
			// IS NULL: matches an absent field or an explicit null.
			return !present || value == nil, nil
		}
		return present && firesql.ValuesEqual(value, pred.Value), nil

	case firesql.OpNotEqual:
		return present && !firesql.ValuesEqual(value, pred.Value), nil

	case firesql.OpGreater:
		return present && firesql.CompareValues(value, pred.Value) > 0, nil
	case firesql.OpGreaterEqual:
		return present && firesql.CompareValues(value, pred.Value) >= 0, nil
	case firesql.OpLess:
		if !present {
			return false, nil
		}
		// CompareValues reports -1 for type mismatches; require a
		// symmetric check so mismatched types never satisfy <.
		return firesql.CompareValues(value, pred.Value) < 0 && firesql.CompareValues(pred.Value, value) > 0, nil
	case firesql.OpLessEqual:
		if !present {
			return false, nil
		}
		return firesql.CompareValues(value, pred.Value) <= 0 && firesql.CompareValues(pred.Value, value) >= 0, nil

	case firesql.OpIn:
		list, err := predicateList(pred)
		if err != nil {
			return false, err
		}
		if !present {
			return false, nil
		}
		for _, candidate := range list {
			if firesql.ValuesEqual(value, candidate) {
				return true, nil
			}
		}
		return false, nil

	case firesql.OpNotIn:
		list, err := predicateList(pred)
		if err != nil {
			return false, err
		}
		if !present {
			return false, nil
		}
		for _, candidate := range list {
			if firesql.ValuesEqual(value, candidate) {
				return false, nil
			}
		}
		return true, nil

	case firesql.OpArrayContains:
		elems, ok := value.([]interface{})
		if !present || !ok {
			return false, nil
		}
		for _, elem := range elems {
			if firesql.ValuesEqual(elem, pred.Value) {
				return true, nil
			}
		}
		return false, nil

	case firesql.OpArrayContainsAny:
		list, err := predicateList(pred)
		if err != nil {
			return false, err
		}
		elems, ok := value.([]interface{})
		if !present || !ok {
			return false, nil
		}
		for _, elem := range elems {
			for _, candidate := range list {
				if firesql.ValuesEqual(elem, candidate) {
					return true, nil
				}
			}
		}
		return false, nil

	default:
		return false, firesql.NewError(firesql.StoreError, "unsupported predicate operator %q", pred.Op)
	}
}

func predicateList(pred firesql.Predicate) ([]interface{}, error) {
	list, ok := pred.Value.([]interface{})
	if !ok {
		return nil, firesql.NewError(firesql.TypeError, "operator %q requires a list value", pred.Op)
	}
	return list, nil
}
