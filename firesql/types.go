package firesql

// Document is a single stored record: a mapping from field names to
// values. Values may be scalars, lists, or nested sub-mappings.
type Document = map[string]interface{}

// Documents maps store-assigned document ids to document bodies.
type Documents = map[string]Document

// DocID is the synthetic column addressing the store-assigned document
// id. It is never stored in the document body; projection injects it
// from the map key.
const DocID = "docid"

// Operators understood by the predicate tuples pushed to the store and
// by the WHERE expression tree.
const (
	OpEqual            = "=="
	OpNotEqual         = "!="
	OpGreater          = ">"
	OpLess             = "<"
	OpGreaterEqual     = ">="
	OpLessEqual        = "<="
	OpIn               = "in"
	OpNotIn            = "not_in"
	OpArrayContains    = "array_contains"
	OpArrayContainsAny = "array_contains_any"
	OpLike             = "like"
	OpNotLike          = "not_like"
	OpAnd              = "and"
	OpOr               = "or"
)

// Predicate is a (field, operator, value) tuple. Pushdown predicates
// are evaluated natively by the store; residual predicates (like,
// not_like) are evaluated in memory after fetch.
type Predicate struct {
	Field string
	Op    string
	Value interface{}
}

// IsPushdownOp reports whether the store evaluates op natively.
func IsPushdownOp(op string) bool {
	switch op {
	case OpEqual, OpNotEqual, OpGreater, OpLess, OpGreaterEqual, OpLessEqual,
		OpIn, OpNotIn, OpArrayContains, OpArrayContainsAny:
		return true
	}
	return false
}

// IsResidualOp reports whether op must be evaluated in memory.
func IsResidualOp(op string) bool {
	return op == OpLike || op == OpNotLike
}
