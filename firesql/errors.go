package firesql

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an engine error for the wire format.
type ErrorKind string

const (
	// ParseError is a grammar failure; it carries the source offset.
	ParseError ErrorKind = "ParseError"
	// PlanError is a compile-time failure: unresolved alias or column,
	// an unsupported disjunction, or mixing aggregation and projection.
	PlanError ErrorKind = "PlanError"
	// StoreError is a transport or permission failure from the store.
	StoreError ErrorKind = "StoreError"
	// TypeError is a literal type incompatible with its operator.
	TypeError ErrorKind = "TypeError"
	// NotFound is a document id not present for a docid lookup.
	NotFound ErrorKind = "NotFound"
)

// Error is the structured error surfaced to callers: a kind plus a
// message, and a source offset for parse errors (-1 otherwise).
type Error struct {
	Kind    ErrorKind
	Message string
	Offset  int
}

func (e *Error) Error() string {
	if e.Kind == ParseError && e.Offset >= 0 {
		return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError creates an error of the given kind.
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Offset: -1}
}

// NewParseError creates a ParseError carrying the source offset.
func NewParseError(offset int, format string, args ...interface{}) *Error {
	return &Error{Kind: ParseError, Message: fmt.Sprintf(format, args...), Offset: offset}
}

// IsKind reports whether err is (or wraps) an Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
