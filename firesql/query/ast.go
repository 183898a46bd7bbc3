// Package query defines the abstract statement model produced by the
// parser and consumed by the planner. Nodes are plain records; nothing
// downstream re-inspects source text.
package query

import (
	"fmt"
	"strings"
)

// LiteralKind tags a literal value with its parsed origin so the
// executor can decide pushdown eligibility.
type LiteralKind int

const (
	LiteralNull LiteralKind = iota
	LiteralBool
	LiteralInt
	LiteralFloat
	LiteralString
)

// Literal is a typed literal parsed from statement text.
type Literal struct {
	Kind  LiteralKind
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

// Native returns the literal as a plain Go value. ISO-8601 string
// promotion to timestamps happens at the use sites (predicates and
// insert/update value lists), not here.
func (l Literal) Native() interface{} {
	switch l.Kind {
	case LiteralBool:
		return l.Bool
	case LiteralInt:
		return l.Int
	case LiteralFloat:
		return l.Float
	case LiteralString:
		return l.Str
	default:
		return nil
	}
}

func (l Literal) String() string {
	switch l.Kind {
	case LiteralBool:
		return fmt.Sprintf("%t", l.Bool)
	case LiteralInt:
		return fmt.Sprintf("%d", l.Int)
	case LiteralFloat:
		return fmt.Sprintf("%v", l.Float)
	case LiteralString:
		return fmt.Sprintf("%q", l.Str)
	default:
		return "null"
	}
}

// BoolLit, IntLit, FloatLit, StringLit and NullLit construct literals.
func BoolLit(b bool) Literal      { return Literal{Kind: LiteralBool, Bool: b} }
func IntLit(i int64) Literal      { return Literal{Kind: LiteralInt, Int: i} }
func FloatLit(f float64) Literal  { return Literal{Kind: LiteralFloat, Float: f} }
func StringLit(s string) Literal  { return Literal{Kind: LiteralString, Str: s} }
func NullLit() Literal            { return Literal{Kind: LiteralNull} }

// ColumnRef is a (table?, column, aggFunc?) triple. Table may be an
// alias or a collection name; empty means the statement's default
// (first) collection. Column may be "*", a plain name, or a dotted
// path addressing nested sub-fields. Func is the lowercase aggregation
// function name, empty when the column is not aggregated.
type ColumnRef struct {
	Table  string
	Column string
	Func   string
}

func (c ColumnRef) String() string {
	name := c.Column
	if c.Table != "" {
		name = c.Table + "." + c.Column
	}
	if c.Func != "" {
		return c.Func + "(" + name + ")"
	}
	return name
}

// SelectFrom binds a collection to an alias within a statement. Alias
// defaults to the collection name.
type SelectFrom struct {
	Collection string
	Alias      string
}

// Expr is a node in a WHERE expression tree. Leaves are binary
// comparisons whose left side is a column reference; interior nodes
// are and/or combinations, left-leaning.
type Expr interface {
	exprNode()
	String() string
}

// BinaryExpr is {op, left, right}. For comparison leaves, Left is a
// *ColumnRefExpr and Right is a *LiteralExpr, *ListExpr, or
// *ColumnRefExpr. IS NULL lowers to "== null literal"; IS NOT NULL
// lowers to `!= ""` because the store cannot express != null.
type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

// ColumnRefExpr wraps a column reference as an expression operand.
type ColumnRefExpr struct {
	Ref ColumnRef
}

// LiteralExpr wraps a literal as an expression operand.
type LiteralExpr struct {
	Value Literal
}

// ListExpr is a parenthesized literal list, the right side of IN,
// NOT IN and ARRAY_CONTAINS_ANY.
type ListExpr struct {
	Values []Literal
}

func (*BinaryExpr) exprNode()    {}
func (*ColumnRefExpr) exprNode() {}
func (*LiteralExpr) exprNode()   {}
func (*ListExpr) exprNode()      {}

func (e *BinaryExpr) String() string {
	right := "null"
	if e.Right != nil {
		right = e.Right.String()
	}
	return fmt.Sprintf("(%s %s %s)", e.Left.String(), e.Op, right)
}

func (e *ColumnRefExpr) String() string { return e.Ref.String() }
func (e *LiteralExpr) String() string   { return e.Value.String() }

func (e *ListExpr) String() string {
	parts := make([]string, len(e.Values))
	for i, v := range e.Values {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// JoinExpr is a single inner equi-join between two collections. On is
// an equality between two qualified column references.
type JoinExpr struct {
	Left  SelectFrom
	Right SelectFrom
	On    *BinaryExpr
}

// Statement is the union of the four statement forms. The executor
// dispatches on the concrete type in a single switch.
type Statement interface {
	stmtNode()
}

// Select is SELECT columns FROM froms [WHERE expr]. Join is non-nil
// when the FROM clause is a join; Froms carries the plain list
// otherwise.
type Select struct {
	Columns []ColumnRef
	Froms   []SelectFrom
	Join    *JoinExpr
	Where   Expr
}

// Insert is INSERT INTO table (columns) VALUES (values).
type Insert struct {
	Table   SelectFrom
	Columns []ColumnRef
	Values  []Literal
}

// Assignment is one column = literal pair in an UPDATE SET clause.
// Copy-from-column assignments are not supported.
type Assignment struct {
	Column string
	Value  Literal
}

// Update is UPDATE table SET assignments [WHERE expr].
type Update struct {
	Table SelectFrom
	Sets  []Assignment
	Where Expr
}

// Delete is DELETE FROM table [WHERE expr].
type Delete struct {
	Table SelectFrom
	Where Expr
}

func (*Select) stmtNode() {}
func (*Insert) stmtNode() {}
func (*Update) stmtNode() {}
func (*Delete) stmtNode() {}
