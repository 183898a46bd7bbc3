// Package parser turns statement text into the abstract statement
// model. The surface is SQL-like: SELECT / INSERT / UPDATE / DELETE
// with a restricted expression grammar matching the operators the
// document store can evaluate, plus LIKE handled in memory.
package parser

import (
	"strconv"
	"strings"

	"github.com/bennycheung/PyFireSQL/firesql"
	"github.com/bennycheung/PyFireSQL/firesql/query"
)

// aggregationFuncs are the recognized aggregation prefixes.
var aggregationFuncs = map[string]bool{
	"count": true,
	"sum":   true,
	"avg":   true,
	"min":   true,
	"max":   true,
}

// reservedWords cannot be used as aliases.
var reservedWords = map[string]bool{
	"select": true, "from": true, "where": true, "join": true, "on": true,
	"and": true, "or": true, "not": true, "like": true, "in": true,
	"is": true, "null": true, "insert": true, "into": true, "values": true,
	"update": true, "set": true, "delete": true,
	"array_contains": true, "array_contains_any": true,
}

// Parse parses a single statement.
func Parse(input string) (query.Statement, error) {
	tokens, err := NewLexer(input).Lex()
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, firesql.NewParseError(tok.Pos, "unexpected trailing input %s", tok)
	}
	return stmt, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

// peekKeyword reports whether the next token is the given keyword,
// case-insensitively.
func (p *parser) peekKeyword(kw string) bool {
	tok := p.peek()
	return tok.Type == TokenIdent && strings.EqualFold(tok.Value, kw)
}

// expectKeyword consumes the given keyword or fails.
func (p *parser) expectKeyword(kw string) error {
	tok := p.peek()
	if !p.peekKeyword(kw) {
		return firesql.NewParseError(tok.Pos, "expected %s, got %s", strings.ToUpper(kw), tok)
	}
	p.next()
	return nil
}

// expect consumes a token of the given type or fails.
func (p *parser) expect(t TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != t {
		return Token{}, firesql.NewParseError(tok.Pos, "expected %s, got %s", t, tok)
	}
	return p.next(), nil
}

func (p *parser) parseStatement() (query.Statement, error) {
	tok := p.peek()
	if tok.Type != TokenIdent {
		return nil, firesql.NewParseError(tok.Pos, "expected statement, got %s", tok)
	}
	switch strings.ToLower(tok.Value) {
	case "select":
		return p.parseSelect()
	case "insert":
		return p.parseInsert()
	case "update":
		return p.parseUpdate()
	case "delete":
		return p.parseDelete()
	default:
		return nil, firesql.NewParseError(tok.Pos, "unknown statement %q", tok.Value)
	}
}

// parseSelect parses SELECT columns FROM from_list [WHERE expr].
func (p *parser) parseSelect() (*query.Select, error) {
	if err := p.expectKeyword("select"); err != nil {
		return nil, err
	}

	columns, err := p.parseColumnList()
	if err != nil {
		return nil, err
	}

	if err := p.expectKeyword("from"); err != nil {
		return nil, err
	}

	sel := &query.Select{Columns: columns}

	first, err := p.parseFrom()
	if err != nil {
		return nil, err
	}

	if p.peekKeyword("join") {
		p.next()
		right, err := p.parseFrom()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("on"); err != nil {
			return nil, err
		}
		on, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		sel.Join = &query.JoinExpr{Left: first, Right: right, On: on}
	} else {
		sel.Froms = []query.SelectFrom{first}
		for p.peek().Type == TokenComma {
			p.next()
			from, err := p.parseFrom()
			if err != nil {
				return nil, err
			}
			sel.Froms = append(sel.Froms, from)
		}
	}

	if p.peekKeyword("where") {
		p.next()
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		sel.Where = where
	}

	return sel, nil
}

// parseInsert parses INSERT INTO table (columns) VALUES (values).
func (p *parser) parseInsert() (*query.Insert, error) {
	if err := p.expectKeyword("insert"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("into"); err != nil {
		return nil, err
	}

	table, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	ins := &query.Insert{
		Table: query.SelectFrom{Collection: table.Value, Alias: table.Value},
	}

	if _, err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}
	for {
		col, err := p.parseColumn()
		if err != nil {
			return nil, err
		}
		if col.Func != "" {
			return nil, firesql.NewParseError(p.peek().Pos, "aggregation not allowed in INSERT columns")
		}
		ins.Columns = append(ins.Columns, col)
		if p.peek().Type != TokenComma {
			break
		}
		p.next()
	}
	if _, err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}

	if err := p.expectKeyword("values"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}
	for {
		val, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		ins.Values = append(ins.Values, val)
		if p.peek().Type != TokenComma {
			break
		}
		p.next()
	}
	if _, err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}

	return ins, nil
}

// parseUpdate parses UPDATE table SET assignments [WHERE expr].
func (p *parser) parseUpdate() (*query.Update, error) {
	if err := p.expectKeyword("update"); err != nil {
		return nil, err
	}

	table, err := p.parseFrom()
	if err != nil {
		return nil, err
	}
	upd := &query.Update{Table: table}

	if err := p.expectKeyword("set"); err != nil {
		return nil, err
	}
	for {
		assign, err := p.parseAssignment(table)
		if err != nil {
			return nil, err
		}
		upd.Sets = append(upd.Sets, assign)
		if p.peek().Type != TokenComma {
			break
		}
		p.next()
	}

	if p.peekKeyword("where") {
		p.next()
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		upd.Where = where
	}

	return upd, nil
}

// parseDelete parses DELETE FROM table [WHERE expr].
func (p *parser) parseDelete() (*query.Delete, error) {
	if err := p.expectKeyword("delete"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("from"); err != nil {
		return nil, err
	}

	table, err := p.parseFrom()
	if err != nil {
		return nil, err
	}
	del := &query.Delete{Table: table}

	if p.peekKeyword("where") {
		p.next()
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		del.Where = where
	}

	return del, nil
}

// parseFrom parses a from specifier: collection name with an optional
// alias. The alias defaults to the collection name.
func (p *parser) parseFrom() (query.SelectFrom, error) {
	name, err := p.expect(TokenIdent)
	if err != nil {
		return query.SelectFrom{}, err
	}
	from := query.SelectFrom{Collection: name.Value, Alias: name.Value}

	tok := p.peek()
	if tok.Type == TokenIdent && !reservedWords[strings.ToLower(tok.Value)] {
		from.Alias = p.next().Value
	}
	return from, nil
}

func (p *parser) parseColumnList() ([]query.ColumnRef, error) {
	var columns []query.ColumnRef
	for {
		col, err := p.parseColumn()
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
		if p.peek().Type != TokenComma {
			break
		}
		p.next()
	}
	return columns, nil
}

// parseColumn parses "*", a possibly qualified column name, or an
// aggregation AGG(col).
func (p *parser) parseColumn() (query.ColumnRef, error) {
	tok := p.peek()
	if tok.Type == TokenStar {
		p.next()
		return query.ColumnRef{Column: "*"}, nil
	}
	if tok.Type != TokenIdent {
		return query.ColumnRef{}, firesql.NewParseError(tok.Pos, "expected column, got %s", tok)
	}

	fn := strings.ToLower(tok.Value)
	if aggregationFuncs[fn] && p.tokens[p.pos+1].Type == TokenLeftParen {
		p.next() // function name
		p.next() // (
		inner, err := p.parseColumn()
		if err != nil {
			return query.ColumnRef{}, err
		}
		if inner.Func != "" {
			return query.ColumnRef{}, firesql.NewParseError(tok.Pos, "nested aggregation %s", tok.Value)
		}
		if _, err := p.expect(TokenRightParen); err != nil {
			return query.ColumnRef{}, err
		}
		inner.Func = fn
		return inner, nil
	}

	parts, err := p.parseNameParts()
	if err != nil {
		return query.ColumnRef{}, err
	}
	return columnFromParts(parts), nil
}

// parseNameParts parses IDENT ("." IDENT)*.
func (p *parser) parseNameParts() ([]string, error) {
	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	parts := []string{name.Value}
	for p.peek().Type == TokenDot {
		p.next()
		next, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		parts = append(parts, next.Value)
	}
	return parts, nil
}

// columnFromParts builds a ColumnRef from dotted name parts. A single
// part is an unqualified column; more parts put the first into Table
// and the rest into a dotted column path. The planner decides whether
// the first part is really an alias or the head of a nested path.
func columnFromParts(parts []string) query.ColumnRef {
	if len(parts) == 1 {
		return query.ColumnRef{Column: parts[0]}
	}
	return query.ColumnRef{Table: parts[0], Column: strings.Join(parts[1:], ".")}
}

// parseAssignment parses one column = literal pair of a SET clause.
// A leading qualifier equal to the table name or alias is stripped.
func (p *parser) parseAssignment(table query.SelectFrom) (query.Assignment, error) {
	parts, err := p.parseNameParts()
	if err != nil {
		return query.Assignment{}, err
	}
	column := strings.Join(parts, ".")
	if len(parts) > 1 && (parts[0] == table.Collection || parts[0] == table.Alias) {
		column = strings.Join(parts[1:], ".")
	}

	op, err := p.expect(TokenOperator)
	if err != nil {
		return query.Assignment{}, err
	}
	if op.Value != "==" {
		return query.Assignment{}, firesql.NewParseError(op.Pos, "expected = in SET clause, got %q", op.Value)
	}

	val, err := p.parseLiteral()
	if err != nil {
		return query.Assignment{}, err
	}
	return query.Assignment{Column: column, Value: val}, nil
}

// parseExpr parses a boolean expression. OR binds loosest, then AND;
// both associate to the left.
func (p *parser) parseExpr() (query.Expr, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for p.peekKeyword("or") {
		p.next()
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		left = &query.BinaryExpr{Op: firesql.OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAndExpr() (query.Expr, error) {
	left, err := p.parsePrimaryExpr()
	if err != nil {
		return nil, err
	}
	for p.peekKeyword("and") {
		p.next()
		right, err := p.parsePrimaryExpr()
		if err != nil {
			return nil, err
		}
		left = &query.BinaryExpr{Op: firesql.OpAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parsePrimaryExpr() (query.Expr, error) {
	if p.peek().Type == TokenLeftParen {
		p.next()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return p.parseComparison()
}

// parseComparison parses a single comparison leaf.
func (p *parser) parseComparison() (*query.BinaryExpr, error) {
	parts, err := p.parseNameParts()
	if err != nil {
		return nil, err
	}
	left := &query.ColumnRefExpr{Ref: columnFromParts(parts)}

	tok := p.peek()
	switch {
	case tok.Type == TokenOperator:
		p.next()
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return &query.BinaryExpr{Op: tok.Value, Left: left, Right: right}, nil

	case p.peekKeyword("is"):
		p.next()
		if p.peekKeyword("not") {
			p.next()
			if err := p.expectKeyword("null"); err != nil {
				return nil, err
			}
			// The store cannot express != null; compare against the
			// empty string instead. This conflates absent fields with
			// empty strings but matches the store's predicate set.
			return &query.BinaryExpr{
				Op:    firesql.OpNotEqual,
				Left:  left,
				Right: &query.LiteralExpr{Value: query.StringLit("")},
			}, nil
		}
		if err := p.expectKeyword("null"); err != nil {
			return nil, err
		}
		return &query.BinaryExpr{
			Op:    firesql.OpEqual,
			Left:  left,
			Right: &query.LiteralExpr{Value: query.NullLit()},
		}, nil

	case p.peekKeyword("like"):
		p.next()
		pattern, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &query.BinaryExpr{Op: firesql.OpLike, Left: left, Right: &query.LiteralExpr{Value: pattern}}, nil

	case p.peekKeyword("not"):
		p.next()
		switch {
		case p.peekKeyword("like"):
			p.next()
			pattern, err := p.parseLiteral()
			if err != nil {
				return nil, err
			}
			return &query.BinaryExpr{Op: firesql.OpNotLike, Left: left, Right: &query.LiteralExpr{Value: pattern}}, nil
		case p.peekKeyword("in"):
			p.next()
			list, err := p.parseLiteralList()
			if err != nil {
				return nil, err
			}
			return &query.BinaryExpr{Op: firesql.OpNotIn, Left: left, Right: list}, nil
		default:
			return nil, firesql.NewParseError(p.peek().Pos, "expected LIKE or IN after NOT")
		}

	case p.peekKeyword("in"):
		p.next()
		list, err := p.parseLiteralList()
		if err != nil {
			return nil, err
		}
		return &query.BinaryExpr{Op: firesql.OpIn, Left: left, Right: list}, nil

	case p.peekKeyword("array_contains"):
		p.next()
		val, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &query.BinaryExpr{Op: firesql.OpArrayContains, Left: left, Right: &query.LiteralExpr{Value: val}}, nil

	case p.peekKeyword("array_contains_any"):
		p.next()
		list, err := p.parseLiteralList()
		if err != nil {
			return nil, err
		}
		return &query.BinaryExpr{Op: firesql.OpArrayContainsAny, Left: left, Right: list}, nil

	default:
		return nil, firesql.NewParseError(tok.Pos, "expected comparison operator, got %s", tok)
	}
}

// parseOperand parses the right side of a comparison: a literal or a
// column reference (the latter only meaningful inside JOIN ... ON).
func (p *parser) parseOperand() (query.Expr, error) {
	tok := p.peek()
	if tok.Type == TokenIdent && !isLiteralKeyword(tok.Value) {
		parts, err := p.parseNameParts()
		if err != nil {
			return nil, err
		}
		return &query.ColumnRefExpr{Ref: columnFromParts(parts)}, nil
	}
	val, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return &query.LiteralExpr{Value: val}, nil
}

// parseLiteralList parses ( literal ("," literal)* ).
func (p *parser) parseLiteralList() (*query.ListExpr, error) {
	if _, err := p.expect(TokenLeftParen); err != nil {
		return nil, err
	}
	list := &query.ListExpr{}
	for {
		val, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		list.Values = append(list.Values, val)
		if p.peek().Type != TokenComma {
			break
		}
		p.next()
	}
	if _, err := p.expect(TokenRightParen); err != nil {
		return nil, err
	}
	return list, nil
}

func (p *parser) parseLiteral() (query.Literal, error) {
	tok := p.peek()
	switch tok.Type {
	case TokenString:
		p.next()
		return query.StringLit(tok.Value), nil

	case TokenNumber:
		p.next()
		if strings.Contains(tok.Value, ".") {
			f, err := strconv.ParseFloat(tok.Value, 64)
			if err != nil {
				return query.Literal{}, firesql.NewParseError(tok.Pos, "malformed number %q", tok.Value)
			}
			return query.FloatLit(f), nil
		}
		i, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return query.Literal{}, firesql.NewParseError(tok.Pos, "malformed number %q", tok.Value)
		}
		return query.IntLit(i), nil

	case TokenIdent:
		switch strings.ToLower(tok.Value) {
		case "true":
			p.next()
			return query.BoolLit(true), nil
		case "false":
			p.next()
			return query.BoolLit(false), nil
		case "null":
			p.next()
			return query.NullLit(), nil
		}
	}
	return query.Literal{}, firesql.NewParseError(tok.Pos, "expected literal, got %s", tok)
}

func isLiteralKeyword(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false", "null":
		return true
	}
	return false
}
