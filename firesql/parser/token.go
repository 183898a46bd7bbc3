package parser

import "fmt"

// TokenType identifies a lexical token class.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenString
	TokenNumber
	TokenStar
	TokenComma
	TokenDot
	TokenLeftParen
	TokenRightParen
	TokenOperator // = == != <> < <= > >=
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenIdent:
		return "identifier"
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	case TokenStar:
		return "*"
	case TokenComma:
		return ","
	case TokenDot:
		return "."
	case TokenLeftParen:
		return "("
	case TokenRightParen:
		return ")"
	case TokenOperator:
		return "operator"
	default:
		return fmt.Sprintf("token(%d)", int(t))
	}
}

// Token is a single lexical token. Pos is the byte offset into the
// statement text, reported in parse errors.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

func (t Token) String() string {
	if t.Value == "" {
		return t.Type.String()
	}
	return fmt.Sprintf("%s %q", t.Type, t.Value)
}
