package parser

import (
	"strings"
	"unicode"

	"github.com/bennycheung/PyFireSQL/firesql"
)

// Lexer tokenizes a statement
type Lexer struct {
	input  string
	pos    int
	tokens []Token
}

// NewLexer creates a new lexer for the given statement text
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Lex tokenizes the entire input
func (l *Lexer) Lex() ([]Token, error) {
	for l.pos < len(l.input) {
		l.skipWhitespace()
		if l.pos >= len(l.input) {
			break
		}

		start := l.pos
		ch := l.peek()

		switch {
		case ch == '"' || ch == '\'':
			str, err := l.readString(ch)
			if err != nil {
				return nil, err
			}
			l.emit(TokenString, str, start)

		case ch == '*':
			l.pos++
			l.emit(TokenStar, "*", start)

		case ch == ',':
			l.pos++
			l.emit(TokenComma, ",", start)

		case ch == '.':
			l.pos++
			l.emit(TokenDot, ".", start)

		case ch == '(':
			l.pos++
			l.emit(TokenLeftParen, "(", start)

		case ch == ')':
			l.pos++
			l.emit(TokenRightParen, ")", start)

		case ch == '=':
			l.pos++
			if l.peek() == '=' {
				l.pos++
			}
			l.emit(TokenOperator, "==", start)

		case ch == '!':
			l.pos++
			if l.peek() != '=' {
				return nil, firesql.NewParseError(start, "unexpected character '!'")
			}
			l.pos++
			l.emit(TokenOperator, "!=", start)

		case ch == '<':
			l.pos++
			switch l.peek() {
			case '=':
				l.pos++
				l.emit(TokenOperator, "<=", start)
			case '>':
				l.pos++
				l.emit(TokenOperator, "!=", start)
			default:
				l.emit(TokenOperator, "<", start)
			}

		case ch == '>':
			l.pos++
			if l.peek() == '=' {
				l.pos++
				l.emit(TokenOperator, ">=", start)
			} else {
				l.emit(TokenOperator, ">", start)
			}

		case ch == '-' || unicode.IsDigit(rune(ch)):
			num, err := l.readNumber()
			if err != nil {
				return nil, err
			}
			l.emit(TokenNumber, num, start)

		case isIdentStart(ch):
			l.emit(TokenIdent, l.readIdent(), start)

		default:
			return nil, firesql.NewParseError(start, "unexpected character %q", string(ch))
		}
	}

	l.emit(TokenEOF, "", l.pos)
	return l.tokens, nil
}

func (l *Lexer) emit(t TokenType, value string, pos int) {
	l.tokens = append(l.tokens, Token{Type: t, Value: value, Pos: pos})
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(rune(l.input[l.pos])) {
		l.pos++
	}
}

// readString reads a quoted string, stripping the quotes and resolving
// backslash escapes. Both double and single quotes are accepted.
func (l *Lexer) readString(quote byte) (string, error) {
	start := l.pos
	l.pos++ // opening quote

	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch ch {
		case quote:
			l.pos++
			return sb.String(), nil
		case '\\':
			l.pos++
			if l.pos >= len(l.input) {
				return "", firesql.NewParseError(start, "unterminated string")
			}
			esc := l.input[l.pos]
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(esc)
			}
			l.pos++
		default:
			sb.WriteByte(ch)
			l.pos++
		}
	}
	return "", firesql.NewParseError(start, "unterminated string")
}

func (l *Lexer) readNumber() (string, error) {
	start := l.pos
	if l.peek() == '-' {
		l.pos++
	}
	digits := 0
	for l.pos < len(l.input) && unicode.IsDigit(rune(l.input[l.pos])) {
		l.pos++
		digits++
	}
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		// Only a fraction if digits follow; otherwise the dot belongs
		// to a qualified name and is left for the next token.
		if l.pos+1 < len(l.input) && unicode.IsDigit(rune(l.input[l.pos+1])) {
			l.pos++
			for l.pos < len(l.input) && unicode.IsDigit(rune(l.input[l.pos])) {
				l.pos++
			}
		}
	}
	if digits == 0 {
		return "", firesql.NewParseError(start, "malformed number")
	}
	return l.input[start:l.pos], nil
}

func (l *Lexer) readIdent() string {
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}
	return l.input[start:l.pos]
}

func isIdentStart(ch byte) bool {
	return ch == '_' || unicode.IsLetter(rune(ch))
}

func isIdentPart(ch byte) bool {
	return ch == '_' || unicode.IsLetter(rune(ch)) || unicode.IsDigit(rune(ch))
}
