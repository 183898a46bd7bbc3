package parser

import (
	"testing"

	"github.com/bennycheung/PyFireSQL/firesql"
)

func lex(t *testing.T, input string) []Token {
	t.Helper()
	tokens, err := NewLexer(input).Lex()
	if err != nil {
		t.Fatalf("Lex(%q) failed: %v", input, err)
	}
	return tokens
}

func TestLexOperatorNormalization(t *testing.T) {
	tests := []struct {
		input string
		value string
	}{
		{"=", "=="},
		{"==", "=="},
		{"!=", "!="},
		{"<>", "!="},
		{"<", "<"},
		{"<=", "<="},
		{">", ">"},
		{">=", ">="},
	}
	for _, tt := range tests {
		tokens := lex(t, tt.input)
		if tokens[0].Type != TokenOperator || tokens[0].Value != tt.value {
			t.Errorf("Lex(%q) = %v, want operator %q", tt.input, tokens[0], tt.value)
		}
	}
}

func TestLexStrings(t *testing.T) {
	tokens := lex(t, `'single' "double"`)
	if tokens[0].Value != "single" || tokens[0].Type != TokenString {
		t.Errorf("single-quoted string wrong: %v", tokens[0])
	}
	if tokens[1].Value != "double" {
		t.Errorf("double-quoted string wrong: %v", tokens[1])
	}

	tokens = lex(t, `'it\'s'`)
	if tokens[0].Value != "it's" {
		t.Errorf("escape not resolved: %q", tokens[0].Value)
	}
}

func TestLexUnterminatedString(t *testing.T) {
	_, err := NewLexer(`'oops`).Lex()
	if !firesql.IsKind(err, firesql.ParseError) {
		t.Errorf("expected ParseError, got %v", err)
	}
}

func TestLexNumbers(t *testing.T) {
	tokens := lex(t, "42 -7 3.14")
	for i, want := range []string{"42", "-7", "3.14"} {
		if tokens[i].Type != TokenNumber || tokens[i].Value != want {
			t.Errorf("token %d = %v, want number %q", i, tokens[i], want)
		}
	}
}

func TestLexDottedNameIsNotAFraction(t *testing.T) {
	// The dot after an identifier separates name parts; only a dot
	// inside digits makes a fraction.
	tokens := lex(t, "a.b")
	if len(tokens) != 4 { // ident dot ident eof
		t.Fatalf("unexpected tokens: %v", tokens)
	}
	if tokens[0].Type != TokenIdent || tokens[1].Type != TokenDot || tokens[2].Type != TokenIdent {
		t.Errorf("wrong token types: %v", tokens)
	}
}

func TestLexPositions(t *testing.T) {
	tokens := lex(t, "SELECT email")
	if tokens[0].Pos != 0 {
		t.Errorf("first token pos = %d", tokens[0].Pos)
	}
	if tokens[1].Pos != 7 {
		t.Errorf("second token pos = %d, want 7", tokens[1].Pos)
	}
}
