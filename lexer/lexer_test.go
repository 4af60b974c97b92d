package lexer

import (
	"testing"

	"decicalc/token"
)

func TestNextToken(t *testing.T) {
	input := `let sum = A1 + $B$2 * 3.5
if sum >= 10 && true
"a string\nwith escape"
// a comment
A1:B3`

	expected := []token.Token{
		{Type: token.IDENT, Literal: "let"},
		{Type: token.IDENT, Literal: "sum"},
		{Type: token.ASSIGN, Literal: "="},
		{Type: token.CELLREF, Literal: "A1"},
		{Type: token.PLUS, Literal: "+"},
		{Type: token.CELLREF, Literal: "$B$2"},
		{Type: token.ASTERISK, Literal: "*"},
		{Type: token.NUMBER, Literal: "3.5"},
		{Type: token.IF, Literal: "if"},
		{Type: token.IDENT, Literal: "sum"},
		{Type: token.GE, Literal: ">="},
		{Type: token.NUMBER, Literal: "10"},
		{Type: token.AND, Literal: "&&"},
		{Type: token.TRUE, Literal: "true"},
		{Type: token.STRING, Literal: "a string\nwith escape"},
		{Type: token.CELLREF, Literal: "A1"},
		{Type: token.COLON, Literal: ":"},
		{Type: token.CELLREF, Literal: "B3"},
		{Type: token.EOF, Literal: ""},
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want.Type {
			t.Fatalf("token %d: type got %q, want %q (literal %q)", i, tok.Type, want.Type, tok.Literal)
		}
		if tok.Literal != want.Literal {
			t.Fatalf("token %d: literal got %q, want %q", i, tok.Literal, want.Literal)
		}
	}
}

func TestCellRefDoesNotSwallowTrailingIdentifier(t *testing.T) {
	l := New("A1x")
	tok := l.NextToken()
	if tok.Type != token.IDENT || tok.Literal != "A1x" {
		t.Errorf("expected a single IDENT A1x, got %s %q", tok.Type, tok.Literal)
	}
	if next := l.NextToken(); next.Type != token.EOF {
		t.Errorf("expected EOF after A1x, got %s %q", next.Type, next.Literal)
	}
}

func TestBareDollarWithoutCellRefIsIllegal(t *testing.T) {
	l := New("$")
	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Errorf("expected ILLEGAL for a lone '$', got %s", tok.Type)
	}
}

func TestLineCommentSkipped(t *testing.T) {
	l := New("1 // trailing comment\n2")
	first := l.NextToken()
	second := l.NextToken()
	if first.Literal != "1" || second.Literal != "2" {
		t.Errorf("comment not skipped: got %q, %q", first.Literal, second.Literal)
	}
}
