package lexer

import (
	"testing"

	"github.com/shoyo-k/grackle/driver"
)

func testRules() []*Rule[string] {
	return []*Rule[string]{
		{Type: "id", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Type: "+", Pattern: `\+`},
		{Type: "*", Pattern: `\*`},
		{Pattern: `[ \t\n]+`, Skip: true},
	}
}

func TestRegexpLexer(t *testing.T) {
	rl, err := NewRegexpLexer(testRules(), "$")
	if err != nil {
		t.Fatal(err)
	}
	ts, err := rl.TokenStream([]byte("id1 + id2*x"))
	if err != nil {
		t.Fatal(err)
	}

	wants := []*driver.Token[string]{
		{Type: "id", Text: "id1", Offset: 0},
		{Type: "+", Text: "+", Offset: 4},
		{Type: "id", Text: "id2", Offset: 6},
		{Type: "*", Text: "*", Offset: 9},
		{Type: "id", Text: "x", Offset: 10},
		{Type: "$", Offset: 11, EOF: true},
	}
	for i, want := range wants {
		tok, err := ts.Next()
		if err != nil {
			t.Fatal(err)
		}
		if tok.Type != want.Type || tok.Text != want.Text || tok.Offset != want.Offset || tok.EOF != want.EOF {
			t.Fatalf("unexpected token %v; want: %+v, got: %+v", i, want, tok)
		}
	}

	// The EOF token repeats once the input is exhausted.
	tok, err := ts.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !tok.EOF {
		t.Fatalf("expected the EOF token again; got: %+v", tok)
	}
}

func TestRegexpLexerOnUnmatchedInput(t *testing.T) {
	rl, err := NewRegexpLexer(testRules(), "$")
	if err != nil {
		t.Fatal(err)
	}
	ts, err := rl.TokenStream([]byte("id1 %"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ts.Next(); err != nil {
		t.Fatal(err)
	}
	if _, err := ts.Next(); err == nil {
		t.Fatal("expected an error on unmatched input")
	}
}

func TestRegexpLexerNeedsRules(t *testing.T) {
	if _, err := NewRegexpLexer(nil, "$"); err == nil {
		t.Fatal("expected an error for an empty rule set")
	}
}
