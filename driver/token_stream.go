package driver

import (
	"fmt"

	"github.com/shoyo-k/grackle/grammar"
)

// Token is a lexeme produced by a lexical analyzer. A stream is terminated by
// a single token whose EOF flag is set; that token carries no text.
type Token[T comparable] struct {
	Type   T
	Text   string
	Offset int64
	EOF    bool
}

// TokenStream produces a finite sequence of tokens terminated by an EOF
// token. Tokens suppressed by the lexer never appear in the stream.
type TokenStream[T comparable] interface {
	Next() (*Token[T], error)
}

// TokenDefinition maps a token type to the terminal used in productions.
// Lookup is by exact equality of the token type.
type TokenDefinition[T comparable] struct {
	tokenType T
	terminal  grammar.Element[T]
}

func NewTokenDefinition[T comparable](tokenType T, terminal grammar.Element[T]) (*TokenDefinition[T], error) {
	if !terminal.IsTerminal() {
		return nil, fmt.Errorf("a token definition needs a terminal; passed: %v", terminal)
	}
	if terminal.Negated() {
		return nil, fmt.Errorf("a token definition cannot map to a negated terminal; passed: %v", terminal)
	}
	return &TokenDefinition[T]{
		tokenType: tokenType,
		terminal:  terminal,
	}, nil
}

func (d *TokenDefinition[T]) TokenType() T {
	return d.tokenType
}

func (d *TokenDefinition[T]) Terminal() grammar.Element[T] {
	return d.terminal
}
