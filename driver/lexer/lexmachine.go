// Package lexer provides token-stream implementations feeding the parser:
// a regex-driven tokenizer built on lexmachine and an adapter for
// maleeni-generated lexers.
package lexer

import (
	"fmt"

	lex "github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/shoyo-k/grackle/driver"
)

// Rule declares one lexical rule: the token type it produces and the regular
// expression it matches. A skip rule consumes input without emitting a token.
type Rule[T comparable] struct {
	Type    T
	Pattern string
	Skip    bool
}

// RegexpLexer compiles a rule set into a DFA once; token streams over
// individual inputs are then cheap to create. Earlier rules win ties, and the
// longest match wins overall, following lexmachine semantics.
type RegexpLexer[T comparable] struct {
	lexer   *lex.Lexer
	types   []T
	eofType T
}

func NewRegexpLexer[T comparable](rules []*Rule[T], eofType T) (*RegexpLexer[T], error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("a lexer needs at least one rule")
	}

	rl := &RegexpLexer[T]{
		lexer:   lex.NewLexer(),
		eofType: eofType,
	}
	for _, rule := range rules {
		if rule.Skip {
			rl.lexer.Add([]byte(rule.Pattern), skipToken)
			continue
		}
		id := len(rl.types)
		rl.types = append(rl.types, rule.Type)
		rl.lexer.Add([]byte(rule.Pattern), makeToken(id))
	}
	if err := rl.lexer.Compile(); err != nil {
		return nil, fmt.Errorf("failed to compile the lexical rules: %w", err)
	}

	return rl, nil
}

func makeToken(id int) lex.Action {
	return func(s *lex.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}

func skipToken(s *lex.Scanner, m *machines.Match) (interface{}, error) {
	return nil, nil
}

// TokenStream tokenizes input. The stream ends with an EOF token positioned
// one past the last byte.
func (rl *RegexpLexer[T]) TokenStream(input []byte) (driver.TokenStream[T], error) {
	s, err := rl.lexer.Scanner(input)
	if err != nil {
		return nil, err
	}
	return &regexpStream[T]{
		scanner: s,
		types:   rl.types,
		eofType: rl.eofType,
		size:    int64(len(input)),
	}, nil
}

type regexpStream[T comparable] struct {
	scanner *lex.Scanner
	types   []T
	eofType T
	size    int64
	done    bool
}

func (s *regexpStream[T]) Next() (*driver.Token[T], error) {
	if s.done {
		return s.eofToken(), nil
	}

	tok, err, eos := s.scanner.Next()
	if eos {
		s.done = true
		return s.eofToken(), nil
	}
	if err != nil {
		if ui, ok := err.(*machines.UnconsumedInput); ok {
			return nil, fmt.Errorf("no lexical rule matches the input at offset %v", ui.StartTC)
		}
		return nil, err
	}

	t := tok.(*lex.Token)
	return &driver.Token[T]{
		Type:   s.types[t.Type],
		Text:   string(t.Lexeme),
		Offset: int64(t.TC),
	}, nil
}

func (s *regexpStream[T]) eofToken() *driver.Token[T] {
	return &driver.Token[T]{
		Type:   s.eofType,
		Offset: s.size,
		EOF:    true,
	}
}
