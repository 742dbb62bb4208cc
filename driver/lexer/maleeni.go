package lexer

import (
	"fmt"
	"io"

	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"

	"github.com/shoyo-k/grackle/driver"
)

// MaleeniOption configures a maleeni-backed token stream.
type MaleeniOption[T comparable] func(s *maleeniStream[T])

// SkipKinds suppresses tokens of the named lexical kinds. They consume input
// but never reach the parser.
func SkipKinds[T comparable](kinds ...string) MaleeniOption[T] {
	return func(s *maleeniStream[T]) {
		for _, k := range kinds {
			s.skip[k] = struct{}{}
		}
	}
}

// NewMaleeniStream adapts a maleeni lexer to a token stream. kinds maps each
// lexical kind name of the compiled spec to the token type it produces.
func NewMaleeniStream[T comparable](clspec *mlspec.CompiledLexSpec, src io.Reader, kinds map[string]T, eofType T, opts ...MaleeniOption[T]) (driver.TokenStream[T], error) {
	d, err := mldriver.NewLexer(mldriver.NewLexSpec(clspec), src)
	if err != nil {
		return nil, err
	}

	s := &maleeniStream[T]{
		d:       d,
		clspec:  clspec,
		kinds:   kinds,
		eofType: eofType,
		skip:    map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type maleeniStream[T comparable] struct {
	d       *mldriver.Lexer
	clspec  *mlspec.CompiledLexSpec
	kinds   map[string]T
	eofType T
	skip    map[string]struct{}
	offset  int64
}

func (s *maleeniStream[T]) Next() (*driver.Token[T], error) {
	for {
		tok, err := s.d.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF {
			return &driver.Token[T]{
				Type:   s.eofType,
				Offset: s.offset,
				EOF:    true,
			}, nil
		}

		off := s.offset
		s.offset += int64(len(tok.Lexeme))

		if tok.Invalid {
			return nil, fmt.Errorf("no lexical rule matches the input at offset %v: %q", off, string(tok.Lexeme))
		}
		kind := s.clspec.KindNames[tok.KindID].String()
		if _, ok := s.skip[kind]; ok {
			continue
		}
		typ, ok := s.kinds[kind]
		if !ok {
			return nil, fmt.Errorf("the lexical kind %q has no token type", kind)
		}

		return &driver.Token[T]{
			Type:   typ,
			Text:   string(tok.Lexeme),
			Offset: off,
		}, nil
	}
}
