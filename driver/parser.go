package driver

import (
	"fmt"
	"strings"

	"github.com/shoyo-k/grackle/grammar"
)

// UnknownTokenError reports a token whose type has no matching terminal.
// The parse stack is left as it was before the token was read.
type UnknownTokenError[T comparable] struct {
	Token *Token[T]
}

func (e *UnknownTokenError[T]) Error() string {
	return fmt.Sprintf("unknown token type %v at offset %v", e.Token.Type, e.Token.Offset)
}

// ParseError reports an empty or conflicted ACTION cell for the current
// state and look-ahead.
type ParseError[T comparable] struct {
	State      int
	Lookahead  grammar.Element[T]
	Token      *Token[T]
	Conflicted bool
	Expected   []string
}

func (e *ParseError[T]) Error() string {
	var b strings.Builder
	if e.Conflicted {
		fmt.Fprintf(&b, "conflicted parsing table cell")
	} else {
		fmt.Fprintf(&b, "unexpected token")
	}
	fmt.Fprintf(&b, "; state: %v, look-ahead: %v, offset: %v", e.State, e.Lookahead, e.Token.Offset)
	if len(e.Expected) > 0 {
		fmt.Fprintf(&b, "; expected: %v", strings.Join(e.Expected, ", "))
	}
	return b.String()
}

type parserOption[T comparable] func(p *Parser[T]) error

// WithTreeBuilder replaces the default CST builder.
func WithTreeBuilder[T comparable](b TreeBuilder[T]) parserOption[T] {
	return func(p *Parser[T]) error {
		if b == nil {
			return fmt.Errorf("a tree builder must be non-nil")
		}
		p.builder = b
		return nil
	}
}

type stackFrame struct {
	state int
	node  TreeNode
}

// Parser drives a parsing table against a token stream and materializes a
// syntax tree. A Parser holds the parse stack of a single call to Parse and
// must not be shared.
type Parser[T comparable] struct {
	tab     *grammar.ParsingTable[T]
	ts      TokenStream[T]
	defs    map[T]grammar.Element[T]
	builder TreeBuilder[T]
	stack   []stackFrame
}

func NewParser[T comparable](tab *grammar.ParsingTable[T], ts TokenStream[T], defs []*TokenDefinition[T], opts ...parserOption[T]) (*Parser[T], error) {
	if tab == nil {
		return nil, fmt.Errorf("a parsing table must be non-nil")
	}
	if ts == nil {
		return nil, fmt.Errorf("a token stream must be non-nil")
	}

	defIdx := make(map[T]grammar.Element[T], len(defs))
	for _, d := range defs {
		if _, ok := defIdx[d.tokenType]; ok {
			return nil, fmt.Errorf("duplicate token definition: %v", d.tokenType)
		}
		defIdx[d.tokenType] = d.terminal
	}

	p := &Parser[T]{
		tab:     tab,
		ts:      ts,
		defs:    defIdx,
		builder: NewCSTBuilder[T](),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Parse consumes the token stream to its EOF token and returns the root of
// the syntax tree. It fails on the first empty or conflicted ACTION cell.
func (p *Parser[T]) Parse() (TreeNode, error) {
	p.stack = p.stack[:0]
	p.push(p.tab.InitialState(), nil)

	tok, term, err := p.nextToken()
	if err != nil {
		return nil, err
	}

	for {
		acts := p.tab.Action(p.top().state, term)
		switch {
		case len(acts) == 0:
			return nil, p.parseError(term, tok, false)
		case len(acts) > 1:
			return nil, p.parseError(term, tok, true)
		}

		act := acts[0]
		switch act.Type {
		case grammar.ActionTypeShift:
			p.push(act.Next, p.builder.TerminalNode(term, tok))

			tok, term, err = p.nextToken()
			if err != nil {
				return nil, err
			}
		case grammar.ActionTypeReduce:
			if err := p.reduce(act.Prod); err != nil {
				return nil, err
			}
		case grammar.ActionTypeAccept:
			return p.top().node, nil
		default:
			return nil, fmt.Errorf("invalid action type: %v", act.Type)
		}
	}
}

// nextToken reads one token and maps its type to a terminal. An EOF token
// maps to the table's end-of-input terminal; any other unregistered type is
// an unknown-input failure.
func (p *Parser[T]) nextToken() (*Token[T], grammar.Element[T], error) {
	tok, err := p.ts.Next()
	if err != nil {
		return nil, grammar.Element[T]{}, err
	}
	if tok.EOF {
		return tok, p.tab.EOF(), nil
	}
	term, ok := p.defs[tok.Type]
	if !ok {
		return nil, grammar.Element[T]{}, &UnknownTokenError[T]{
			Token: tok,
		}
	}
	return tok, term, nil
}

// reduce pops the RHS of prod, assembles the kept children into a new node,
// and pushes the GOTO target.
func (p *Parser[T]) reduce(prod *grammar.Production[T]) error {
	n := prod.RHSLen()
	if len(p.stack) <= n {
		return fmt.Errorf("the parse stack is shallower than the RHS of %v", prod)
	}

	frames := p.stack[len(p.stack)-n:]
	var children []TreeNode
	for i, e := range prod.RHS() {
		if e.Keep() {
			children = append(children, frames[i].node)
		}
	}
	p.pop(n)

	next, ok := p.tab.GoTo(p.top().state, prod.LHS())
	if !ok {
		return fmt.Errorf("GOTO is not registered; state: %v, non-terminal: %v", p.top().state, prod.LHS())
	}
	p.push(next, p.builder.NonTerminalNode(prod, children))
	return nil
}

func (p *Parser[T]) parseError(term grammar.Element[T], tok *Token[T], conflicted bool) error {
	var expected []string
	for _, e := range p.tab.ExpectedTerminals(p.top().state) {
		expected = append(expected, e.String())
	}
	return &ParseError[T]{
		State:      p.top().state,
		Lookahead:  term,
		Token:      tok,
		Conflicted: conflicted,
		Expected:   expected,
	}
}

func (p *Parser[T]) push(state int, node TreeNode) {
	p.stack = append(p.stack, stackFrame{
		state: state,
		node:  node,
	})
}

func (p *Parser[T]) pop(n int) {
	p.stack = p.stack[:len(p.stack)-n]
}

func (p *Parser[T]) top() stackFrame {
	return p.stack[len(p.stack)-1]
}
