package grammar

import (
	"fmt"
	"strings"
)

// ProductionNum numbers productions in definition order. The number 0 is
// reserved for the augmented start production.
type ProductionNum int

const ProductionNumStart = ProductionNum(0)

func (n ProductionNum) Int() int {
	return int(n)
}

// productionID identifies a production by its full structural form.
type productionID string

func genProductionID[T comparable](lhs Element[T], rhs []Element[T]) productionID {
	var b strings.Builder
	writeElementID(&b, lhs)
	for _, e := range rhs {
		b.WriteByte(' ')
		writeElementID(&b, e)
	}
	return productionID(b.String())
}

// writeElementID renders the identity of an element, ignoring the keep flag.
func writeElementID[T comparable](b *strings.Builder, e Element[T]) {
	k := e.key()
	fmt.Fprintf(b, "%v\x1f%v\x1f%v\x1f%v\x1f%v", k.kind, k.value, k.name, k.eof, k.negated)
}

// Production is a context-free production lhs → rhs. An empty rhs denotes an
// epsilon production. Productions are immutable once registered in a grammar.
type Production[T comparable] struct {
	id  productionID
	num ProductionNum
	lhs Element[T]
	rhs []Element[T]
}

// NewProduction returns a production lhs → rhs. The lhs must be a
// non-terminal, and no element of rhs may be the nil element.
func NewProduction[T comparable](lhs Element[T], rhs ...Element[T]) (*Production[T], error) {
	if !lhs.IsNonTerminal() {
		return nil, fmt.Errorf("LHS must be a non-terminal; LHS: %v", lhs)
	}
	for _, e := range rhs {
		if e.IsNil() {
			return nil, fmt.Errorf("a symbol of RHS must be non-nil; LHS: %v, RHS: %v", lhs, rhs)
		}
	}

	return &Production[T]{
		id:  genProductionID(lhs, rhs),
		lhs: lhs,
		rhs: rhs,
	}, nil
}

// Num returns the production number assigned by the grammar. 0 is the
// augmented start production.
func (p *Production[T]) Num() ProductionNum {
	return p.num
}

func (p *Production[T]) LHS() Element[T] {
	return p.lhs
}

// RHS returns the right-hand side. Callers must not modify the result.
func (p *Production[T]) RHS() []Element[T] {
	return p.rhs
}

func (p *Production[T]) RHSLen() int {
	return len(p.rhs)
}

func (p *Production[T]) IsEmpty() bool {
	return len(p.rhs) == 0
}

// Equal reports value equality over the LHS and the RHS sequence.
func (p *Production[T]) Equal(q *Production[T]) bool {
	return q != nil && p.id == q.id
}

func (p *Production[T]) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v →", p.lhs)
	if len(p.rhs) == 0 {
		b.WriteString(" ε")
	}
	for _, e := range p.rhs {
		fmt.Fprintf(&b, " %v", e)
	}
	return b.String()
}

// productionSet registers productions, assigns numbers, and preserves the
// definition order.
type productionSet[T comparable] struct {
	lhs2Prods map[elementKey[T]][]*Production[T]
	id2Prod   map[productionID]*Production[T]
	prods     []*Production[T]
}

func newProductionSet[T comparable]() *productionSet[T] {
	return &productionSet[T]{
		lhs2Prods: map[elementKey[T]][]*Production[T]{},
		id2Prod:   map[productionID]*Production[T]{},
	}
}

func (ps *productionSet[T]) append(prod *Production[T]) bool {
	if _, ok := ps.id2Prod[prod.id]; ok {
		return false
	}

	prod.num = ProductionNum(len(ps.prods))
	ps.lhs2Prods[prod.lhs.key()] = append(ps.lhs2Prods[prod.lhs.key()], prod)
	ps.id2Prod[prod.id] = prod
	ps.prods = append(ps.prods, prod)

	return true
}

func (ps *productionSet[T]) findByLHS(lhs Element[T]) ([]*Production[T], bool) {
	if lhs.IsNil() {
		return nil, false
	}
	prods, ok := ps.lhs2Prods[lhs.key()]
	return prods, ok
}

func (ps *productionSet[T]) findByNum(num ProductionNum) (*Production[T], bool) {
	if num.Int() < 0 || num.Int() >= len(ps.prods) {
		return nil, false
	}
	return ps.prods[num.Int()], true
}

// all returns every production in definition order, the augmented start
// production first.
func (ps *productionSet[T]) all() []*Production[T] {
	return ps.prods
}
