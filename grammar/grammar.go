package grammar

import "fmt"

// Grammar is a context-free grammar augmented with a synthetic start symbol
// S' and an end-of-input terminal. A Grammar is immutable after construction
// and safe for concurrent use.
type Grammar[T comparable] struct {
	start     Element[T]
	userStart Element[T]
	eof       Element[T]
	prods     *productionSet[T]
	warnings  []string
}

var errDuplicateProduction = newGrammarError("duplicate production")

// NewGrammar builds a grammar from the user's start symbol, the end-of-input
// terminal, and the productions. It prepends the augmented start production
// S' → start as production 0.
//
// A non-terminal that appears on a right-hand side but has no production is
// reported as a warning, not an error, so grammars can be assembled from
// fragments.
func NewGrammar[T comparable](start Element[T], endOfInput Element[T], prods []*Production[T]) (*Grammar[T], error) {
	if !start.IsNonTerminal() {
		return nil, errNoStartSymbol.withDetail("passed: %v", start)
	}
	if start.Name() == startElementName {
		return nil, errReservedStartName.withDetail("%v collides with the augmented start symbol", start)
	}
	if !endOfInput.IsTerminal() {
		return nil, errNoEOFTerminal.withDetail("passed: %v", endOfInput)
	}
	if endOfInput.Negated() {
		return nil, errNegatedEOF
	}
	if len(prods) == 0 {
		return nil, errNoProduction
	}

	eof := newEOFElement(endOfInput.Value())

	ps := newProductionSet[T]()
	startProd, err := NewProduction(newStartElement[T](), start)
	if err != nil {
		return nil, err
	}
	ps.append(startProd)

	for _, prod := range prods {
		if prod.lhs.Name() == startElementName {
			return nil, errReservedStartName.withDetail("production: %v", prod)
		}
		for _, e := range prod.rhs {
			if e.IsTerminal() && e.Value() == eof.Value() {
				return nil, errEOFInRHS.withDetail("production: %v", prod)
			}
		}
		if !ps.append(prod) {
			return nil, errDuplicateProduction.withDetail("production: %v", prod)
		}
	}

	g := &Grammar[T]{
		start:     newStartElement[T](),
		userStart: start,
		eof:       eof,
		prods:     ps,
	}
	g.warnings = g.findUndefinedNonTerminals()

	return g, nil
}

// findUndefinedNonTerminals reports non-terminals that are referenced but
// never defined.
func (g *Grammar[T]) findUndefinedNonTerminals() []string {
	var warnings []string
	seen := map[elementKey[T]]struct{}{}
	for _, prod := range g.prods.all() {
		for _, e := range prod.rhs {
			if !e.IsNonTerminal() {
				continue
			}
			if _, ok := seen[e.key()]; ok {
				continue
			}
			seen[e.key()] = struct{}{}
			if _, defined := g.prods.findByLHS(e); !defined {
				warnings = append(warnings, fmt.Sprintf("non-terminal %v has no production", e))
			}
		}
	}
	return warnings
}

// Start returns the augmented start symbol S'.
func (g *Grammar[T]) Start() Element[T] {
	return g.start
}

// UserStart returns the start symbol the grammar was built from.
func (g *Grammar[T]) UserStart() Element[T] {
	return g.userStart
}

// EOF returns the end-of-input terminal.
func (g *Grammar[T]) EOF() Element[T] {
	return g.eof
}

// StartProduction returns the augmented start production S' → start.
func (g *Grammar[T]) StartProduction() *Production[T] {
	prod, _ := g.prods.findByNum(ProductionNumStart)
	return prod
}

// Productions returns all productions in definition order, the augmented
// start production first. Callers must not modify the result.
func (g *Grammar[T]) Productions() []*Production[T] {
	return g.prods.all()
}

// Production returns the production numbered num.
func (g *Grammar[T]) Production(num ProductionNum) (*Production[T], bool) {
	return g.prods.findByNum(num)
}

// ProductionsOf returns the productions whose LHS is lhs.
func (g *Grammar[T]) ProductionsOf(lhs Element[T]) ([]*Production[T], bool) {
	return g.prods.findByLHS(lhs)
}

// Warnings returns diagnostics collected during construction.
func (g *Grammar[T]) Warnings() []string {
	return g.warnings
}
