package grammar

import "fmt"

// firstSet holds, for every non-terminal, the terminals that can begin one of
// its derivations plus a nullability flag. Terminal membership keeps
// first-addition order so everything computed from FIRST is reproducible.
type firstSet[T comparable] struct {
	terms    map[elementKey[T]]*elementSet[T]
	nullable map[elementKey[T]]bool
}

func (fst *firstSet[T]) ensure(sym Element[T]) {
	if _, ok := fst.terms[sym.key()]; !ok {
		fst.terms[sym.key()] = newElementSet[T]()
	}
}

// ofSequence returns FIRST of a symbol sequence: the terminals that can begin
// it, and whether the whole sequence can derive ε. An empty sequence is
// nullable and begins with nothing.
func (fst *firstSet[T]) ofSequence(seq []Element[T]) (*elementSet[T], bool, error) {
	terms := newElementSet[T]()
	for _, sym := range seq {
		if sym.IsTerminal() {
			terms.add(sym)
			return terms, false, nil
		}

		entry, ok := fst.terms[sym.key()]
		if !ok {
			return nil, false, fmt.Errorf("FIRST is not computed for %v", sym)
		}
		for _, t := range entry.elements() {
			terms.add(t)
		}
		if !fst.nullable[sym.key()] {
			return terms, false, nil
		}
	}
	return terms, true, nil
}

// genFirstSet computes FIRST for every non-terminal of the grammar. The
// computation is change-driven: it records which productions read which
// non-terminals, and when FIRST of a left-hand side grows, only the
// productions reading that non-terminal are revisited. Left recursion simply
// re-enqueues the offending production until its entry stops growing.
func genFirstSet[T comparable](prods *productionSet[T]) (*firstSet[T], error) {
	fst := &firstSet[T]{
		terms:    map[elementKey[T]]*elementSet[T]{},
		nullable: map[elementKey[T]]bool{},
	}

	// readers[B] lists the productions whose FIRST may grow when FIRST(B)
	// does. Registering every occurrence of B is slightly conservative (a
	// reader behind a non-nullable prefix is revisited for nothing) but
	// always safe, because nullability only ever grows.
	readers := map[elementKey[T]][]*Production[T]{}
	for _, prod := range prods.all() {
		fst.ensure(prod.lhs)
		for _, sym := range prod.rhs {
			if !sym.IsNonTerminal() {
				continue
			}
			// A non-terminal may be referenced without having a production.
			// Its entry stays empty and non-nullable.
			fst.ensure(sym)
			readers[sym.key()] = append(readers[sym.key()], prod)
		}
	}

	work := newWorkList(func(p *Production[T]) productionID {
		return p.id
	})
	for _, prod := range prods.all() {
		work.push(prod)
	}

	for {
		prod, ok := work.pop()
		if !ok {
			break
		}

		terms, nullable, err := fst.ofSequence(prod.rhs)
		if err != nil {
			return nil, err
		}

		acc := fst.terms[prod.lhs.key()]
		changed := false
		for _, t := range terms.elements() {
			if acc.add(t) {
				changed = true
			}
		}
		if nullable && !fst.nullable[prod.lhs.key()] {
			fst.nullable[prod.lhs.key()] = true
			changed = true
		}
		if !changed {
			continue
		}

		for _, reader := range readers[prod.lhs.key()] {
			work.push(reader)
		}
	}

	return fst, nil
}
