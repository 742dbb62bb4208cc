package grammar

import "fmt"

// followOf computes the look-ahead set FIRST(β a) for an item A → α・B β, a.
// When β is nullable (or empty) the item's own look-ahead a is included.
// The result preserves first-addition order.
func followOf[T comparable](fst *firstSet[T], item *Item[T]) ([]Element[T], error) {
	var beta []Element[T]
	if item.dot+1 <= item.prod.RHSLen() {
		beta = item.prod.rhs[item.dot+1:]
	}

	las, nullable, err := fst.ofSequence(beta)
	if err != nil {
		return nil, err
	}
	if nullable {
		las.add(item.lookahead)
	}
	return las.elements(), nil
}

// closure expands the seed items with every item B →・γ, b derivable from a
// non-terminal B immediately after a dot, with b ∈ FIRST(β a). The expansion
// drains a work list of the items added so far; items already processed are
// never rescanned.
func closure[T comparable](g *Grammar[T], fst *firstSet[T], seed []*Item[T]) (*itemSet[T], error) {
	set := newItemSet[T]()
	work := newWorkList(func(i *Item[T]) itemKey[T] {
		return i.key()
	})
	for _, item := range seed {
		if set.add(item) {
			work.push(item)
		}
	}

	for {
		item, ok := work.pop()
		if !ok {
			break
		}

		sym, ok := item.NextSymbol()
		if !ok || !sym.IsNonTerminal() {
			continue
		}

		las, err := followOf(fst, item)
		if err != nil {
			return nil, err
		}

		// A referenced non-terminal may have no production. The item set
		// simply does not expand through it.
		prods, _ := g.ProductionsOf(sym)
		for _, prod := range prods {
			for _, la := range las {
				derived, err := NewItem(prod, la)
				if err != nil {
					return nil, fmt.Errorf("failed to derive an item from %v: %w", item, err)
				}
				if set.add(derived) {
					work.push(derived)
				}
			}
		}
	}

	return set, nil
}
