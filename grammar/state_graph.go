package grammar

import (
	"fmt"
	"strconv"
)

type stateNum int

const stateNumInitial = stateNum(0)

func (n stateNum) Int() int {
	return int(n)
}

func (n stateNum) String() string {
	return strconv.Itoa(int(n))
}

// transition is an edge of the state graph, labelled by a grammar element.
// A state has at most one transition per label.
type transition[T comparable] struct {
	sym  Element[T]
	next stateNum
}

// lrState is a node of the canonical LR(1) automaton. Its item set equals its
// own closure.
type lrState[T comparable] struct {
	num         stateNum
	items       *itemSet[T]
	transitions []*transition[T]
	transIdx    map[elementKey[T]]stateNum
}

func (s *lrState[T]) nextState(sym Element[T]) (stateNum, bool) {
	next, ok := s.transIdx[sym.key()]
	return next, ok
}

// reducibleItems returns the items whose dot has reached the end of the RHS,
// in first-addition order.
func (s *lrState[T]) reducibleItems() []*Item[T] {
	var items []*Item[T]
	for _, item := range s.items.items() {
		if item.Reducible() {
			items = append(items, item)
		}
	}
	return items
}

// stateGraph is the canonical collection of LR(1) item sets. States are
// numbered in breadth-first order from the start state 0, so the numbering is
// reproducible for a given grammar.
type stateGraph[T comparable] struct {
	states []*lrState[T]
}

func (sg *stateGraph[T]) state(num stateNum) (*lrState[T], bool) {
	if num.Int() < 0 || num.Int() >= len(sg.states) {
		return nil, false
	}
	return sg.states[num.Int()], true
}

// genStateGraph builds the canonical LR(1) automaton: state 0 is
// closure({S' →・start, <eof>}), and every state gets one successor per
// distinct symbol appearing after a dot. States are deduplicated by full
// set equality of their items, not by LALR core merging.
func genStateGraph[T comparable](g *Grammar[T], fst *firstSet[T]) (*stateGraph[T], error) {
	graph := &stateGraph[T]{}
	known := map[itemSetID]stateNum{}

	intern := func(set *itemSet[T]) (stateNum, bool) {
		id := set.id()
		if num, ok := known[id]; ok {
			return num, false
		}
		num := stateNum(len(graph.states))
		known[id] = num
		graph.states = append(graph.states, &lrState[T]{
			num:      num,
			items:    set,
			transIdx: map[elementKey[T]]stateNum{},
		})
		return num, true
	}

	initialItem, err := NewItem(g.StartProduction(), g.EOF())
	if err != nil {
		return nil, err
	}
	initialSet, err := closure(g, fst, []*Item[T]{initialItem})
	if err != nil {
		return nil, err
	}
	intern(initialSet)

	// graph.states grows while we walk it, which makes the walk a
	// breadth-first work list.
	for i := 0; i < len(graph.states); i++ {
		state := graph.states[i]

		for _, sym := range nextSymbols(state.items) {
			gotoSet, err := genGoTo(g, fst, state.items, sym)
			if err != nil {
				return nil, err
			}
			next, _ := intern(gotoSet)
			state.transitions = append(state.transitions, &transition[T]{
				sym:  sym,
				next: next,
			})
			state.transIdx[sym.key()] = next
		}
	}

	return graph, nil
}

// nextSymbols returns the distinct dotted symbols of the set in
// first-occurrence order. The order decides state numbering, so it must be
// deterministic.
func nextSymbols[T comparable](set *itemSet[T]) []Element[T] {
	syms := newElementSet[T]()
	for _, item := range set.items() {
		if sym, ok := item.NextSymbol(); ok {
			syms.add(sym)
		}
	}
	return syms.elements()
}

// genGoTo computes GOTO(set, sym): the closure of every item of set with sym
// after the dot, advanced over it.
func genGoTo[T comparable](g *Grammar[T], fst *firstSet[T], set *itemSet[T], sym Element[T]) (*itemSet[T], error) {
	var seed []*Item[T]
	for _, item := range set.items() {
		next, ok := item.NextSymbol()
		if !ok || !next.Equal(sym) {
			continue
		}
		advanced, err := item.advance()
		if err != nil {
			return nil, fmt.Errorf("failed to advance %v: %w", item, err)
		}
		seed = append(seed, advanced)
	}
	if len(seed) == 0 {
		return nil, fmt.Errorf("GOTO on %v is empty", sym)
	}
	return closure(g, fst, seed)
}
