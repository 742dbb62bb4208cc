package grammar

import "github.com/emirpasic/gods/maps/linkedhashmap"

// elementSet is a set of grammar elements deduplicated by identity.
// Iteration follows first-addition order, which keeps every computation built
// on top of it reproducible for a given grammar.
type elementSet[T comparable] struct {
	m *linkedhashmap.Map
}

func newElementSet[T comparable](elems ...Element[T]) *elementSet[T] {
	s := &elementSet[T]{
		m: linkedhashmap.New(),
	}
	for _, e := range elems {
		s.add(e)
	}
	return s
}

func (s *elementSet[T]) add(e Element[T]) bool {
	if _, ok := s.m.Get(e.key()); ok {
		return false
	}
	s.m.Put(e.key(), e)
	return true
}

func (s *elementSet[T]) contains(e Element[T]) bool {
	_, ok := s.m.Get(e.key())
	return ok
}

func (s *elementSet[T]) size() int {
	return s.m.Size()
}

// elements returns the members in first-addition order.
func (s *elementSet[T]) elements() []Element[T] {
	elems := make([]Element[T], 0, s.m.Size())
	it := s.m.Iterator()
	for it.Next() {
		elems = append(elems, it.Value().(Element[T]))
	}
	return elems
}
