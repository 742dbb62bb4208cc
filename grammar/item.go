package grammar

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Item is an LR(1) item: a production with a dot position and a single
// look-ahead terminal.
//
//	E → E + T, +
//
//	Dot | Dotted Symbol | Item
//	----+---------------+---------------
//	0   | E             | E →・E + T, +
//	1   | +             | E → E・+ T, +
//	2   | T             | E → E +・T, +
//	3   | Nil           | E → E + T・, +
type Item[T comparable] struct {
	prod      *Production[T]
	dot       int
	lookahead Element[T]
}

// itemKey is the structural identity of an item: the production (LHS and
// RHS), the dot, and the look-ahead.
type itemKey[T comparable] struct {
	prod      productionID
	dot       int
	lookahead elementKey[T]
}

// NewItem returns the item prod at dot 0 with the look-ahead la. la must be a
// terminal.
func NewItem[T comparable](prod *Production[T], la Element[T]) (*Item[T], error) {
	return NewItemAt(prod, 0, la)
}

func NewItemAt[T comparable](prod *Production[T], dot int, la Element[T]) (*Item[T], error) {
	if prod == nil {
		return nil, fmt.Errorf("production must be non-nil")
	}
	if dot < 0 || dot > prod.RHSLen() {
		return nil, fmt.Errorf("dot must be between 0 and %v; passed: %v", prod.RHSLen(), dot)
	}
	if !la.IsTerminal() {
		return nil, fmt.Errorf("a look-ahead must be a terminal; passed: %v", la)
	}

	return &Item[T]{
		prod:      prod,
		dot:       dot,
		lookahead: la,
	}, nil
}

func (i *Item[T]) key() itemKey[T] {
	return itemKey[T]{
		prod:      i.prod.id,
		dot:       i.dot,
		lookahead: i.lookahead.key(),
	}
}

func (i *Item[T]) Production() *Production[T] {
	return i.prod
}

func (i *Item[T]) Dot() int {
	return i.dot
}

func (i *Item[T]) Lookahead() Element[T] {
	return i.lookahead
}

// Reducible reports whether the dot has reached the end of the RHS. An item
// over an epsilon production is reducible at dot 0.
func (i *Item[T]) Reducible() bool {
	return i.dot == i.prod.RHSLen()
}

// Initial reports whether the item is S' →・start.
func (i *Item[T]) Initial() bool {
	return i.prod.lhs.IsStart() && i.dot == 0
}

// NextSymbol returns the symbol immediately after the dot. The second result
// is false when the item is reducible.
func (i *Item[T]) NextSymbol() (Element[T], bool) {
	if i.Reducible() {
		return Element[T]{}, false
	}
	return i.prod.rhs[i.dot], true
}

// SymbolAfterNext returns the symbol one past the dotted symbol.
func (i *Item[T]) SymbolAfterNext() (Element[T], bool) {
	if i.dot+1 >= i.prod.RHSLen() {
		return Element[T]{}, false
	}
	return i.prod.rhs[i.dot+1], true
}

// advance returns a copy of the item with the dot shifted one symbol right.
func (i *Item[T]) advance() (*Item[T], error) {
	return NewItemAt(i.prod, i.dot+1, i.lookahead)
}

// Equal reports structural equality over the production, dot, and look-ahead.
func (i *Item[T]) Equal(o *Item[T]) bool {
	return o != nil && i.key() == o.key()
}

func (i *Item[T]) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v →", i.prod.lhs)
	for n, e := range i.prod.rhs {
		if n == i.dot {
			b.WriteString(" ・")
		} else {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v", e)
	}
	if i.Reducible() {
		b.WriteString(" ・")
	}
	fmt.Fprintf(&b, ", %v", i.lookahead)
	return b.String()
}

// itemSetID identifies an item set by its contents, independent of the order
// items were added in.
type itemSetID [32]byte

// itemSet is an unordered set of LR(1) items with set-equality identity.
// External iteration follows first-addition order for reproducibility.
type itemSet[T comparable] struct {
	m *linkedhashmap.Map
}

func newItemSet[T comparable](items ...*Item[T]) *itemSet[T] {
	s := &itemSet[T]{
		m: linkedhashmap.New(),
	}
	for _, item := range items {
		s.add(item)
	}
	return s
}

func (s *itemSet[T]) add(item *Item[T]) bool {
	if _, ok := s.m.Get(item.key()); ok {
		return false
	}
	s.m.Put(item.key(), item)
	return true
}

func (s *itemSet[T]) contains(item *Item[T]) bool {
	_, ok := s.m.Get(item.key())
	return ok
}

func (s *itemSet[T]) size() int {
	return s.m.Size()
}

// items returns the members in first-addition order.
func (s *itemSet[T]) items() []*Item[T] {
	items := make([]*Item[T], 0, s.m.Size())
	it := s.m.Iterator()
	for it.Next() {
		items = append(items, it.Value().(*Item[T]))
	}
	return items
}

// id computes the canonical identity of the set: the members' structural
// forms, sorted, hashed. Two sets holding the same items always produce the
// same id regardless of addition order.
func (s *itemSet[T]) id() itemSetID {
	keys := make([]string, 0, s.m.Size())
	for _, item := range s.items() {
		k := item.key()
		keys = append(keys, fmt.Sprintf("%v\x1e%v\x1e%v", k.prod, k.dot, k.lookahead))
	}
	sort.Strings(keys)
	return sha256.Sum256([]byte(strings.Join(keys, "\x1d")))
}

// equal reports set equality.
func (s *itemSet[T]) equal(o *itemSet[T]) bool {
	if s.size() != o.size() {
		return false
	}
	for _, item := range o.items() {
		if !s.contains(item) {
			return false
		}
	}
	return true
}
