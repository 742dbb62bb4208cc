package grammar

import (
	"fmt"
	"strings"
)

type ActionType string

const (
	ActionTypeShift  = ActionType("shift")
	ActionTypeReduce = ActionType("reduce")
	ActionTypeAccept = ActionType("accept")
)

func (t ActionType) String() string {
	return string(t)
}

// Action is one entry of an ACTION cell. A cell holds more than one action
// only when the assembler detected a conflict there.
type Action[T comparable] struct {
	Type ActionType

	// Next is the target state of a shift.
	Next int

	// Prod and Lookahead belong to a reduce.
	Prod      *Production[T]
	Lookahead Element[T]
}

func newShiftAction[T comparable](next stateNum) Action[T] {
	return Action[T]{
		Type: ActionTypeShift,
		Next: next.Int(),
	}
}

func newReduceAction[T comparable](prod *Production[T], la Element[T]) Action[T] {
	return Action[T]{
		Type:      ActionTypeReduce,
		Prod:      prod,
		Lookahead: la,
	}
}

func newAcceptAction[T comparable]() Action[T] {
	return Action[T]{
		Type: ActionTypeAccept,
	}
}

// PopCount returns the number of stack entries a reduce pops.
func (a Action[T]) PopCount() int {
	if a.Type != ActionTypeReduce {
		return 0
	}
	return a.Prod.RHSLen()
}

func (a Action[T]) Equal(b Action[T]) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case ActionTypeShift:
		return a.Next == b.Next
	case ActionTypeReduce:
		return a.Prod.Equal(b.Prod) && a.Lookahead.Equal(b.Lookahead)
	default:
		return true
	}
}

func (a Action[T]) String() string {
	switch a.Type {
	case ActionTypeShift:
		return fmt.Sprintf("shift %v", a.Next)
	case ActionTypeReduce:
		return fmt.Sprintf("reduce %v", a.Prod)
	default:
		return "accept"
	}
}

// Conflict is an ACTION cell that received more than one action, or a state
// that acquired a second negated-terminal row. The assembler records
// conflicts and completes the table; it never resolves them.
type Conflict[T comparable] struct {
	State    int
	Terminal Element[T]
	Actions  []Action[T]
	Items    []*Item[T]
}

func (c *Conflict[T]) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "state %v, terminal %v:", c.State, c.Terminal)
	for _, a := range c.Actions {
		fmt.Fprintf(&b, " [%v]", a)
	}
	return b.String()
}

// ConflictError aggregates every conflict of a table into a single error
// value for callers that treat a conflicted table as a failure.
type ConflictError[T comparable] struct {
	Conflicts []*Conflict[T]
}

func (e *ConflictError[T]) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v conflicts:", len(e.Conflicts))
	for _, c := range e.Conflicts {
		fmt.Fprintf(&b, "\n%v", c)
	}
	return b.String()
}

type actionRow[T comparable] struct {
	terminal Element[T]
	actions  []Action[T]
}

type goToRow[T comparable] struct {
	nonTerminal Element[T]
	next        int
}

type tableState[T comparable] struct {
	num      stateNum
	items    []*Item[T]
	rowOrder []*actionRow[T]
	rowIdx   map[elementKey[T]]*actionRow[T]
	goTos    []*goToRow[T]
	goToIdx  map[elementKey[T]]int
}

func newTableState[T comparable](num stateNum, items []*Item[T]) *tableState[T] {
	return &tableState[T]{
		num:     num,
		items:   items,
		rowIdx:  map[elementKey[T]]*actionRow[T]{},
		goToIdx: map[elementKey[T]]int{},
	}
}

func (s *tableState[T]) addAction(term Element[T], act Action[T]) *actionRow[T] {
	row, ok := s.rowIdx[term.key()]
	if !ok {
		row = &actionRow[T]{
			terminal: term,
		}
		s.rowOrder = append(s.rowOrder, row)
		s.rowIdx[term.key()] = row
	}
	for _, a := range row.actions {
		if a.Equal(act) {
			return row
		}
	}
	row.actions = append(row.actions, act)
	return row
}

func (s *tableState[T]) addGoTo(nonTerm Element[T], next stateNum) {
	if _, ok := s.goToIdx[nonTerm.key()]; ok {
		return
	}
	s.goTos = append(s.goTos, &goToRow[T]{
		nonTerminal: nonTerm,
		next:        next.Int(),
	})
	s.goToIdx[nonTerm.key()] = next.Int()
}

// negatedRows returns the state's rows keyed by a negated terminal, in
// first-addition order.
func (s *tableState[T]) negatedRows() []*actionRow[T] {
	var rows []*actionRow[T]
	for _, row := range s.rowOrder {
		if row.terminal.Negated() {
			rows = append(rows, row)
		}
	}
	return rows
}

// ParsingTable is the ACTION/GOTO mapping of a grammar together with the
// grammar's productions and states. A completed table is read-only and safe
// for concurrent parsing.
type ParsingTable[T comparable] struct {
	prods  []*Production[T]
	states []*tableState[T]
	eof    Element[T]
}

// InitialState is always 0: states are numbered breadth-first from the start
// state.
func (t *ParsingTable[T]) InitialState() int {
	return stateNumInitial.Int()
}

func (t *ParsingTable[T]) StateCount() int {
	return len(t.states)
}

// Productions returns the table's productions indexed by production number.
func (t *ParsingTable[T]) Productions() []*Production[T] {
	return t.prods
}

// StateItems returns the LR(1) items of a state in first-addition order.
func (t *ParsingTable[T]) StateItems(state int) []*Item[T] {
	if state < 0 || state >= len(t.states) {
		return nil
	}
	return t.states[state].items
}

// EOF returns the end-of-input terminal the table was built with.
func (t *ParsingTable[T]) EOF() Element[T] {
	return t.eof
}

// Action looks up ACTION[state, term]. A row keyed by the exact terminal wins
// over a negated one; when no exact row exists, the single negated row whose
// value differs from term applies. An empty result means a parse error, a
// result longer than one means the cell is conflicted.
func (t *ParsingTable[T]) Action(state int, term Element[T]) []Action[T] {
	if state < 0 || state >= len(t.states) {
		return nil
	}
	s := t.states[state]
	if row, ok := s.rowIdx[term.key()]; ok {
		return row.actions
	}
	if term.Negated() || term.IsEOF() {
		return nil
	}
	for _, row := range s.negatedRows() {
		if row.terminal.Value() != term.Value() {
			return row.actions
		}
	}
	return nil
}

// ExpectedTerminals returns the terminals a state has any action on, in
// first-addition order. Used for error reporting.
func (t *ParsingTable[T]) ExpectedTerminals(state int) []Element[T] {
	if state < 0 || state >= len(t.states) {
		return nil
	}
	var terms []Element[T]
	for _, row := range t.states[state].rowOrder {
		terms = append(terms, row.terminal)
	}
	return terms
}

// GoTo looks up GOTO[state, nonTerm].
func (t *ParsingTable[T]) GoTo(state int, nonTerm Element[T]) (int, bool) {
	if state < 0 || state >= len(t.states) {
		return 0, false
	}
	next, ok := t.states[state].goToIdx[nonTerm.key()]
	return next, ok
}

// ActionEntry is one ACTION cell, exposed for serialization and comparison.
type ActionEntry[T comparable] struct {
	State    int
	Terminal Element[T]
	Actions  []Action[T]
}

// GoToEntry is one GOTO cell.
type GoToEntry[T comparable] struct {
	State       int
	NonTerminal Element[T]
	Next        int
}

// ActionEntries returns every non-empty ACTION cell, states ascending, rows
// in first-addition order.
func (t *ParsingTable[T]) ActionEntries() []ActionEntry[T] {
	var entries []ActionEntry[T]
	for _, s := range t.states {
		for _, row := range s.rowOrder {
			entries = append(entries, ActionEntry[T]{
				State:    s.num.Int(),
				Terminal: row.terminal,
				Actions:  row.actions,
			})
		}
	}
	return entries
}

// GoToEntries returns every GOTO cell, states ascending.
func (t *ParsingTable[T]) GoToEntries() []GoToEntry[T] {
	var entries []GoToEntry[T]
	for _, s := range t.states {
		for _, row := range s.goTos {
			entries = append(entries, GoToEntry[T]{
				State:       s.num.Int(),
				NonTerminal: row.nonTerminal,
				Next:        row.next,
			})
		}
	}
	return entries
}

// Equal reports structural equality of two tables: same productions, same
// per-state item sets, and cell-by-cell equality of ACTION and GOTO.
func (t *ParsingTable[T]) Equal(o *ParsingTable[T]) bool {
	if o == nil || len(t.prods) != len(o.prods) || len(t.states) != len(o.states) {
		return false
	}
	for i, p := range t.prods {
		if !p.Equal(o.prods[i]) {
			return false
		}
	}
	for i, s := range t.states {
		os := o.states[i]
		if !newItemSet(s.items...).equal(newItemSet(os.items...)) {
			return false
		}
		if len(s.rowOrder) != len(os.rowOrder) || len(s.goTos) != len(os.goTos) {
			return false
		}
		for _, row := range s.rowOrder {
			oRow, ok := os.rowIdx[row.terminal.key()]
			if !ok || len(row.actions) != len(oRow.actions) {
				return false
			}
			for n, a := range row.actions {
				if !a.Equal(oRow.actions[n]) {
					return false
				}
			}
		}
		for _, row := range s.goTos {
			next, ok := os.goToIdx[row.nonTerminal.key()]
			if !ok || next != row.next {
				return false
			}
		}
	}
	return true
}

// BuildTable assembles the ACTION/GOTO tables of g from its canonical LR(1)
// state graph. Conflicts are returned alongside the completed table; callers
// commonly want to diagnose all of them, not just the first.
func BuildTable[T comparable](g *Grammar[T]) (*ParsingTable[T], []*Conflict[T], error) {
	fst, err := genFirstSet(g.prods)
	if err != nil {
		return nil, nil, err
	}
	graph, err := genStateGraph(g, fst)
	if err != nil {
		return nil, nil, err
	}

	tab := &ParsingTable[T]{
		prods: g.Productions(),
		eof:   g.EOF(),
	}

	for _, state := range graph.states {
		ts := newTableState(state.num, state.items.items())

		for _, tr := range state.transitions {
			if tr.sym.IsTerminal() {
				ts.addAction(tr.sym, newShiftAction[T](tr.next))
			} else {
				ts.addGoTo(tr.sym, tr.next)
			}
		}

		for _, item := range state.reducibleItems() {
			if item.Production().LHS().IsStart() {
				ts.addAction(item.Lookahead(), newAcceptAction[T]())
			} else {
				ts.addAction(item.Lookahead(), newReduceAction(item.Production(), item.Lookahead()))
			}
		}

		tab.states = append(tab.states, ts)
	}

	return tab, detectConflicts(tab), nil
}

// detectConflicts scans the completed table for cells holding more than one
// action and for states carrying more than one negated-terminal row.
func detectConflicts[T comparable](tab *ParsingTable[T]) []*Conflict[T] {
	var conflicts []*Conflict[T]
	for _, s := range tab.states {
		for _, row := range s.rowOrder {
			if len(row.actions) < 2 {
				continue
			}
			conflicts = append(conflicts, &Conflict[T]{
				State:    s.num.Int(),
				Terminal: row.terminal,
				Actions:  row.actions,
				Items:    involvedItems(s, row.terminal),
			})
		}

		if negated := s.negatedRows(); len(negated) > 1 {
			for _, row := range negated[1:] {
				acts := make([]Action[T], 0, len(negated[0].actions)+len(row.actions))
				acts = append(acts, negated[0].actions...)
				acts = append(acts, row.actions...)
				conflicts = append(conflicts, &Conflict[T]{
					State:    s.num.Int(),
					Terminal: row.terminal,
					Actions:  acts,
					Items:    involvedItems(s, row.terminal),
				})
			}
		}
	}
	return conflicts
}

// involvedItems returns the items of a state that contribute an action on
// term: reducible items with term as the look-ahead and items whose dotted
// symbol is term.
func involvedItems[T comparable](s *tableState[T], term Element[T]) []*Item[T] {
	var items []*Item[T]
	for _, item := range s.items {
		if item.Reducible() && item.Lookahead().Equal(term) {
			items = append(items, item)
			continue
		}
		if sym, ok := item.NextSymbol(); ok && sym.Equal(term) {
			items = append(items, item)
		}
	}
	return items
}

// AssembleTable reconstructs a parsing table from its serialized parts. The
// productions must be listed by production number with the augmented start
// production first, and every state index must be within range.
func AssembleTable[T comparable](prods []*Production[T], eof Element[T], states [][]*Item[T], actions []ActionEntry[T], goTos []GoToEntry[T]) (*ParsingTable[T], error) {
	if len(prods) == 0 || !prods[0].LHS().IsStart() {
		return nil, fmt.Errorf("the production 0 must be the augmented start production")
	}
	for i, prod := range prods {
		prod.num = ProductionNum(i)
	}

	tab := &ParsingTable[T]{
		prods: prods,
		eof:   eof,
	}
	for i, items := range states {
		tab.states = append(tab.states, newTableState(stateNum(i), items))
	}

	for _, entry := range actions {
		if entry.State < 0 || entry.State >= len(tab.states) {
			return nil, fmt.Errorf("an ACTION entry references an unknown state: %v", entry.State)
		}
		for _, act := range entry.Actions {
			if act.Type == ActionTypeShift && (act.Next < 0 || act.Next >= len(tab.states)) {
				return nil, fmt.Errorf("a shift action references an unknown state: %v", act.Next)
			}
			tab.states[entry.State].addAction(entry.Terminal, act)
		}
	}
	for _, entry := range goTos {
		if entry.State < 0 || entry.State >= len(tab.states) {
			return nil, fmt.Errorf("a GOTO entry references an unknown state: %v", entry.State)
		}
		if entry.Next < 0 || entry.Next >= len(tab.states) {
			return nil, fmt.Errorf("a GOTO entry references an unknown state: %v", entry.Next)
		}
		tab.states[entry.State].addGoTo(entry.NonTerminal, stateNum(entry.Next))
	}

	return tab, nil
}

// Conflicts re-detects the conflicts of a table. Useful after AssembleTable.
func (t *ParsingTable[T]) Conflicts() []*Conflict[T] {
	return detectConflicts(t)
}
