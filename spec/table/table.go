// Package table persists parsing tables as a versioned, self-describing JSON
// document. The encoding is explicit: productions, states with their items,
// and every ACTION/GOTO entry. Documents of an unknown version and documents
// carrying unknown fields are rejected to prevent format drift.
package table

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cnf/structhash"
	"github.com/shoyo-k/grackle/grammar"
)

// DocVersion is the version tag this package reads and writes.
const DocVersion = 1

// SerializationError reports a malformed or wrong-version table document.
type SerializationError struct {
	Cause error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("malformed table document: %v", e.Cause)
}

func (e *SerializationError) Unwrap() error {
	return e.Cause
}

func serErrf(format string, a ...interface{}) *SerializationError {
	return &SerializationError{
		Cause: fmt.Errorf(format, a...),
	}
}

type ElementDoc[T comparable] struct {
	Kind    string `json:"kind"`
	Value   T      `json:"value"`
	Name    string `json:"name"`
	EOF     bool   `json:"eof"`
	Keep    bool   `json:"keep"`
	Negated bool   `json:"negated"`
}

type ProductionDoc[T comparable] struct {
	LHS ElementDoc[T]   `json:"lhs"`
	RHS []ElementDoc[T] `json:"rhs"`
}

type ItemDoc[T comparable] struct {
	Production int           `json:"production"`
	Dot        int           `json:"dot"`
	Lookahead  ElementDoc[T] `json:"lookahead"`
}

type StateDoc[T comparable] struct {
	Index int          `json:"index"`
	Items []ItemDoc[T] `json:"items"`
}

type ActionDoc[T comparable] struct {
	Type       string         `json:"type"`
	Next       *int           `json:"next,omitempty"`
	Production *int           `json:"production,omitempty"`
	Lookahead  *ElementDoc[T] `json:"lookahead,omitempty"`
}

type ActionEntryDoc[T comparable] struct {
	State    int           `json:"state"`
	Terminal ElementDoc[T] `json:"terminal"`
	Actions  []ActionDoc[T] `json:"actions"`
}

type GoToEntryDoc[T comparable] struct {
	State       int           `json:"state"`
	NonTerminal ElementDoc[T] `json:"non_terminal"`
	Next        int           `json:"next"`
}

// LexRuleDoc carries the lexical rule a terminal was declared with, so one
// document is enough to both tokenize and parse an input.
type LexRuleDoc[T comparable] struct {
	Value   T      `json:"value"`
	Pattern string `json:"pattern"`
	Skip    bool   `json:"skip"`
}

// Doc is the persisted form of a parsing table.
type Doc[T comparable] struct {
	Version     int                `json:"version"`
	Fingerprint string             `json:"fingerprint"`
	EOF         ElementDoc[T]      `json:"eof"`
	Productions []ProductionDoc[T] `json:"productions"`
	States      []StateDoc[T]      `json:"states"`
	Action      []ActionEntryDoc[T] `json:"action"`
	GoTo        []GoToEntryDoc[T]  `json:"goto"`
	Lexical     []LexRuleDoc[T]    `json:"lexical,omitempty"`
}

func elementDoc[T comparable](e grammar.Element[T]) ElementDoc[T] {
	kind := "terminal"
	if e.IsNonTerminal() {
		kind = "non-terminal"
	}
	return ElementDoc[T]{
		Kind:    kind,
		Value:   e.Value(),
		Name:    e.Name(),
		EOF:     e.IsEOF(),
		Keep:    e.Keep(),
		Negated: e.Negated(),
	}
}

func (d ElementDoc[T]) element() (grammar.Element[T], error) {
	var e grammar.Element[T]
	switch d.Kind {
	case "terminal":
		switch {
		case d.EOF:
			e = grammar.NewEOFTerminal(d.Value)
		case d.Negated:
			e = grammar.NewNegatedTerminal(d.Value)
		default:
			e = grammar.NewTerminal(d.Value)
		}
	case "non-terminal":
		e = grammar.NewNonTerminal[T](d.Name)
	default:
		return e, serErrf("unknown element kind: %q", d.Kind)
	}
	if !d.Keep && !d.EOF {
		e = e.Discard()
	}
	return e, nil
}

// NewDoc converts a parsing table into its persisted form. Lexical rules are
// optional; pass nil when the caller drives its own lexer.
func NewDoc[T comparable](tab *grammar.ParsingTable[T], lexical []LexRuleDoc[T]) (*Doc[T], error) {
	d := &Doc[T]{
		Version: DocVersion,
		EOF:     elementDoc(tab.EOF()),
		Lexical: lexical,
	}

	prodNums := map[*grammar.Production[T]]int{}
	for i, prod := range tab.Productions() {
		prodNums[prod] = i
		pd := ProductionDoc[T]{
			LHS: elementDoc(prod.LHS()),
			RHS: []ElementDoc[T]{},
		}
		for _, e := range prod.RHS() {
			pd.RHS = append(pd.RHS, elementDoc(e))
		}
		d.Productions = append(d.Productions, pd)
	}

	for i := 0; i < tab.StateCount(); i++ {
		sd := StateDoc[T]{
			Index: i,
			Items: []ItemDoc[T]{},
		}
		for _, item := range tab.StateItems(i) {
			num, ok := prodNums[item.Production()]
			if !ok {
				return nil, serErrf("state %v holds an item over an unregistered production: %v", i, item)
			}
			sd.Items = append(sd.Items, ItemDoc[T]{
				Production: num,
				Dot:        item.Dot(),
				Lookahead:  elementDoc(item.Lookahead()),
			})
		}
		d.States = append(d.States, sd)
	}

	for _, entry := range tab.ActionEntries() {
		ed := ActionEntryDoc[T]{
			State:    entry.State,
			Terminal: elementDoc(entry.Terminal),
		}
		for _, act := range entry.Actions {
			switch act.Type {
			case grammar.ActionTypeShift:
				next := act.Next
				ed.Actions = append(ed.Actions, ActionDoc[T]{
					Type: act.Type.String(),
					Next: &next,
				})
			case grammar.ActionTypeReduce:
				num, ok := prodNums[act.Prod]
				if !ok {
					return nil, serErrf("a reduce action references an unregistered production: %v", act.Prod)
				}
				la := elementDoc(act.Lookahead)
				ed.Actions = append(ed.Actions, ActionDoc[T]{
					Type:       act.Type.String(),
					Production: &num,
					Lookahead:  &la,
				})
			case grammar.ActionTypeAccept:
				ed.Actions = append(ed.Actions, ActionDoc[T]{
					Type: act.Type.String(),
				})
			default:
				return nil, serErrf("unknown action type: %v", act.Type)
			}
		}
		d.Action = append(d.Action, ed)
	}

	for _, entry := range tab.GoToEntries() {
		d.GoTo = append(d.GoTo, GoToEntryDoc[T]{
			State:       entry.State,
			NonTerminal: elementDoc(entry.NonTerminal),
			Next:        entry.Next,
		})
	}

	d.Fingerprint = fingerprint(d.Productions)

	return d, nil
}

// Table reconstructs the parsing table the document was written from.
func (d *Doc[T]) Table() (*grammar.ParsingTable[T], error) {
	eof, err := d.EOF.element()
	if err != nil {
		return nil, err
	}

	prods := make([]*grammar.Production[T], 0, len(d.Productions))
	for _, pd := range d.Productions {
		lhs, err := pd.LHS.element()
		if err != nil {
			return nil, err
		}
		rhs := make([]grammar.Element[T], 0, len(pd.RHS))
		for _, ed := range pd.RHS {
			e, err := ed.element()
			if err != nil {
				return nil, err
			}
			rhs = append(rhs, e)
		}
		prod, err := grammar.NewProduction(lhs, rhs...)
		if err != nil {
			return nil, &SerializationError{Cause: err}
		}
		prods = append(prods, prod)
	}

	states := make([][]*grammar.Item[T], len(d.States))
	for _, sd := range d.States {
		if sd.Index < 0 || sd.Index >= len(d.States) {
			return nil, serErrf("a state index is out of range: %v", sd.Index)
		}
		var items []*grammar.Item[T]
		for _, id := range sd.Items {
			if id.Production < 0 || id.Production >= len(prods) {
				return nil, serErrf("an item references an unknown production: %v", id.Production)
			}
			la, err := id.Lookahead.element()
			if err != nil {
				return nil, err
			}
			item, err := grammar.NewItemAt(prods[id.Production], id.Dot, la)
			if err != nil {
				return nil, &SerializationError{Cause: err}
			}
			items = append(items, item)
		}
		states[sd.Index] = items
	}

	var actions []grammar.ActionEntry[T]
	for _, ed := range d.Action {
		term, err := ed.Terminal.element()
		if err != nil {
			return nil, err
		}
		entry := grammar.ActionEntry[T]{
			State:    ed.State,
			Terminal: term,
		}
		for _, ad := range ed.Actions {
			act, err := ad.action(prods)
			if err != nil {
				return nil, err
			}
			entry.Actions = append(entry.Actions, act)
		}
		actions = append(actions, entry)
	}

	var goTos []grammar.GoToEntry[T]
	for _, gd := range d.GoTo {
		nonTerm, err := gd.NonTerminal.element()
		if err != nil {
			return nil, err
		}
		goTos = append(goTos, grammar.GoToEntry[T]{
			State:       gd.State,
			NonTerminal: nonTerm,
			Next:        gd.Next,
		})
	}

	tab, err := grammar.AssembleTable(prods, eof, states, actions, goTos)
	if err != nil {
		return nil, &SerializationError{Cause: err}
	}
	return tab, nil
}

func (d ActionDoc[T]) action(prods []*grammar.Production[T]) (grammar.Action[T], error) {
	switch grammar.ActionType(d.Type) {
	case grammar.ActionTypeShift:
		if d.Next == nil {
			return grammar.Action[T]{}, serErrf("a shift action needs a next state")
		}
		return grammar.Action[T]{
			Type: grammar.ActionTypeShift,
			Next: *d.Next,
		}, nil
	case grammar.ActionTypeReduce:
		if d.Production == nil || d.Lookahead == nil {
			return grammar.Action[T]{}, serErrf("a reduce action needs a production and a look-ahead")
		}
		if *d.Production < 0 || *d.Production >= len(prods) {
			return grammar.Action[T]{}, serErrf("a reduce action references an unknown production: %v", *d.Production)
		}
		la, err := d.Lookahead.element()
		if err != nil {
			return grammar.Action[T]{}, err
		}
		return grammar.Action[T]{
			Type:      grammar.ActionTypeReduce,
			Prod:      prods[*d.Production],
			Lookahead: la,
		}, nil
	case grammar.ActionTypeAccept:
		return grammar.Action[T]{
			Type: grammar.ActionTypeAccept,
		}, nil
	default:
		return grammar.Action[T]{}, serErrf("unknown action type: %q", d.Type)
	}
}

// fingerprint hashes the production list. A loaded document whose productions
// do not hash to the recorded value was edited or corrupted.
func fingerprint[T comparable](prods []ProductionDoc[T]) string {
	v := struct {
		Productions []ProductionDoc[T]
	}{
		Productions: prods,
	}
	return fmt.Sprintf("%x", structhash.Sha1(v, 1))
}

// Write encodes the document to w.
func Write[T comparable](w io.Writer, d *Doc[T]) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(d); err != nil {
		return &SerializationError{Cause: err}
	}
	return nil
}

// Read decodes a document from r. Unknown fields, unknown versions, and
// fingerprint mismatches are all rejected.
func Read[T comparable](r io.Reader) (*Doc[T], error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	d := &Doc[T]{}
	if err := dec.Decode(d); err != nil {
		return nil, &SerializationError{Cause: err}
	}
	if d.Version != DocVersion {
		return nil, serErrf("unsupported version: %v", d.Version)
	}
	if fp := fingerprint(d.Productions); fp != d.Fingerprint {
		return nil, serErrf("fingerprint mismatch; recorded: %v, computed: %v", d.Fingerprint, fp)
	}
	return d, nil
}
