package grammar

import (
	"strings"
	"testing"
)

// genTestGrammar builds a grammar from rule strings like "E -> E + T".
// A rule with nothing after the arrow is an epsilon production. Symbols
// listed in terminals become terminal elements; everything else is a
// non-terminal. The end-of-input terminal is "$".
func genTestGrammar(t *testing.T, start string, terminals []string, rules []string) *Grammar[string] {
	t.Helper()

	prods := genTestProductions(t, terminals, rules)
	g, err := NewGrammar(NewNonTerminal[string](start), NewTerminal("$"), prods)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func genTestProductions(t *testing.T, terminals []string, rules []string) []*Production[string] {
	t.Helper()

	termSet := map[string]struct{}{}
	for _, term := range terminals {
		termSet[term] = struct{}{}
	}

	var prods []*Production[string]
	for _, rule := range rules {
		lhs, rhsSrc, ok := strings.Cut(rule, "->")
		if !ok {
			t.Fatalf("malformed rule: %v", rule)
		}
		var rhs []Element[string]
		for _, sym := range strings.Fields(rhsSrc) {
			if _, ok := termSet[sym]; ok {
				rhs = append(rhs, NewTerminal(sym))
			} else {
				rhs = append(rhs, NewNonTerminal[string](sym))
			}
		}
		prod, err := NewProduction(NewNonTerminal[string](strings.TrimSpace(lhs)), rhs...)
		if err != nil {
			t.Fatal(err)
		}
		prods = append(prods, prod)
	}
	return prods
}

func testTerminals(names ...string) []Element[string] {
	var elems []Element[string]
	for _, name := range names {
		elems = append(elems, NewTerminal(name))
	}
	return elems
}
