package grammar

import "testing"

func testBuildTable(t *testing.T, g *Grammar[string]) (*ParsingTable[string], []*Conflict[string]) {
	t.Helper()

	tab, conflicts, err := BuildTable(g)
	if err != nil {
		t.Fatal(err)
	}
	return tab, conflicts
}

func TestBuildTableOnConflictFreeGrammar(t *testing.T) {
	g := genTestGrammar(t, "expr", []string{"+", "*", "(", ")", "id"}, []string{
		"expr -> expr + term",
		"expr -> term",
		"term -> term * factor",
		"term -> factor",
		"factor -> ( expr )",
		"factor -> id",
	})
	tab, conflicts := testBuildTable(t, g)

	if len(conflicts) != 0 {
		t.Fatalf("unexpected conflicts: %v", conflicts)
	}

	t.Run("every cell holds exactly one action", func(t *testing.T) {
		for _, entry := range tab.ActionEntries() {
			if len(entry.Actions) != 1 {
				t.Fatalf("cell (%v, %v) holds %v actions", entry.State, entry.Terminal, len(entry.Actions))
			}
		}
	})

	t.Run("state 0 shifts the firsts of the start symbol", func(t *testing.T) {
		for _, term := range []string{"(", "id"} {
			acts := tab.Action(0, NewTerminal(term))
			if len(acts) != 1 || acts[0].Type != ActionTypeShift {
				t.Fatalf("ACTION[0, %v] must be a single shift; got: %v", term, acts)
			}
		}
		if acts := tab.Action(0, NewTerminal("+")); len(acts) != 0 {
			t.Fatalf("ACTION[0, +] must be empty; got: %v", acts)
		}
	})

	t.Run("the accept action sits on the end-of-input column", func(t *testing.T) {
		accepts := 0
		for _, entry := range tab.ActionEntries() {
			for _, act := range entry.Actions {
				if act.Type != ActionTypeAccept {
					continue
				}
				accepts++
				if !entry.Terminal.IsEOF() {
					t.Fatalf("accept must be keyed by the end-of-input terminal; got: %v", entry.Terminal)
				}
			}
		}
		if accepts != 1 {
			t.Fatalf("unexpected accept count; want: %v, got: %v", 1, accepts)
		}
	})

	t.Run("the table equals itself structurally", func(t *testing.T) {
		other, _ := testBuildTable(t, genTestGrammar(t, "expr", []string{"+", "*", "(", ")", "id"}, []string{
			"expr -> expr + term",
			"expr -> term",
			"term -> term * factor",
			"term -> factor",
			"factor -> ( expr )",
			"factor -> id",
		}))
		if !tab.Equal(other) {
			t.Fatalf("tables built from identical grammars must be equal")
		}
	})
}

func TestBuildTableDetectsShiftReduceConflict(t *testing.T) {
	// The dangling-else grammar: after if e then s, the look-ahead else can
	// either extend the conditional or close an outer one.
	g := genTestGrammar(t, "s", []string{"if", "then", "else", "x", "e"}, []string{
		"s -> if cond then s",
		"s -> if cond then s else s",
		"s -> x",
		"cond -> e",
	})
	tab, conflicts := testBuildTable(t, g)

	if len(conflicts) == 0 {
		t.Fatal("expected conflicts, got none")
	}

	found := false
	for _, c := range conflicts {
		if !c.Terminal.Equal(NewTerminal("else")) {
			continue
		}
		var hasShift, hasReduce bool
		for _, act := range c.Actions {
			switch act.Type {
			case ActionTypeShift:
				hasShift = true
			case ActionTypeReduce:
				hasReduce = true
			}
		}
		if hasShift && hasReduce {
			found = true
			if len(c.Items) == 0 {
				t.Fatalf("a conflict must carry the involved items")
			}
		}
	}
	if !found {
		t.Fatalf("expected a shift/reduce conflict on else; got: %v", conflicts)
	}

	// The table stays usable: every conflict is also visible as a
	// multi-action cell.
	for _, c := range conflicts {
		acts := tab.Action(c.State, c.Terminal)
		if len(acts) < 2 {
			t.Fatalf("the conflicted cell (%v, %v) must keep all actions", c.State, c.Terminal)
		}
	}
}

func TestBuildTableDetectsReduceReduceConflict(t *testing.T) {
	g := genTestGrammar(t, "s", []string{"x"}, []string{
		"s -> a",
		"s -> b",
		"a -> x",
		"b -> x",
	})
	_, conflicts := testBuildTable(t, g)

	found := false
	for _, c := range conflicts {
		if !c.Terminal.IsEOF() {
			continue
		}
		reduces := 0
		for _, act := range c.Actions {
			if act.Type == ActionTypeReduce {
				reduces++
			}
		}
		if reduces == 2 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a reduce/reduce conflict on the end-of-input terminal; got: %v", conflicts)
	}
}

func TestNegatedTerminalLookup(t *testing.T) {
	t.Run("a negated row applies to any other terminal value", func(t *testing.T) {
		prods := []*Production[string]{
			mustProduction(t, NewNonTerminal[string]("s"), NewNegatedTerminal("a")),
		}
		g, err := NewGrammar(NewNonTerminal[string]("s"), NewTerminal("$"), prods)
		if err != nil {
			t.Fatal(err)
		}
		tab, conflicts := testBuildTable(t, g)
		if len(conflicts) != 0 {
			t.Fatalf("unexpected conflicts: %v", conflicts)
		}

		acts := tab.Action(0, NewTerminal("b"))
		if len(acts) != 1 || acts[0].Type != ActionTypeShift {
			t.Fatalf("ACTION[0, b] must fall back to the negated row; got: %v", acts)
		}
		if acts := tab.Action(0, NewTerminal("a")); len(acts) != 0 {
			t.Fatalf("the negated terminal must not match its own value; got: %v", acts)
		}
		if acts := tab.Action(0, g.EOF()); len(acts) != 0 {
			t.Fatalf("the negated terminal must not match end-of-input; got: %v", acts)
		}
	})

	t.Run("an exact row wins over a negated one", func(t *testing.T) {
		prods := []*Production[string]{
			mustProduction(t, NewNonTerminal[string]("s"), NewTerminal("a")),
			mustProduction(t, NewNonTerminal[string]("s"), NewNegatedTerminal("a")),
		}
		g, err := NewGrammar(NewNonTerminal[string]("s"), NewTerminal("$"), prods)
		if err != nil {
			t.Fatal(err)
		}
		tab, conflicts := testBuildTable(t, g)
		if len(conflicts) != 0 {
			t.Fatalf("unexpected conflicts: %v", conflicts)
		}

		exact := tab.Action(0, NewTerminal("a"))
		fallback := tab.Action(0, NewTerminal("b"))
		if len(exact) != 1 || len(fallback) != 1 {
			t.Fatalf("expected single actions; got: %v and %v", exact, fallback)
		}
		if exact[0].Equal(fallback[0]) {
			t.Fatalf("the exact row must win over the negated one")
		}
	})

	t.Run("a second negated row in one state is a conflict", func(t *testing.T) {
		prods := []*Production[string]{
			mustProduction(t, NewNonTerminal[string]("s"), NewNegatedTerminal("a")),
			mustProduction(t, NewNonTerminal[string]("s"), NewNegatedTerminal("b")),
		}
		g, err := NewGrammar(NewNonTerminal[string]("s"), NewTerminal("$"), prods)
		if err != nil {
			t.Fatal(err)
		}
		_, conflicts := testBuildTable(t, g)
		if len(conflicts) == 0 {
			t.Fatal("expected a conflict for the second negated row")
		}
	})
}

func mustProduction(t *testing.T, lhs Element[string], rhs ...Element[string]) *Production[string] {
	t.Helper()

	prod, err := NewProduction(lhs, rhs...)
	if err != nil {
		t.Fatal(err)
	}
	return prod
}
