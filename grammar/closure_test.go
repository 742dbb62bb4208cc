package grammar

import "testing"

func testClosureFixture(t *testing.T) (*Grammar[string], *firstSet[string], *itemSet[string]) {
	t.Helper()

	g := genTestGrammar(t, "s", []string{"(", ")"}, []string{
		"s -> ( s )",
		"s ->",
	})
	fst, err := genFirstSet(g.prods)
	if err != nil {
		t.Fatal(err)
	}
	initial, err := NewItem(g.StartProduction(), g.EOF())
	if err != nil {
		t.Fatal(err)
	}
	set, err := closure(g, fst, []*Item[string]{initial})
	if err != nil {
		t.Fatal(err)
	}
	return g, fst, set
}

func TestClosure(t *testing.T) {
	t.Run("the initial closure derives every production of the dotted non-terminal", func(t *testing.T) {
		g, _, set := testClosureFixture(t)

		// S' →・s, $ plus s →・( s ), $ and s →・, $.
		if set.size() != 3 {
			t.Fatalf("unexpected item count; want: %v, got: %v", 3, set.size())
		}

		prods, _ := g.ProductionsOf(NewNonTerminal[string]("s"))
		for _, prod := range prods {
			item, err := NewItem(prod, g.EOF())
			if err != nil {
				t.Fatal(err)
			}
			if !set.contains(item) {
				t.Fatalf("an item is missing from the closure: %v", item)
			}
		}
	})

	t.Run("closure is idempotent", func(t *testing.T) {
		g, fst, set := testClosureFixture(t)

		again, err := closure(g, fst, set.items())
		if err != nil {
			t.Fatal(err)
		}
		if !set.equal(again) {
			t.Fatalf("closure(closure(S)) must equal closure(S)")
		}
		if set.id() != again.id() {
			t.Fatalf("canonical ids of equal sets must match")
		}
	})

	t.Run("iteration order is reproducible", func(t *testing.T) {
		_, _, set1 := testClosureFixture(t)
		_, _, set2 := testClosureFixture(t)

		items1 := set1.items()
		items2 := set2.items()
		if len(items1) != len(items2) {
			t.Fatalf("closures of the same seed differ in size")
		}
		for i := range items1 {
			if !items1[i].Equal(items2[i]) {
				t.Fatalf("iteration order differs at %v; %v vs %v", i, items1[i], items2[i])
			}
		}
	})
}

func TestFollowOf(t *testing.T) {
	g := genTestGrammar(t, "s", []string{"a", "b"}, []string{
		"s -> x opt b",
		"opt -> a",
		"opt ->",
		"x -> a",
	})
	fst, err := genFirstSet(g.prods)
	if err != nil {
		t.Fatal(err)
	}

	prods, _ := g.ProductionsOf(NewNonTerminal[string]("s"))
	item, err := NewItem(prods[0], g.EOF())
	if err != nil {
		t.Fatal(err)
	}

	// For s →・x opt b, the look-ahead set of x's derivations is
	// FIRST(opt b $) = {a, b}; opt is nullable so b shows through, and the
	// item's own look-ahead stays hidden behind the non-nullable b.
	las, err := followOf(fst, item)
	if err != nil {
		t.Fatal(err)
	}
	want := newElementSet(NewTerminal("a"), NewTerminal("b"))
	if len(las) != want.size() {
		t.Fatalf("unexpected look-ahead count; want: %v, got: %v", want.size(), len(las))
	}
	for _, la := range las {
		if !want.contains(la) {
			t.Fatalf("unexpected look-ahead: %v", la)
		}
	}

	// For a reducible item the look-ahead set is the item's own look-ahead.
	reducible, err := NewItemAt(prods[0], prods[0].RHSLen(), g.EOF())
	if err != nil {
		t.Fatal(err)
	}
	las, err = followOf(fst, reducible)
	if err != nil {
		t.Fatal(err)
	}
	if len(las) != 1 || !las[0].Equal(g.EOF()) {
		t.Fatalf("unexpected look-aheads for a reducible item: %v", las)
	}
}
