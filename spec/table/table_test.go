package table

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shoyo-k/grackle/grammar"
)

func testTable(t *testing.T) *grammar.ParsingTable[string] {
	t.Helper()

	n := grammar.NewNonTerminal[string]
	term := grammar.NewTerminal[string]

	var prods []*grammar.Production[string]
	add := func(lhs grammar.Element[string], rhs ...grammar.Element[string]) {
		t.Helper()
		prod, err := grammar.NewProduction(lhs, rhs...)
		if err != nil {
			t.Fatal(err)
		}
		prods = append(prods, prod)
	}
	add(n("e"), n("e"), term("+"), n("t"))
	add(n("e"), n("t"))
	add(n("t"), n("t"), term("*"), n("f"))
	add(n("t"), n("f"))
	add(n("f"), term("(").Discard(), n("e"), term(")").Discard())
	add(n("f"), term("id"))

	g, err := grammar.NewGrammar(n("e"), term("$"), prods)
	if err != nil {
		t.Fatal(err)
	}
	tab, conflicts, err := grammar.BuildTable(g)
	if err != nil {
		t.Fatal(err)
	}
	if len(conflicts) > 0 {
		t.Fatalf("unexpected conflicts: %v", conflicts)
	}
	return tab
}

func testDoc(t *testing.T) *Doc[string] {
	t.Helper()

	doc, err := NewDoc(testTable(t), []LexRuleDoc[string]{
		{Value: "id", Pattern: `[a-z]+`},
		{Value: "ws", Pattern: `[ \t]+`, Skip: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestRoundTrip(t *testing.T) {
	tab := testTable(t)
	doc, err := NewDoc(tab, nil)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		t.Fatal(err)
	}
	loaded, err := Read[string](&buf)
	if err != nil {
		t.Fatal(err)
	}
	restored, err := loaded.Table()
	if err != nil {
		t.Fatal(err)
	}

	if !tab.Equal(restored) {
		t.Fatalf("load(save(table)) must equal the table")
	}
	if len(restored.Conflicts()) != 0 {
		t.Fatalf("a restored conflict-free table must stay conflict-free")
	}
}

func TestRoundTripKeepsLexicalRules(t *testing.T) {
	doc := testDoc(t)

	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		t.Fatal(err)
	}
	loaded, err := Read[string](&buf)
	if err != nil {
		t.Fatal(err)
	}

	if len(loaded.Lexical) != 2 {
		t.Fatalf("unexpected lexical rule count; want: %v, got: %v", 2, len(loaded.Lexical))
	}
	if loaded.Lexical[1].Value != "ws" || !loaded.Lexical[1].Skip {
		t.Fatalf("unexpected lexical rule: %+v", loaded.Lexical[1])
	}
}

// mutateDoc encodes the document, applies edit to the raw JSON object, and
// returns the re-encoded bytes.
func mutateDoc(t *testing.T, doc *Doc[string], edit func(raw map[string]interface{})) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		t.Fatal(err)
	}
	raw := map[string]interface{}{}
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	edit(raw)
	b, err := json.Marshal(raw)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestReadRejectsMalformedDocuments(t *testing.T) {
	tests := []struct {
		caption string
		edit    func(raw map[string]interface{})
	}{
		{
			caption: "an unknown version",
			edit: func(raw map[string]interface{}) {
				raw["version"] = DocVersion + 1
			},
		},
		{
			caption: "an unknown field",
			edit: func(raw map[string]interface{}) {
				raw["comment"] = "hand-edited"
			},
		},
		{
			caption: "a production list that does not match the fingerprint",
			edit: func(raw map[string]interface{}) {
				raw["productions"] = raw["productions"].([]interface{})[:1]
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			b := mutateDoc(t, testDoc(t), tt.edit)
			_, err := Read[string](bytes.NewReader(b))
			var serr *SerializationError
			if !errors.As(err, &serr) {
				t.Fatalf("expected a SerializationError; got: %v", err)
			}
		})
	}
}

func TestTableRejectsDanglingReferences(t *testing.T) {
	doc := testDoc(t)
	doc.GoTo[0].Next = 10000

	if _, err := doc.Table(); err == nil {
		t.Fatal("expected an error for an out-of-range GOTO target")
	}
}
