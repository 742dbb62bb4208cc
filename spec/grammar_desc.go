// Package spec defines the JSON grammar description the CLI consumes: named
// terminals with lexical patterns and productions over symbol names. One
// document yields the grammar, the lexical rules, and the token definitions.
package spec

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shoyo-k/grackle/driver"
	"github.com/shoyo-k/grackle/driver/lexer"
	"github.com/shoyo-k/grackle/grammar"
)

// EOFTokenType is the reserved token type of the end-of-input sentinel. The
// name contains `<` and `>` to avoid conflicting with user-defined symbols.
const EOFTokenType = "<eof>"

type TerminalDesc struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Skip    bool   `json:"skip"`
}

// ProductionDesc is one production. An RHS entry names a terminal or a
// non-terminal; the prefix `-` discards the matched child from the syntax
// tree, and the prefix `!` negates a terminal ("any terminal but this one").
type ProductionDesc struct {
	LHS string   `json:"lhs"`
	RHS []string `json:"rhs"`
}

type GrammarDesc struct {
	Name        string            `json:"name"`
	Start       string            `json:"start"`
	Terminals   []*TerminalDesc   `json:"terminals"`
	Productions []*ProductionDesc `json:"productions"`
}

// Parse decodes a grammar description. Unknown fields are rejected.
func Parse(r io.Reader) (*GrammarDesc, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	d := &GrammarDesc{}
	if err := dec.Decode(d); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadedGrammar bundles everything a grammar description yields.
type LoadedGrammar struct {
	Name        string
	Grammar     *grammar.Grammar[string]
	LexRules    []*lexer.Rule[string]
	Definitions []*driver.TokenDefinition[string]
}

// Build validates a description and constructs the grammar, the lexical
// rules, and the token definitions. Terminal values and token types are the
// terminal names.
func Build(d *GrammarDesc) (*LoadedGrammar, error) {
	if d.Start == "" {
		return nil, fmt.Errorf("a grammar description needs a start symbol")
	}

	terms := map[string]grammar.Element[string]{}
	var lexRules []*lexer.Rule[string]
	var defs []*driver.TokenDefinition[string]
	skip := map[string]bool{}
	for _, td := range d.Terminals {
		if td.Name == "" || td.Name == EOFTokenType {
			return nil, fmt.Errorf("invalid terminal name: %q", td.Name)
		}
		if _, ok := terms[td.Name]; ok {
			return nil, fmt.Errorf("duplicate terminal: %v", td.Name)
		}
		if td.Pattern == "" {
			return nil, fmt.Errorf("the terminal %v needs a pattern", td.Name)
		}
		terms[td.Name] = grammar.NewTerminal(td.Name)
		skip[td.Name] = td.Skip
		lexRules = append(lexRules, &lexer.Rule[string]{
			Type:    td.Name,
			Pattern: td.Pattern,
			Skip:    td.Skip,
		})
		if !td.Skip {
			def, err := driver.NewTokenDefinition(td.Name, terms[td.Name])
			if err != nil {
				return nil, err
			}
			defs = append(defs, def)
		}
	}

	if _, ok := terms[d.Start]; ok {
		return nil, fmt.Errorf("the start symbol %v must be a non-terminal", d.Start)
	}

	var prods []*grammar.Production[string]
	for _, pd := range d.Productions {
		if _, ok := terms[pd.LHS]; ok {
			return nil, fmt.Errorf("%v is declared as a terminal and cannot have a production", pd.LHS)
		}
		var rhs []grammar.Element[string]
		for _, ref := range pd.RHS {
			e, err := resolveRef(ref, terms, skip)
			if err != nil {
				return nil, fmt.Errorf("production %v: %w", pd.LHS, err)
			}
			rhs = append(rhs, e)
		}
		prod, err := grammar.NewProduction(grammar.NewNonTerminal[string](pd.LHS), rhs...)
		if err != nil {
			return nil, err
		}
		prods = append(prods, prod)
	}

	g, err := grammar.NewGrammar(grammar.NewNonTerminal[string](d.Start), grammar.NewTerminal(EOFTokenType), prods)
	if err != nil {
		return nil, err
	}

	return &LoadedGrammar{
		Name:        d.Name,
		Grammar:     g,
		LexRules:    lexRules,
		Definitions: defs,
	}, nil
}

// resolveRef resolves one RHS entry: optional `-`/`!` prefixes followed by a
// symbol name.
func resolveRef(ref string, terms map[string]grammar.Element[string], skip map[string]bool) (grammar.Element[string], error) {
	discard := false
	negated := false
	name := ref
	for len(name) > 0 {
		if strings.HasPrefix(name, "-") && !discard {
			discard = true
			name = name[1:]
			continue
		}
		if strings.HasPrefix(name, "!") && !negated {
			negated = true
			name = name[1:]
			continue
		}
		break
	}
	if name == "" {
		return grammar.Element[string]{}, fmt.Errorf("invalid symbol reference: %q", ref)
	}

	var e grammar.Element[string]
	if _, ok := terms[name]; ok {
		if skip[name] {
			return grammar.Element[string]{}, fmt.Errorf("the skipped terminal %v cannot appear in a production", name)
		}
		if negated {
			e = grammar.NewNegatedTerminal(name)
		} else {
			e = grammar.NewTerminal(name)
		}
	} else {
		if negated {
			return grammar.Element[string]{}, fmt.Errorf("only a terminal can be negated: %q", ref)
		}
		e = grammar.NewNonTerminal[string](name)
	}
	if discard {
		e = e.Discard()
	}
	return e, nil
}
