package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/shoyo-k/grackle/driver"
	"github.com/shoyo-k/grackle/driver/lexer"
	"github.com/shoyo-k/grackle/grammar"
	"github.com/shoyo-k/grackle/spec/table"
)

func init() {
	cmd := &cobra.Command{
		Use:     "parse <table> [input]",
		Short:   "Parse an input with a previously built parsing table",
		Example: `  grackle parse grammar.table.json source.txt`,
		Args:    cobra.RangeArgs(1, 2),
		RunE:    runParse,
	}
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	tab, lexical, err := readTable(args[0])
	if err != nil {
		return &exitCodeError{
			code: 2,
			err:  err,
		}
	}
	if len(lexical) == 0 {
		return &exitCodeError{
			code: 2,
			err:  fmt.Errorf("the table %s carries no lexical rules", args[0]),
		}
	}

	var src []byte
	if len(args) > 1 {
		src, err = os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("cannot read the input file %s: %w", args[1], err)
		}
	} else {
		src, err = io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
	}

	var rules []*lexer.Rule[string]
	var defs []*driver.TokenDefinition[string]
	for _, r := range lexical {
		rules = append(rules, &lexer.Rule[string]{
			Type:    r.Value,
			Pattern: r.Pattern,
			Skip:    r.Skip,
		})
		if r.Skip {
			continue
		}
		def, err := driver.NewTokenDefinition(r.Value, grammar.NewTerminal(r.Value))
		if err != nil {
			return &exitCodeError{
				code: 2,
				err:  err,
			}
		}
		defs = append(defs, def)
	}
	rl, err := lexer.NewRegexpLexer(rules, tab.EOF().Value())
	if err != nil {
		return &exitCodeError{
			code: 2,
			err:  err,
		}
	}
	ts, err := rl.TokenStream(src)
	if err != nil {
		return &exitCodeError{
			code: 2,
			err:  err,
		}
	}

	p, err := driver.NewParser(tab, ts, defs)
	if err != nil {
		return &exitCodeError{
			code: 2,
			err:  err,
		}
	}

	root, err := p.Parse()
	if err != nil {
		var perr *driver.ParseError[string]
		var uerr *driver.UnknownTokenError[string]
		if errors.As(err, &perr) || errors.As(err, &uerr) {
			return err
		}
		return &exitCodeError{
			code: 2,
			err:  err,
		}
	}

	renderTree(root.(*driver.Node))

	return nil
}

func readTable(path string) (*grammar.ParsingTable[string], []table.LexRuleDoc[string], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open the table file %s: %w", path, err)
	}
	defer f.Close()

	doc, err := table.Read[string](f)
	if err != nil {
		return nil, nil, err
	}
	tab, err := doc.Table()
	if err != nil {
		return nil, nil, err
	}
	return tab, doc.Lexical, nil
}

// renderTree prints the syntax tree the way the terex REPL renders lists:
// a leveled list handed to pterm's tree printer.
func renderTree(root *driver.Node) {
	ll := leveledNodes(root, pterm.LeveledList{}, 0)
	pterm.DefaultTree.WithRoot(pterm.NewTreeFromLeveledList(ll)).Render()
}

func leveledNodes(node *driver.Node, ll pterm.LeveledList, level int) pterm.LeveledList {
	text := node.KindName
	if node.Text != "" {
		text = fmt.Sprintf("%v %#v", node.KindName, node.Text)
	}
	ll = append(ll, pterm.LeveledListItem{
		Level: level,
		Text:  text,
	})
	for _, child := range node.Children {
		ll = leveledNodes(child, ll, level+1)
	}
	return ll
}
