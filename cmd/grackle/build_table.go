package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	verr "github.com/shoyo-k/grackle/error"
	"github.com/shoyo-k/grackle/grammar"
	"github.com/shoyo-k/grackle/spec"
	"github.com/shoyo-k/grackle/spec/table"
)

var buildTableFlags = struct {
	output *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "build-table <grammar>",
		Short:   "Build an LR(1) parsing table from a grammar description",
		Example: `  grackle build-table grammar.json -o grammar.table.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runBuildTable,
	}
	buildTableFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	rootCmd.AddCommand(cmd)
}

func runBuildTable(cmd *cobra.Command, args []string) error {
	grmPath := args[0]
	loaded, err := readGrammar(grmPath)
	if err != nil {
		return err
	}

	for _, w := range loaded.Grammar.Warnings() {
		pterm.Warning.Println(w)
	}

	tab, conflicts, err := grammar.BuildTable(loaded.Grammar)
	if err != nil {
		return err
	}

	var lexical []table.LexRuleDoc[string]
	for _, r := range loaded.LexRules {
		lexical = append(lexical, table.LexRuleDoc[string]{
			Value:   r.Type,
			Pattern: r.Pattern,
			Skip:    r.Skip,
		})
	}
	doc, err := table.NewDoc(tab, lexical)
	if err != nil {
		return err
	}

	w := os.Stdout
	if *buildTableFlags.output != "" {
		f, err := os.OpenFile(*buildTableFlags.output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("cannot open the output file %s: %w", *buildTableFlags.output, err)
		}
		defer f.Close()
		w = f
	}
	if err := table.Write(w, doc); err != nil {
		return err
	}

	if len(conflicts) > 0 {
		// Execute prints the error to stderr; the table has been written
		// regardless so the conflicts can be inspected with `show`.
		return &exitCodeError{
			code: 2,
			err:  &grammar.ConflictError[string]{Conflicts: conflicts},
		}
	}

	return nil
}

func readGrammar(path string) (*spec.LoadedGrammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open the grammar file %s: %w", path, err)
	}
	defer f.Close()

	desc, err := spec.Parse(f)
	if err != nil {
		return nil, &verr.SpecError{
			Cause:      err,
			SourceName: path,
		}
	}
	loaded, err := spec.Build(desc)
	if err != nil {
		return nil, &verr.SpecError{
			Cause:      err,
			SourceName: path,
		}
	}
	return loaded, nil
}
