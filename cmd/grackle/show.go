package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "show <table>",
		Short:   "Describe the states, actions, and conflicts of a parsing table",
		Example: `  grackle show grammar.table.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	tab, _, err := readTable(args[0])
	if err != nil {
		return &exitCodeError{
			code: 2,
			err:  err,
		}
	}

	pterm.DefaultSection.Println("Productions")
	for i, prod := range tab.Productions() {
		fmt.Printf("  %3d: %v\n", i, prod)
	}

	conflicts := tab.Conflicts()
	conflicted := map[int]bool{}
	for _, c := range conflicts {
		conflicted[c.State] = true
	}

	pterm.DefaultSection.Println("States")
	for i := 0; i < tab.StateCount(); i++ {
		marker := ""
		if conflicted[i] {
			marker = " (conflicted)"
		}
		fmt.Printf("state %v%v\n", i, marker)
		for _, item := range tab.StateItems(i) {
			fmt.Printf("    %v\n", item)
		}

		data := pterm.TableData{{"terminal", "actions"}}
		for _, entry := range tab.ActionEntries() {
			if entry.State != i {
				continue
			}
			var acts []string
			for _, a := range entry.Actions {
				acts = append(acts, a.String())
			}
			data = append(data, []string{entry.Terminal.String(), strings.Join(acts, " / ")})
		}
		if len(data) > 1 {
			pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		}
		for _, entry := range tab.GoToEntries() {
			if entry.State != i {
				continue
			}
			fmt.Printf("    goto %v → %v\n", entry.NonTerminal, entry.Next)
		}
		fmt.Println()
	}

	if len(conflicts) > 0 {
		pterm.DefaultSection.Println("Conflicts")
		for _, c := range conflicts {
			pterm.Error.Println(c)
			for _, item := range c.Items {
				fmt.Printf("    %v\n", item)
			}
		}
	}

	return nil
}
