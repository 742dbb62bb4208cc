package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "grackle",
	Short: "Generate a canonical LR(1) parsing table from a grammar and run it",
	Long: `grackle provides two features:
- Builds a portable LR(1) parsing table from a grammar description,
  reporting every conflict the grammar has.
- Parses an input with a previously built table and prints the
  concrete syntax tree.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}

// exitCodeError carries the process exit code a failed command asks for.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string {
	return e.err.Error()
}

func (e *exitCodeError) Unwrap() error {
	return e.err
}

func exitCode(err error) int {
	var ec *exitCodeError
	if errors.As(err, &ec) {
		return ec.code
	}
	return 1
}
