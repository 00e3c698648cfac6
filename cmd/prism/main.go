// Command prism is the CLI front end for the Prism scripting language:
// lex, parse, run, and a line-oriented REPL, all wired to the
// internal lexer/parser/eval packages.
package main

import (
	"fmt"
	"os"

	"github.com/prism-lang/prism/cmd/prism/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	if ue, ok := err.(cmd.UsageError); ok {
		_ = ue
		return 2
	}
	return 1
}
