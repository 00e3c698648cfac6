package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	prismerrors "github.com/prism-lang/prism/internal/errors"
)

var replHistoryPath string

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive Prism session",
	Long: `Start a line-oriented read-eval-print loop that parses and runs each
line the same way "prism run" does, sharing one Evaluator (and its environment,
context stack, and module registry) across every line typed. Each
accepted line is appended to the history file, one line per entry.`,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
	home, _ := os.UserHomeDir()
	defaultHistory := filepath.Join(home, ".prism_history")
	replCmd.Flags().StringVar(&replHistoryPath, "history", defaultHistory, "path to the REPL history file")
}

func runRepl(_ *cobra.Command, _ []string) error {
	ev := newEvaluator()
	history, err := os.OpenFile(replHistoryPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.WithError(err).Warn("could not open REPL history file; continuing without history")
	}
	if history != nil {
		defer history.Close()
	}

	fmt.Println("prism REPL. Enter an expression or statement; Ctrl-D to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("prism> ")
		if !scanner.Scan() {
			fmt.Println()
			return nil
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		if history != nil {
			fmt.Fprintln(history, line)
		}

		program, perr := parseSource(line, "<repl>")
		if perr != nil {
			fmt.Fprintln(os.Stderr, perr)
			continue
		}
		result, err := ev.Run(program)
		if err != nil {
			if pe, ok := err.(*prismerrors.PrismError); ok {
				fmt.Fprintln(os.Stderr, pe.Format(line))
			} else {
				fmt.Fprintln(os.Stderr, err)
			}
			continue
		}
		fmt.Println(result.String())
	}
}
