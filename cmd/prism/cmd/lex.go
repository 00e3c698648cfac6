package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prism-lang/prism/internal/lexer"
	"github.com/prism-lang/prism/internal/token"
)

var (
	lexEval     string
	lexShowPos  bool
	lexOnlyErrs bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a Prism source file",
	Long:  `Scan a Prism program and print the resulting token stream, for debugging the lexer.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline source instead of reading a file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show each token's line:column")
	lexCmd.Flags().BoolVar(&lexOnlyErrs, "only-errors", false, "show only illegal tokens")
}

func runLex(_ *cobra.Command, args []string) error {
	source, _, err := readSource(lexEval, args)
	if err != nil {
		return UsageError{err}
	}

	l := lexer.New(source)
	errCount := 0
	for {
		tok := l.NextToken()
		isErr := tok.Type == token.ILLEGAL
		if isErr {
			errCount++
		}
		if !lexOnlyErrs || isErr {
			printToken(tok)
		}
		if tok.Type == token.EOF {
			break
		}
	}
	if errCount > 0 {
		return fmt.Errorf("%d illegal token(s)", errCount)
	}
	return nil
}

func printToken(tok token.Token) {
	line := fmt.Sprintf("%-12s %q", tok.Type, tok.Literal)
	if lexShowPos {
		line += fmt.Sprintf(" @%s", tok.Pos)
	}
	fmt.Fprintln(os.Stdout, line)
}
