package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var parseEval string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a Prism source file and print its AST",
	Long: `Parse a Prism program and print its parsed AST using each node's
String() rendering. Reads from stdin if no file or -e is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEval, "eval", "e", "", "parse inline source instead of reading a file")
}

func runParse(_ *cobra.Command, args []string) error {
	var source, filename string
	switch {
	case parseEval != "":
		source, filename = parseEval, "<eval>"
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		source, filename = string(data), args[0]
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		source, filename = string(data), "<stdin>"
	}

	program, err := parseSource(source, filename)
	if err != nil {
		return err
	}
	fmt.Println(program.String())
	return nil
}
