// Package cmd implements the prism CLI's Cobra command tree: run, lex,
// parse, repl, and version, grounded on the teacher's cmd/dwscript/cmd
// package layout (one file per subcommand, a shared rootCmd in
// root.go, persistent --verbose/--trace flags wired to a logrus
// logger instead of ad-hoc fmt.Fprintf calls).
package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/prism-lang/prism/internal/config"
)

// Version information, set by build flags in a release build.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// UsageError marks a command-line misuse (missing argument, bad
// flag combination) distinct from a runtime or parse failure, so
// main can map it to exit code 2 per the CLI's External Interfaces
// contract.
type UsageError struct{ Err error }

func (e UsageError) Error() string { return e.Err.Error() }
func (e UsageError) Unwrap() error { return e.Err }

var (
	verbose    bool
	traceFlag  bool
	configPath string

	log *logrus.Logger
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "prism",
	Short: "Prism confidence-aware scripting language",
	Long: `prism runs programs written in Prism, a small dynamically-typed
scripting language in which every runtime value carries a confidence
score and an optional context tag that compose automatically through
evaluation, variable binding, function calls, and control flow.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: loadRootConfig,
}

// Execute runs the root command, returning any error for main to
// translate into an exit code.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVar(&traceFlag, "trace", false, "debug-level evaluator logging (implies --verbose)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "prism.yaml", "path to an optional prism.yaml configuration file")
}

func loadRootConfig(*cobra.Command, []string) error {
	log = logrus.New()
	level := logrus.WarnLevel
	if verbose {
		level = logrus.InfoLevel
	}
	if traceFlag {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}
