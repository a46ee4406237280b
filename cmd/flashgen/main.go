package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alnah/go-flashgen/internal/apierr"
	"github.com/alnah/go-flashgen/internal/card"
	"github.com/alnah/go-flashgen/internal/cli"
	"github.com/alnah/go-flashgen/internal/config"
	"github.com/alnah/go-flashgen/internal/interrupt"
	"github.com/alnah/go-flashgen/internal/store"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitSetup      = 3
	ExitValidation = 4
	ExitGeneration = 5
	ExitInterrupt  = interrupt.ExitInterrupt
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// First Ctrl+C cancels the context, a second one exits.
	handler, ctx := interrupt.NewHandler(context.Background())
	defer handler.Stop()

	env := cli.DefaultEnv()

	var verbose bool
	rootCmd := &cobra.Command{
		Use:     "flashgen",
		Short:   "Generate, review and export Anki flashcards from text",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				env.Logger = cli.VerboseLogger(env.Stderr)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Print debug logs to stderr")

	rootCmd.AddCommand(cli.GenerateCmd(env))
	rootCmd.AddCommand(cli.EstimateCmd(env))
	rootCmd.AddCommand(cli.ReviewCmd(env))
	rootCmd.AddCommand(cli.RegenerateCmd(env))
	rootCmd.AddCommand(cli.ExportCmd(env))
	rootCmd.AddCommand(cli.TestKeyCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		code := exitCode(err)
		if handler.WasInterrupted() {
			code = ExitInterrupt
		}
		handler.Stop()
		fmt.Fprintf(os.Stderr, "Error: %s\n", apierr.Describe(err))
		os.Exit(code)
	}
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Cobra doesn't expose typed errors, so we check for known error message patterns.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	switch {
	case errors.Is(err, apierr.ErrConfiguration):
		return ExitSetup
	case errors.Is(err, apierr.ErrGeneration):
		return ExitGeneration
	}

	if errors.Is(err, apierr.ErrValidation) ||
		errors.Is(err, cli.ErrFileNotFound) || errors.Is(err, cli.ErrOutputExists) ||
		errors.Is(err, cli.ErrAmbiguousID) || errors.Is(err, cli.ErrNothingToExport) ||
		errors.Is(err, card.ErrCardNotFound) || errors.Is(err, card.ErrInvalidTransition) ||
		errors.Is(err, card.ErrInvalidStatus) || errors.Is(err, card.ErrInvalidType) ||
		errors.Is(err, card.ErrInvalidRecord) || errors.Is(err, card.ErrUnsupportedVersion) ||
		errors.Is(err, config.ErrUnknownKey) || errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrInvalidSyntax) || errors.Is(err, config.ErrNotDirectory) ||
		errors.Is(err, config.ErrNotWritable) || errors.Is(err, store.ErrNoSession) {
		return ExitValidation
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// These patterns are stable across Cobra versions (tested with v1.8+).
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"unknown command",           // Subcommand doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
