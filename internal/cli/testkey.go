package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-flashgen/internal/apierr"
)

// TestKeyCmd creates the test-key command.
// The env parameter provides injectable dependencies for testing.
func TestKeyCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "test-key",
		Short: "Check that OPENAI_API_KEY is accepted",
		Long: `Check that OPENAI_API_KEY is accepted by the API.

The check lists the available models. It generates nothing and costs nothing.`,
		Example: `  flashgen test-key`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTestKey(cmd.Context(), env)
		},
	}
}

// runTestKey executes the test-key command.
func runTestKey(ctx context.Context, env *Env) error {
	cfg := loadConfig(env)
	gen := newGenerator(env, cfg, cfg.Model)

	ok, msg := gen.TestCredential(ctx, env.credential())
	if !ok {
		return apierr.Configuration(fmt.Errorf("%s: %w", msg, ErrKeyRejected))
	}
	fmt.Fprintln(env.Stderr, "API key is valid.")
	return nil
}
