package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-flashgen/internal/cost"
	"github.com/alnah/go-flashgen/internal/format"
)

// EstimateCmd creates the estimate command.
// The env parameter provides injectable dependencies for testing.
func EstimateCmd(env *Env) *cobra.Command {
	var (
		model  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "estimate <file|->",
		Short: "Estimate tokens and cost before generating",
		Long: `Estimate the tokens and USD cost of generating flashcards from a text.

The estimate is computed locally and needs no API key. Output tokens are
projected at half the input tokens.

Priced models: ` + strings.Join(cost.Models(), ", ") + `.
Other models are priced as ` + cost.DefaultModel + `.`,
		Example: `  flashgen estimate notes.txt
  flashgen estimate notes.txt --model gpt-4o-mini --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(env, args[0], model, asJSON)
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Model to price (default: config model or gpt-4o)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the estimate as JSON")

	return cmd
}

// runEstimate executes the estimate command.
func runEstimate(env *Env, input, model string, asJSON bool) error {
	cfg := loadConfig(env)

	src, err := readSource(env, input)
	if err != nil {
		return err
	}

	model = resolveModel(model, cfg)
	est := newGenerator(env, cfg, model).EstimateCost(src.text)

	if asJSON {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(est)
	}

	if _, known := cost.PriceOf(est.Model); !known {
		fmt.Fprintf(env.Stderr, "Warning: no pricing for %q, using %s rates\n", est.Model, cost.DefaultModel)
	}
	fmt.Fprintf(env.Stdout, "Source:         %s\n", src.name)
	fmt.Fprintf(env.Stdout, "Model:          %s\n", est.Model)
	fmt.Fprintf(env.Stdout, "Tokens:         %s\n", format.Tokens(est.EstimatedTokens))
	fmt.Fprintf(env.Stdout, "Estimated cost: %s\n", format.USD(est.EstimatedCostUSD))
	return nil
}
