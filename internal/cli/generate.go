package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-flashgen/internal/apierr"
	"github.com/alnah/go-flashgen/internal/card"
	"github.com/alnah/go-flashgen/internal/config"
	"github.com/alnah/go-flashgen/internal/format"
	"github.com/alnah/go-flashgen/internal/generate"
	"github.com/alnah/go-flashgen/internal/job"
)

// generateOptions holds validated options for the generate command.
type generateOptions struct {
	input      string
	sourceName string
	limit      int
	cardType   card.Type
	tags       []string
	model      string
}

// GenerateCmd creates the generate command.
// The env parameter provides injectable dependencies for testing.
func GenerateCmd(env *Env) *cobra.Command {
	var (
		sourceName string
		limit      int
		cardType   string
		tags       []string
		model      string
	)

	cmd := &cobra.Command{
		Use:   "generate <file|->",
		Short: "Generate flashcards from a text file",
		Long: `Generate flashcards from a text file, or from stdin with "-".

Long documents are split into parts that fit the model's input budget.
Parts are sent in order until the card limit is reached. The cards are
saved as a review session replacing any previous one.

Requires OPENAI_API_KEY.`,
		Example: `  flashgen generate notes.txt
  flashgen generate chapter3.md --limit 30 --type cloze --tag biology
  pbpaste | flashgen generate - --source-name "Lecture 4"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := parseGenerateOptions(args[0], sourceName, limit, cardType, tags, model)
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), env, opts)
		},
	}

	cmd.Flags().StringVar(&sourceName, "source-name", "", "Name used for the source tag (default: file name)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of cards (default: config card-limit or 20)")
	cmd.Flags().StringVarP(&cardType, "type", "t", "", "Preferred card type: basic, basic_reversed, cloze")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Extra tag applied to every card (repeatable)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model name (default: config model or gpt-4o)")

	return cmd
}

// parseGenerateOptions validates and parses CLI inputs into generateOptions.
// All parsing happens at the CLI boundary.
func parseGenerateOptions(input, sourceName string, limit int, cardType string, tags []string, model string) (generateOptions, error) {
	if limit < 0 {
		return generateOptions{}, apierr.Validation(fmt.Errorf("--limit must be positive, got %d: %w", limit, card.ErrInvalidConfig))
	}

	var parsedType card.Type
	if cardType != "" {
		t, err := card.ParseType(cardType)
		if err != nil {
			return generateOptions{}, apierr.Validation(err)
		}
		parsedType = t
	}

	return generateOptions{
		input:      input,
		sourceName: sourceName,
		limit:      limit,
		cardType:   parsedType,
		tags:       tags,
		model:      model,
	}, nil
}

// generationConfig builds the card configuration from flags, then config,
// then defaults.
func generationConfig(opts generateOptions, cfg config.Config, defaultSourceName string) card.Config {
	gc := card.DefaultConfig()
	switch {
	case opts.limit > 0:
		gc.CardLimit = opts.limit
	case cfg.CardLimit > 0:
		gc.CardLimit = cfg.CardLimit
	}
	gc.PreferredType = opts.cardType
	gc.SourceName = opts.sourceName
	if gc.SourceName == "" {
		gc.SourceName = defaultSourceName
	}
	gc.AutoTags = append(gc.AutoTags, opts.tags...)
	return gc
}

// resolveModel returns the flag model, then the config model, then "".
// An empty model lets the provider use its default.
func resolveModel(flag string, cfg config.Config) string {
	if flag != "" {
		return flag
	}
	return cfg.Model
}

// newGenerator wires a Generator for the given model.
func newGenerator(env *Env, cfg config.Config, model string) *generate.Generator {
	logger := env.logger()
	p := env.ProviderFactory.NewProvider(model, cfg.BaseURL, logger)
	return generate.New(p,
		generate.WithEstimator(env.estimator()),
		generate.WithMaxInputTokens(cfg.MaxTokens),
		generate.WithModel(model),
		generate.WithLogger(logger),
		generate.WithProgress(defaultProgressCallback(env.Stderr)),
	)
}

// runGenerate executes the generate command with validated options.
func runGenerate(ctx context.Context, env *Env, opts generateOptions) error {
	cfg := loadConfig(env)

	src, err := readSource(env, opts.input)
	if err != nil {
		return err
	}
	st, err := openStore(env, cfg)
	if err != nil {
		return err
	}

	model := resolveModel(opts.model, cfg)
	gc := generationConfig(opts, cfg, src.name)
	gen := newGenerator(env, cfg, model)

	fmt.Fprintf(env.Stderr, "Reading %s (%s)...\n", src.name, format.Size(src.size))
	fmt.Fprintf(env.Stderr, "Generating up to %d cards...\n", gc.CardLimit)

	start := env.Now()
	runner := job.NewRunner[generate.Result]()
	res, err := runner.Run(ctx, func(ctx context.Context) (generate.Result, error) {
		return gen.Generate(ctx, env.credential(), src.text, gc)
	})
	if err != nil {
		return err
	}

	s := card.NewSession(gc.SourceName, res.Cards, env.Now())
	if err := st.Save(s); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Generated %d cards from %d of %d parts in %s\n",
		len(res.Cards), res.Calls, res.Chunks, format.Elapsed(env.Now().Sub(start)))
	fmt.Fprintf(env.Stderr, "Tokens: %s, cost: %s (%s)\n",
		format.Tokens(res.TokensUsed), format.USD(res.CostUSD), res.Model)
	fmt.Fprintf(env.Stderr, "Session saved: %s\n", st.Path())
	fmt.Fprintln(env.Stderr, "Review with: flashgen review list")
	return nil
}
