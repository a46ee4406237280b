package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-flashgen/internal/card"
	"github.com/alnah/go-flashgen/internal/job"
)

// RegenerateCmd creates the regenerate command.
// The env parameter provides injectable dependencies for testing.
func RegenerateCmd(env *Env) *cobra.Command {
	var (
		sourcePath string
		hint       string
		model      string
	)

	cmd := &cobra.Command{
		Use:   "regenerate <card-id>",
		Short: "Replace a card with a freshly generated one",
		Long: `Reject a card and ask the model for a replacement.

The start of the source text is sent as context, with an optional hint
describing what was wrong. The new card takes the old card's place in the
session and starts pending. If generation fails the card stays rejected.

Requires OPENAI_API_KEY.`,
		Example: `  flashgen regenerate 3f2a9c1e --source notes.txt
  flashgen regenerate 3f2a --source notes.txt --hint "ask about the mechanism, not the date"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegenerate(cmd.Context(), env, args[0], sourcePath, hint, model)
		},
	}

	cmd.Flags().StringVar(&sourcePath, "source", "", "Source text file the card came from, or - for stdin (required)")
	cmd.Flags().StringVar(&hint, "hint", "", "What the new card should do differently")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model name (default: config model or gpt-4o)")

	// Error is ignored: MarkFlagRequired only fails if flag doesn't exist,
	// which is a programming error caught at development time.
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

// runRegenerate executes the regenerate command.
func runRegenerate(ctx context.Context, env *Env, ref, sourcePath, hint, model string) error {
	cfg := loadConfig(env)

	src, err := readSource(env, sourcePath)
	if err != nil {
		return err
	}
	st, err := openStore(env, cfg)
	if err != nil {
		return err
	}
	s, err := loadSession(env, st)
	if err != nil {
		return err
	}
	id, err := findCard(s, ref)
	if err != nil {
		return err
	}

	// The card passes through rejected so any reviewed status may be regenerated.
	if err := s.SetStatus(id, card.StatusRejected); err != nil {
		return err
	}
	if err := s.SetStatus(id, card.StatusRegenerating); err != nil {
		return err
	}
	rejected, err := s.Card(id)
	if err != nil {
		return err
	}
	if err := st.Save(s); err != nil {
		return err
	}

	gen := newGenerator(env, cfg, resolveModel(model, cfg))
	runner := job.NewRunner[card.Card]()
	replacement, err := runner.Run(ctx, func(ctx context.Context) (card.Card, error) {
		return gen.Regenerate(ctx, env.credential(), rejected, src.text, hint)
	})
	if err != nil {
		restoreRejected(env, st, s, id)
		return err
	}

	if err := s.Replace(id, replacement); err != nil {
		return err
	}
	if err := st.Save(s); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Replaced %s with %s (%s)\n", shortID(id), shortID(replacement.ID), replacement.Type)
	fmt.Fprintf(env.Stdout, "Front: %s\n", replacement.Front)
	if replacement.Back != "" {
		fmt.Fprintf(env.Stdout, "Back:  %s\n", replacement.Back)
	}
	return nil
}

// restoreRejected moves a card whose regeneration failed back to rejected and
// saves the session. Failures are only logged; the caller reports the
// regeneration error.
func restoreRejected(env *Env, st SessionStore, s *card.Session, id string) {
	if err := s.SetStatus(id, card.StatusRejected); err != nil {
		env.logger().Debug("failed to restore rejected status", "id", id, "error", err)
		return
	}
	if err := st.Save(s); err != nil {
		env.logger().Debug("failed to save restored status", "id", id, "error", err)
	}
}
