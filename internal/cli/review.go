package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alnah/go-flashgen/internal/card"
	"github.com/alnah/go-flashgen/internal/format"
)

// previewWidth bounds the front text shown by review list.
const previewWidth = 60

// ReviewCmd creates the review command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ReviewCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review the cards of the saved session",
		Long: `List, approve and reject the cards of the saved session.

Cards are referenced by id or by a unique id prefix as shown by "review list".
Only approved cards are exported.`,
		Example: `  flashgen review list
  flashgen review list --status pending
  flashgen review approve 3f2a9c1e 77b0
  flashgen review reject 3f2a9c1e`,
	}

	cmd.AddCommand(reviewListCmd(env))
	cmd.AddCommand(reviewSetCmd(env, "approve", card.StatusApproved))
	cmd.AddCommand(reviewSetCmd(env, "reject", card.StatusRejected))
	cmd.AddCommand(reviewSetCmd(env, "reset", card.StatusPending))

	return cmd
}

// reviewListCmd creates the "review list" subcommand.
func reviewListCmd(env *Env) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the session's cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter card.Status
			if status != "" {
				st, err := card.ParseStatus(status)
				if err != nil {
					return err
				}
				filter = st
			}
			return runReviewList(env, filter)
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Only show cards with this status: pending, approved, rejected")

	return cmd
}

// reviewSetCmd creates a subcommand moving cards to next.
func reviewSetCmd(env *Env, name string, next card.Status) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <card-id>...",
		Short: fmt.Sprintf("Mark cards as %s", next),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReviewSet(env, next, args)
		},
	}
}

// runReviewList prints the session summary and one line per card.
func runReviewList(env *Env, filter card.Status) error {
	st, err := openStore(env, loadConfig(env))
	if err != nil {
		return err
	}
	s, err := loadSession(env, st)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Stdout, "Session %s: %s, created %s ago\n",
		shortID(s.ID), s.SourceName, format.Age(s.Age(env.Now())))
	fmt.Fprintf(env.Stdout, "%d cards: %d pending, %d approved\n\n",
		len(s.Cards), len(s.Pending()), len(s.Approved()))

	tw := tabwriter.NewWriter(env.Stdout, 0, 0, 2, ' ', 0)
	for _, c := range s.Cards {
		if filter != "" && c.Status != filter {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", shortID(c.ID), c.Status, c.Type, preview(c.Front))
	}
	return tw.Flush()
}

// runReviewSet moves every referenced card to next and saves once.
// Nothing is saved when any reference or transition is invalid.
func runReviewSet(env *Env, next card.Status, refs []string) error {
	st, err := openStore(env, loadConfig(env))
	if err != nil {
		return err
	}
	s, err := loadSession(env, st)
	if err != nil {
		return err
	}

	for _, ref := range refs {
		id, err := findCard(s, ref)
		if err != nil {
			return err
		}
		if err := s.SetStatus(id, next); err != nil {
			return err
		}
	}
	if err := st.Save(s); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Marked %d card(s) %s (%d approved, %d pending)\n",
		len(refs), next, len(s.Approved()), len(s.Pending()))
	return nil
}

// preview flattens text to one line of at most previewWidth runes.
func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= previewWidth {
		return text
	}
	return string(runes[:previewWidth-3]) + "..."
}
