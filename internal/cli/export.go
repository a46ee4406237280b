package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-flashgen/internal/config"
	"github.com/alnah/go-flashgen/internal/export"
)

// defaultExportSuffix is appended to the session's source name for the
// default export file name.
const defaultExportSuffix = "_flashcards.txt"

// ExportCmd creates the export command.
// The env parameter provides injectable dependencies for testing.
func ExportCmd(env *Env) *cobra.Command {
	var (
		output string
		deck   string
		remove bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export approved cards as an Anki import file",
		Long: `Export the approved cards of the saved session as a tab-separated file
for Anki's File > Import.

Card fields are HTML-sanitized. Cards that fail validation are skipped and
reported. Existing files are never overwritten.`,
		Example: `  flashgen export
  flashgen export -o biology.txt --deck "Biology::Cells"
  flashgen export --clear`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(env, output, deck, remove)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path, relative to export-dir when set (default: <source>_flashcards.txt)")
	cmd.Flags().StringVar(&deck, "deck", "", "Target deck (default: config deck or Default)")
	cmd.Flags().BoolVar(&remove, "clear", false, "Delete the session after a successful export")

	return cmd
}

// exportFileName derives the default export name from a source name.
// Example: "Bio 101.pdf" -> "Bio_101_flashcards.txt"
func exportFileName(sourceName string) string {
	base := strings.TrimSuffix(filepath.Base(sourceName), filepath.Ext(sourceName))
	base = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':':
			return '_'
		}
		return r
	}, base)
	if base == "" || base == "." {
		base = "session"
	}
	return base + defaultExportSuffix
}

// runExport executes the export command.
func runExport(env *Env, output, deck string, remove bool) error {
	cfg := loadConfig(env)
	st, err := openStore(env, cfg)
	if err != nil {
		return err
	}
	s, err := loadSession(env, st)
	if err != nil {
		return err
	}
	if len(s.Approved()) == 0 {
		return fmt.Errorf("%w (approve cards with: flashgen review approve <card-id>)", ErrNothingToExport)
	}

	if deck == "" {
		deck = cfg.Deck
	}
	path := config.ResolveOutputPath(config.ExpandPath(output), cfg.ExportDir, exportFileName(s.SourceName))

	var buf strings.Builder
	res, err := export.Write(&buf, s, deck)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, buf.String()); err != nil {
		return err
	}

	for _, sk := range res.Skipped {
		fmt.Fprintf(env.Stderr, "Skipped %s: %v\n", shortID(sk.ID), sk.Err)
	}
	fmt.Fprintf(env.Stderr, "Exported %d card(s) to %s\n", res.Imported, path)

	if remove {
		if err := st.Delete(); err != nil {
			return err
		}
		fmt.Fprintln(env.Stderr, "Session deleted.")
	}
	return nil
}
