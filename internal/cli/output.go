package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alnah/go-flashgen/internal/apierr"
	"github.com/alnah/go-flashgen/internal/card"
	"github.com/alnah/go-flashgen/internal/chunk"
	"github.com/alnah/go-flashgen/internal/config"
	"github.com/alnah/go-flashgen/internal/format"
	"github.com/alnah/go-flashgen/internal/generate"
)

// stdinSource is the input argument that reads from Env.Stdin.
const stdinSource = "-"

// source is normalized input text with its display name.
type source struct {
	text string
	name string
	size int64
}

// readSource reads path, or Env.Stdin when path is "-", and normalizes it.
// An input that is empty after normalization fails with apierr.ErrValidation.
func readSource(env *Env, path string) (source, error) {
	var (
		raw  []byte
		err  error
		kind = card.SourceFile
	)
	if path == stdinSource {
		kind = card.SourcePaste
		raw, err = io.ReadAll(env.Stdin)
		if err != nil {
			return source{}, fmt.Errorf("failed to read stdin: %w", err)
		}
	} else {
		if _, statErr := os.Stat(path); statErr != nil {
			if os.IsNotExist(statErr) {
				return source{}, apierr.Validation(fmt.Errorf("%s: %w", path, ErrFileNotFound))
			}
			return source{}, fmt.Errorf("cannot access file: %w", statErr)
		}
		// #nosec G304 -- path is user-provided, validated above
		raw, err = os.ReadFile(path)
		if err != nil {
			return source{}, fmt.Errorf("failed to read file: %w", err)
		}
	}

	text := chunk.Normalize(string(raw))
	if text == "" {
		return source{}, apierr.Validation(apierr.ErrEmptyText)
	}
	return source{text: text, name: card.SourceName(path, kind), size: int64(len(raw))}, nil
}

// defaultProgressCallback returns a progress callback that writes status
// messages to w.
func defaultProgressCallback(w io.Writer) func(phase string, current, total int) {
	return func(phase string, current, total int) {
		if phase == generate.PhaseChunk {
			_, _ = fmt.Fprintf(w, "  Generating from part %d/%d...\n", current, total)
		} else {
			_, _ = fmt.Fprintln(w, "  Regenerating card...")
		}
	}
}

// sessionDir resolves the session directory from config or the XDG default.
func sessionDir(cfg config.Config) (string, error) {
	if cfg.SessionDir != "" {
		return cfg.SessionDir, nil
	}
	return config.DefaultSessionDir()
}

// loadConfig loads config, warning and continuing with defaults on failure.
func loadConfig(env *Env) config.Config {
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
		return config.Config{}
	}
	return cfg
}

// openStore returns the session store for cfg.
func openStore(env *Env, cfg config.Config) (SessionStore, error) {
	dir, err := sessionDir(cfg)
	if err != nil {
		return nil, err
	}
	return env.StoreFactory.NewStore(dir), nil
}

// loadSession loads the saved session and warns when it is expired.
func loadSession(env *Env, st SessionStore) (*card.Session, error) {
	s, expired, err := st.LoadLatest(env.Now(), card.DefaultMaxAge)
	if err != nil {
		return nil, err
	}
	if expired {
		fmt.Fprintf(env.Stderr, "Warning: session is %s old; consider generating a new one\n",
			format.Age(s.Age(env.Now())))
	}
	return s, nil
}

// findCard resolves a full id or a unique id prefix to a card id.
func findCard(s *card.Session, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if _, err := s.Card(ref); err == nil {
		return ref, nil
	}
	var match string
	for _, c := range s.Cards {
		if ref != "" && strings.HasPrefix(c.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("%q: %w", ref, ErrAmbiguousID)
			}
			match = c.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%q: %w", ref, card.ErrCardNotFound)
	}
	return match, nil
}

// shortID is the id prefix shown in listings.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// writeFileAtomic writes content to path atomically.
// It fails if the file already exists (O_EXCL), preventing accidental overwrites.
// On write failure, the partial file is removed.
func writeFileAtomic(path, content string) error {
	// #nosec G302 G304 -- user-specified output file with standard permissions
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("output file already exists: %s: %w", path, ErrOutputExists)
		}
		return fmt.Errorf("cannot create output file: %w", err)
	}

	writeErr := func() error {
		defer func() { _ = f.Close() }()
		if _, err := f.WriteString(content); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}()

	if writeErr != nil {
		_ = os.Remove(path)
		return writeErr
	}

	return nil
}
