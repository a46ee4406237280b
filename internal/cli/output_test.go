package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-flashgen/internal/apierr"
	"github.com/alnah/go-flashgen/internal/card"
	"github.com/alnah/go-flashgen/internal/config"
	"github.com/alnah/go-flashgen/internal/generate"
)

// Notes:
// - Helpers shared by several commands; each is a pure function or takes
//   an Env with in-memory dependencies.

// ---------------------------------------------------------------------------
// TestReadSource - file and stdin input
// ---------------------------------------------------------------------------

func TestReadSource(t *testing.T) {
	t.Parallel()

	t.Run("file", func(t *testing.T) {
		t.Parallel()

		env, _ := testEnv()
		path := writeSource(t, "Bio 101.md", "Line one\r\n\r\n\r\n\r\nLine  two\n")

		src, err := readSource(env, path)
		if err != nil {
			t.Fatalf("readSource() unexpected error: %v", err)
		}
		if src.text != "Line one\n\nLine two" {
			t.Errorf("text = %q, want normalized", src.text)
		}
		if src.name != "Bio 101.md" {
			t.Errorf("name = %q, want base name", src.name)
		}
		if src.size != int64(len("Line one\r\n\r\n\r\n\r\nLine  two\n")) {
			t.Errorf("size = %d, want raw byte count", src.size)
		}
	})

	t.Run("stdin", func(t *testing.T) {
		t.Parallel()

		env, _ := testEnv(withStdin("pasted"))
		src, err := readSource(env, stdinSource)
		if err != nil {
			t.Fatal(err)
		}
		if src.text != "pasted" || src.name != "pasted_text" {
			t.Errorf("source = %+v", src)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		env, _ := testEnv()
		_, err := readSource(env, filepath.Join(t.TempDir(), "nope.txt"))
		if !errors.Is(err, ErrFileNotFound) || !errors.Is(err, apierr.ErrValidation) {
			t.Errorf("error = %v, want ErrFileNotFound under ErrValidation", err)
		}
	})

	t.Run("whitespace only", func(t *testing.T) {
		t.Parallel()

		env, _ := testEnv(withStdin("  \r\n\t\n"))
		if _, err := readSource(env, stdinSource); !errors.Is(err, apierr.ErrEmptyText) {
			t.Errorf("error = %v, want ErrEmptyText", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestFindCard - id and prefix resolution
// ---------------------------------------------------------------------------

func TestFindCard(t *testing.T) {
	t.Parallel()

	s := card.NewSession("notes", []card.Card{
		testCard("3f2a9c1e-aaaa", card.StatusPending, "Q1"),
		testCard("3f2b0000-bbbb", card.StatusPending, "Q2"),
		testCard("77b01234-cccc", card.StatusPending, "Q3"),
	}, testNow)

	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr error
	}{
		{"full id", "77b01234-cccc", "77b01234-cccc", nil},
		{"unique prefix", "3f2a", "3f2a9c1e-aaaa", nil},
		{"padded prefix", " 77b ", "77b01234-cccc", nil},
		{"ambiguous prefix", "3f2", "", ErrAmbiguousID},
		{"no match", "ffff", "", card.ErrCardNotFound},
		{"empty", "", "", card.ErrCardNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := findCard(s, tt.ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("findCard(%q) error = %v, want %v", tt.ref, err, tt.wantErr)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("findCard(%q) = %q, %v; want %q", tt.ref, got, err, tt.want)
			}
		})
	}
}

func TestShortID(t *testing.T) {
	t.Parallel()

	if got := shortID("3f2a9c1e-1234-5678"); got != "3f2a9c1e" {
		t.Errorf("shortID() = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID(short) = %q", got)
	}
}

// ---------------------------------------------------------------------------
// TestWriteFileAtomic - no-clobber writes
// ---------------------------------------------------------------------------

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.txt")

	if err := writeFileAtomic(path, "first"); err != nil {
		t.Fatalf("writeFileAtomic() unexpected error: %v", err)
	}
	if err := writeFileAtomic(path, "second"); !errors.Is(err, ErrOutputExists) {
		t.Errorf("second write error = %v, want ErrOutputExists", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first" {
		t.Errorf("content = %q, want first write kept", data)
	}

	if err := writeFileAtomic(filepath.Join(t.TempDir(), "missing", "out.txt"), "x"); err == nil || errors.Is(err, ErrOutputExists) {
		t.Errorf("write into missing dir error = %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestLoadConfig / TestSessionDir / TestProgress
// ---------------------------------------------------------------------------

func TestLoadConfig_WarnsOnError(t *testing.T) {
	t.Parallel()

	env, m := testEnv()
	m.configLoader.LoadFunc = func() (config.Config, error) {
		return config.Config{}, config.ErrInvalidSyntax
	}

	cfg := loadConfig(env)
	if cfg != (config.Config{}) {
		t.Errorf("loadConfig() = %+v, want zero config", cfg)
	}
	if !strings.Contains(m.stderr.String(), "Warning: failed to load config") {
		t.Errorf("stderr = %q", m.stderr.String())
	}
}

func TestSessionDir(t *testing.T) {
	// Cannot use t.Parallel() with t.Setenv()

	t.Setenv("XDG_DATA_HOME", "/data")

	if got, _ := sessionDir(config.Config{SessionDir: "/custom"}); got != "/custom" {
		t.Errorf("sessionDir(custom) = %q", got)
	}
	if got, _ := sessionDir(config.Config{}); got != filepath.Join("/data", "go-flashgen") {
		t.Errorf("sessionDir(default) = %q", got)
	}
}

func TestDefaultProgressCallback(t *testing.T) {
	t.Parallel()

	buf := &syncBuffer{}
	cb := defaultProgressCallback(buf)
	cb(generate.PhaseChunk, 2, 5)
	cb(generate.PhaseRegenerate, 1, 1)

	want := "  Generating from part 2/5...\n  Regenerating card...\n"
	if got := buf.String(); got != want {
		t.Errorf("progress output = %q, want %q", got, want)
	}
}

func TestLoadSession_Fresh(t *testing.T) {
	t.Parallel()

	env, m := testEnv()
	seedSession(t, m, testNow.Add(-time.Hour), testCard("aaaa1111", card.StatusPending, "Q"))

	s, err := loadSession(env, m.store)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Cards) != 1 || m.stderr.String() != "" {
		t.Errorf("loadSession() = %d cards, stderr %q", len(s.Cards), m.stderr.String())
	}
}
