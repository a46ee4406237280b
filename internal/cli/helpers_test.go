package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-flashgen/internal/card"
	"github.com/alnah/go-flashgen/internal/token"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	configLoader *mockConfigLoader
	provider     *mockProvider
	providers    *mockProviderFactory
	store        *memStore
	stores       *mockStoreFactory
	stdout       *syncBuffer
	stderr       *syncBuffer
}

func newTestMocks() *testMocks {
	p := &mockProvider{}
	st := &memStore{}
	return &testMocks{
		configLoader: &mockConfigLoader{},
		provider:     p,
		providers:    &mockProviderFactory{provider: p},
		store:        st,
		stores:       &mockStoreFactory{store: st},
		stdout:       &syncBuffer{},
		stderr:       &syncBuffer{},
	}
}

// ---------------------------------------------------------------------------
// testEnv - creates a fully mocked Env for testing
// ---------------------------------------------------------------------------

// testNow is the fixed clock used by testEnv.
var testNow = time.Date(2026, 1, 26, 14, 30, 52, 0, time.UTC)

// testEnvOptions configures a test environment.
type testEnvOptions struct {
	stdin  io.Reader
	getenv func(string) string
	now    func() time.Time
}

// testEnvOption configures testEnv.
type testEnvOption func(*testEnvOptions)

func withStdin(s string) testEnvOption {
	return func(o *testEnvOptions) { o.stdin = strings.NewReader(s) }
}

func withGetenv(fn func(string) string) testEnvOption {
	return func(o *testEnvOptions) { o.getenv = fn }
}

func withNow(t time.Time) testEnvOption {
	return func(o *testEnvOptions) { o.now = fixedTime(t) }
}

// testEnv creates a test Env with all dependencies mocked.
// Returns the Env and the mocks for assertions.
func testEnv(opts ...testEnvOption) (*Env, *testMocks) {
	options := &testEnvOptions{
		stdin:  strings.NewReader(""),
		getenv: defaultTestEnv,
		now:    fixedTime(testNow),
	}
	for _, opt := range opts {
		opt(options)
	}

	mocks := newTestMocks()
	env := &Env{
		Stdin:           options.stdin,
		Stdout:          mocks.stdout,
		Stderr:          mocks.stderr,
		Getenv:          options.getenv,
		Now:             options.now,
		Estimator:       token.CharEstimator{},
		ConfigLoader:    mocks.configLoader,
		ProviderFactory: mocks.providers,
		StoreFactory:    mocks.stores,
	}
	return env, mocks
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// testAPIKey is returned for OPENAI_API_KEY by defaultTestEnv.
const testAPIKey = "sk-test-openai-key"

// fixedTime returns a function that always returns the given time.
func fixedTime(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// staticEnv returns a getenv function that returns values from the given map.
func staticEnv(env map[string]string) func(string) string {
	return func(key string) string {
		return env[key]
	}
}

// defaultTestEnv returns the OpenAI API key.
func defaultTestEnv(key string) string {
	if key == EnvOpenAIAPIKey {
		return testAPIKey
	}
	return ""
}

// writeSource creates a text file for testing and returns its path.
func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create source file: %v", err)
	}
	return path
}

// cardsJSON builds a model reply with n basic cards labelled by prefix.
func cardsJSON(prefix string, n int) string {
	items := make([]string, n)
	for i := range n {
		items[i] = fmt.Sprintf(`{"type": "basic", "front": "%s question %d", "back": "answer %d", "suggested_tags": ["bio"]}`, prefix, i+1, i+1)
	}
	return `{"cards": [` + strings.Join(items, ",") + `]}`
}

// seedSession saves a session with the given cards into the mock store.
func seedSession(t *testing.T, m *testMocks, created time.Time, cards ...card.Card) *card.Session {
	t.Helper()
	s := card.NewSession("notes.txt", cards, created)
	if err := m.store.Save(s); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return s
}

// savedSession loads what the command left in the mock store.
func savedSession(t *testing.T, m *testMocks) *card.Session {
	t.Helper()
	s, err := m.store.Load()
	if err != nil {
		t.Fatalf("load saved session: %v", err)
	}
	return s
}
