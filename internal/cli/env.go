package cli

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alnah/go-flashgen/internal/card"
	"github.com/alnah/go-flashgen/internal/config"
	"github.com/alnah/go-flashgen/internal/generate"
	"github.com/alnah/go-flashgen/internal/provider"
	"github.com/alnah/go-flashgen/internal/store"
	"github.com/alnah/go-flashgen/internal/token"
)

// EnvOpenAIAPIKey holds the credential. It is read per command and never
// written to config or session files.
const EnvOpenAIAPIKey = "OPENAI_API_KEY"

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	Now    func() time.Time
	Logger *slog.Logger

	// Estimator counts tokens; nil selects token.New at first use.
	Estimator token.Estimator

	// Factories for domain objects
	ConfigLoader    ConfigLoader
	ProviderFactory ProviderFactory
	StoreFactory    StoreFactory
}

// ConfigLoader loads and provides access to configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// ProviderFactory creates the model provider used for generation.
type ProviderFactory interface {
	NewProvider(model, baseURL string, logger *slog.Logger) generate.Provider
}

// SessionStore persists the review session between commands.
type SessionStore interface {
	Save(s *card.Session) error
	Load() (*card.Session, error)
	LoadLatest(now time.Time, maxAge time.Duration) (*card.Session, bool, error)
	Delete() error
	Path() string
}

// StoreFactory opens the session store rooted at a directory.
type StoreFactory interface {
	NewStore(dir string) SessionStore
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdin sets the reader used for "-" inputs.
func WithStdin(r io.Reader) EnvOption {
	return func(e *Env) {
		e.Stdin = r
	}
}

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) {
		e.Now = fn
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) EnvOption {
	return func(e *Env) {
		e.Logger = l
	}
}

// WithEstimator sets the token estimator.
func WithEstimator(est token.Estimator) EnvOption {
	return func(e *Env) {
		e.Estimator = est
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithProviderFactory sets the provider factory.
func WithProviderFactory(f ProviderFactory) EnvOption {
	return func(e *Env) {
		e.ProviderFactory = f
	}
}

// WithStoreFactory sets the session store factory.
func WithStoreFactory(f StoreFactory) EnvOption {
	return func(e *Env) {
		e.StoreFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		Getenv:          os.Getenv,
		Now:             time.Now,
		Logger:          slog.New(slog.DiscardHandler),
		ConfigLoader:    &defaultConfigLoader{},
		ProviderFactory: &defaultProviderFactory{},
		StoreFactory:    &defaultStoreFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// VerboseLogger returns a debug-level text logger writing to w.
func VerboseLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// logger returns the Env logger, discarding when unset.
func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

// estimator returns the Env estimator, loading the exact one when unset.
func (e *Env) estimator() token.Estimator {
	if e.Estimator == nil {
		e.Estimator = token.New(e.logger())
	}
	return e.Estimator
}

// credential reads the API key from the environment.
func (e *Env) credential() generate.Credential {
	return generate.Credential(strings.TrimSpace(e.Getenv(EnvOpenAIAPIKey)))
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultProviderFactory implements ProviderFactory with the go-openai adapter.
type defaultProviderFactory struct{}

func (defaultProviderFactory) NewProvider(model, baseURL string, logger *slog.Logger) generate.Provider {
	opts := []provider.Option{provider.WithModel(model), provider.WithLogger(logger)}
	if baseURL != "" {
		opts = append(opts, provider.WithBaseURL(baseURL))
	}
	return provider.NewOpenAI(opts...)
}

// defaultStoreFactory implements StoreFactory with the file store.
type defaultStoreFactory struct{}

func (defaultStoreFactory) NewStore(dir string) SessionStore {
	return store.NewFile(dir)
}

// Compile-time interface verification.
var (
	_ ConfigLoader    = (*defaultConfigLoader)(nil)
	_ ProviderFactory = (*defaultProviderFactory)(nil)
	_ StoreFactory    = (*defaultStoreFactory)(nil)
	_ SessionStore    = (*store.File)(nil)
)
