// Package generate orchestrates flashcard generation over a model provider.
//
// A Generator chunks the source text to the model's input budget, asks the
// model for cards one chunk at a time and stops as soon as the card quota is
// met. A failed chunk fails the whole call: no partial card list is returned.
// Calls on one Generator are sequential; a Generator holds no credential and
// no per-call state, so embedding applications pass the credential each time.
//
// The context is checked between chunks and handed to the provider, so
// canceling it also aborts a model call that is in flight. The call then
// fails like any other and earlier cards are discarded.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alnah/go-flashgen/internal/apierr"
	"github.com/alnah/go-flashgen/internal/card"
	"github.com/alnah/go-flashgen/internal/chunk"
	"github.com/alnah/go-flashgen/internal/cost"
	"github.com/alnah/go-flashgen/internal/parse"
	"github.com/alnah/go-flashgen/internal/prompt"
	"github.com/alnah/go-flashgen/internal/token"
)

// ErrNoCards indicates the model reply held no usable card.
var ErrNoCards = errors.New("no card generated")

// Default configuration values.
const (
	// DefaultMaxInputTokens is the per-call input budget used for chunking.
	DefaultMaxInputTokens = 12000

	// Sampling for generation and regeneration.
	generateTemperature   = 0.7
	generateMaxTokens     = 4000
	regenerateTemperature = 0.8
	regenerateMaxTokens   = 500
)

// Progress phases reported to the progress callback.
const (
	PhaseChunk      = "chunk"
	PhaseRegenerate = "regenerate"
)

// Request is one model call.
type Request struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Reply is the text a model returned with the token usage it reported.
// Usage fields are zero when the provider reports none.
type Reply struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// ModelCaller sends one request to a model and returns its reply.
// Implementations classify failures into apierr transport sentinels.
type ModelCaller interface {
	Complete(ctx context.Context, cred Credential, req Request) (Reply, error)
}

// Prober validates a credential with a side-effect-free provider call.
type Prober interface {
	Probe(ctx context.Context, cred Credential) error
}

// Provider is a model backend usable for generation and credential checks.
type Provider interface {
	ModelCaller
	Prober
}

// Result is the outcome of one generation call.
type Result struct {
	Cards []card.Card
	// Chunks is how many chunks the text was split into; Calls how many
	// were sent before the quota was met.
	Chunks int
	Calls  int
	// TokensUsed is the reported usage, or the projected usage when the
	// provider reports none.
	TokensUsed int
	CostUSD    float64
	Model      string
}

// Generator produces cards from text through a Provider.
type Generator struct {
	provider       Provider
	estimator      token.Estimator
	maxInputTokens int
	model          string
	logger         *slog.Logger
	onProgress     func(phase string, current, total int)
}

// Option configures a Generator.
type Option func(*Generator)

// WithEstimator sets the token estimator used for chunking and cost.
func WithEstimator(est token.Estimator) Option {
	return func(g *Generator) {
		if est != nil {
			g.estimator = est
		}
	}
}

// WithMaxInputTokens sets the per-call input budget.
func WithMaxInputTokens(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxInputTokens = n
		}
	}
}

// WithModel sets the model name used for pricing and reported in results.
// The provider decides which model it actually calls.
func WithModel(model string) Option {
	return func(g *Generator) {
		if model != "" {
			g.model = model
		}
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

// WithProgress sets a progress callback invoked before each model call.
func WithProgress(fn func(phase string, current, total int)) Option {
	return func(g *Generator) {
		g.onProgress = fn
	}
}

// New creates a Generator over p.
func New(p Provider, opts ...Option) *Generator {
	g := &Generator{
		provider:       p,
		estimator:      token.CharEstimator{},
		maxInputTokens: DefaultMaxInputTokens,
		model:          cost.DefaultModel,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.New(slog.DiscardHandler)
	}
	return g
}

// Generate turns text into at most cfg.CardLimit pending cards.
//
// Empty text fails with apierr.ErrValidation and a missing credential with
// apierr.ErrConfiguration, both before any chunking. Chunks are sent in
// order and no call is made once the quota is met. Any failed call aborts
// the run with apierr.ErrGeneration and discards earlier chunks' cards.
func (g *Generator) Generate(ctx context.Context, cred Credential, text string, cfg card.Config) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, apierr.Validation(apierr.ErrEmptyText)
	}
	if cred.IsZero() {
		return Result{}, apierr.Configuration(apierr.ErrMissingCredential)
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, apierr.Validation(err)
	}

	chunks := chunk.Split(text, g.maxInputTokens, g.estimator)
	g.logger.Debug("generation started",
		"chunks", len(chunks),
		"card_limit", cfg.CardLimit,
		"max_input_tokens", g.maxInputTokens,
		"model", g.model)

	var (
		cards      []card.Card
		calls      int
		promptToks int
		outputToks int
	)
	for _, c := range chunks {
		remaining := cfg.CardLimit - len(cards)
		if remaining <= 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return Result{}, apierr.Generation(err)
		}
		if g.onProgress != nil {
			g.onProgress(PhaseChunk, c.Index+1, c.Total)
		}

		chunkCfg := cfg.WithLimit(remaining)
		reply, err := g.provider.Complete(ctx, cred, Request{
			System:      prompt.System,
			User:        prompt.User(c.Content, chunkCfg),
			Temperature: generateTemperature,
			MaxTokens:   generateMaxTokens,
		})
		calls++
		if err != nil {
			return Result{}, apierr.Generation(fmt.Errorf("chunk %d/%d: %w", c.Index+1, c.Total, err))
		}
		parsed, err := parse.Cards(reply.Content, chunkCfg)
		if err != nil {
			return Result{}, fmt.Errorf("chunk %d/%d: %w", c.Index+1, c.Total, err)
		}
		promptToks += reply.PromptTokens
		outputToks += reply.CompletionTokens
		cards = append(cards, parsed...)

		g.logger.Debug("chunk done",
			"chunk", c.Index+1,
			"total", c.Total,
			"tokens", c.Tokens,
			"cards", len(parsed),
			"accumulated", len(cards))
	}

	if len(cards) > cfg.CardLimit {
		cards = cards[:cfg.CardLimit]
	}

	res := Result{
		Cards:  cards,
		Chunks: len(chunks),
		Calls:  calls,
		Model:  g.model,
	}
	if promptToks+outputToks > 0 {
		p, _ := cost.PriceOf(g.model)
		res.TokensUsed = promptToks + outputToks
		res.CostUSD = p.USD(promptToks, outputToks)
	} else {
		est := cost.For(text, g.model, g.estimator)
		res.TokensUsed = est.EstimatedTokens
		res.CostUSD = est.EstimatedCostUSD
	}
	return res, nil
}

// Regenerate asks for one card to replace rejected, using the start of source
// as context and hint as optional user feedback. Exactly one model call is
// made. The new card is pending, has a fresh id and carries the default auto
// tags plus the model's suggestions.
func (g *Generator) Regenerate(ctx context.Context, cred Credential, rejected card.Card, source, hint string) (card.Card, error) {
	if cred.IsZero() {
		return card.Card{}, apierr.Configuration(apierr.ErrMissingCredential)
	}
	if g.onProgress != nil {
		g.onProgress(PhaseRegenerate, 1, 1)
	}

	reply, err := g.provider.Complete(ctx, cred, Request{
		System:      prompt.System,
		User:        prompt.Regenerate(rejected, source, hint),
		Temperature: regenerateTemperature,
		MaxTokens:   regenerateMaxTokens,
	})
	if err != nil {
		return card.Card{}, apierr.Generation(err)
	}

	cfg := card.DefaultConfig().WithLimit(1)
	cards, err := parse.Cards(reply.Content, cfg)
	if err != nil {
		return card.Card{}, err
	}
	if len(cards) == 0 {
		return card.Card{}, apierr.Generation(ErrNoCards)
	}
	g.logger.Debug("card regenerated", "replaces", rejected.ID, "id", cards[0].ID)
	return cards[0], nil
}

// TestCredential probes cred with a side-effect-free call.
// It returns false with a user-presentable diagnostic when the probe fails.
// The probe never touches any card quota.
func (g *Generator) TestCredential(ctx context.Context, cred Credential) (bool, string) {
	if cred.IsZero() {
		return false, apierr.Describe(apierr.ErrMissingCredential)
	}
	if err := g.provider.Probe(ctx, cred); err != nil {
		return false, apierr.Describe(err)
	}
	return true, ""
}

// EstimateCost projects the cost of generating from text with the
// Generator's model. It is local and needs no credential.
func (g *Generator) EstimateCost(text string) cost.Estimate {
	return cost.For(text, g.model, g.estimator)
}
