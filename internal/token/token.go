// Package token approximates how many model tokens a string costs.
//
// Two strategies exist. TiktokenEstimator counts exact sub-word tokens with the
// cl100k_base vocabulary used by the GPT-4 family; the vocabulary is compiled
// into the binary, so counting never touches the network. CharEstimator divides
// the character count by a fixed ratio and never fails. New selects the exact
// counter when its vocabulary loads and silently falls back otherwise.
package token

import (
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/tiktoken-go/tokenizer"
)

// Estimator approximates the token cost of a text.
// Implementations must be deterministic for a given text and instance.
type Estimator interface {
	Estimate(text string) int
}

// DefaultCharsPerToken is the fallback ratio, tuned for English prose.
const DefaultCharsPerToken = 4

// DefaultEncoding is the vocabulary used by the exact estimator.
const DefaultEncoding = tokenizer.Cl100kBase

// Compile-time interface compliance checks.
var (
	_ Estimator = CharEstimator{}
	_ Estimator = (*TiktokenEstimator)(nil)
)

// CharEstimator estimates tokens as the number of characters divided by
// CharsPerToken. Zero value uses DefaultCharsPerToken.
type CharEstimator struct {
	CharsPerToken int
}

// Estimate returns the rune count of text divided by the configured ratio.
func (e CharEstimator) Estimate(text string) int {
	ratio := e.CharsPerToken
	if ratio <= 0 {
		ratio = DefaultCharsPerToken
	}
	return utf8.RuneCountInString(text) / ratio
}

// TiktokenEstimator counts tokens with a BPE vocabulary.
type TiktokenEstimator struct {
	mu       sync.Mutex
	codec    tokenizer.Codec
	fallback CharEstimator
}

// NewTiktokenEstimator loads the named encoding from the embedded vocabularies.
// It fails for encodings the tokenizer does not ship.
func NewTiktokenEstimator(encoding tokenizer.Encoding) (*TiktokenEstimator, error) {
	codec, err := tokenizer.Get(encoding)
	if err != nil {
		return nil, err
	}
	return &TiktokenEstimator{codec: codec}, nil
}

// Estimate returns the number of BPE tokens in text.
// Text the codec cannot encode is counted with the character ratio.
func (e *TiktokenEstimator) Estimate(text string) int {
	if text == "" {
		return 0
	}
	e.mu.Lock()
	ids, _, err := e.codec.Encode(text)
	e.mu.Unlock()
	if err != nil {
		return e.fallback.Estimate(text)
	}
	return len(ids)
}

// New returns the exact estimator for DefaultEncoding, or a CharEstimator
// when it cannot be loaded. It never fails. logger may be nil.
func New(logger *slog.Logger) Estimator {
	return NewWithEncoding(DefaultEncoding, logger)
}

// NewWithEncoding is New for a specific encoding.
func NewWithEncoding(encoding tokenizer.Encoding, logger *slog.Logger) Estimator {
	exact, err := NewTiktokenEstimator(encoding)
	if err != nil {
		if logger != nil {
			logger.Debug("exact tokenizer unavailable, using character ratio",
				"encoding", encoding,
				"chars_per_token", DefaultCharsPerToken,
				"error", err)
		}
		return CharEstimator{}
	}
	return exact
}
