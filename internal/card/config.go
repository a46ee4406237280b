package card

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Defaults for a generation configuration.
const (
	DefaultCardLimit = 20
	DefaultAutoTag   = "ai-generated"
	sourceTagPrefix  = "source::"
)

var validate = validator.New()

// Config controls one generation call.
type Config struct {
	// CardLimit is a hard ceiling on cards returned across all chunks.
	CardLimit int `validate:"gt=0"`
	// PreferredType is a hint for the model; empty lets the model decide.
	PreferredType Type `validate:"omitempty,oneof=basic basic_reversed cloze"`
	// SourceName derives the source tag; empty adds no source tag.
	SourceName string
	// AutoTags are applied first to every card.
	AutoTags []string `validate:"dive,required"`
}

// DefaultConfig returns the configuration used when the caller sets nothing.
func DefaultConfig() Config {
	return Config{
		CardLimit: DefaultCardLimit,
		AutoTags:  []string{DefaultAutoTag},
	}
}

// Validate checks the configuration against its field rules.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// WithLimit returns a copy of c with CardLimit set to n.
// The copy does not share AutoTags storage with c.
func (c Config) WithLimit(n int) Config {
	c.CardLimit = n
	c.AutoTags = append([]string(nil), c.AutoTags...)
	return c
}

// SourceTag returns the hierarchical tag derived from SourceName,
// or "" when SourceName is empty.
func (c Config) SourceTag() string {
	if c.SourceName == "" {
		return ""
	}
	safe := strings.NewReplacer(" ", "_", "/", "_", `\`, "_", ":", "_").Replace(c.SourceName)
	return sourceTagPrefix + safe
}

// ComposeTags builds the final tag sequence of a card:
// AutoTags, then the source tag if any, then the model's suggestions.
// Order is preserved and duplicates are kept.
func (c Config) ComposeTags(suggested []string) []string {
	tags := make([]string, 0, len(c.AutoTags)+1+len(suggested))
	tags = append(tags, c.AutoTags...)
	if tag := c.SourceTag(); tag != "" {
		tags = append(tags, tag)
	}
	return append(tags, suggested...)
}
