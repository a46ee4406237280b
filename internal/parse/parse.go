// Package parse turns a model's raw reply into card drafts.
//
// The reply is expected to be a JSON object with a "cards" array. Replies
// wrapped in prose or code fences get exactly one repair attempt: the
// greedy region from the first '{' to the last '}' is parsed again. There is
// no further recovery; a reply that still does not parse is an error.
package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-flashgen/internal/apierr"
	"github.com/alnah/go-flashgen/internal/card"
)

// ErrNoJSON indicates the reply holds no interpretable JSON object.
var ErrNoJSON = errors.New("failed to parse response as JSON")

// ErrMissingCards indicates the reply object has no "cards" field.
var ErrMissingCards = errors.New("response missing 'cards' field")

// reply mirrors the JSON shape requested from the model.
// Cards is a pointer so that an absent field differs from an empty array.
type reply struct {
	Cards *[]json.RawMessage `json:"cards"`
}

// rawCard holds one card with loosely typed fields. A card whose "type" is a
// number or whose tags are not all strings is repaired rather than rejecting
// the batch. Entries that are not objects are skipped.
type rawCard struct {
	Type          any `json:"type"`
	Front         any `json:"front"`
	Back          any `json:"back"`
	SuggestedTags any `json:"suggested_tags"`
}

// Cards parses raw into pending cards tagged per cfg.
// Unknown card types become basic and missing front/back become "".
// Errors are wrapped in apierr.ErrGeneration.
func Cards(raw string, cfg card.Config) ([]card.Card, error) {
	cards, err := decode([]byte(raw), cfg)
	if err == nil || errors.Is(err, ErrMissingCards) {
		return cards, apierr.Generation(err)
	}

	// One repair attempt: greedy {...} region.
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return nil, apierr.Generation(ErrNoJSON)
	}
	cards, err = decode([]byte(raw[start:end+1]), cfg)
	if err != nil {
		if errors.Is(err, ErrMissingCards) {
			return nil, apierr.Generation(err)
		}
		return nil, apierr.Generation(ErrNoJSON)
	}
	return cards, nil
}

func decode(data []byte, cfg card.Config) ([]card.Card, error) {
	var r reply
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	if r.Cards == nil {
		return nil, ErrMissingCards
	}

	cards := make([]card.Card, 0, len(*r.Cards))
	for _, msg := range *r.Cards {
		var rc rawCard
		if err := json.Unmarshal(msg, &rc); err != nil {
			continue // not an object
		}
		cards = append(cards, card.New(
			card.TypeOrBasic(text(rc.Type)),
			text(rc.Front),
			text(rc.Back),
			cfg.ComposeTags(tags(rc.SuggestedTags)),
		))
	}
	return cards, nil
}

// text returns v when it is a JSON string and "" otherwise.
func text(v any) string {
	s, _ := v.(string)
	return s
}

// tags keeps the string entries of v when it is a JSON array.
func tags(v any) []string {
	vs, _ := v.([]any)
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
