// Package export writes approved cards as an Anki text-import file.
//
// The file is tab-separated with Anki's header directives, so the importer
// picks the notetype, deck and tags per row:
//
//	#separator:tab
//	#html:true
//	#notetype column:1
//	#deck column:2
//	#tags column:5
//	Basic	Default	What is X?	Y	ai-generated bio
//
// Fields are HTML-sanitized before writing. Cards that fail validation after
// sanitizing are skipped and reported, not fatal.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/alnah/go-flashgen/internal/card"
)

// DefaultDeck is used when no deck is given.
const DefaultDeck = "Default"

// Notetype names of the stock Anki notetypes.
var notetypes = map[card.Type]string{
	card.TypeBasic:         "Basic",
	card.TypeBasicReversed: "Basic (and reversed card)",
	card.TypeCloze:         "Cloze",
}

var header = []string{
	"#separator:tab",
	"#html:true",
	"#notetype column:1",
	"#deck column:2",
	"#tags column:5",
}

// policy allows user-generated-content markup plus images and MathJax spans.
var policy = bluemonday.UGCPolicy().
	AllowElements("img").
	AllowAttrs("src", "alt").OnElements("img").
	AllowElements("math", "span").
	AllowAttrs("class").OnElements("span")

// Skipped records a card left out of the export.
type Skipped struct {
	ID  string
	Err error
}

// Result summarizes an export.
type Result struct {
	Imported int
	Skipped  []Skipped
}

// Notetype returns the Anki notetype name for t.
func Notetype(t card.Type) (string, error) {
	name, ok := notetypes[t]
	if !ok {
		return "", fmt.Errorf("type %q: %w", t, card.ErrInvalidType)
	}
	return name, nil
}

// Sanitize returns c with HTML fields cleaned and tags sanitized.
func Sanitize(c card.Card) card.Card {
	c.Front = policy.Sanitize(c.Front)
	c.Back = policy.Sanitize(c.Back)
	c.Tags = card.SanitizeTags(c.Tags)
	return c
}

// Write exports the approved cards of s to w into deck.
// An empty deck uses DefaultDeck.
func Write(w io.Writer, s *card.Session, deck string) (Result, error) {
	if strings.TrimSpace(deck) == "" {
		deck = DefaultDeck
	}

	for _, line := range header {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return Result{}, fmt.Errorf("failed to write header: %w", err)
		}
	}

	var res Result
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	for _, c := range s.Approved() {
		clean := Sanitize(c)
		if err := clean.Validate(); err != nil {
			res.Skipped = append(res.Skipped, Skipped{ID: c.ID, Err: err})
			continue
		}
		notetype, err := Notetype(clean.Type)
		if err != nil {
			res.Skipped = append(res.Skipped, Skipped{ID: c.ID, Err: err})
			continue
		}
		if err := cw.Write([]string{notetype, deck, clean.Front, clean.Back, strings.Join(clean.Tags, " ")}); err != nil {
			return res, fmt.Errorf("failed to write card %s: %w", c.ID, err)
		}
		res.Imported++
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return res, fmt.Errorf("failed to write cards: %w", err)
	}
	return res, nil
}
