package card

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// maxFieldLength bounds front and back in bytes.
const maxFieldLength = 100_000

var clozeDeletion = regexp.MustCompile(`\{\{c\d+::.*?\}\}`)

// Validate checks that c can become a note: a non-empty front, a non-empty
// back unless the card is a cloze, fields within length limits, and at least
// one {{cN::...}} deletion on cloze cards.
func (c Card) Validate() error {
	if strings.TrimSpace(c.Front) == "" {
		return fmt.Errorf("%w: front field is empty", ErrInvalidCard)
	}
	if c.Type != TypeCloze && strings.TrimSpace(c.Back) == "" {
		return fmt.Errorf("%w: back field is empty for non-cloze card", ErrInvalidCard)
	}
	if len(c.Front) > maxFieldLength {
		return fmt.Errorf("%w: front field exceeds maximum length (%d > %d)", ErrInvalidCard, len(c.Front), maxFieldLength)
	}
	if len(c.Back) > maxFieldLength {
		return fmt.Errorf("%w: back field exceeds maximum length (%d > %d)", ErrInvalidCard, len(c.Back), maxFieldLength)
	}
	if c.Type == TypeCloze && !clozeDeletion.MatchString(c.Front) {
		return fmt.Errorf("%w: cloze card is missing a cloze deletion ({{c1::...}})", ErrInvalidCard)
	}
	return nil
}

// SanitizeTag trims tag, replaces spaces with underscores and drops every
// character other than letters, digits and "_-:.".
func SanitizeTag(tag string) string {
	tag = strings.ReplaceAll(strings.TrimSpace(tag), " ", "_")
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("_-:.", r) {
			return r
		}
		return -1
	}, tag)
}

// SanitizeTags applies SanitizeTag to each tag and drops empty results.
func SanitizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if s := SanitizeTag(t); s != "" {
			out = append(out, s)
		}
	}
	return out
}
