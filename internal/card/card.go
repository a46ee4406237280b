// Package card holds the review-state model of generated flashcards:
// cards, their status transitions, generation configuration, tag
// composition and sessions.
package card

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Card type names as they appear in model replies and session records.
const (
	TypeBasic         Type = "basic"
	TypeBasicReversed Type = "basic_reversed"
	TypeCloze         Type = "cloze"
)

// Status names as they appear in session records.
const (
	StatusPending      Status = "pending"
	StatusApproved     Status = "approved"
	StatusRejected     Status = "rejected"
	StatusRegenerating Status = "regenerating"
)

// Type is the kind of note a card becomes on import.
type Type string

// Compile-time interface compliance check.
var _ fmt.Stringer = Type("")

// Types lists the card types in canonical order.
var Types = []Type{TypeBasic, TypeBasicReversed, TypeCloze}

// ParseType validates a card type name. Matching is case-insensitive.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TypeBasic, TypeBasicReversed, TypeCloze:
		return t, nil
	}
	return "", fmt.Errorf("unknown card type %q (use basic, basic_reversed or cloze): %w", s, ErrInvalidType)
}

// TypeOrBasic parses s and defaults to TypeBasic for unknown values.
// A model reply with one odd type must not discard the whole batch.
func TypeOrBasic(s string) Type {
	t, err := ParseType(s)
	if err != nil {
		return TypeBasic
	}
	return t
}

// String returns the type name.
func (t Type) String() string {
	return string(t)
}

// Status is the review state of a card.
type Status string

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusApproved, StatusRejected, StatusRegenerating:
		return st, nil
	}
	return "", fmt.Errorf("unknown card status %q: %w", s, ErrInvalidStatus)
}

// String returns the status name.
func (s Status) String() string {
	return string(s)
}

// transitions lists the statuses reachable from each status.
// A regenerating card leaves that state by being replaced, or by falling
// back to rejected when regeneration fails.
var transitions = map[Status][]Status{
	StatusPending:      {StatusApproved, StatusRejected},
	StatusApproved:     {StatusPending, StatusRejected},
	StatusRejected:     {StatusPending, StatusApproved, StatusRegenerating},
	StatusRegenerating: {StatusRejected},
}

// CanTransition reports whether a card may move from s to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Card is one generated question/answer or cloze unit.
type Card struct {
	ID     string
	Type   Type
	Front  string
	Back   string
	Tags   []string
	Status Status
}

// New creates a pending card with a fresh identity.
// tags is copied.
func New(t Type, front, back string, tags []string) Card {
	return Card{
		ID:     uuid.NewString(),
		Type:   t,
		Front:  front,
		Back:   back,
		Tags:   append([]string(nil), tags...),
		Status: StatusPending,
	}
}
