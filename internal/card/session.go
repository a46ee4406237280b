package card

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the session record version written by this package.
const SchemaVersion = 1

// DefaultMaxAge is the age after which a session is reported expired.
const DefaultMaxAge = 7 * 24 * time.Hour

// Session is the collection of cards produced by one generation run.
// ID and CreatedAt do not change after creation. Sessions are owned by a
// single review workflow and are not safe for concurrent mutation.
type Session struct {
	ID         string
	CreatedAt  time.Time
	SourceName string
	Version    int
	Cards      []Card
}

// NewSession creates a session taking ownership of cards.
func NewSession(sourceName string, cards []Card, now time.Time) *Session {
	return &Session{
		ID:         uuid.NewString(),
		CreatedAt:  now,
		SourceName: sourceName,
		Version:    SchemaVersion,
		Cards:      cards,
	}
}

// Approved returns the cards marked approved, in session order.
func (s *Session) Approved() []Card {
	return s.withStatus(StatusApproved)
}

// Pending returns the cards still awaiting review, in session order.
func (s *Session) Pending() []Card {
	return s.withStatus(StatusPending)
}

func (s *Session) withStatus(st Status) []Card {
	var out []Card
	for _, c := range s.Cards {
		if c.Status == st {
			out = append(out, c)
		}
	}
	return out
}

// Card returns the card with the given id.
func (s *Session) Card(id string) (Card, error) {
	i, err := s.index(id)
	if err != nil {
		return Card{}, err
	}
	return s.Cards[i], nil
}

// SetStatus moves the card with the given id to next.
// Setting the current status again is a no-op.
func (s *Session) SetStatus(id string, next Status) error {
	i, err := s.index(id)
	if err != nil {
		return err
	}
	cur := s.Cards[i].Status
	if cur == next {
		return nil
	}
	if !cur.CanTransition(next) {
		return fmt.Errorf("card %s: %s -> %s: %w", id, cur, next, ErrInvalidTransition)
	}
	s.Cards[i].Status = next
	return nil
}

// Replace swaps the card with the given id for replacement, keeping its position.
// The replaced card is discarded rather than mutated.
func (s *Session) Replace(id string, replacement Card) error {
	i, err := s.index(id)
	if err != nil {
		return err
	}
	s.Cards[i] = replacement
	return nil
}

// Age returns how long ago the session was created.
func (s *Session) Age(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}

// IsExpired reports whether the session is at least maxAge old at now.
// A non-positive maxAge uses DefaultMaxAge. Expiry is advisory: nothing is deleted.
func (s *Session) IsExpired(now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return s.Age(now) >= maxAge
}

func (s *Session) index(id string) (int, error) {
	for i := range s.Cards {
		if s.Cards[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%q: %w", id, ErrCardNotFound)
}
