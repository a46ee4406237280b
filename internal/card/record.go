package card

import (
	"encoding/json"
	"fmt"
	"time"
)

// sessionRecord is the versioned persistence format of a Session.
type sessionRecord struct {
	Version    int          `json:"version"`
	SessionID  string       `json:"session_id"`
	CreatedAt  string       `json:"created_at"`
	SourceName string       `json:"source_name"`
	Cards      []cardRecord `json:"cards"`
}

type cardRecord struct {
	ID     string   `json:"id"`
	Type   string   `json:"type"`
	Front  string   `json:"front"`
	Back   string   `json:"back"`
	Tags   []string `json:"tags"`
	Status string   `json:"status"`
}

// createdAtLayouts are accepted when reading; RFC 3339 is always written.
// The zone-less layout covers records written by local-time producers.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// MarshalSession encodes s as a versioned session record.
func MarshalSession(s *Session) ([]byte, error) {
	rec := sessionRecord{
		Version:    SchemaVersion,
		SessionID:  s.ID,
		CreatedAt:  s.CreatedAt.Format(time.RFC3339Nano),
		SourceName: s.SourceName,
		Cards:      make([]cardRecord, len(s.Cards)),
	}
	for i, c := range s.Cards {
		tags := c.Tags
		if tags == nil {
			tags = []string{}
		}
		rec.Cards[i] = cardRecord{
			ID:     c.ID,
			Type:   c.Type.String(),
			Front:  c.Front,
			Back:   c.Back,
			Tags:   tags,
			Status: c.Status.String(),
		}
	}
	return json.MarshalIndent(rec, "", "  ")
}

// UnmarshalSession decodes a session record.
// A missing version is read as version 1. Versions newer than SchemaVersion
// are rejected with ErrUnsupportedVersion rather than guessed at.
func UnmarshalSession(data []byte) (*Session, error) {
	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	version := rec.Version
	if version == 0 {
		version = 1
	}
	if version < 0 || version > SchemaVersion {
		return nil, fmt.Errorf("version %d (max %d): %w", rec.Version, SchemaVersion, ErrUnsupportedVersion)
	}
	if rec.SessionID == "" {
		return nil, fmt.Errorf("%w: missing session_id", ErrInvalidRecord)
	}

	createdAt, err := parseCreatedAt(rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:         rec.SessionID,
		CreatedAt:  createdAt,
		SourceName: rec.SourceName,
		Version:    version,
		Cards:      make([]Card, 0, len(rec.Cards)),
	}
	for i, cr := range rec.Cards {
		t, err := ParseType(cr.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: card %d: %w", ErrInvalidRecord, i, err)
		}
		st := StatusPending
		if cr.Status != "" {
			if st, err = ParseStatus(cr.Status); err != nil {
				return nil, fmt.Errorf("%w: card %d: %w", ErrInvalidRecord, i, err)
			}
		}
		if cr.ID == "" {
			return nil, fmt.Errorf("%w: card %d: missing id", ErrInvalidRecord, i)
		}
		s.Cards = append(s.Cards, Card{
			ID:     cr.ID,
			Type:   t,
			Front:  cr.Front,
			Back:   cr.Back,
			Tags:   cr.Tags,
			Status: st,
		})
	}
	return s, nil
}

func parseCreatedAt(v string) (time.Time, error) {
	for _, layout := range createdAtLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: created_at %q is not ISO-8601", ErrInvalidRecord, v)
}
