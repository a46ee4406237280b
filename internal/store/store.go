// Package store persists review sessions as versioned JSON records on disk.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alnah/go-flashgen/internal/card"
)

// FileName is the session file written inside the store directory.
const FileName = "ai_flashcards_session.json"

// ErrNoSession indicates no session has been saved.
var ErrNoSession = errors.New("no saved session")

// File stores the current session in a single JSON file.
// Saving replaces the previous session. File is not safe for concurrent
// writers across processes.
type File struct {
	dir string
}

// NewFile returns a store rooted at dir. The directory is created on first save.
func NewFile(dir string) *File {
	return &File{dir: dir}
}

// Path returns the session file path.
func (f *File) Path() string {
	return filepath.Join(f.dir, FileName)
}

// Save writes s, replacing any previous session.
// The file is written to a temporary name and renamed into place so a
// crash never leaves a truncated record.
func (f *File) Save(s *card.Session) error {
	data, err := card.MarshalSession(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(f.dir, 0750); err != nil { // #nosec G301 -- user session dir
		return fmt.Errorf("cannot create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(f.dir, FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("cannot write session: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("cannot write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot write session: %w", err)
	}
	if err := os.Rename(tmpName, f.Path()); err != nil {
		return fmt.Errorf("cannot write session: %w", err)
	}
	return nil
}

// Load reads the saved session.
// Returns ErrNoSession when nothing was saved and card.ErrUnsupportedVersion
// for records written by a newer schema.
func (f *File) Load() (*card.Session, error) {
	data, err := os.ReadFile(f.Path()) // #nosec G304 -- path is constructed from the store dir
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("cannot read session: %w", err)
	}
	s, err := card.UnmarshalSession(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path(), err)
	}
	return s, nil
}

// LoadLatest reads the saved session and reports whether it is expired at
// now under maxAge (non-positive uses card.DefaultMaxAge). An expired
// session is still returned; expiry is advisory.
func (f *File) LoadLatest(now time.Time, maxAge time.Duration) (*card.Session, bool, error) {
	s, err := f.Load()
	if err != nil {
		return nil, false, err
	}
	return s, s.IsExpired(now, maxAge), nil
}

// Delete removes the saved session. Deleting when nothing is saved is not an error.
func (f *File) Delete() error {
	if err := os.Remove(f.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cannot delete session: %w", err)
	}
	return nil
}
