package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrFileNotFound indicates the specified input file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrOutputExists indicates the output file already exists.
	ErrOutputExists = errors.New("output file already exists")

	// ErrAmbiguousID indicates a card id prefix matches more than one card.
	ErrAmbiguousID = errors.New("ambiguous card id")

	// ErrKeyRejected indicates the credential probe failed.
	ErrKeyRejected = errors.New("API key check failed")

	// ErrNothingToExport indicates the session has no approved cards.
	ErrNothingToExport = errors.New("no approved cards to export")
)
