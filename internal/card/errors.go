package card

import "errors"

var (
	// ErrInvalidType indicates an unknown card type name or code.
	ErrInvalidType = errors.New("invalid card type")

	// ErrInvalidStatus indicates an unknown card status name or code.
	ErrInvalidStatus = errors.New("invalid card status")

	// ErrInvalidTransition indicates a status change the review workflow does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrCardNotFound indicates no card with the given id exists in the session.
	ErrCardNotFound = errors.New("card not found")

	// ErrInvalidConfig indicates a generation configuration failed validation.
	ErrInvalidConfig = errors.New("invalid generation configuration")

	// ErrUnsupportedVersion indicates a session record written by a newer schema.
	ErrUnsupportedVersion = errors.New("unsupported session version")

	// ErrInvalidRecord indicates a malformed session record.
	ErrInvalidRecord = errors.New("invalid session record")

	// ErrInvalidCard indicates a card that cannot be imported.
	ErrInvalidCard = errors.New("invalid card")
)
