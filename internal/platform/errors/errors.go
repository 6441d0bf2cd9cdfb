package apperrors

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrInvalidFormat      = errors.New("invalid time format")
	ErrMissingReference   = errors.New("reference event not recorded")
	ErrCorruptedValue     = errors.New("corrupted persisted value")
	ErrUnsavedChanges     = errors.New("unsaved changes")
	ErrUnknownEvent       = errors.New("unknown event")
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrNoCurrentSession   = errors.New("no current session")
)
