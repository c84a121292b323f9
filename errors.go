package main

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrQuestionPinned = errors.New("the question note cannot be deleted")
	ErrNotFound       = errors.New("key not found")
	ErrCorruptRecord  = errors.New("stored record is corrupt")
)

// ValidationError carries the message shown to the user when required
// input is missing.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// userMessage turns an error from a command into the text for the status
// line.
func userMessage(err error) string {
	var ve *ValidationError
	var se *StatusError
	switch {
	case errors.As(err, &ve):
		return ve.Msg
	case errors.Is(err, ErrNothingToUndo):
		return "Nothing to undo"
	case errors.Is(err, ErrNothingToRedo):
		return "Nothing to redo"
	case errors.Is(err, ErrQuestionPinned):
		return "The question note stays; apply a new question to replace it"
	case errors.Is(err, ErrMissingAPIKey):
		return "Set an API key in settings (,)"
	case errors.Is(err, ErrInvalidCredential):
		return "The API key was rejected; check it in settings (,)"
	case errors.Is(err, ErrEmptyResponse):
		return "The AI returned no text; try again"
	case errors.Is(err, ErrCircuitOpen):
		return "The AI service is failing; wait a moment and try again"
	case errors.As(err, &se):
		return fmt.Sprintf("%s error: status %d", se.Provider, se.Code)
	default:
		return "Error: " + err.Error()
	}
}
