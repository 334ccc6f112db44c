package apperr

import (
	"errors"
	"fmt"
)

// ValidationError is a rejected user input. It never changes state.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// SyncError wraps a failed call to the remote profile store.
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s: %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// PlaybackError wraps a failed audible cue.
type PlaybackError struct {
	Err error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playing alarm sound: %v", e.Err)
}

func (e *PlaybackError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

func IsSync(err error) bool {
	var syncErr *SyncError
	return errors.As(err, &syncErr)
}
