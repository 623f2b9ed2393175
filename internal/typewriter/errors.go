package typewriter

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyStrings is wrapped by the ValidationError returned for an
	// empty string list.
	ErrEmptyStrings = errors.New("typewriter: string list must contain at least one string")

	// ErrDisposed is returned by controls called after Dispose.
	ErrDisposed = errors.New("typewriter: engine disposed")

	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("typewriter: engine already started")
)

// ValidationError reports invalid input to New or ReplaceStrings.
//
// Validation errors are always returned synchronously and never recovered
// by the engine.
type ValidationError struct {
	// Field names the offending input ("strings", "type_interval", ...).
	Field string

	// Message is a human-readable description.
	Message string

	// Err is an optional sentinel for errors.Is matching.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError returns true if err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// WarningCode categorizes non-fatal state problems.
type WarningCode string

const (
	// WarnStringTooShort means the typed length exceeded the current string.
	WarnStringTooShort WarningCode = "STRING_TOO_SHORT"

	// WarnIndexOutOfRange means no current string could be resolved.
	WarnIndexOutOfRange WarningCode = "INDEX_OUT_OF_RANGE"

	// WarnRecoveredPanic means a scheduled transition panicked and the
	// engine re-derived its next step.
	WarnRecoveredPanic WarningCode = "RECOVERED_PANIC"
)

// StateWarning describes a problem the engine healed on its own.
//
// Warnings are logged and delivered to observers as KindWarning transitions;
// they are never returned as errors.
type StateWarning struct {
	Code    WarningCode
	Message string
}

func (w *StateWarning) Error() string {
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}
