package engine

import (
	"errors"
	"fmt"
)

// CommandError represents a mutation command the engine refused or could
// not complete.
//
// Stale writes (a command addressed to a date that is not the active view
// date) are not errors: they are dropped and logged.
type CommandError struct {
	// Code identifies the error category.
	Code CommandErrorCode

	// Message is a human-readable description.
	Message string

	// Date is the date the command targeted.
	Date string

	// Err is the underlying cause, if any.
	Err error
}

// CommandErrorCode categorizes command errors.
type CommandErrorCode string

const (
	// ErrCodeInvalidCommand indicates a malformed payload or reserved id.
	ErrCodeInvalidCommand CommandErrorCode = "INVALID_COMMAND"

	// ErrCodeUnknownSlot indicates a meal slot outside juice|lunch|dinner.
	ErrCodeUnknownSlot CommandErrorCode = "UNKNOWN_SLOT"

	// ErrCodeDaySealed indicates a log mutation against a sealed day.
	ErrCodeDaySealed CommandErrorCode = "DAY_SEALED"

	// ErrCodePersistFailed indicates the store rejected the write. The
	// in-memory state is left as it was before the command.
	ErrCodePersistFailed CommandErrorCode = "PERSIST_FAILED"
)

// Error implements the error interface.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Date != "" {
		msg += fmt.Sprintf(" (date=%s)", e.Date)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *CommandError) Unwrap() error {
	return e.Err
}

func hasCode(err error, code CommandErrorCode) bool {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// IsInvalidCommand reports whether err is an INVALID_COMMAND or UNKNOWN_SLOT
// error. Uses errors.As to handle wrapped errors.
func IsInvalidCommand(err error) bool {
	return hasCode(err, ErrCodeInvalidCommand) || hasCode(err, ErrCodeUnknownSlot)
}

// IsSealed reports whether err was caused by a sealed day.
func IsSealed(err error) bool {
	return hasCode(err, ErrCodeDaySealed)
}

// IsPersistError reports whether err is a storage failure.
func IsPersistError(err error) bool {
	return hasCode(err, ErrCodePersistFailed)
}

func invalidCommand(date, format string, args ...any) *CommandError {
	return &CommandError{Code: ErrCodeInvalidCommand, Message: fmt.Sprintf(format, args...), Date: date}
}

func persistFailed(date, action string, err error) *CommandError {
	return &CommandError{
		Code:    ErrCodePersistFailed,
		Message: fmt.Sprintf("%s could not be saved", action),
		Date:    date,
		Err:     err,
	}
}
