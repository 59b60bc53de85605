package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents a fatal error detected while running the loop.
//
// Runtime errors include:
//   - Source failure: the event source could not produce the next event
//   - Sink failure: a stats sample could not be written
//   - Check failure: the view disagreed with the cross-check oracle
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Seq is the number of events applied before the failure.
	Seq int64

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeSource indicates the event source failed.
	ErrCodeSource RuntimeErrorCode = "SOURCE_FAILED"

	// ErrCodeSink indicates a sample could not be written.
	ErrCodeSink RuntimeErrorCode = "SINK_FAILED"

	// ErrCodeCheck indicates the view failed a cross-check.
	ErrCodeCheck RuntimeErrorCode = "CHECK_FAILED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (seq=%d): %v", e.Code, e.Message, e.Seq, e.Err)
	}
	return fmt.Sprintf("%s: %s (seq=%d)", e.Code, e.Message, e.Seq)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsCheckError returns true if the error is a cross-check failure.
// Uses errors.As to handle wrapped errors.
func IsCheckError(err error) bool {
	return hasCode(err, ErrCodeCheck)
}

// IsSourceError returns true if the error came from the event source.
func IsSourceError(err error) bool {
	return hasCode(err, ErrCodeSource)
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}
