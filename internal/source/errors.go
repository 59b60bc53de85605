package source

import (
	"errors"
	"fmt"
)

// DecodeErrorCode categorizes record decoding failures.
type DecodeErrorCode string

const (
	// ErrCodeFieldCount indicates a record with the wrong number of fields.
	ErrCodeFieldCount DecodeErrorCode = "FIELD_COUNT"

	// ErrCodeBadInt indicates an unparseable integer field.
	ErrCodeBadInt DecodeErrorCode = "BAD_INT"

	// ErrCodeBadFloat indicates an unparseable real field.
	ErrCodeBadFloat DecodeErrorCode = "BAD_FLOAT"

	// ErrCodeBadDate indicates an unparseable date field.
	ErrCodeBadDate DecodeErrorCode = "BAD_DATE"

	// ErrCodeRead indicates the underlying reader failed.
	ErrCodeRead DecodeErrorCode = "READ"
)

// DecodeError reports a record that could not be turned into a tuple.
type DecodeError struct {
	Code   DecodeErrorCode
	Stream string
	Line   int
	Field  string
	Err    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	loc := e.Stream
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Stream, e.Line)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: field %s: %v", loc, e.Code, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", loc, e.Code, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err wraps a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
