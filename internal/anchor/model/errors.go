package model

import "fmt"

// ErrValidation is returned when a caller supplies malformed or
// incomplete input. Handlers convert this to HTTP 400; it is never
// retryable as-is.
type ErrValidation struct{ Msg string }

func (e *ErrValidation) Error() string { return e.Msg }

// ErrSerialization indicates a record could not be canonicalized to
// JSON. Payloads are validated before records are built, so this is a
// programming defect, not a caller error — handlers log the detail and
// return a generic internal error.
type ErrSerialization struct {
	Stage string
	Err   error
}

func (e *ErrSerialization) Error() string {
	return fmt.Sprintf("serialize %s record: %v", e.Stage, e.Err)
}

func (e *ErrSerialization) Unwrap() error { return e.Err }
