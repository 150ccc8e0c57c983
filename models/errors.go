// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "errors"

var (
	ErrElectionNotFound = errors.New("no election has been registered")
	ErrNotFound         = errors.New("not found")
	ErrExists           = errors.New("already exists")
	ErrPhase            = errors.New("election is not in the required phase")
	ErrWrongCode        = errors.New("incorrect access code")
	ErrAuth             = errors.New("not authenticated")
	ErrInvalid          = errors.New("invalid input")
)

// ValidationError attaches a user-correctable failure to a form field.
// Field is empty when the failure belongs to the whole form.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Invalid builds a ValidationError for field wrapping err.
func Invalid(field string, err error, message string) *ValidationError {
	return &ValidationError{Field: field, Err: err, Message: message}
}
