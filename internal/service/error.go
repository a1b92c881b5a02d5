package service

import "errors"

var (
	// ErrValidation marks a malformed request; rejected synchronously,
	// never queued.
	ErrValidation = errors.New("invalid input")
	// ErrUnknownVerb is a validation failure for a verb that is not in
	// the reference dictionary.
	ErrUnknownVerb = errors.New("unknown verb")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("not found")
)
