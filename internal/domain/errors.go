package domain

import "errors"

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller may not access or modify a record
	ErrForbidden = errors.New("forbidden")

	// ErrInvalid is returned for malformed input
	ErrInvalid = errors.New("invalid input")

	// ErrConflict is returned when a write collides with existing state
	ErrConflict = errors.New("conflict")
)
