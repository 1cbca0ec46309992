package core

import "errors"

var (
	// ErrNotFound is returned when a trigger entry does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a run for the same tenant is still open.
	ErrConflict = errors.New("conflict")
)
