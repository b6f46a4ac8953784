package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a unique key is already taken.
	ErrAlreadyExists = errors.New("already exists")
	// ErrConflict signals that the stored row changed since it was read.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput wraps caller validation failures.
	ErrInvalidInput = errors.New("invalid input")
)
