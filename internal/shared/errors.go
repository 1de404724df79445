package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates rejected input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates the operation clashes with current state.
	ErrConflict = errors.New("conflict with current state")
)
