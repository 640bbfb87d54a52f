package account

import "errors"

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when no active account matches the lookup.
	ErrNotFound = errors.New("account not found")

	// ErrConflict is returned when an account with the same email already exists.
	ErrConflict = errors.New("account already exists")
)
