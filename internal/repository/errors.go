package repository

import "errors"

// Common repository errors. Implementations map their driver-specific
// errors onto these.
var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEntry means a unique constraint was violated.
	ErrDuplicateEntry = errors.New("repository: duplicate entry")
)

// Resource-specific aliases.
var (
	ErrRoomNotFound    = ErrNotFound
	ErrStanceNotFound  = ErrNotFound
	ErrMessageNotFound = ErrNotFound
	ErrResultNotFound  = ErrNotFound
)
