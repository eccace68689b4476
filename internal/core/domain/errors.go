package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSourceUnavailable indicates a suggestion source cannot be resolved.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrPermissionDenied indicates the caller lacks permission for an
	// operation. Click logging is silently disabled when it occurs.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrSessionClosed indicates the suggestion session has been closed.
	ErrSessionClosed = errors.New("session closed")
)
