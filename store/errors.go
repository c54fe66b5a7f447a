package store

import "errors"

var (
	// ErrNotFound is returned by updates and deletes against an absent id.
	// Lookups do not return it: getting a missing entity yields nil, nil.
	ErrNotFound = errors.New("entity not found")

	// ErrConstraintViolation is returned when a write would break a
	// uniqueness or enumeration invariant (duplicate email, unknown status).
	ErrConstraintViolation = errors.New("constraint violation")
)
