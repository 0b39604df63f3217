package domain

import "errors"

// Error taxonomy. Expected domain failures propagate to the HTTP boundary
// unchanged; anything else is wrapped as ErrInternal at the outermost
// operation boundary and never exposes internal detail to the caller.
var (
	ErrInvalid      = errors.New("invalid input")
	ErrNotFound     = errors.New("record not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("access forbidden")
	ErrConflict     = errors.New("resource already exists")
	ErrInternal     = errors.New("internal error")
)
