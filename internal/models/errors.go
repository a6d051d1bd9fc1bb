package models

import "errors"

// Sentinel errors raised by the stores. The API layer maps these to HTTP
// statuses; services wrap them with context via fmt.Errorf("%w", ...).
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrExhausted    = errors.New("short code space exhausted")
)
