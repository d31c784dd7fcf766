package api

import "errors"

// Request errors.
var (
	ErrInvalidID      = errors.New("invalid analysis id")
	ErrInvalidRequest = errors.New("invalid request")
	ErrResultNotFound = errors.New("analysis not found or expired")
)
