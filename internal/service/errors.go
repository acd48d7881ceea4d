package service

import "errors"

// Engine error kinds. Handlers map these to status codes; everything more
// specific stays in logs so external callers never learn which internal step
// failed.
var (
	ErrNotFound           = errors.New("file not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrCipher             = errors.New("cipher failure")
	ErrPersist            = errors.New("metadata persist failure")
	ErrPayloadTooLarge    = errors.New("payload too large")
	ErrInvalidInput       = errors.New("invalid input")
)
