package ratelimit

import "errors"

var (
	ErrKeyRequired      = errors.New("rate limit identifier is required")
	ErrStoreRequired    = errors.New("rate limit store is required")
	ErrInvalidRule      = errors.New("invalid rate limit rule")
	ErrMissingPreset    = errors.New("rate limit preset is not configured")
	ErrUnknownStore     = errors.New("unknown rate limit store")
	ErrStoreUnavailable = errors.New("rate limit store unavailable")
)
