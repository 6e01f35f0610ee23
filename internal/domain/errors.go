package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrRateLimited  = errors.New("rate limited")
)

// RateLimitError carries the retry metadata a 429 response needs.
// It unwraps to ErrRateLimited so handlers can discriminate with errors.Is.
type RateLimitError struct {
	Limit      int
	RetryAfter int // seconds until the current window resets
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit of %d exceeded, retry in %d seconds", e.Limit, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }
