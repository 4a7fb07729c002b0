package api

import "errors"

// Sentinel kinds for API errors. Responses carry these instead of internal
// error text so backend details never leak to callers.
var (
	ErrOverloaded    = errors.New("scoring backend overloaded, retry later")
	ErrScoringFailed = errors.New("scoring backend failed")
	ErrInternal      = errors.New("internal error")
)
