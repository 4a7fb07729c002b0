package inference

import "errors"

// Gateway error classes. Callers branch on these to pick retry semantics:
// ErrOverloaded is retryable after backoff, the rest are terminal for the
// request.
var (
	// ErrOverloaded means the backend is shedding load; retry later.
	ErrOverloaded = errors.New("scoring backend overloaded")

	// ErrValidation means the backend rejected the request as malformed.
	ErrValidation = errors.New("scoring backend rejected request")

	// ErrInference is any other backend failure.
	ErrInference = errors.New("scoring backend failed")
)
