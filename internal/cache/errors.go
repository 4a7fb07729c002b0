package cache

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrColdLoad = errors.New("cold load failed")
)
