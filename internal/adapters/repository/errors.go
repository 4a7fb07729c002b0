package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound   = errors.New("opportunity not found")
	ErrInvalidOpp = errors.New("invalid opportunity")
)
