package claim

import "errors"

var (
	// ErrInvalidInput is returned for negative day counts or distances.
	// Inputs are validated before any rate math happens.
	ErrInvalidInput = errors.New("invalid calculation input")
)
