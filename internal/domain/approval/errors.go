package approval

import "errors"

var (
	// ErrEmptyChain is returned when a request is created without any
	// approval steps.
	ErrEmptyChain = errors.New("approval chain must have at least one step")

	// ErrStepOutOfRange is returned when a transition names a step index
	// outside the chain.
	ErrStepOutOfRange = errors.New("approval step index out of range")
)
