package rate

import "errors"

var (
	// ErrRateNotFound is returned when no active, currently valid rate
	// matches the query. Callers must fail the calculation instead of
	// substituting a default rate.
	ErrRateNotFound = errors.New("rate not found")

	// ErrAmbiguousRate is returned when more than one equally specific rate
	// matches the same query. Overlapping validity windows are a
	// data-quality problem in the catalog, not something to resolve at
	// calculation time.
	ErrAmbiguousRate = errors.New("ambiguous rate configuration")
)
