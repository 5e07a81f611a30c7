package solver

import "errors"

// Domain errors for sensitivity solving.
var (
	// ErrInvalidHistogramShape indicates a geometric-factor histogram that is
	// not exactly 1-dimensional.
	ErrInvalidHistogramShape = errors.New("solver: geometric-factor histogram must be 1-dimensional")

	// ErrNegativeDomain indicates a geometric-factor histogram with negative
	// finite bin edges.
	ErrNegativeDomain = errors.New("solver: geometric factor must have non-negative support")

	// ErrUnboundedMass indicates nonzero probability mass in the ±Inf bins of
	// the geometric-factor histogram.
	ErrUnboundedMass = errors.New("solver: geometric factor carries probability mass at infinity")

	// ErrBadInput indicates malformed pd/ns input arrays.
	ErrBadInput = errors.New("solver: invalid input")

	// ErrConvergence indicates the search exceeded its iteration cap before
	// satisfying both convergence criteria.
	ErrConvergence = errors.New("solver: search failed to converge within iteration cap")
)
