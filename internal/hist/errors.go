package hist

import "errors"

// Domain errors for histogram operations.
var (
	// ErrDimensionMismatch indicates sample or argument dimensionality does
	// not match the histogram's fixed dimension count.
	ErrDimensionMismatch = errors.New("hist: dimension mismatch")

	// ErrBadEdges indicates a bin edge sequence that is not strictly
	// increasing, not finite, or empty.
	ErrBadEdges = errors.New("hist: bin edges must be finite and strictly increasing")

	// ErrBadBinWidth indicates a non-positive or non-finite default bin width.
	ErrBadBinWidth = errors.New("hist: default bin width must be positive and finite")

	// ErrRangeCoverage indicates resampling edges that do not cover the
	// existing finite data range.
	ErrRangeCoverage = errors.New("hist: new edges do not cover existing finite range")

	// ErrInfiniteMass indicates a moment computation on a dimension holding
	// nonzero probability mass in its infinite bins.
	ErrInfiniteMass = errors.New("hist: nonzero probability mass in infinite bins")

	// ErrBadSample indicates a NaN sample value.
	ErrBadSample = errors.New("hist: sample value is NaN")
)
