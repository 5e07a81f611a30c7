// Package detstat implements false-dismissal probability functions for the
// supported detection-statistic families.
//
// A [FDP] maps parallel rows of {target false-dismissal probability, segment
// count, non-centrality} to the achieved false-dismissal probability and is
// monotonically decreasing in the non-centrality. The sensitivity solver
// treats it as an opaque callable; families are selected by the [Family]
// enum at the boundary, never by string dispatch inside the core.
package detstat

import (
	"errors"
	"fmt"
	"strings"
)

// FDP computes the achieved false-dismissal probability for each row of the
// parallel pd/ns/noncent arrays.
type FDP func(pd, ns, noncent []float64) ([]float64, error)

// Family identifies a detection-statistic family.
type Family int

const (
	// ChiSquared models the sum of per-segment 2F values, distributed as a
	// noncentral chi-squared with 4*Ns degrees of freedom.
	ChiSquared Family = iota

	// HoughFstat models per-segment 2F threshold crossings counted into a
	// binomial number-count statistic.
	HoughFstat
)

// ErrUnknownFamily indicates an unresolvable statistic-family selector.
var ErrUnknownFamily = errors.New("detstat: unknown statistic family")

// ErrBadParams indicates family parameters that are missing or inconsistent.
var ErrBadParams = errors.New("detstat: invalid family parameters")

func (f Family) String() string {
	switch f {
	case ChiSquared:
		return "chisquared"
	case HoughFstat:
		return "houghfstat"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// ParseFamily resolves a selector string to a Family.
func ParseFamily(name string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "chisquared", "chisquare", "chi2":
		return ChiSquared, nil
	case "houghfstat", "hough":
		return HoughFstat, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFamily, name)
	}
}

// Params carries family-specific options. Per-row slices must either hold a
// single broadcast value or one value per solve row.
type Params struct {
	// SumTwoFThreshold is the chi-squared family's detection threshold on
	// the summed 2F statistic.
	SumTwoFThreshold []float64

	// FalseAlarm derives thresholds from per-row false-alarm probabilities
	// when explicit thresholds are absent.
	FalseAlarm []float64

	// TwoFThreshold is the Hough family's per-segment 2F threshold.
	TwoFThreshold float64

	// CountThreshold is the Hough family's number-count threshold; derived
	// from FalseAlarm when absent.
	CountThreshold []float64
}

// New builds the FDP for a family.
func New(f Family, p Params) (FDP, error) {
	switch f {
	case ChiSquared:
		return newChiSquared(p)
	case HoughFstat:
		return newHoughFstat(p)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFamily, f)
	}
}

// broadcast returns vals[i] for per-row slices or vals[0] for a single
// broadcast value.
func broadcast(vals []float64, i int) float64 {
	if len(vals) == 1 {
		return vals[0]
	}
	return vals[i]
}

func checkRowParam(name string, vals []float64, rows int) error {
	if len(vals) != 1 && len(vals) != rows {
		return fmt.Errorf("%w: %s has %d values for %d rows", ErrBadParams, name, len(vals), rows)
	}
	return nil
}
