package detstat

import (
	"fmt"
	"math"

	"github.com/skraemer/detsens/internal/specfun"
)

// newChiSquared builds the FDP for the summed-2F statistic: across Ns
// segments the sum of 2F values follows a chi-squared distribution with
// 4*Ns degrees of freedom and total noncentrality equal to the row's
// noncent value. The achieved false-dismissal probability is the noncentral
// CDF at the detection threshold.
func newChiSquared(p Params) (FDP, error) {
	if len(p.SumTwoFThreshold) == 0 && len(p.FalseAlarm) == 0 {
		return nil, fmt.Errorf("%w: chi-squared family needs SumTwoFThreshold or FalseAlarm", ErrBadParams)
	}

	// Thresholds derived from false-alarm probabilities depend on the row's
	// segment count; cache them since the solver re-evaluates every round.
	type thresholdKey struct{ pa, dof float64 }
	cache := make(map[thresholdKey]float64)

	return func(pd, ns, noncent []float64) ([]float64, error) {
		rows := len(noncent)
		if len(ns) != rows || len(pd) != rows {
			return nil, fmt.Errorf("%w: pd/ns/noncent lengths %d/%d/%d differ", ErrBadParams, len(pd), len(ns), rows)
		}
		if len(p.SumTwoFThreshold) > 0 {
			if err := checkRowParam("SumTwoFThreshold", p.SumTwoFThreshold, rows); err != nil {
				return nil, err
			}
		} else if err := checkRowParam("FalseAlarm", p.FalseAlarm, rows); err != nil {
			return nil, err
		}

		out := make([]float64, rows)
		for i := 0; i < rows; i++ {
			if !(ns[i] > 0) {
				return nil, fmt.Errorf("%w: segment count %g in row %d", ErrBadParams, ns[i], i)
			}
			dof := 4 * ns[i]
			var threshold float64
			if len(p.SumTwoFThreshold) > 0 {
				threshold = broadcast(p.SumTwoFThreshold, i)
			} else {
				pa := broadcast(p.FalseAlarm, i)
				key := thresholdKey{pa, dof}
				cached, ok := cache[key]
				if !ok {
					var err error
					cached, err = specfun.ChiSquaredInvSF(pa, dof)
					if err != nil {
						return nil, err
					}
					cache[key] = cached
				}
				threshold = cached
			}
			cdf, err := specfun.NoncentralChiSquaredCDF(threshold, dof, noncent[i])
			if err != nil {
				return nil, err
			}
			out[i] = cdf
		}
		return out, nil
	}, nil
}

// SumTwoFThresholdFromFalseAlarm converts false-alarm probabilities to
// summed-2F detection thresholds for the given segment counts via the
// inverse central chi-squared false-alarm relation with 4*Ns degrees of
// freedom.
func SumTwoFThresholdFromFalseAlarm(falseAlarm, ns []float64) ([]float64, error) {
	if len(falseAlarm) != len(ns) && len(ns) != 1 {
		return nil, fmt.Errorf("%w: %d false-alarm values for %d segment counts", ErrBadParams, len(falseAlarm), len(ns))
	}
	out := make([]float64, len(falseAlarm))
	for i, pa := range falseAlarm {
		n := broadcast(ns, i)
		if !(n > 0) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("%w: segment count %g in row %d", ErrBadParams, n, i)
		}
		th, err := specfun.ChiSquaredInvSF(pa, 4*n)
		if err != nil {
			return nil, err
		}
		out[i] = th
	}
	return out, nil
}
