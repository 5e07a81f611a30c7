package detstat

import (
	"fmt"
	"math"

	"github.com/skraemer/detsens/internal/specfun"
)

// newHoughFstat builds the FDP for the Hough-on-Fstat number-count
// statistic: each of the Ns segments crosses the per-segment 2F threshold
// with probability q = SF of a noncentral chi-squared (4 dof, noncentrality
// noncent/Ns), the crossing count is Binomial(Ns, q), and a candidate is
// dismissed when the count falls below the number-count threshold.
func newHoughFstat(p Params) (FDP, error) {
	if !(p.TwoFThreshold > 0) {
		return nil, fmt.Errorf("%w: Hough family needs a positive TwoFThreshold", ErrBadParams)
	}
	if len(p.CountThreshold) == 0 && len(p.FalseAlarm) == 0 {
		return nil, fmt.Errorf("%w: Hough family needs CountThreshold or FalseAlarm", ErrBadParams)
	}

	return func(pd, ns, noncent []float64) ([]float64, error) {
		rows := len(noncent)
		if len(ns) != rows || len(pd) != rows {
			return nil, fmt.Errorf("%w: pd/ns/noncent lengths %d/%d/%d differ", ErrBadParams, len(pd), len(ns), rows)
		}
		if len(p.CountThreshold) > 0 {
			if err := checkRowParam("CountThreshold", p.CountThreshold, rows); err != nil {
				return nil, err
			}
		} else if err := checkRowParam("FalseAlarm", p.FalseAlarm, rows); err != nil {
			return nil, err
		}

		out := make([]float64, rows)
		for i := 0; i < rows; i++ {
			n := int(math.Round(ns[i]))
			if n < 1 {
				return nil, fmt.Errorf("%w: segment count %g in row %d", ErrBadParams, ns[i], i)
			}

			var nth int
			if len(p.CountThreshold) > 0 {
				nth = int(math.Round(broadcast(p.CountThreshold, i)))
			} else {
				var err error
				nth, err = countThreshold(broadcast(p.FalseAlarm, i), n, p.TwoFThreshold)
				if err != nil {
					return nil, err
				}
			}

			q, err := specfun.NoncentralChiSquaredSF(p.TwoFThreshold, 4, noncent[i]/float64(n))
			if err != nil {
				return nil, err
			}
			cdf, err := specfun.BinomialCDF(nth-1, n, q)
			if err != nil {
				return nil, err
			}
			out[i] = cdf
		}
		return out, nil
	}, nil
}

// countThreshold returns the smallest number-count threshold whose noise
// false-alarm probability P(count >= nth | noise) does not exceed pa.
func countThreshold(pa float64, n int, twoFth float64) (int, error) {
	if !(pa > 0 && pa < 1) {
		return 0, fmt.Errorf("%w: false-alarm probability %g", ErrBadParams, pa)
	}
	q0, err := specfun.ChiSquaredSF(twoFth, 4)
	if err != nil {
		return 0, err
	}
	for nth := 1; nth <= n; nth++ {
		sf, err := specfun.BinomialSF(nth-1, n, q0)
		if err != nil {
			return 0, err
		}
		if sf <= pa {
			return nth, nil
		}
	}
	return n, nil
}
