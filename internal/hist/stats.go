package hist

import (
	"fmt"
	"math"
)

// Marginal returns the per-bin probability mass along dim, with all other
// dimensions summed out. Bin order matches Bins(dim, ...).
func (h *Histogram) Marginal(dim int) ([]float64, error) {
	if dim < 0 || dim >= len(h.edges) {
		return nil, fmt.Errorf("%w: dimension %d of %d", ErrDimensionMismatch, dim, len(h.edges))
	}
	nbins := h.NumBins(dim)
	marg := make([]float64, nbins)
	h.forEachLane(dim, func(laneOld, _ func(bin int) int) {
		for i := 0; i < nbins; i++ {
			marg[i] += h.counts[laneOld(i)]
		}
	}, nbins)
	total := h.TotalCount()
	if total == 0 {
		return marg, nil
	}
	for i := range marg {
		marg[i] /= total
	}
	return marg, nil
}

// Mean returns the first moment of the marginal distribution along dim,
// taken over finite bins. It fails with ErrInfiniteMass if any probability
// mass sits in an infinite-width bin of that dimension.
func Mean(h *Histogram, dim int) (float64, error) {
	centres, probs, err := finiteMarginal(h, dim)
	if err != nil {
		return 0, err
	}
	mean := 0.0
	for i, p := range probs {
		mean += centres[i] * p
	}
	return mean, nil
}

// Variance returns the second central moment of the marginal along dim,
// under the same finite-mass restriction as Mean.
func Variance(h *Histogram, dim int) (float64, error) {
	centres, probs, err := finiteMarginal(h, dim)
	if err != nil {
		return 0, err
	}
	mean := 0.0
	for i, p := range probs {
		mean += centres[i] * p
	}
	variance := 0.0
	for i, p := range probs {
		d := centres[i] - mean
		variance += d * d * p
	}
	return variance, nil
}

// StdDev returns sqrt(Variance).
func StdDev(h *Histogram, dim int) (float64, error) {
	v, err := Variance(h, dim)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// finiteMarginal returns centres and probabilities of the finite bins along
// dim, rejecting any nonzero mass in infinite-width bins.
func finiteMarginal(h *Histogram, dim int) (centres, probs []float64, err error) {
	marg, err := h.Marginal(dim)
	if err != nil {
		return nil, nil, err
	}
	widths, err := h.Bins(dim, Width)
	if err != nil {
		return nil, nil, err
	}
	allCentres, err := h.Bins(dim, Centre)
	if err != nil {
		return nil, nil, err
	}
	for i, w := range widths {
		if math.IsInf(w, 0) {
			if marg[i] > 0 {
				return nil, nil, fmt.Errorf("%w: dimension %d bin %d holds probability %g", ErrInfiniteMass, dim, i, marg[i])
			}
			continue
		}
		centres = append(centres, allCentres[i])
		probs = append(probs, marg[i])
	}
	return centres, probs, nil
}
