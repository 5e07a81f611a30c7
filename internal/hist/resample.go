package hist

import (
	"fmt"
	"math"
	"sort"
)

// Resample rebins dimension dim onto newEdges, a finite, strictly increasing,
// duplicate-free sequence, and returns the rebinned histogram. The receiver
// is left untouched; the ±Inf sentinel bin counts carry over unchanged.
//
// When the new edges are an exact superset of the existing finite edges that
// only extends the range, existing counts are retained and zero-count bins
// inserted. Otherwise probability mass is redistributed by linear
// interpolation of the cumulative distribution, which conserves total mass
// but assumes uniform density within each old bin.
func (h *Histogram) Resample(dim int, newEdges []float64) (*Histogram, error) {
	if dim < 0 || dim >= len(h.edges) {
		return nil, fmt.Errorf("%w: dimension %d of %d", ErrDimensionMismatch, dim, len(h.edges))
	}
	if err := checkEdges(newEdges); err != nil {
		return nil, err
	}

	out := h.Clone()
	old := h.edges[dim]

	// A dimension with no finite bins adopts the new edges directly.
	if len(old) == 2 {
		if err := out.reshapeDim(dim, append([]float64(nil), newEdges...), 0); err != nil {
			return nil, err
		}
		return out, nil
	}

	oldFinite := old[1 : len(old)-1]
	oldLo, oldHi := oldFinite[0], oldFinite[len(oldFinite)-1]
	if newEdges[0] > oldLo || newEdges[len(newEdges)-1] < oldHi {
		return nil, fmt.Errorf("%w: new [%g, %g] vs existing [%g, %g]",
			ErrRangeCoverage, newEdges[0], newEdges[len(newEdges)-1], oldLo, oldHi)
	}

	if interiorMatches(oldFinite, newEdges) {
		return h.resampleExact(dim, newEdges)
	}
	return h.resampleInterp(dim, newEdges)
}

// ResampleAll rebins every dimension in turn, one new-edge vector per
// dimension. Supplying all vectors at once is equivalent to sequential
// single-dimension resampling.
func (h *Histogram) ResampleAll(newEdges [][]float64) (*Histogram, error) {
	if len(newEdges) != len(h.edges) {
		return nil, fmt.Errorf("%w: %d edge vectors for %d dimensions", ErrDimensionMismatch, len(newEdges), len(h.edges))
	}
	out := h
	for d, ed := range newEdges {
		var err error
		out, err = out.Resample(d, ed)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func checkEdges(edges []float64) error {
	if len(edges) < 2 {
		return fmt.Errorf("%w: need at least two edges", ErrBadEdges)
	}
	for i, e := range edges {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return fmt.Errorf("%w: edge %d is %g", ErrBadEdges, i, e)
		}
		if i > 0 && e <= edges[i-1] {
			return fmt.Errorf("%w: edge %d (%g) not above edge %d (%g)", ErrBadEdges, i, e, i-1, edges[i-1])
		}
	}
	return nil
}

// interiorMatches reports whether the part of newEdges falling inside the old
// finite range is exactly the old finite edge set, so that every old bin
// survives unsplit and only zero bins are added outside the range.
func interiorMatches(oldFinite, newEdges []float64) bool {
	interior := newEdges[:0:0]
	for _, e := range newEdges {
		if e >= oldFinite[0] && e <= oldFinite[len(oldFinite)-1] {
			interior = append(interior, e)
		}
	}
	if len(interior) != len(oldFinite) {
		return false
	}
	for i, e := range interior {
		if e != oldFinite[i] {
			return false
		}
	}
	return true
}

// resampleExact retains existing counts, shifting them by the number of bins
// inserted below the old range.
func (h *Histogram) resampleExact(dim int, newEdges []float64) (*Histogram, error) {
	oldFinite := h.edges[dim][1 : len(h.edges[dim])-1]
	shift := 0
	for _, e := range newEdges {
		if e < oldFinite[0] {
			shift++
		}
	}
	out := h.Clone()
	if err := out.reshapeDim(dim, append([]float64(nil), newEdges...), shift); err != nil {
		return nil, err
	}
	return out, nil
}

// resampleInterp redistributes each lane's finite counts via piecewise-linear
// interpolation of the cumulative count at every new edge.
func (h *Histogram) resampleInterp(dim int, newEdges []float64) (*Histogram, error) {
	old := h.edges[dim]
	oldFinite := old[1 : len(old)-1]
	oldBins := len(old) - 1
	newBins := len(newEdges) + 1

	newFullEdges := make([]float64, 0, len(newEdges)+2)
	newFullEdges = append(newFullEdges, math.Inf(-1))
	newFullEdges = append(newFullEdges, newEdges...)
	newFullEdges = append(newFullEdges, math.Inf(1))

	out := &Histogram{
		edges:  make([][]float64, len(h.edges)),
		counts: make([]float64, lenWithout(h, dim)*newBins),
	}
	for d, ed := range h.edges {
		if d == dim {
			out.edges[d] = newFullEdges
		} else {
			out.edges[d] = append([]float64(nil), ed...)
		}
	}

	cum := make([]float64, len(oldFinite))
	h.forEachLane(dim, func(laneOld, laneNew func(bin int) int) {
		// sentinel counts carry over verbatim
		out.counts[laneNew(0)] = h.counts[laneOld(0)]
		out.counts[laneNew(newBins-1)] = h.counts[laneOld(oldBins-1)]

		// cumulative count at each old finite edge
		cum[0] = 0
		for i := 1; i < len(oldFinite); i++ {
			cum[i] = cum[i-1] + h.counts[laneOld(i)]
		}
		total := cum[len(cum)-1]
		if total == 0 {
			for i := 1; i < newBins-1; i++ {
				out.counts[laneNew(i)] = 0
			}
			return
		}

		prev := cumAt(oldFinite, cum, newEdges[0])
		for i := 1; i < len(newEdges); i++ {
			cur := cumAt(oldFinite, cum, newEdges[i])
			out.counts[laneNew(i)] = cur - prev
			prev = cur
		}
	}, newBins)

	return out, nil
}

// cumAt linearly interpolates the cumulative count at x over the old finite
// edges. Values outside the finite range clamp to the boundary cumulative.
func cumAt(edges, cum []float64, x float64) float64 {
	if x <= edges[0] {
		return cum[0]
	}
	if x >= edges[len(edges)-1] {
		return cum[len(cum)-1]
	}
	j := sort.SearchFloat64s(edges, x)
	if edges[j] == x {
		return cum[j]
	}
	// x lies strictly inside (edges[j-1], edges[j])
	frac := (x - edges[j-1]) / (edges[j] - edges[j-1])
	return cum[j-1] + frac*(cum[j]-cum[j-1])
}
