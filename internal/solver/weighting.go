package solver

import (
	"fmt"
	"math"

	"github.com/skraemer/detsens/internal/hist"
)

// Weighting holds the quadrature nodes and weights approximating the
// expectation over the squared geometric factor R². Nodes are R² values,
// weights the probability mass attached to each.
type Weighting struct {
	Nodes   []float64
	Weights []float64
}

// ScalarFactor builds the degenerate single-node weighting for a fixed R².
func ScalarFactor(rsqr float64) (Weighting, error) {
	if rsqr < 0 || math.IsNaN(rsqr) || math.IsInf(rsqr, 0) {
		return Weighting{}, fmt.Errorf("%w: scalar R²=%g", ErrNegativeDomain, rsqr)
	}
	return Weighting{Nodes: []float64{rsqr}, Weights: []float64{1}}, nil
}

// FromHistogram collapses a 1-D geometric-factor histogram into quadrature
// nodes (finite bin centres) and weights (per-bin probability mass). The
// histogram must have non-negative finite support and no probability mass in
// its infinite bins.
func FromHistogram(h *hist.Histogram) (Weighting, error) {
	if h.Dims() != 1 {
		return Weighting{}, fmt.Errorf("%w: got %d dimensions", ErrInvalidHistogramShape, h.Dims())
	}
	edges, err := h.Edges(0)
	if err != nil {
		return Weighting{}, err
	}
	for _, e := range edges[1 : len(edges)-1] {
		if e < 0 {
			return Weighting{}, fmt.Errorf("%w: finite edge %g", ErrNegativeDomain, e)
		}
	}

	probs, err := h.Marginal(0)
	if err != nil {
		return Weighting{}, err
	}
	centres, err := h.Bins(0, hist.Centre)
	if err != nil {
		return Weighting{}, err
	}
	widths, err := h.Bins(0, hist.Width)
	if err != nil {
		return Weighting{}, err
	}

	var w Weighting
	for i, p := range probs {
		if math.IsInf(widths[i], 0) {
			if p > 0 {
				return Weighting{}, fmt.Errorf("%w: bin %d holds probability %g", ErrUnboundedMass, i, p)
			}
			continue
		}
		if p == 0 {
			continue
		}
		w.Nodes = append(w.Nodes, centres[i])
		w.Weights = append(w.Weights, p)
	}
	if len(w.Nodes) == 0 {
		return Weighting{}, fmt.Errorf("%w: histogram holds no probability mass", ErrBadInput)
	}
	return w, nil
}
