package hist

import (
	"fmt"
	"math"
	"sort"
)

// BinQuantity selects which derived per-bin quantity Bins returns.
type BinQuantity int

const (
	Centre BinQuantity = iota
	Width
	Lower
	Upper
)

// Histogram is a D-dimensional weighted histogram. Each dimension carries a
// strictly increasing edge sequence whose first and last entries are the
// -Inf/+Inf sentinels, so a dimension with k finite edges has k+1 bins: k-1
// finite bins plus the two infinite-width edge bins.
type Histogram struct {
	edges  [][]float64
	counts []float64 // flat, row-major, last dimension fastest
}

// New creates an empty histogram with dims axes, each initialized to the
// trivial (-Inf, +Inf) binning.
func New(dims int) *Histogram {
	if dims < 1 {
		panic("hist: dimension count must be at least 1")
	}
	edges := make([][]float64, dims)
	for d := range edges {
		edges[d] = []float64{math.Inf(-1), math.Inf(1)}
	}
	return &Histogram{
		edges:  edges,
		counts: make([]float64, 1),
	}
}

// Dims returns the fixed dimension count.
func (h *Histogram) Dims() int { return len(h.edges) }

// NumBins returns the number of bins along dim, infinite bins included.
func (h *Histogram) NumBins(dim int) int { return len(h.edges[dim]) - 1 }

// TotalCount returns the accumulated weight over all bins.
func (h *Histogram) TotalCount() float64 {
	total := 0.0
	for _, c := range h.counts {
		total += c
	}
	return total
}

// Clone returns a deep copy.
func (h *Histogram) Clone() *Histogram {
	c := &Histogram{
		edges:  make([][]float64, len(h.edges)),
		counts: make([]float64, len(h.counts)),
	}
	for d, ed := range h.edges {
		c.edges[d] = append([]float64(nil), ed...)
	}
	copy(c.counts, h.counts)
	return c
}

// Edges returns a copy of the edge sequence for dim, sentinels included.
func (h *Histogram) Edges(dim int) ([]float64, error) {
	if dim < 0 || dim >= len(h.edges) {
		return nil, fmt.Errorf("%w: dimension %d of %d", ErrDimensionMismatch, dim, len(h.edges))
	}
	return append([]float64(nil), h.edges[dim]...), nil
}

// Counts returns a copy of the flat count array.
func (h *Histogram) Counts() []float64 {
	return append([]float64(nil), h.counts...)
}

// Bins returns the requested derived quantity for every bin along dim.
// Infinite bins report centre ±Inf and width +Inf.
func (h *Histogram) Bins(dim int, q BinQuantity) ([]float64, error) {
	if dim < 0 || dim >= len(h.edges) {
		return nil, fmt.Errorf("%w: dimension %d of %d", ErrDimensionMismatch, dim, len(h.edges))
	}
	ed := h.edges[dim]
	out := make([]float64, len(ed)-1)
	for i := range out {
		lo, hi := ed[i], ed[i+1]
		switch q {
		case Centre:
			out[i] = 0.5 * (lo + hi)
		case Width:
			out[i] = hi - lo
		case Lower:
			out[i] = lo
		case Upper:
			out[i] = hi
		}
	}
	return out, nil
}

// Probabilities returns counts normalized by the total count, flat row-major
// over all hyper-bins, infinite bins included. An empty histogram yields all
// zeros.
func (h *Histogram) Probabilities() []float64 {
	total := h.TotalCount()
	out := make([]float64, len(h.counts))
	if total == 0 {
		return out
	}
	for i, c := range h.counts {
		out[i] = c / total
	}
	return out
}

// Range returns the finite-edge extrema of a dimension. ok is false when the
// dimension still has only the trivial infinite binning.
func (h *Histogram) Range(dim int) (lo, hi float64, ok bool) {
	if dim < 0 || dim >= len(h.edges) {
		return 0, 0, false
	}
	ed := h.edges[dim]
	if len(ed) == 2 {
		return 0, 0, false
	}
	return ed[1], ed[len(ed)-2], true
}

// AddData accumulates one unit of weight per sample row, first extending each
// dimension's finite edge range as needed. binWidth holds either a single
// default width applied to all dimensions or one width per dimension; new
// edges are aligned to multiples of the width. Non-finite sample values land
// in the corresponding infinite bin.
func (h *Histogram) AddData(samples [][]float64, binWidth []float64) error {
	dims := len(h.edges)
	widths, err := h.expandWidths(binWidth)
	if err != nil {
		return err
	}
	for r, row := range samples {
		if len(row) != dims {
			return fmt.Errorf("%w: sample %d has %d values, want %d", ErrDimensionMismatch, r, len(row), dims)
		}
		for d, v := range row {
			if math.IsNaN(v) {
				return fmt.Errorf("%w: sample %d dimension %d", ErrBadSample, r, d)
			}
		}
	}
	if len(samples) == 0 {
		return nil
	}

	// A trivially binned dimension has a single bin shared by both infinities;
	// infinite samples are only representable once finite edges exist to
	// separate the two sentinels.
	for d := 0; d < dims; d++ {
		if len(h.edges[d]) > 2 {
			continue
		}
		hasInf, hasFinite := false, false
		for _, row := range samples {
			if math.IsInf(row[d], 0) {
				hasInf = true
			} else {
				hasFinite = true
			}
		}
		if hasInf && !hasFinite {
			return fmt.Errorf("%w: infinite sample in dimension %d with no finite bins", ErrBadSample, d)
		}
	}

	for d := 0; d < dims; d++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, row := range samples {
			v := row[d]
			if math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if lo > hi {
			continue // only non-finite samples in this dimension
		}
		if err := h.growDim(d, lo, hi, widths[d]); err != nil {
			return err
		}
	}

	for _, row := range samples {
		idx := 0
		for d, v := range row {
			idx = idx*h.NumBins(d) + h.findBin(d, v)
		}
		h.counts[idx]++
	}
	return nil
}

func (h *Histogram) expandWidths(binWidth []float64) ([]float64, error) {
	dims := len(h.edges)
	var widths []float64
	switch len(binWidth) {
	case 1:
		widths = make([]float64, dims)
		for d := range widths {
			widths[d] = binWidth[0]
		}
	case dims:
		widths = binWidth
	default:
		return nil, fmt.Errorf("%w: %d bin widths for %d dimensions", ErrDimensionMismatch, len(binWidth), dims)
	}
	for _, w := range widths {
		if !(w > 0) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: got %v", ErrBadBinWidth, w)
		}
	}
	return widths, nil
}

// growDim extends the finite edges of dim to cover [lo, hi] with bins of
// width w aligned to multiples of w, remapping counts into the grown shape.
func (h *Histogram) growDim(dim int, lo, hi, w float64) error {
	ed := h.edges[dim]
	var newFinite []float64
	if len(ed) == 2 {
		first := math.Floor(lo/w) * w
		last := math.Ceil(hi/w) * w
		if last <= first {
			last = first + w
		}
		n := int(math.Round((last - first) / w))
		newFinite = make([]float64, 0, n+1)
		for i := 0; i <= n; i++ {
			newFinite = append(newFinite, first+float64(i)*w)
		}
	} else {
		finite := ed[1 : len(ed)-1]
		first, last := finite[0], finite[len(finite)-1]
		var prepend []float64
		for e := first; e > lo; {
			e -= w
			prepend = append(prepend, e)
		}
		// prepend was built outward; reverse into ascending order
		for i, j := 0, len(prepend)-1; i < j; i, j = i+1, j-1 {
			prepend[i], prepend[j] = prepend[j], prepend[i]
		}
		newFinite = append(prepend, finite...)
		for e := last; e < hi; {
			e += w
			newFinite = append(newFinite, e)
		}
		if len(newFinite) == len(finite) {
			return nil // already covered
		}
	}

	nPrepended := 0
	if len(ed) > 2 {
		for _, e := range newFinite {
			if e < ed[1] {
				nPrepended++
			}
		}
	}
	return h.reshapeDim(dim, newFinite, nPrepended)
}

// reshapeDim replaces dim's finite edges and remaps counts. Old finite bin i
// maps to new finite bin i+shift; the sentinel bins map to the new sentinels.
// A dimension that had only the trivial binning keeps its (necessarily zero
// for a grow, see AddData) mass in the lower sentinel.
func (h *Histogram) reshapeDim(dim int, newFinite []float64, shift int) error {
	newEdges := make([]float64, 0, len(newFinite)+2)
	newEdges = append(newEdges, math.Inf(-1))
	newEdges = append(newEdges, newFinite...)
	newEdges = append(newEdges, math.Inf(1))

	oldBins := h.NumBins(dim)
	newBins := len(newEdges) - 1

	// per-bin index mapping along dim
	mapping := make([]int, oldBins)
	for i := range mapping {
		switch {
		case i == 0:
			mapping[i] = 0
		case i == oldBins-1:
			mapping[i] = newBins - 1
		default:
			mapping[i] = i + shift
		}
	}

	newCounts := make([]float64, lenWithout(h, dim)*newBins)
	h.forEachLane(dim, func(laneOld, laneNew func(bin int) int) {
		for i := 0; i < oldBins; i++ {
			newCounts[laneNew(mapping[i])] += h.counts[laneOld(i)]
		}
	}, newBins)

	h.edges[dim] = newEdges
	h.counts = newCounts
	return nil
}

// lenWithout returns the product of bin counts over all dimensions except dim.
func lenWithout(h *Histogram, dim int) int {
	n := 1
	for d := range h.edges {
		if d != dim {
			n *= h.NumBins(d)
		}
	}
	return n
}

// forEachLane iterates over every combination of indices in the dimensions
// other than dim, handing the callback index functions that resolve a bin
// index along dim into the old flat array and into a new flat array whose
// dim axis has newBins bins.
func (h *Histogram) forEachLane(dim int, fn func(laneOld, laneNew func(bin int) int), newBins int) {
	dims := len(h.edges)
	sizes := make([]int, dims)
	for d := range sizes {
		sizes[d] = h.NumBins(d)
	}

	oldStride := make([]int, dims)
	newStride := make([]int, dims)
	os, ns := 1, 1
	for d := dims - 1; d >= 0; d-- {
		oldStride[d] = os
		newStride[d] = ns
		os *= sizes[d]
		if d == dim {
			ns *= newBins
		} else {
			ns *= sizes[d]
		}
	}

	idx := make([]int, dims)
	for {
		oldBase, newBase := 0, 0
		for d := 0; d < dims; d++ {
			if d != dim {
				oldBase += idx[d] * oldStride[d]
				newBase += idx[d] * newStride[d]
			}
		}
		ob, nb := oldBase, newBase
		osd, nsd := oldStride[dim], newStride[dim]
		fn(
			func(bin int) int { return ob + bin*osd },
			func(bin int) int { return nb + bin*nsd },
		)

		// odometer over the other dimensions
		d := dims - 1
		for d >= 0 {
			if d == dim {
				d--
				continue
			}
			idx[d]++
			if idx[d] < sizes[d] {
				break
			}
			idx[d] = 0
			d--
		}
		if d < 0 {
			return
		}
	}
}

// findBin locates the bin index along dim containing v. Lower edges are
// inclusive; values at or beyond the outermost finite edges fall into the
// corresponding bins by the same rule.
func (h *Histogram) findBin(dim int, v float64) int {
	ed := h.edges[dim]
	idx := sort.SearchFloat64s(ed, v)
	var bin int
	if idx < len(ed) && ed[idx] == v {
		bin = idx
	} else {
		bin = idx - 1
	}
	if bin < 0 {
		bin = 0
	}
	if bin > len(ed)-2 {
		bin = len(ed) - 2
	}
	return bin
}
