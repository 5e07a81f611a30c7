// Package hist provides an arbitrary-dimension weighted histogram with
// dynamic rebinning.
//
// A [Histogram] stores per-dimension ordered bin edges, always bracketed by
// -Inf and +Inf sentinel edges, and a co-indexed count array. The two
// outermost bins of every dimension are infinite-width catch bins for mass
// outside the finite range.
//
//   - [New]: construct with a fixed dimension count
//   - [Histogram.AddData]: accumulate samples, growing the finite range
//   - [Histogram.Resample]: rebin one dimension onto new edges
//   - [Mean], [Variance], [StdDev]: marginal moments over finite bins
//
// Histograms are not safe for concurrent mutation; resampling returns a new
// Histogram and leaves the receiver untouched.
package hist
