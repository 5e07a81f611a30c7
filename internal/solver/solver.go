// Package solver computes the minimal detectable squared SNR achieving a
// target false-dismissal probability, by collapsing a geometric-factor
// histogram into a discrete weighted distribution, exponential bracket
// search, and randomized bisection refinement.
//
// All rows of the batched input are advanced together each round with a
// boolean mask selecting the rows still active; rows drop out independently
// as they converge. The algorithm relies on the supplied false-dismissal
// probability function decreasing monotonically in the non-centrality.
package solver

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/skraemer/detsens/internal/detstat"
)

// Phase identifies the solver round being reported on the progress side
// channel.
type Phase int

const (
	PhaseBracket Phase = iota
	PhaseBisect
)

// Progress describes one bracketing or bisection round. Delivered to the
// optional callback only; it never influences control flow.
type Progress struct {
	Phase  Phase
	Round  int
	Active int // rows still searching
}

// Options configures a solve.
type Options struct {
	// PdTolerance is the maximum relative error between achieved and target
	// false-dismissal probability. Defaults to 1e-3.
	PdTolerance float64

	// BracketTolerance is the maximum relative bracket width. Defaults to 1e-8.
	BracketTolerance float64

	// MaxIterations caps each search phase; exceeding it yields
	// ErrConvergence. Defaults to 1000.
	MaxIterations int

	// Seed drives the randomized bisection draws. The same seed reproduces
	// the same search path.
	Seed int64

	// Progress, when non-nil, is invoked once per round. Panics in the
	// callback are swallowed; the side channel must never abort a solve.
	Progress func(Progress)
}

func (o Options) withDefaults() Options {
	if o.PdTolerance <= 0 {
		o.PdTolerance = 1e-3
	}
	if o.BracketTolerance <= 0 {
		o.BracketTolerance = 1e-8
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = 1000
	}
	return o
}

// Result holds the per-row solve outputs. Rows whose target is already met
// at zero SNR are left NaN.
type Result struct {
	RhoSqr []float64 // detectable squared SNR
	Rho    []float64 // sqrt(RhoSqr)
	PdRho  []float64 // achieved false-dismissal probability at Rho
	Rounds int       // total bracketing plus bisection rounds
}

// Solve returns the minimal detectable RMS SNR per row of the pd/ns input,
// averaging the false-dismissal probability over the R² weighting.
func Solve(ctx context.Context, pd, ns []float64, w Weighting, fdp detstat.FDP, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	rows := len(pd)
	if rows == 0 || len(ns) != rows {
		return nil, fmt.Errorf("%w: pd has %d rows, ns has %d", ErrBadInput, rows, len(ns))
	}
	for i := range pd {
		if !(pd[i] > 0 && pd[i] < 1) {
			return nil, fmt.Errorf("%w: pd[%d]=%g not in (0, 1)", ErrBadInput, i, pd[i])
		}
		if !(ns[i] > 0) {
			return nil, fmt.Errorf("%w: ns[%d]=%g not positive", ErrBadInput, i, ns[i])
		}
	}
	if len(w.Nodes) == 0 || len(w.Nodes) != len(w.Weights) {
		return nil, fmt.Errorf("%w: weighting has %d nodes and %d weights", ErrBadInput, len(w.Nodes), len(w.Weights))
	}

	// evalAvg computes the weighted average achieved false-dismissal
	// probability at each row's candidate squared SNR. All rows are
	// evaluated together each call, active or not.
	noncent := make([]float64, rows)
	evalAvg := func(rhosqr []float64) ([]float64, error) {
		avg := make([]float64, rows)
		for k, node := range w.Nodes {
			for i := range noncent {
				noncent[i] = rhosqr[i] * node
			}
			achieved, err := fdp(pd, ns, noncent)
			if err != nil {
				return nil, err
			}
			if len(achieved) != rows {
				return nil, fmt.Errorf("%w: fdp returned %d rows, want %d", ErrBadInput, len(achieved), rows)
			}
			for i, a := range achieved {
				avg[i] += w.Weights[k] * a
			}
		}
		return avg, nil
	}

	res := &Result{
		RhoSqr: make([]float64, rows),
		Rho:    make([]float64, rows),
		PdRho:  make([]float64, rows),
	}

	// Zero check: rows already below target at rhosqr = 0 are degenerate
	// and stay NaN rather than reporting a clean zero.
	zero := make([]float64, rows)
	pdMin, err := evalAvg(zero)
	if err != nil {
		return nil, err
	}
	active := make([]bool, rows)
	for i := range active {
		if pdMin[i] >= pd[i] {
			active[i] = true
		} else {
			res.RhoSqr[i] = math.NaN()
			res.Rho[i] = math.NaN()
			res.PdRho[i] = math.NaN()
		}
	}

	rhosqrMin := make([]float64, rows)
	rhosqrMax := make([]float64, rows)
	for i := range rhosqrMax {
		rhosqrMax[i] = 1
	}

	// Exponential bracketing: double rhosqrMax until the achieved
	// false-dismissal probability drops below the target on every active row.
	pdMax := make([]float64, rows)
	bracketing := append([]bool(nil), active...)
	for round := 1; anyTrue(bracketing); round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if round > opts.MaxIterations {
			return nil, fmt.Errorf("%w: bracketing row %d after %d rounds", ErrConvergence, firstTrue(bracketing), opts.MaxIterations)
		}
		achieved, err := evalAvg(rhosqrMax)
		if err != nil {
			return nil, err
		}
		for i := range bracketing {
			if !bracketing[i] {
				continue
			}
			if achieved[i] < pd[i] {
				pdMax[i] = achieved[i]
				bracketing[i] = false
				continue
			}
			rhosqrMax[i] *= 2
		}
		res.Rounds++
		report(opts.Progress, Progress{Phase: PhaseBracket, Round: round, Active: countTrue(bracketing)})
	}

	// Randomized bisection: pick a uniformly random point inside each
	// bracket, move the endpoint on the wrong side of the target, and stop a
	// row once the achieved probability is within PdTolerance of the target
	// and the bracket is narrower than BracketTolerance.
	rng := rand.New(rand.NewSource(opts.Seed))
	searching := append([]bool(nil), active...)
	cand := make([]float64, rows)
	for round := 1; anyTrue(searching); round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if round > opts.MaxIterations {
			return nil, fmt.Errorf("%w: bisecting row %d after %d rounds", ErrConvergence, firstTrue(searching), opts.MaxIterations)
		}
		// one shared batch of draws per round
		for i := range cand {
			u := rng.Float64()
			if searching[i] {
				cand[i] = rhosqrMin[i] + u*(rhosqrMax[i]-rhosqrMin[i])
			}
		}
		achieved, err := evalAvg(cand)
		if err != nil {
			return nil, err
		}
		for i := range searching {
			if !searching[i] {
				continue
			}
			if achieved[i] >= pd[i] {
				rhosqrMin[i] = cand[i]
				pdMin[i] = achieved[i]
			} else {
				rhosqrMax[i] = cand[i]
				pdMax[i] = achieved[i]
			}
			res.RhoSqr[i] = cand[i]
			res.PdRho[i] = achieved[i]

			pdErr := math.Abs(achieved[i]-pd[i]) / pd[i]
			width := rhosqrMax[i] - rhosqrMin[i]
			if pdErr < opts.PdTolerance && width <= opts.BracketTolerance*rhosqrMax[i] {
				searching[i] = false
			}
		}
		res.Rounds++
		report(opts.Progress, Progress{Phase: PhaseBisect, Round: round, Active: countTrue(searching)})
	}

	for i := range res.Rho {
		if active[i] {
			res.Rho[i] = math.Sqrt(res.RhoSqr[i])
		}
	}
	return res, nil
}

// Depth converts detectable RMS SNR values to sensitivity depths for an
// observation spanning tdata seconds of data.
func Depth(tdata float64, rho []float64) []float64 {
	out := make([]float64, len(rho))
	for i, r := range rho {
		out[i] = math.Sqrt(tdata) / r
	}
	return out
}

func report(fn func(Progress), p Progress) {
	if fn == nil {
		return
	}
	defer func() { _ = recover() }()
	fn(p)
}

func anyTrue(mask []bool) bool {
	for _, m := range mask {
		if m {
			return true
		}
	}
	return false
}

func countTrue(mask []bool) int {
	n := 0
	for _, m := range mask {
		if m {
			n++
		}
	}
	return n
}

func firstTrue(mask []bool) int {
	for i, m := range mask {
		if m {
			return i
		}
	}
	return -1
}
