// Package experiment ties a solve configuration to the statistic-family
// dispatch, geometric-factor preparation, and the sensitivity solver.
package experiment

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/skraemer/detsens/internal/config"
	"github.com/skraemer/detsens/internal/detstat"
	"github.com/skraemer/detsens/internal/hist"
	"github.com/skraemer/detsens/internal/solver"
)

// Experiment is a configured, ready-to-run solve scenario.
type Experiment struct {
	cfg       *config.Config
	fdp       detstat.FDP
	weighting solver.Weighting
	progress  func(solver.Progress)
}

// New resolves the configured family and geometric factor. It fails with
// detstat.ErrUnknownFamily for an unresolvable family selector.
func New(cfg *config.Config) (*Experiment, error) {
	family, err := detstat.ParseFamily(cfg.Family)
	if err != nil {
		return nil, err
	}

	fdp, err := detstat.New(family, detstat.Params{
		SumTwoFThreshold: cfg.SumTwoFThreshold,
		FalseAlarm:       cfg.FalseAlarm,
		TwoFThreshold:    cfg.TwoFThreshold,
		CountThreshold:   cfg.CountThreshold,
	})
	if err != nil {
		return nil, err
	}

	weighting, err := buildWeighting(cfg)
	if err != nil {
		return nil, err
	}

	return &Experiment{cfg: cfg, fdp: fdp, weighting: weighting}, nil
}

// OnProgress registers a solver progress callback.
func (e *Experiment) OnProgress(fn func(solver.Progress)) { e.progress = fn }

// Weighting exposes the prepared R² quadrature, e.g. for plotting.
func (e *Experiment) Weighting() solver.Weighting { return e.weighting }

// Run solves the scenario.
func (e *Experiment) Run(ctx context.Context) (*solver.Result, error) {
	opts := solver.Options{
		Seed:          e.cfg.Seed,
		MaxIterations: e.cfg.MaxIterations,
		Progress:      e.progress,
	}
	return solver.Solve(ctx, e.cfg.PdTarget, e.cfg.Segments, e.weighting, e.fdp, opts)
}

// SampleCurve evaluates the R²-averaged achieved false-dismissal probability
// for the first configured row on an evenly spaced rhosqr grid over
// [0, maxRhoSqr].
func (e *Experiment) SampleCurve(maxRhoSqr float64, points int) ([]float64, error) {
	if points < 2 {
		return nil, fmt.Errorf("experiment: need at least 2 curve points, got %d", points)
	}
	pd := e.cfg.PdTarget[:1]
	ns := e.cfg.Segments[:1]

	ys := make([]float64, points)
	for i := 0; i < points; i++ {
		rhosqr := maxRhoSqr * float64(i) / float64(points-1)
		avg := 0.0
		for k, node := range e.weighting.Nodes {
			achieved, err := e.fdp(pd, ns, []float64{rhosqr * node})
			if err != nil {
				return nil, err
			}
			avg += e.weighting.Weights[k] * achieved[0]
		}
		ys[i] = avg
	}
	return ys, nil
}

func buildWeighting(cfg *config.Config) (solver.Weighting, error) {
	if cfg.RsqrSamples == "" {
		return solver.ScalarFactor(cfg.RsqrScalar)
	}
	binWidth := cfg.RsqrBinWidth
	if binWidth <= 0 {
		binWidth = 0.01
	}
	h, err := LoadSampleHistogram(cfg.RsqrSamples, binWidth)
	if err != nil {
		return solver.Weighting{}, err
	}
	return solver.FromHistogram(h)
}

// LoadSampleHistogram reads one-column CSV sample values and bins them into
// a 1-D histogram with the given bin width.
func LoadSampleHistogram(path string, binWidth float64) (*hist.Histogram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	samples := make([][]float64, 0, len(records))
	for r, rec := range records {
		if len(rec) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			if r == 0 {
				continue // header line
			}
			return nil, fmt.Errorf("experiment: %s row %d: %w", path, r, err)
		}
		samples = append(samples, []float64{v})
	}

	h := hist.New(1)
	if err := h.AddData(samples, []float64{binWidth}); err != nil {
		return nil, err
	}
	return h, nil
}
