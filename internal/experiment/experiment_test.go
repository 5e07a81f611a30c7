package experiment

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/skraemer/detsens/internal/config"
	"github.com/skraemer/detsens/internal/detstat"
	"github.com/skraemer/detsens/internal/solver"
)

func quickConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.FalseAlarm = []float64{1e-10}
	cfg.Seed = 1
	return cfg
}

func TestNewRejectsUnknownFamily(t *testing.T) {
	cfg := quickConfig()
	cfg.Family = "bayesian"
	if _, err := New(cfg); !errors.Is(err, detstat.ErrUnknownFamily) {
		t.Errorf("expected ErrUnknownFamily, got %v", err)
	}
}

func TestNewRejectsMissingParams(t *testing.T) {
	cfg := config.DefaultConfig()
	if _, err := New(cfg); !errors.Is(err, detstat.ErrBadParams) {
		t.Errorf("expected ErrBadParams without thresholds, got %v", err)
	}
}

func TestRunScalarScenario(t *testing.T) {
	exp, err := New(quickConfig())
	if err != nil {
		t.Fatalf("new experiment failed: %v", err)
	}

	var rounds int
	exp.OnProgress(func(solver.Progress) { rounds++ })

	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if math.Abs(res.PdRho[0]-0.1)/0.1 >= 1e-3 {
		t.Errorf("achieved pd %.6g misses target", res.PdRho[0])
	}
	if rounds != res.Rounds {
		t.Errorf("progress saw %d rounds, result reports %d", rounds, res.Rounds)
	}

	w := exp.Weighting()
	if len(w.Nodes) != 1 || w.Nodes[0] != 1.0 {
		t.Errorf("expected single scalar node, got %v", w.Nodes)
	}
}

func TestSampleCurve(t *testing.T) {
	exp, err := New(quickConfig())
	if err != nil {
		t.Fatalf("new experiment failed: %v", err)
	}

	ys, err := exp.SampleCurve(400, 41)
	if err != nil {
		t.Fatalf("sample curve failed: %v", err)
	}
	if len(ys) != 41 {
		t.Fatalf("expected 41 points, got %d", len(ys))
	}
	for i := 1; i < len(ys); i++ {
		if ys[i] > ys[i-1] {
			t.Errorf("curve not decreasing at point %d: %g > %g", i, ys[i], ys[i-1])
		}
	}
	if ys[0] < 0.999 {
		t.Errorf("expected near-certain dismissal at zero SNR, got %g", ys[0])
	}

	if _, err := exp.SampleCurve(400, 1); err == nil {
		t.Error("expected error for a single curve point")
	}
}

func TestLoadSampleHistogram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rsqr.csv")
	body := "rsqr\n0.05\n0.05\n0.15\n0.15\n0.15\n0.15\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	h, err := LoadSampleHistogram(path, 0.1)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if h.TotalCount() != 6 {
		t.Errorf("expected 6 samples binned, got %f", h.TotalCount())
	}

	w, err := solver.FromHistogram(h)
	if err != nil {
		t.Fatalf("weighting failed: %v", err)
	}
	if len(w.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %v", w.Nodes)
	}
	if math.Abs(w.Weights[0]-1.0/3) > 1e-12 || math.Abs(w.Weights[1]-2.0/3) > 1e-12 {
		t.Errorf("unexpected weights %v", w.Weights)
	}
}

func TestLoadSampleHistogramBadValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rsqr.csv")
	if err := os.WriteFile(path, []byte("0.1\nnot-a-number\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := LoadSampleHistogram(path, 0.1); err == nil {
		t.Error("expected error for malformed sample value")
	}
}

func TestHistogramWeightedScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rsqr.csv")
	if err := os.WriteFile(path, []byte("0.1\n0.1\n0.1\n0.1\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg := quickConfig()
	cfg.RsqrSamples = path
	cfg.RsqrBinWidth = 0.2

	exp, err := New(cfg)
	if err != nil {
		t.Fatalf("new experiment failed: %v", err)
	}

	w := exp.Weighting()
	if len(w.Nodes) != 1 || w.Nodes[0] != 0.1 {
		t.Fatalf("expected single node at 0.1, got %v", w.Nodes)
	}

	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// a tenth of the geometric factor needs ten times the squared SNR
	scalar, err := New(quickConfig())
	if err != nil {
		t.Fatalf("new scalar experiment failed: %v", err)
	}
	ref, err := scalar.Run(context.Background())
	if err != nil {
		t.Fatalf("scalar run failed: %v", err)
	}
	if math.Abs(res.RhoSqr[0]-10*ref.RhoSqr[0]) > 1e-3*res.RhoSqr[0] {
		t.Errorf("rhosqr %.6g, want about %.6g", res.RhoSqr[0], 10*ref.RhoSqr[0])
	}
}
