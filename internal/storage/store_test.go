package storage

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/skraemer/detsens/internal/solver"
)

func testResult() *solver.Result {
	return &solver.Result{
		RhoSqr: []float64{math.NaN(), 1590.0},
		Rho:    []float64{math.NaN(), 39.87},
		PdRho:  []float64{math.NaN(), 0.1001},
		Rounds: 42,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	pd := []float64{0.5, 0.1}
	ns := []float64{20, 20}
	runID, err := s.Save("chisquared", 7, 2592000, pd, ns, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := s.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ID != runID || meta.Family != "chisquared" || meta.Seed != 7 {
		t.Errorf("metadata did not round-trip: %+v", meta)
	}
	if meta.Rows != 2 || meta.Rounds != 42 {
		t.Errorf("unexpected rows/rounds: %+v", meta)
	}

	rows, err := s.LoadRows(runID)
	if err != nil {
		t.Fatalf("load rows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// NaN row must survive the CSV round trip
	if !math.IsNaN(rows[0].Rho) || !math.IsNaN(rows[0].Depth) {
		t.Errorf("NaN row did not round-trip: %+v", rows[0])
	}
	if rows[1].PdTarget != 0.1 || rows[1].Segments != 20 {
		t.Errorf("row values did not round-trip: %+v", rows[1])
	}
	if math.Abs(rows[1].Rho-39.87) > 1e-9 {
		t.Errorf("rho did not round-trip: %g", rows[1].Rho)
	}
	wantDepth := math.Sqrt(2592000) / 39.87
	if math.Abs(rows[1].Depth-wantDepth) > 1e-6 {
		t.Errorf("depth %g, want %g", rows[1].Depth, wantDepth)
	}
}

func TestSaveWithoutTdataOmitsDepth(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := s.Save("chisquared", 1, 0, []float64{0.1, 0.1}, []float64{20, 20}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	rows, err := s.LoadRows(runID)
	if err != nil {
		t.Fatalf("load rows failed: %v", err)
	}
	for i, r := range rows {
		if r.Depth != 0 {
			t.Errorf("row %d: expected zero depth without tdata, got %g", i, r.Depth)
		}
	}
}

func TestExportCSV(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := s.Save("chisquared", 7, 2592000, []float64{0.5, 0.1}, []float64{20, 20}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	if err := s.ExportCSV(runID, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "pd_target,segments,rhosqr,rho,pd_rho,depth" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "0.5,20,NaN,NaN,NaN") {
		t.Errorf("NaN row not exported verbatim: %q", lines[1])
	}
	if !strings.Contains(lines[2], "39.87") {
		t.Errorf("solved row missing rho: %q", lines[2])
	}

	if err := s.ExportCSV("missing_run", &buf); err == nil {
		t.Error("expected error for unknown run")
	}
}

func TestExportCSVWithoutTdata(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := s.Save("chisquared", 1, 0, []float64{0.1, 0.1}, []float64{20, 20}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	if err := s.ExportCSV(runID, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "pd_target,segments,rhosqr,rho,pd_rho" {
		t.Errorf("expected no depth column, got header %q", lines[0])
	}
}

func TestListNewestFirst(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	pd := []float64{0.1, 0.1}
	ns := []float64{20, 20}
	first, err := s.Save("chisquared", 1, 0, pd, ns, testResult())
	if err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond) // distinct timestamps for ordering
	second, err := s.Save("houghfstat", 2, 0, pd, ns, testResult())
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	runs, err := s.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second || runs[1].ID != first {
		t.Errorf("expected newest first, got %s then %s", runs[0].ID, runs[1].ID)
	}
}

func TestListEmptyBaseDir(t *testing.T) {
	s := New("/nonexistent/detsens-test-base")
	runs, err := s.List()
	if err != nil {
		t.Fatalf("list of missing base dir failed: %v", err)
	}
	if runs != nil {
		t.Errorf("expected no runs, got %v", runs)
	}
}

func TestLoadUnknownRun(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Load("missing_run"); err == nil {
		t.Error("expected error for unknown run")
	}
	if _, err := s.LoadRows("missing_run"); err == nil {
		t.Error("expected error for unknown run rows")
	}
}
