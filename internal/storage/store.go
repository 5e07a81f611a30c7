package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/skraemer/detsens/internal/solver"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Family    string    `json:"family"`
	Timestamp time.Time `json:"timestamp"`
	Seed      int64     `json:"seed"`
	Tdata     float64   `json:"tdata,omitempty"`
	Rows      int       `json:"rows"`
	Rounds    int       `json:"rounds"`
}

// Row is one solved problem instance as persisted in results.csv.
type Row struct {
	PdTarget float64
	Segments float64
	RhoSqr   float64
	Rho      float64
	PdRho    float64
	Depth    float64 // zero when no Tdata was configured
}

// Save writes a run directory holding metadata.json and results.csv and
// returns the run ID.
func (s *Store) Save(family string, seed int64, tdata float64, pd, ns []float64, result *solver.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", family, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Family:    family,
		Timestamp: time.Now(),
		Seed:      seed,
		Tdata:     tdata,
		Rows:      len(pd),
		Rounds:    result.Rounds,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "results.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"pd_target", "segments", "rhosqr", "rho", "pd_rho"}
	var depths []float64
	if tdata > 0 {
		header = append(header, "depth")
		depths = solver.Depth(tdata, result.Rho)
	}
	if err := w.Write(header); err != nil {
		return "", err
	}
	for i := range pd {
		row := []string{
			formatFloat(pd[i]),
			formatFloat(ns[i]),
			formatFloat(result.RhoSqr[i]),
			formatFloat(result.Rho[i]),
			formatFloat(result.PdRho[i]),
		}
		if tdata > 0 {
			row = append(row, formatFloat(depths[i]))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}

// ExportCSV writes a run's per-row results to out in the results.csv schema,
// depth column included when the run was solved with a data span.
func (s *Store) ExportCSV(runID string, out io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	rows, err := s.LoadRows(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("storage: run %s has no rows to export", runID)
	}

	w := csv.NewWriter(out)
	header := []string{"pd_target", "segments", "rhosqr", "rho", "pd_rho"}
	if meta.Tdata > 0 {
		header = append(header, "depth")
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			formatFloat(r.PdTarget),
			formatFloat(r.Segments),
			formatFloat(r.RhoSqr),
			formatFloat(r.Rho),
			formatFloat(r.PdRho),
		}
		if meta.Tdata > 0 {
			rec = append(rec, formatFloat(r.Depth))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns metadata for all stored runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunMetadata
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue // skip unreadable runs
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

// Load reads a run's metadata.
func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadRows reads a run's per-row results.
func (s *Store) LoadRows(runID string) ([]Row, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "results.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("storage: run %s has empty results", runID)
	}

	hasDepth := len(records[0]) > 5
	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 5 {
			return nil, fmt.Errorf("storage: run %s has malformed results row", runID)
		}
		vals := make([]float64, len(rec))
		for i, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		row := Row{
			PdTarget: vals[0],
			Segments: vals[1],
			RhoSqr:   vals[2],
			Rho:      vals[3],
			PdRho:    vals[4],
		}
		if hasDepth {
			row.Depth = vals[5]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
