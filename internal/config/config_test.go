package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Family != "chisquared" {
		t.Errorf("expected default family chisquared, got %q", cfg.Family)
	}
	if len(cfg.PdTarget) != 1 || cfg.PdTarget[0] != 0.1 {
		t.Errorf("unexpected default pd target %v", cfg.PdTarget)
	}
	if cfg.RsqrScalar != 1.0 {
		t.Errorf("expected default scalar R² 1.0, got %g", cfg.RsqrScalar)
	}
	if cfg.MaxIterations != 1000 {
		t.Errorf("expected default iteration cap 1000, got %d", cfg.MaxIterations)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Family = "houghfstat"
	cfg.PdTarget = []float64{0.05, 0.1}
	cfg.Segments = []float64{50, 100}
	cfg.TwoFThreshold = 5.2
	cfg.FalseAlarm = []float64{1e-10, 1e-12}
	cfg.Tdata = 2592000
	cfg.Seed = 99

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Family != cfg.Family || loaded.TwoFThreshold != cfg.TwoFThreshold {
		t.Errorf("family/threshold did not round-trip: %+v", loaded)
	}
	if len(loaded.PdTarget) != 2 || loaded.PdTarget[1] != 0.1 {
		t.Errorf("pd targets did not round-trip: %v", loaded.PdTarget)
	}
	if loaded.Tdata != cfg.Tdata || loaded.Seed != cfg.Seed {
		t.Errorf("tdata/seed did not round-trip: %+v", loaded)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("family: houghfstat\ntwof_threshold: 6.0\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Family != "houghfstat" {
		t.Errorf("expected overridden family, got %q", cfg.Family)
	}
	if cfg.MaxIterations != 1000 {
		t.Errorf("expected default iteration cap to survive partial config, got %d", cfg.MaxIterations)
	}
	if len(cfg.PdTarget) != 1 || cfg.PdTarget[0] != 0.1 {
		t.Errorf("expected default pd target, got %v", cfg.PdTarget)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPresets(t *testing.T) {
	for family, presets := range Presets {
		for name, cfg := range presets {
			if cfg.Family != family {
				t.Errorf("preset %s/%s declares family %q", family, name, cfg.Family)
			}
			if len(cfg.PdTarget) == 0 || len(cfg.Segments) == 0 {
				t.Errorf("preset %s/%s is missing pd targets or segments", family, name)
			}
			if len(cfg.PdTarget) != len(cfg.Segments) {
				t.Errorf("preset %s/%s has %d pd targets for %d segment counts",
					family, name, len(cfg.PdTarget), len(cfg.Segments))
			}
		}
	}

	if GetPreset("chisquared", "survey") == nil {
		t.Error("expected chisquared survey preset")
	}
	if GetPreset("chisquared", "nope") != nil {
		t.Error("expected nil for unknown preset")
	}
	if GetPreset("nope", "quick") != nil {
		t.Error("expected nil for unknown family")
	}
	if names := ListPresets("houghfstat"); len(names) == 0 {
		t.Error("expected hough presets listed")
	}
	if names := ListPresets("nope"); names != nil {
		t.Errorf("expected nil preset list for unknown family, got %v", names)
	}
}
