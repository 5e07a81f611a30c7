package config

// Presets holds ready-made solve scenarios, keyed by family then preset name.
var Presets = map[string]map[string]*Config{
	"chisquared": {
		"quick": {
			Family: "chisquared", PdTarget: []float64{0.1}, Segments: []float64{20},
			FalseAlarm: []float64{1e-10}, RsqrScalar: 1.0,
		},
		"deep": {
			Family: "chisquared", PdTarget: []float64{0.05}, Segments: []float64{100},
			FalseAlarm: []float64{1e-12}, RsqrScalar: 1.0,
		},
		"survey": {
			Family: "chisquared", PdTarget: []float64{0.1, 0.1, 0.1}, Segments: []float64{20, 20, 20},
			FalseAlarm: []float64{1e-14, 1e-12, 1e-10}, RsqrScalar: 0.1,
			Tdata: 2592000,
		},
	},
	"houghfstat": {
		"quick": {
			Family: "houghfstat", PdTarget: []float64{0.1}, Segments: []float64{50},
			TwoFThreshold: 5.2, FalseAlarm: []float64{1e-10}, RsqrScalar: 1.0,
		},
		"strict": {
			Family: "houghfstat", PdTarget: []float64{0.01}, Segments: []float64{100},
			TwoFThreshold: 6.0, FalseAlarm: []float64{1e-12}, RsqrScalar: 1.0,
		},
	},
}

func GetPreset(family, preset string) *Config {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	cfg, ok := familyPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(family string) []string {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(familyPresets))
	for name := range familyPresets {
		names = append(names, name)
	}
	return names
}
