package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFamily        = "chisquared"
	DefaultPdTarget      = 0.1
	DefaultSegments      = 20.0
	DefaultRsqrScalar    = 1.0
	DefaultMaxIterations = 1000
)

// Config describes one sensitivity solve scenario.
type Config struct {
	Family   string    `yaml:"family"`
	PdTarget []float64 `yaml:"pd_target"`
	Segments []float64 `yaml:"segments"`

	// Detection thresholds: explicit, or derived from false-alarm
	// probabilities.
	SumTwoFThreshold []float64 `yaml:"sum_twof_threshold"`
	FalseAlarm       []float64 `yaml:"false_alarm"`
	TwoFThreshold    float64   `yaml:"twof_threshold"`
	CountThreshold   []float64 `yaml:"count_threshold"`

	// Geometric factor: scalar R², or a CSV file of R² samples binned with
	// RsqrBinWidth.
	RsqrScalar   float64 `yaml:"rsqr"`
	RsqrSamples  string  `yaml:"rsqr_samples"`
	RsqrBinWidth float64 `yaml:"rsqr_bin_width"`

	// Tdata converts SNR to sensitivity depth when positive.
	Tdata float64 `yaml:"tdata"`

	Seed          int64 `yaml:"seed"`
	MaxIterations int   `yaml:"max_iterations"`
}

func DefaultConfig() *Config {
	return &Config{
		Family:        DefaultFamily,
		PdTarget:      []float64{DefaultPdTarget},
		Segments:      []float64{DefaultSegments},
		RsqrScalar:    DefaultRsqrScalar,
		MaxIterations: DefaultMaxIterations,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
