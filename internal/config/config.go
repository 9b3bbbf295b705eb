package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt         = 0.01
	DefaultCalibSteps = 100000
	DefaultMaxOutput  = 5
	DefaultPeriodMs   = 100.0
	DefaultThreshold  = 20
)

// Config holds runtime settings. Nothing here persists across runs unless
// the user explicitly saves a file; calibration results are never stored.
type Config struct {
	Model      string  `yaml:"model"`
	Dt         float64 `yaml:"dt"`
	CalibSteps int     `yaml:"calib_steps"`
	MaxOutput  int     `yaml:"max_output"`
	PeriodMs   float64 `yaml:"period_ms"`
	Threshold  int     `yaml:"threshold"`
	Range      int     `yaml:"range"`
	Detail     bool    `yaml:"detail"`
	Seed       int64   `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		Dt:         DefaultDt,
		CalibSteps: DefaultCalibSteps,
		MaxOutput:  DefaultMaxOutput,
		PeriodMs:   DefaultPeriodMs,
		Threshold:  DefaultThreshold,
		Range:      DefaultMaxOutput,
		Detail:     true,
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
