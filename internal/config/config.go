// Package config holds marlin's configuration: the learning parameters,
// the solver adapter settings, the optional run-history store and logging.
// Configuration loads from a YAML file with environment overrides for
// paths, and is validated before any network is built.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"marlin/internal/learn"
)

// Config is the full marlin configuration.
type Config struct {
	Learn   LearnConfig   `yaml:"learn"`
	Solver  SolverConfig  `yaml:"solver"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// LearnConfig configures the cutting-plane learner.
type LearnConfig struct {
	C                   float64 `yaml:"c"`
	Epsilon             float64 `yaml:"epsilon"`
	MaxIterations       int     `yaml:"max_iterations"`
	LossScale           float64 `yaml:"loss_scale"`
	MarginRescaling     bool    `yaml:"margin_rescaling"`
	LossAugmented       bool    `yaml:"loss_augmented"`
	UseL1Regularization bool    `yaml:"use_l1_regularization"`
}

// SolverConfig configures the MaxSAT oracle adapter.
type SolverConfig struct {
	WeightScale float64 `yaml:"weight_scale"` // float weight -> integer grid
	LossWeight  float64 `yaml:"loss_weight"`  // per-atom loss augmentation
}

// StoreConfig configures the optional run-history store.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() *Config {
	return &Config{
		Learn: LearnConfig{
			C:               1000,
			Epsilon:         0.001,
			MaxIterations:   1000,
			LossScale:       1,
			MarginRescaling: true,
			LossAugmented:   true,
		},
		Solver: SolverConfig{
			WeightScale: 1000,
			LossWeight:  1,
		},
		Store: StoreConfig{
			Path: "marlin-runs.db",
		},
	}
}

// Load reads a configuration file, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if p := os.Getenv("MARLIN_STORE_PATH"); p != "" {
		c.Store.Path = p
	}
}

// Validate rejects malformed configuration before any work happens.
func (c *Config) Validate() error {
	if err := c.LearnOptions().Validate(); err != nil {
		return err
	}
	if c.Solver.WeightScale <= 0 {
		return fmt.Errorf("config: solver.weight_scale must be positive, got %g", c.Solver.WeightScale)
	}
	if c.Solver.LossWeight <= 0 {
		return fmt.Errorf("config: solver.loss_weight must be positive, got %g", c.Solver.LossWeight)
	}
	if c.Store.Enabled && c.Store.Path == "" {
		return fmt.Errorf("config: store.path required when the store is enabled")
	}
	return nil
}

// LearnOptions converts the learning section into learner options.
func (c *Config) LearnOptions() learn.Options {
	return learn.Options{
		C:                   c.Learn.C,
		Epsilon:             c.Learn.Epsilon,
		MaxIterations:       c.Learn.MaxIterations,
		LossScale:           c.Learn.LossScale,
		MarginRescaling:     c.Learn.MarginRescaling,
		LossAugmented:       c.Learn.LossAugmented,
		UseL1Regularization: c.Learn.UseL1Regularization,
	}
}
