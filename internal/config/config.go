package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/monodsim/internal/dynamo"
	"github.com/san-kum/monodsim/internal/kinetics"
)

const (
	DefaultHorizon    = 50.0
	DefaultSamples    = 500
	DefaultIntegrator = "rk45"
	DefaultTolerance  = 1e-8
	DefaultDt         = 0.01
	DefaultMinDt      = 1e-12
	DefaultMaxSteps   = 1_000_000
)

type Config struct {
	Params     kinetics.Params  `yaml:"params" toml:"params"`
	Initial    kinetics.Initial `yaml:"initial" toml:"initial"`
	Horizon    float64          `yaml:"horizon" toml:"horizon"`
	Samples    int              `yaml:"samples" toml:"samples"`
	Integrator string           `yaml:"integrator" toml:"integrator"`
	Solver     SolverConfig     `yaml:"solver" toml:"solver"`
}

type SolverConfig struct {
	Tolerance float64 `yaml:"tolerance" toml:"tolerance"`
	Dt        float64 `yaml:"dt" toml:"dt"`
	MinDt     float64 `yaml:"min_dt" toml:"min_dt"`
	MaxSteps  int     `yaml:"max_steps" toml:"max_steps"`
}

func DefaultConfig() *Config {
	return &Config{
		Params:     kinetics.DefaultParams(),
		Initial:    kinetics.DefaultInitial(),
		Horizon:    DefaultHorizon,
		Samples:    DefaultSamples,
		Integrator: DefaultIntegrator,
		Solver: SolverConfig{
			Tolerance: DefaultTolerance,
			Dt:        DefaultDt,
			MinDt:     DefaultMinDt,
			MaxSteps:  DefaultMaxSteps,
		},
	}
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) file on top of the
// defaults. Fields missing from the file keep their default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml", "":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if err := c.Initial.Validate(); err != nil {
		return err
	}
	if !(c.Horizon > 0) {
		return fmt.Errorf("horizon must be positive, got %g: %w", c.Horizon, dynamo.ErrParameterBounds)
	}
	if c.Samples < 2 {
		return fmt.Errorf("need at least 2 samples, got %d: %w", c.Samples, dynamo.ErrParameterBounds)
	}
	return c.SimConfig().Validate()
}

func (c *Config) Grid() (dynamo.TimeGrid, error) {
	return dynamo.Linspace(0, c.Horizon, c.Samples)
}

func (c *Config) SimConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            c.Solver.Dt,
		Tolerance:     c.Solver.Tolerance,
		MinDt:         c.Solver.MinDt,
		MaxSteps:      c.Solver.MaxSteps,
		ValidateState: true,
	}
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
