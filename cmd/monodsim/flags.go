package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/monodsim/internal/config"
)

// runFlags are the simulation inputs shared by the commands that run one.
type runFlags struct {
	muMax, ks, yxs float64
	x0, s0         float64
	horizon        float64
	samples        int
	integrator     string
	tol, dt        float64

	configFile string
	preset     string
}

func (f *runFlags) register(cmd *cobra.Command) {
	def := config.DefaultConfig()
	fs := cmd.Flags()
	fs.Float64Var(&f.muMax, "mu-max", def.Params.MuMax, "maximum specific growth rate (1/h)")
	fs.Float64Var(&f.ks, "ks", def.Params.Ks, "half-saturation constant (g/L)")
	fs.Float64Var(&f.yxs, "yxs", def.Params.Yxs, "biomass yield on substrate (g/g)")
	fs.Float64Var(&f.x0, "x0", def.Initial.X0, "initial biomass (g/L)")
	fs.Float64Var(&f.s0, "s0", def.Initial.S0, "initial substrate (g/L)")
	fs.Float64Var(&f.horizon, "time", def.Horizon, "simulation horizon (h)")
	fs.IntVar(&f.samples, "samples", def.Samples, "number of output samples")
	fs.StringVar(&f.integrator, "integrator", def.Integrator, "integrator (rk45, rk4, euler)")
	fs.Float64Var(&f.tol, "tol", def.Solver.Tolerance, "adaptive step tolerance")
	fs.Float64Var(&f.dt, "dt", def.Solver.Dt, "initial or fixed step (h)")
	fs.StringVar(&f.configFile, "config", "", "config file path (yaml or toml)")
	fs.StringVar(&f.preset, "preset", "", "use preset configuration")
}

// build resolves the config in order preset, config file, changed flags.
func (f *runFlags) build(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if f.preset != "" {
		cfg = config.GetPreset(f.preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", f.preset, config.ListPresets())
		}
	}

	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	return f.overlay(cmd, cfg)
}

// overlay copies every flag the user set onto a clone of cfg and validates
// the result.
func (f *runFlags) overlay(cmd *cobra.Command, cfg *config.Config) (*config.Config, error) {
	cfg = cfg.Clone()
	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}

	if changed("mu-max") {
		cfg.Params.MuMax = f.muMax
	}
	if changed("ks") {
		cfg.Params.Ks = f.ks
	}
	if changed("yxs") {
		cfg.Params.Yxs = f.yxs
	}
	if changed("x0") {
		cfg.Initial.X0 = f.x0
	}
	if changed("s0") {
		cfg.Initial.S0 = f.s0
	}
	if changed("time") {
		cfg.Horizon = f.horizon
	}
	if changed("samples") {
		cfg.Samples = f.samples
	}
	if changed("integrator") {
		cfg.Integrator = f.integrator
	}
	if changed("tol") {
		cfg.Solver.Tolerance = f.tol
	}
	if changed("dt") {
		cfg.Solver.Dt = f.dt
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
