package config

import (
	"fmt"
	"math"
)

// Control is one bounded, stepped input of the interactive view.
type Control struct {
	Key     string
	Label   string
	Min     float64
	Max     float64
	Default float64
	Step    float64
}

// Controls lists the interactive inputs in display order. X0 and S0 have no
// upper bound.
func Controls() []Control {
	return []Control{
		{Key: "mu_max", Label: "μmax (1/h)", Min: 0.1, Max: 1.0, Default: 0.4, Step: 0.01},
		{Key: "ks", Label: "Ks (g/L)", Min: 0.01, Max: 1.0, Default: 0.1, Step: 0.01},
		{Key: "yxs", Label: "Yxs (g/g)", Min: 0.1, Max: 1.0, Default: 0.5, Step: 0.01},
		{Key: "x0", Label: "X0 (g/L)", Min: 0.01, Max: math.Inf(1), Default: 0.1, Step: 0.01},
		{Key: "s0", Label: "S0 (g/L)", Min: 1.0, Max: math.Inf(1), Default: 10.0, Step: 0.1},
		{Key: "horizon", Label: "Tiempo de simulación (h)", Min: 10, Max: 200, Default: 50, Step: 1},
	}
}

// Clamp limits v to the control's range. NaN maps to the default.
func (c Control) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return c.Default
	}
	return math.Max(c.Min, math.Min(c.Max, v))
}

// Nudge moves v by n steps, snaps it to the step grid and clamps it.
func (c Control) Nudge(v float64, n int) float64 {
	next := v + float64(n)*c.Step
	next = math.Round(next/c.Step) * c.Step
	// strip float noise such as 0.41000000000000003
	next = math.Round(next*1e9) / 1e9
	return c.Clamp(next)
}

// Value reads the control's current value out of cfg.
func (c Control) Value(cfg *Config) float64 {
	switch c.Key {
	case "mu_max":
		return cfg.Params.MuMax
	case "ks":
		return cfg.Params.Ks
	case "yxs":
		return cfg.Params.Yxs
	case "x0":
		return cfg.Initial.X0
	case "s0":
		return cfg.Initial.S0
	case "horizon":
		return cfg.Horizon
	}
	return math.NaN()
}

// Set clamps v and stores it in cfg.
func (c Control) Set(cfg *Config, v float64) error {
	v = c.Clamp(v)
	switch c.Key {
	case "mu_max":
		cfg.Params.MuMax = v
	case "ks":
		cfg.Params.Ks = v
	case "yxs":
		cfg.Params.Yxs = v
	case "x0":
		cfg.Initial.X0 = v
	case "s0":
		cfg.Initial.S0 = v
	case "horizon":
		cfg.Horizon = v
	default:
		return fmt.Errorf("unknown control: %s", c.Key)
	}
	return nil
}

// Format renders v with as many decimals as the step needs.
func (c Control) Format(v float64) string {
	decimals := 0
	if c.Step < 1 {
		decimals = int(math.Ceil(-math.Log10(c.Step) - 1e-9))
	}
	return fmt.Sprintf("%.*f", decimals, v)
}

// ControlDefaults returns a config with every control at its default.
func ControlDefaults() *Config {
	cfg := DefaultConfig()
	for _, c := range Controls() {
		_ = c.Set(cfg, c.Default)
	}
	return cfg
}
