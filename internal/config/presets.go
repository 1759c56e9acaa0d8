package config

import (
	"sort"

	"github.com/san-kum/monodsim/internal/kinetics"
)

type Preset struct {
	Description string
	Params      kinetics.Params
	Initial     kinetics.Initial
	Horizon     float64
}

var Presets = map[string]Preset{
	"reference": {
		Description: "classic batch culture, mu_max 0.4 1/h",
		Params:      kinetics.Params{MuMax: 0.4, Ks: 0.1, Yxs: 0.5},
		Initial:     kinetics.Initial{X0: 0.1, S0: 10.0},
		Horizon:     50,
	},
	"fast": {
		Description: "fast grower, same yield",
		Params:      kinetics.Params{MuMax: 0.8, Ks: 0.1, Yxs: 0.5},
		Initial:     kinetics.Initial{X0: 0.1, S0: 10.0},
		Horizon:     50,
	},
	"slow": {
		Description: "slow grower, long lag before depletion",
		Params:      kinetics.Params{MuMax: 0.15, Ks: 0.1, Yxs: 0.5},
		Initial:     kinetics.Initial{X0: 0.1, S0: 10.0},
		Horizon:     120,
	},
	"low-affinity": {
		Description: "high Ks, growth slows well before depletion",
		Params:      kinetics.Params{MuMax: 0.4, Ks: 1.0, Yxs: 0.5},
		Initial:     kinetics.Initial{X0: 0.1, S0: 10.0},
		Horizon:     50,
	},
	"poor-yield": {
		Description: "inefficient conversion of substrate",
		Params:      kinetics.Params{MuMax: 0.4, Ks: 0.1, Yxs: 0.2},
		Initial:     kinetics.Initial{X0: 0.1, S0: 10.0},
		Horizon:     50,
	},
	"lean": {
		Description: "little substrate, early plateau",
		Params:      kinetics.Params{MuMax: 0.4, Ks: 0.1, Yxs: 0.5},
		Initial:     kinetics.Initial{X0: 0.1, S0: 1.0},
		Horizon:     30,
	},
}

// GetPreset returns the default config with the named preset applied, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Apply(p)
	return cfg
}

func (c *Config) Apply(p Preset) {
	c.Params = p.Params
	c.Initial = p.Initial
	c.Horizon = p.Horizon
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
