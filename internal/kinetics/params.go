package kinetics

import (
	"fmt"
	"math"

	"github.com/san-kum/monodsim/internal/dynamo"
)

// State vector layout.
const (
	Biomass   = 0
	Substrate = 1
)

// Reference values of the classic batch culture example.
const (
	DefaultMuMax = 0.4  // 1/h
	DefaultKs    = 0.1  // g/L
	DefaultYxs   = 0.5  // g biomass / g substrate
	DefaultX0    = 0.1  // g/L
	DefaultS0    = 10.0 // g/L
)

// Params are the Monod model parameters.
type Params struct {
	MuMax float64 `yaml:"mu_max" toml:"mu_max" json:"mu_max"`
	Ks    float64 `yaml:"ks" toml:"ks" json:"ks"`
	Yxs   float64 `yaml:"yxs" toml:"yxs" json:"yxs"`
}

func DefaultParams() Params {
	return Params{MuMax: DefaultMuMax, Ks: DefaultKs, Yxs: DefaultYxs}
}

// Validate requires every parameter to be strictly positive and finite.
func (p Params) Validate() error {
	if err := positive("mu_max", p.MuMax); err != nil {
		return err
	}
	if err := positive("ks", p.Ks); err != nil {
		return err
	}
	return positive("yxs", p.Yxs)
}

// Initial is the culture state at t=0.
type Initial struct {
	X0 float64 `yaml:"x0" toml:"x0" json:"x0"`
	S0 float64 `yaml:"s0" toml:"s0" json:"s0"`
}

func DefaultInitial() Initial {
	return Initial{X0: DefaultX0, S0: DefaultS0}
}

func (in Initial) Validate() error {
	if err := nonNegative("x0", in.X0); err != nil {
		return err
	}
	return nonNegative("s0", in.S0)
}

func (in Initial) State() dynamo.State {
	return dynamo.State{in.X0, in.S0}
}

func positive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%s must be positive and finite, got %g: %w", name, v, dynamo.ErrParameterBounds)
	}
	return nil
}

func nonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%s must be non-negative and finite, got %g: %w", name, v, dynamo.ErrParameterBounds)
	}
	return nil
}
