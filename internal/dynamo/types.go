package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is an ODE right-hand side.
type System interface {
	Derive(x State, t float64) State
	Dim() int
}

// Conserved is implemented by systems with a known first integral.
type Conserved interface {
	Invariant(x State) float64
}

type Integrator interface {
	Step(dyn System, x State, t, dt float64) State
}

type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn System, x State, t, dt, tol float64) (State, float64, error)
}

// Metric observes every sampled point of a run.
type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Config struct {
	Dt            float64
	Tolerance     float64
	MinDt         float64
	MaxSteps      int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Tolerance:     1e-8,
		MinDt:         1e-12,
		MaxSteps:      1_000_000,
		ValidateState: true,
	}
}

func (c Config) Validate() error {
	if c.Dt <= 0 || math.IsNaN(c.Dt) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("dt must be positive, got %g: %w", c.Dt, ErrParameterBounds)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g: %w", c.Tolerance, ErrParameterBounds)
	}
	if c.MinDt <= 0 || c.MinDt > c.Dt {
		return fmt.Errorf("min dt must be in (0, dt], got %g: %w", c.MinDt, ErrParameterBounds)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("max steps must be positive, got %d: %w", c.MaxSteps, ErrParameterBounds)
	}
	return nil
}

// Trajectory holds states sampled on a time grid. States[i] is the state at
// Times[i]; both have the grid's length.
type Trajectory struct {
	Times    []float64
	States   []State
	Metrics  map[string]float64
	Steps    int
	Rejected int
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

// Component returns the i-th state variable as a series.
func (tr *Trajectory) Component(i int) []float64 {
	out := make([]float64, len(tr.States))
	for k, s := range tr.States {
		if i < len(s) {
			out[k] = s[i]
		}
	}
	return out
}

// Final returns the last sampled state, or nil for an empty trajectory.
func (tr *Trajectory) Final() State {
	if len(tr.States) == 0 {
		return nil
	}
	return tr.States[len(tr.States)-1]
}
