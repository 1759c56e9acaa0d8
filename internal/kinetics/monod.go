package kinetics

import (
	"fmt"

	"github.com/san-kum/monodsim/internal/dynamo"
)

type Monod struct {
	p Params
}

var (
	_ dynamo.System       = (*Monod)(nil)
	_ dynamo.Conserved    = (*Monod)(nil)
	_ dynamo.Configurable = (*Monod)(nil)
)

func NewMonod(p Params) *Monod { return &Monod{p: p} }

func (m *Monod) Dim() int       { return 2 }
func (m *Monod) Params() Params { return m.p }

// GrowthRate is the specific growth rate mu(S). Ks+S must not be zero.
func (m *Monod) GrowthRate(s float64) float64 {
	return m.p.MuMax * s / (m.p.Ks + s)
}

// Derive does not clamp or validate its input.
func (m *Monod) Derive(x dynamo.State, _ float64) dynamo.State {
	growth := m.GrowthRate(x[Substrate]) * x[Biomass]
	return dynamo.State{growth, -growth / m.p.Yxs}
}

// Invariant is X + Yxs*S. Derive gives dX/dt = -Yxs*dS/dt.
func (m *Monod) Invariant(x dynamo.State) float64 {
	return x[Biomass] + m.p.Yxs*x[Substrate]
}

// Plateau is the biomass reached once all substrate is consumed.
func (m *Monod) Plateau(in Initial) float64 {
	return in.X0 + m.p.Yxs*in.S0
}

func (m *Monod) GetParams() map[string]float64 {
	return map[string]float64{"mu_max": m.p.MuMax, "ks": m.p.Ks, "yxs": m.p.Yxs}
}

func (m *Monod) SetParam(name string, v float64) error {
	next := m.p
	switch name {
	case "mu_max":
		next.MuMax = v
	case "ks":
		next.Ks = v
	case "yxs":
		next.Yxs = v
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	m.p = next
	return nil
}

// Split returns the biomass and substrate series of a trajectory.
func Split(tr *dynamo.Trajectory) (x, s []float64) {
	return tr.Component(Biomass), tr.Component(Substrate)
}
