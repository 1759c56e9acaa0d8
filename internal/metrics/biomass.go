package metrics

import (
	"github.com/san-kum/monodsim/internal/dynamo"
	"github.com/san-kum/monodsim/internal/kinetics"
)

// Never is reported by time based metrics whose event did not happen.
const Never = -1.0

type FinalBiomass struct {
	last float64
}

func NewFinalBiomass() *FinalBiomass { return &FinalBiomass{} }

func (f *FinalBiomass) Name() string { return "final_biomass" }

func (f *FinalBiomass) Observe(x dynamo.State, t float64) {
	f.last = x[kinetics.Biomass]
}

func (f *FinalBiomass) Value() float64 { return f.last }
func (f *FinalBiomass) Reset()         { f.last = 0 }

// PeakProductivity is the largest volumetric growth rate mu(S)*X seen, in g/L/h.
type PeakProductivity struct {
	model *kinetics.Monod
	peak  float64
}

func NewPeakProductivity(m *kinetics.Monod) *PeakProductivity {
	return &PeakProductivity{model: m}
}

func (p *PeakProductivity) Name() string { return "peak_productivity" }

func (p *PeakProductivity) Observe(x dynamo.State, t float64) {
	r := p.model.GrowthRate(x[kinetics.Substrate]) * x[kinetics.Biomass]
	if r > p.peak {
		p.peak = r
	}
}

func (p *PeakProductivity) Value() float64 { return p.peak }
func (p *PeakProductivity) Reset()         { p.peak = 0 }

// TimeToPlateau records the first sample time at which biomass reaches
// fraction of the theoretical plateau X0 + Yxs*S0.
type TimeToPlateau struct {
	model    *kinetics.Monod
	fraction float64
	target   float64
	reached  float64
	started  bool
}

func NewTimeToPlateau(m *kinetics.Monod, fraction float64) *TimeToPlateau {
	return &TimeToPlateau{model: m, fraction: fraction, reached: Never}
}

func (p *TimeToPlateau) Name() string { return "time_to_90pct" }

func (p *TimeToPlateau) Observe(x dynamo.State, t float64) {
	if !p.started {
		p.started = true
		p.target = p.fraction * p.model.Plateau(kinetics.Initial{X0: x[kinetics.Biomass], S0: x[kinetics.Substrate]})
	}
	if p.reached == Never && x[kinetics.Biomass] >= p.target {
		p.reached = t
	}
}

func (p *TimeToPlateau) Value() float64 { return p.reached }

func (p *TimeToPlateau) Reset() {
	p.started = false
	p.target = 0
	p.reached = Never
}
