package metrics

import (
	"math"

	"github.com/san-kum/monodsim/internal/dynamo"
	"github.com/san-kum/monodsim/internal/kinetics"
)

// Depletion records the first sample time at which substrate falls to
// fraction of its initial value.
type Depletion struct {
	fraction  float64
	threshold float64
	reached   float64
	started   bool
}

func NewDepletion(fraction float64) *Depletion {
	return &Depletion{fraction: fraction, reached: Never}
}

func (d *Depletion) Name() string { return "depletion_time" }

func (d *Depletion) Observe(x dynamo.State, t float64) {
	s := x[kinetics.Substrate]
	if !d.started {
		d.started = true
		d.threshold = d.fraction * s
		// nothing to deplete
		if s == 0 {
			return
		}
	}
	if d.reached == Never && d.threshold > 0 && s <= d.threshold {
		d.reached = t
	}
}

func (d *Depletion) Value() float64 { return d.reached }

func (d *Depletion) Reset() {
	d.started = false
	d.threshold = 0
	d.reached = Never
}

// YieldDrift is the largest relative deviation of the conserved quantity
// from its initial value.
type YieldDrift struct {
	model   dynamo.Conserved
	initial float64
	drift   float64
	started bool
}

func NewYieldDrift(m dynamo.Conserved) *YieldDrift {
	return &YieldDrift{model: m}
}

func (y *YieldDrift) Name() string { return "yield_drift" }

func (y *YieldDrift) Observe(x dynamo.State, t float64) {
	v := y.model.Invariant(x)
	if !y.started {
		y.started = true
		y.initial = v
		return
	}
	if y.initial == 0 {
		return
	}
	if d := math.Abs(v-y.initial) / math.Abs(y.initial); d > y.drift {
		y.drift = d
	}
}

func (y *YieldDrift) Value() float64 { return y.drift }

func (y *YieldDrift) Reset() {
	y.started = false
	y.initial = 0
	y.drift = 0
}

// Defaults returns the metrics recorded for every run of m.
func Defaults(m *kinetics.Monod) []dynamo.Metric {
	return []dynamo.Metric{
		NewFinalBiomass(),
		NewPeakProductivity(m),
		NewTimeToPlateau(m, 0.9),
		NewDepletion(0.01),
		NewYieldDrift(m),
	}
}
