package sim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/monodsim/internal/dynamo"
)

// Simulator drives an integrator over a time grid. It is not safe for
// concurrent use.
type Simulator struct {
	dyn        dynamo.System
	integrator dynamo.Integrator
	metrics    []dynamo.Metric
}

func New(dyn dynamo.System, integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		metrics:    make([]dynamo.Metric, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric) { s.metrics = append(s.metrics, m) }

// Integrate samples the solution starting at x0 on every point of grid. The
// first sample is x0 itself. Adaptive integrators pick their own step sizes
// (never crossing a grid point); fixed-step ones split every grid interval
// into ceil(interval/cfg.Dt) equal steps.
//
// On failure no partial trajectory is returned; the error is a
// *dynamo.SimulationError wrapping one of the dynamo sentinels or the
// context error.
func (s *Simulator) Integrate(ctx context.Context, x0 dynamo.State, grid dynamo.TimeGrid, cfg dynamo.Config) (*dynamo.Trajectory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if len(x0) != s.dyn.Dim() {
		return nil, fmt.Errorf("state has %d components, system has %d: %w", len(x0), s.dyn.Dim(), dynamo.ErrDimensionMismatch)
	}
	if !x0.IsValid() {
		return nil, fmt.Errorf("initial state: %w", dynamo.ErrInvalidState)
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	traj := &dynamo.Trajectory{
		Times:   make([]float64, 0, len(grid)),
		States:  make([]dynamo.State, 0, len(grid)),
		Metrics: make(map[string]float64),
	}

	x := x0.Clone()
	s.record(traj, x, grid[0])

	r := &run{sim: s, cfg: cfg, traj: traj, t: grid[0], dt: cfg.Dt}
	adaptive, isAdaptive := s.integrator.(dynamo.AdaptiveIntegrator)

	for k := 1; k < len(grid); k++ {
		var err error
		if isAdaptive {
			x, err = r.advanceAdaptive(ctx, adaptive, x, grid[k])
		} else {
			x, err = r.advanceFixed(ctx, x, grid[k])
		}
		if err != nil {
			return nil, err
		}
		s.record(traj, x, grid[k])
	}

	for _, m := range s.metrics {
		traj.Metrics[m.Name()] = m.Value()
	}

	return traj, nil
}

func (s *Simulator) record(traj *dynamo.Trajectory, x dynamo.State, t float64) {
	traj.Times = append(traj.Times, t)
	traj.States = append(traj.States, x.Clone())
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
}

// run carries the stepping position between grid intervals.
type run struct {
	sim  *Simulator
	cfg  dynamo.Config
	traj *dynamo.Trajectory
	t    float64
	dt   float64
}

func (r *run) fail(x dynamo.State, err error) error {
	return &dynamo.SimulationError{Step: r.traj.Steps, Time: r.t, State: x.Clone(), Wrapped: err}
}

func (r *run) check(ctx context.Context, x dynamo.State) error {
	if err := ctx.Err(); err != nil {
		return r.fail(x, err)
	}
	if r.traj.Steps+r.traj.Rejected >= r.cfg.MaxSteps {
		return r.fail(x, dynamo.ErrMaxSteps)
	}
	return nil
}

func (r *run) advanceAdaptive(ctx context.Context, integ dynamo.AdaptiveIntegrator, x dynamo.State, target float64) (dynamo.State, error) {
	for r.t < target {
		if err := r.check(ctx, x); err != nil {
			return nil, err
		}

		h := r.dt
		last := false
		if r.t+h >= target {
			h = target - r.t
			last = true
		}

		newX, next, err := integ.StepAdaptive(r.sim.dyn, x, r.t, h, r.cfg.Tolerance)
		if errors.Is(err, dynamo.ErrStepRejected) {
			r.traj.Rejected++
			if next < r.cfg.MinDt {
				return nil, r.fail(x, dynamo.ErrStepTooSmall)
			}
			r.dt = next
			continue
		}
		if err != nil {
			return nil, r.fail(x, err)
		}
		if r.cfg.ValidateState && !newX.IsValid() {
			return nil, r.fail(x, dynamo.ErrInvalidState)
		}

		x = newX
		r.traj.Steps++
		if last {
			r.t = target
		} else {
			r.t += h
		}
		// a step clipped to land on the grid point says little about the
		// step size the solution allows
		if !last || next > r.dt {
			r.dt = next
		}
	}
	return x, nil
}

func (r *run) advanceFixed(ctx context.Context, x dynamo.State, target float64) (dynamo.State, error) {
	n := int(math.Ceil((target - r.t) / r.cfg.Dt))
	if n < 1 {
		n = 1
	}
	h := (target - r.t) / float64(n)
	start := r.t

	for i := 0; i < n; i++ {
		if err := r.check(ctx, x); err != nil {
			return nil, err
		}
		x = r.sim.integrator.Step(r.sim.dyn, x, r.t, h)
		r.traj.Steps++
		r.t = start + float64(i+1)*h
		if r.cfg.ValidateState && !x.IsValid() {
			return nil, r.fail(x, dynamo.ErrInvalidState)
		}
	}
	r.t = target
	return x, nil
}
