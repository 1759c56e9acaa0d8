package experiment

import (
	"context"

	"github.com/san-kum/monodsim/internal/config"
	"github.com/san-kum/monodsim/internal/dynamo"
	"github.com/san-kum/monodsim/internal/kinetics"
	"github.com/san-kum/monodsim/internal/metrics"
	"github.com/san-kum/monodsim/internal/sim"
)

// Experiment is one validated, ready to run simulation.
type Experiment struct {
	cfg       *config.Config
	model     *kinetics.Monod
	grid      dynamo.TimeGrid
	simulator *sim.Simulator
}

// New validates cfg and wires the model, integrator and default metrics.
func New(cfg *config.Config, reg *Registry) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	grid, err := cfg.Grid()
	if err != nil {
		return nil, err
	}
	integ, err := reg.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	model := kinetics.NewMonod(cfg.Params)
	s := sim.New(model, integ)
	for _, m := range metrics.Defaults(model) {
		s.AddMetric(m)
	}

	return &Experiment{cfg: cfg.Clone(), model: model, grid: grid, simulator: s}, nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Trajectory, error) {
	traj, err := e.simulator.Integrate(ctx, e.cfg.Initial.State(), e.grid, e.cfg.SimConfig())
	if err != nil {
		return nil, err
	}
	traj.Metrics["plateau"] = e.model.Plateau(e.cfg.Initial)
	return traj, nil
}

func (e *Experiment) Config() *config.Config { return e.cfg }
func (e *Experiment) Model() *kinetics.Monod { return e.model }

// Run builds and runs cfg in one call.
func Run(ctx context.Context, cfg *config.Config) (*dynamo.Trajectory, error) {
	exp, err := New(cfg, NewRegistry())
	if err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}
