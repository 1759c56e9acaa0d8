package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/monodsim/internal/config"
	"github.com/san-kum/monodsim/internal/experiment"
	"github.com/san-kum/monodsim/internal/kinetics"
)

// Point is one evaluated combination of a sweep.
type Point struct {
	Params  map[string]float64
	Metrics map[string]float64
	Err     error
}

// Sweep evaluates every combination of the given parameter values, one run
// at a time.
type Sweep struct {
	paramNames []string
	ranges     [][]float64
}

func NewSweep(params []string, ranges [][]float64) (*Sweep, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("sweep: %d parameters but %d ranges", len(params), len(ranges))
	}
	probe := kinetics.NewMonod(kinetics.DefaultParams())
	for _, name := range params {
		if _, ok := probe.GetParams()[name]; !ok {
			return nil, fmt.Errorf("sweep: unknown parameter %q", name)
		}
	}
	return &Sweep{paramNames: params, ranges: ranges}, nil
}

// Run applies each combination to a copy of base. Failed runs are kept with
// their error so a single bad combination does not hide the rest.
func (s *Sweep) Run(ctx context.Context, base *config.Config) ([]Point, error) {
	var points []Point
	err := s.runRecursive(ctx, 0, map[string]float64{}, base, &points)
	return points, err
}

func (s *Sweep) runRecursive(ctx context.Context, depth int, current map[string]float64, base *config.Config, points *[]Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(s.paramNames) {
		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}
		p := Point{Params: params}

		cfg := base.Clone()
		model := kinetics.NewMonod(cfg.Params)
		for k, v := range params {
			if err := model.SetParam(k, v); err != nil {
				p.Err = err
				*points = append(*points, p)
				return nil
			}
		}
		cfg.Params = model.Params()

		traj, err := experiment.Run(ctx, cfg)
		if err != nil {
			p.Err = err
		} else {
			p.Metrics = traj.Metrics
		}
		*points = append(*points, p)
		return nil
	}

	name := s.paramNames[depth]
	for _, v := range s.ranges[depth] {
		current[name] = v
		if err := s.runRecursive(ctx, depth+1, current, base, points); err != nil {
			return err
		}
	}
	delete(current, name)
	return nil
}

// Best returns the successful point with the smallest non-negative value of
// metric, or false when there is none.
func Best(points []Point, metric string) (Point, bool) {
	best := math.Inf(1)
	var found Point
	ok := false
	for _, p := range points {
		if p.Err != nil {
			continue
		}
		v, has := p.Metrics[metric]
		if !has || v < 0 {
			continue
		}
		if v < best {
			best = v
			found = p
			ok = true
		}
	}
	return found, ok
}
