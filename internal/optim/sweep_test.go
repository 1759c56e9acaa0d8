package optim

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/monodsim/internal/config"
)

func TestSweepMuMax(t *testing.T) {
	s, err := NewSweep([]string{"mu_max"}, [][]float64{{0.4, 0.8}})
	if err != nil {
		t.Fatal(err)
	}

	points, err := s.Run(context.Background(), config.DefaultConfig())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}

	slow, fast := points[0], points[1]
	if slow.Err != nil || fast.Err != nil {
		t.Fatalf("unexpected run errors: %v, %v", slow.Err, fast.Err)
	}
	if !(fast.Metrics["time_to_90pct"] < slow.Metrics["time_to_90pct"]) {
		t.Errorf("faster growth not earlier: %v vs %v", fast.Metrics["time_to_90pct"], slow.Metrics["time_to_90pct"])
	}
	if math.Abs(fast.Metrics["final_biomass"]-slow.Metrics["final_biomass"]) > 1e-3 {
		t.Errorf("plateaus differ: %v vs %v", fast.Metrics["final_biomass"], slow.Metrics["final_biomass"])
	}

	best, ok := Best(points, "time_to_90pct")
	if !ok || best.Params["mu_max"] != 0.8 {
		t.Errorf("expected mu_max 0.8 as best, got %v (ok=%v)", best.Params, ok)
	}
}

func TestSweepGrid(t *testing.T) {
	s, err := NewSweep([]string{"mu_max", "yxs"}, [][]float64{{0.3, 0.5}, {0.4, 0.5, 0.6}})
	if err != nil {
		t.Fatal(err)
	}
	base := config.DefaultConfig()
	base.Samples = 50

	points, err := s.Run(context.Background(), base)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 6 {
		t.Errorf("expected 6 points, got %d", len(points))
	}
	if base.Params.MuMax != 0.4 {
		t.Error("sweep mutated base config")
	}
}

func TestSweepKeepsFailures(t *testing.T) {
	s, err := NewSweep([]string{"ks"}, [][]float64{{0, 0.1}})
	if err != nil {
		t.Fatal(err)
	}
	points, err := s.Run(context.Background(), config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 || points[0].Err == nil || points[1].Err != nil {
		t.Errorf("unexpected points: %+v", points)
	}
}

func TestNewSweepValidates(t *testing.T) {
	if _, err := NewSweep([]string{"mu_max"}, nil); err == nil {
		t.Error("expected error for mismatched ranges")
	}
	if _, err := NewSweep([]string{"theta"}, [][]float64{{1}}); err == nil {
		t.Error("expected error for unknown parameter")
	}
}
