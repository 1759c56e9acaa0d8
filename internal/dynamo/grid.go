package dynamo

import (
	"fmt"
	"math"
)

// TimeGrid is a strictly increasing sequence of sample times.
type TimeGrid []float64

// Linspace returns n evenly spaced points over [start, stop]. Both endpoints
// are exact.
func Linspace(start, stop float64, n int) (TimeGrid, error) {
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 samples, got %d: %w", n, ErrInvalidGrid)
	}
	if !(stop > start) || math.IsInf(stop, 0) || math.IsNaN(start) {
		return nil, fmt.Errorf("horizon [%g, %g] is empty: %w", start, stop, ErrInvalidGrid)
	}
	g := make(TimeGrid, n)
	step := (stop - start) / float64(n-1)
	for i := range g {
		g[i] = start + float64(i)*step
	}
	g[n-1] = stop
	return g, nil
}

func (g TimeGrid) Validate() error {
	if len(g) < 2 {
		return fmt.Errorf("need at least 2 samples, got %d: %w", len(g), ErrInvalidGrid)
	}
	for i, t := range g {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("sample %d is not finite: %w", i, ErrInvalidGrid)
		}
		if i > 0 && t <= g[i-1] {
			return fmt.Errorf("sample %d (%g) does not follow %g: %w", i, t, g[i-1], ErrInvalidGrid)
		}
	}
	return nil
}
