package integrators

import "github.com/san-kum/monodsim/internal/dynamo"

// tableau holds the coefficients of an explicit Runge-Kutta method. a is
// strictly lower triangular and stored row by row, starting at stage 2.
type tableau struct {
	a [][]float64
	b []float64
	c []float64
}

var (
	eulerTableau = tableau{
		b: []float64{1},
		c: []float64{0},
	}

	rk4Tableau = tableau{
		a: [][]float64{
			{0.5},
			{0, 0.5},
			{0, 0, 1},
		},
		b: []float64{1.0 / 6.0, 1.0 / 3.0, 1.0 / 3.0, 1.0 / 6.0},
		c: []float64{0, 0.5, 0.5, 1},
	}
)

// Explicit is a fixed-step explicit Runge-Kutta integrator driven by a
// tableau. Stage buffers are reused between steps and resized when the
// state dimension changes, so one value must not be shared across
// goroutines.
type Explicit struct {
	tab   tableau
	k     []dynamo.State
	stage dynamo.State
}

// NewRK4 returns the classical 4th order method.
func NewRK4() *Explicit {
	return &Explicit{tab: rk4Tableau}
}

// NewEuler is first order and only kept as a baseline for comparisons.
func NewEuler() *Explicit {
	return &Explicit{tab: eulerTableau}
}

func (e *Explicit) resize(n int) {
	if len(e.stage) == n && len(e.k) == len(e.tab.b) {
		return
	}
	e.k = make([]dynamo.State, len(e.tab.b))
	for s := range e.k {
		e.k[s] = make(dynamo.State, n)
	}
	e.stage = make(dynamo.State, n)
}

func (e *Explicit) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	e.resize(n)

	copy(e.k[0], dyn.Derive(x, t))
	for s := 1; s < len(e.tab.b); s++ {
		row := e.tab.a[s-1]
		for i := 0; i < n; i++ {
			acc := 0.0
			for j, aij := range row {
				acc += aij * e.k[j][i]
			}
			e.stage[i] = x[i] + dt*acc
		}
		copy(e.k[s], dyn.Derive(e.stage, t+e.tab.c[s]*dt))
	}

	result := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		acc := 0.0
		for s, bs := range e.tab.b {
			acc += bs * e.k[s][i]
		}
		result[i] = x[i] + dt*acc
	}
	return result
}
