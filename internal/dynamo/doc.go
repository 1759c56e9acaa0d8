// Package dynamo provides core simulation primitives for ODE systems.
//
// The package defines the fundamental interfaces and types shared by the
// model, integrator and driver packages:
//
//   - [State]: vector representing system state
//   - [System]: interface for autonomous or time-dependent ODEs (dx/dt = f(x, t))
//   - [Integrator] and [AdaptiveIntegrator]: numerical steppers
//   - [TimeGrid]: strictly increasing sample times
//   - [Trajectory]: states sampled on a [TimeGrid]
//
// # Example
//
//	dyn := kinetics.NewMonod(kinetics.DefaultParams())
//	grid, _ := dynamo.Linspace(0, 50, 500)
//	s := sim.New(dyn, integrators.NewRK45())
//	traj, err := s.Integrate(ctx, dynamo.State{0.1, 10}, grid, dynamo.DefaultConfig())
//
// # Errors
//
// Failures surface as [*SimulationError] values wrapping one of the sentinel
// errors below, so callers can use errors.Is to classify them.
package dynamo
