// Package sim drives a [dynamo.Integrator] over a [dynamo.TimeGrid] and
// collects the sampled [dynamo.Trajectory].
package sim
