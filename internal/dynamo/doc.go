// Package dynamo drives a system of hard spheres on an ellipse through time.
//
// A [Simulator] owns the manifold, a geodesic [integrators.Stepper] and a
// [Config]. Each [Simulator.Step] picks the largest timestep that does not
// skip a contact, advances every particle, resolves the pairs that touch and
// returns a new [Generation]. [Simulator.Run] repeats that until MaxTime and
// collects a [Trajectory]:
//
//   - snapshots of (φ, φ̇) at every save interval,
//   - a [ConservationRecord] of energy and momentum totals,
//   - the collision event log and any conservation violations.
//
// # Example
//
//	e := geometry.MustNew(2, 1)
//	sim, _ := dynamo.New(e, integrators.NewForestRuth(), dynamo.DefaultConfig())
//	traj, err := sim.Run(ctx, particles)
//
// # Thread Safety
//
// A Simulator is not safe for concurrent use. Within a step the particle
// updates are split across goroutines with [ParallelFor]; collision
// resolution is sequential.
package dynamo
