// Package physics moves disks and resolves their collisions.
//
//   - [World]: owns the disks, integrates positions and detects overlapping pairs
//   - [Resolver]: equal-mass elastic collision plus energy exchange
//   - [Boundary]: wall handling delegate ([Reflect], [Open])
//
// # Ordering
//
// Pairs are visited in (i, j) index order within a step and each overlapping
// pair is resolved exactly once. The order never depends on earlier outcomes
// in the same step, so a run is reproducible from its seed:
//
//	w := physics.NewWorld(disks, physics.NewResolver(policy, capacity), physics.Reflect{Width: 800, Height: 600})
//	n, err := w.Step(dt, func(ev physics.Event) error {
//	    return occupancy.Observe(w.Disks())
//	})
package physics
