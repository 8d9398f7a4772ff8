package sim

import (
	"fmt"
	"time"

	"github.com/san-kum/coingas/internal/metrics"
	"github.com/san-kum/coingas/internal/physics"
)

// Observer is notified after every resolved collision, once the occupancy
// accumulator has recorded it. It must not retain occ.
type Observer interface {
	OnCollision(ev physics.Event, occ *metrics.Occupancy)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev physics.Event, occ *metrics.Occupancy)

func (f ObserverFunc) OnCollision(ev physics.Event, occ *metrics.Occupancy) { f(ev, occ) }

// Budget bounds a run. At least one of Collisions, WallClock and MaxSteps must
// be positive; the run stops at whichever is reached first. Budgets are
// checked between steps, so Collisions may be overshot by the collisions of
// the final step.
type Budget struct {
	Collisions    int64
	WallClock     time.Duration
	MaxSteps      int
	Dt            float64
	SnapshotEvery int64
	ReportEvery   int64
}

func (b Budget) Validate() error {
	if b.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", b.Dt)
	}
	if b.Collisions < 0 || b.WallClock < 0 || b.MaxSteps < 0 {
		return fmt.Errorf("budget must not be negative")
	}
	if b.Collisions == 0 && b.WallClock == 0 && b.MaxSteps == 0 {
		return fmt.Errorf("budget needs a collision, wall clock or step limit")
	}
	if b.SnapshotEvery < 0 || b.ReportEvery < 0 {
		return fmt.Errorf("snapshot and report intervals must not be negative")
	}
	return nil
}

type StopReason string

const (
	StopCollisions StopReason = "collisions"
	StopWallClock  StopReason = "wall_clock"
	StopMaxSteps   StopReason = "max_steps"
	StopCancelled  StopReason = "cancelled"
	StopInvariant  StopReason = "invariant"
)

// Result is the output of a run: the convergence series, sampled every
// SnapshotEvery collisions, and the final running averages.
type Result struct {
	Series     []metrics.Snapshot
	Final      metrics.Snapshot
	Collisions int64
	Steps      int
	Elapsed    time.Duration
	StopReason StopReason
	Metrics    map[string]float64
}

// Occupancy returns the final running average at level, 0 when out of range.
func (r *Result) Occupancy(level int) float64 {
	if level < 0 || level >= len(r.Final.Occupancy) {
		return 0
	}
	return r.Final.Occupancy[level]
}

// RunError wraps a failure with the point of the run where it happened.
type RunError struct {
	Step      int
	Collision int64
	Wrapped   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("step %d, collision %d: %v", e.Step, e.Collision, e.Wrapped)
}

func (e *RunError) Unwrap() error {
	return e.Wrapped
}
