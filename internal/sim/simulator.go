// Package sim drives a world forward and feeds every collision to the
// statistics accumulator.
package sim

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/coingas/internal/metrics"
	"github.com/san-kum/coingas/internal/physics"
)

// Runner owns one world and one occupancy accumulator. A run is strictly
// sequential; use Ensemble for independent runs in parallel.
type Runner struct {
	world     *physics.World
	occupancy *metrics.Occupancy
	metrics   []metrics.Metric
	observers []Observer
	logger    *log.Logger

	series        []metrics.Snapshot
	snapshotEvery int64
	reportEvery   int64
}

// New returns a runner over world. A nil logger discards output.
func New(world *physics.World, occupancy *metrics.Occupancy, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{
		world:         world,
		occupancy:     occupancy,
		metrics:       make([]metrics.Metric, 0),
		observers:     make([]Observer, 0),
		logger:        logger,
		snapshotEvery: 1,
	}
}

func (r *Runner) AddMetric(m metrics.Metric) { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer)     { r.observers = append(r.observers, o) }

func (r *Runner) World() *physics.World          { return r.world }
func (r *Runner) Occupancy() *metrics.Occupancy { return r.occupancy }

// Series returns the snapshots recorded so far.
func (r *Runner) Series() []metrics.Snapshot { return r.series }

// SetSnapshotEvery sets the collisions between recorded snapshots for callers
// that drive Step themselves. 0 records none.
func (r *Runner) SetSnapshotEvery(n int64) {
	r.snapshotEvery = max(n, 0)
}

// Run steps the world until the budget is exhausted or ctx is done. On
// cancellation or an invariant violation the partial result is returned
// together with the error.
//
// Run may be called again to continue. The budget, Collisions, Steps and
// Series of each result count from the start of that call, while Final
// carries the averages over every collision the runner has seen.
func (r *Runner) Run(ctx context.Context, b Budget) (*Result, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if b.SnapshotEvery > 0 {
		r.snapshotEvery = b.SnapshotEvery
	}
	r.reportEvery = b.ReportEvery

	for _, m := range r.metrics {
		m.Reset()
	}

	r.logger.Debug("run started",
		"disks", r.world.Len(),
		"energy", r.world.TotalEnergy(),
		"capacity", r.world.Resolver().Capacity(),
		"policy", r.world.Resolver().Policy().Name(),
		"collisions", b.Collisions,
		"wall_clock", b.WallClock,
		"max_steps", b.MaxSteps,
	)

	from := mark{
		start:      time.Now(),
		steps:      r.world.Steps(),
		collisions: r.occupancy.Collisions(),
		series:     len(r.series),
	}
	reason, err := r.loop(ctx, b, from)

	result := r.result(from, reason)
	if err != nil {
		r.logger.Error("run stopped", "reason", reason, "collisions", result.Collisions, "err", err)
		return result, err
	}

	r.logger.Info("run finished",
		"reason", reason,
		"collisions", result.Collisions,
		"steps", result.Steps,
		"elapsed", result.Elapsed.Round(time.Millisecond),
	)
	return result, nil
}

// mark is where a call to Run started.
type mark struct {
	start      time.Time
	steps      int
	collisions int64
	series     int
}

func (r *Runner) loop(ctx context.Context, b Budget, from mark) (StopReason, error) {
	for {
		select {
		case <-ctx.Done():
			return StopCancelled, ctx.Err()
		default:
		}

		switch {
		case b.Collisions > 0 && r.occupancy.Collisions()-from.collisions >= b.Collisions:
			return StopCollisions, nil
		case b.MaxSteps > 0 && r.world.Steps()-from.steps >= b.MaxSteps:
			return StopMaxSteps, nil
		case b.WallClock > 0 && time.Since(from.start) >= b.WallClock:
			return StopWallClock, nil
		}

		if _, err := r.Step(b.Dt); err != nil {
			return StopInvariant, err
		}
	}
}

// Step advances the world by one step of dt, observing every collision it
// resolves. It is the unit Run is built from and lets interactive callers
// drive the world at their own pace.
func (r *Runner) Step(dt float64) (int, error) {
	n, err := r.world.Step(dt, r.observe)
	if err != nil {
		return n, &RunError{Step: r.world.Steps(), Collision: r.occupancy.Collisions(), Wrapped: err}
	}
	return n, nil
}

func (r *Runner) observe(ev physics.Event) error {
	disks := r.world.Disks()
	if err := r.occupancy.Observe(disks); err != nil {
		return err
	}
	n := r.occupancy.Collisions()

	sample := metrics.Sample{Step: r.world.Steps(), Collision: n, Event: ev, Disks: disks}
	for _, m := range r.metrics {
		m.Observe(sample)
	}

	if r.snapshotEvery > 0 && n%r.snapshotEvery == 0 {
		r.series = append(r.series, r.occupancy.Snapshot())
	}

	for _, obs := range r.observers {
		obs.OnCollision(ev, r.occupancy)
	}

	if r.reportEvery > 0 && n%r.reportEvery == 0 {
		snap := r.occupancy.Snapshot()
		r.logger.Info("progress", "collisions", n, "steps", r.world.Steps(), "occupancy", formatOccupancy(snap.Occupancy))
	}
	return nil
}

func (r *Runner) result(from mark, reason StopReason) *Result {
	final := r.occupancy.Snapshot()
	result := &Result{
		Series:     r.series[from.series:],
		Final:      final,
		Collisions: final.Collision - from.collisions,
		Steps:      r.world.Steps() - from.steps,
		Elapsed:    time.Since(from.start),
		StopReason: reason,
		Metrics:    make(map[string]float64),
	}
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result
}
