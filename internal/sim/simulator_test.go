package sim

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/san-kum/coingas/internal/exchange"
	"github.com/san-kum/coingas/internal/gas"
	"github.com/san-kum/coingas/internal/metrics"
	"github.com/san-kum/coingas/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

type breakingPolicy struct{}

func (breakingPolicy) Name() string                      { return "breaking" }
func (breakingPolicy) Exchange(e1, e2, _ int) (int, int) { return e1 + 1, e2 }

func crowdedDisks() []gas.Disk {
	return []gas.Disk{
		{Pos: r2.Vec{X: 15, Y: 15}, Vel: r2.Vec{X: 400, Y: 250}, Radius: 10, Energy: 4},
		{Pos: r2.Vec{X: 45, Y: 20}, Vel: r2.Vec{X: -300, Y: 350}, Radius: 10},
		{Pos: r2.Vec{X: 30, Y: 48}, Vel: r2.Vec{X: 200, Y: -420}, Radius: 10},
	}
}

func newTestRunner(t *testing.T, policy exchange.Policy) *Runner {
	t.Helper()
	world := physics.NewWorld(crowdedDisks(), physics.NewResolver(policy, 4), physics.Reflect{Width: 60, Height: 60})
	return New(world, metrics.NewOccupancy(4), nil)
}

func TestBudgetValidate(t *testing.T) {
	tests := []struct {
		name string
		b    Budget
		ok   bool
	}{
		{"collisions", Budget{Dt: 0.01, Collisions: 10}, true},
		{"steps", Budget{Dt: 0.01, MaxSteps: 10}, true},
		{"wall clock", Budget{Dt: 0.01, WallClock: time.Second}, true},
		{"zero dt", Budget{Dt: 0, Collisions: 10}, false},
		{"negative dt", Budget{Dt: -0.1, Collisions: 10}, false},
		{"no limit", Budget{Dt: 0.01}, false},
		{"negative collisions", Budget{Dt: 0.01, Collisions: -1, MaxSteps: 5}, false},
		{"negative snapshot", Budget{Dt: 0.01, Collisions: 5, SnapshotEvery: -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.b.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestRunCollisionBudget(t *testing.T) {
	r := newTestRunner(t, exchange.NewUniform(gas.NewSource(1)))
	r.AddMetric(metrics.NewKineticDrift())

	calls := 0
	r.AddObserver(ObserverFunc(func(physics.Event, *metrics.Occupancy) { calls++ }))

	result, err := r.Run(context.Background(), Budget{Dt: 0.005, Collisions: 200})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StopReason != StopCollisions {
		t.Errorf("stop reason = %s", result.StopReason)
	}
	if result.Collisions < 200 {
		t.Errorf("collisions = %d, want at least 200", result.Collisions)
	}
	if int64(calls) != result.Collisions {
		t.Errorf("observer saw %d collisions, result reports %d", calls, result.Collisions)
	}
	if int64(len(result.Series)) != result.Collisions {
		t.Errorf("series has %d snapshots for %d collisions", len(result.Series), result.Collisions)
	}

	for i, snap := range result.Series {
		if snap.Collision != int64(i+1) {
			t.Fatalf("snapshot %d has collision index %d", i, snap.Collision)
		}
		sum := 0.0
		for _, v := range snap.Occupancy {
			sum += v
		}
		if math.Abs(sum-3) > 1e-9 {
			t.Fatalf("snapshot %d occupancies sum to %v", i, sum)
		}
	}

	if drift := result.Metrics["kinetic_drift"]; drift > 1e-9 {
		t.Errorf("kinetic drift %v", drift)
	}
	if err := r.World().CheckConservation(); err != nil {
		t.Error(err)
	}
}

func TestRunSnapshotEvery(t *testing.T) {
	r := newTestRunner(t, exchange.NewUniform(gas.NewSource(2)))

	result, err := r.Run(context.Background(), Budget{Dt: 0.005, Collisions: 100, SnapshotEvery: 10})
	if err != nil {
		t.Fatal(err)
	}
	if want := int(result.Collisions / 10); len(result.Series) != want {
		t.Errorf("series length = %d, want %d", len(result.Series), want)
	}
	for _, snap := range result.Series {
		if snap.Collision%10 != 0 {
			t.Errorf("snapshot at collision %d", snap.Collision)
		}
	}
}

func TestStepWithoutSnapshots(t *testing.T) {
	r := newTestRunner(t, exchange.NewUniform(gas.NewSource(2)))
	r.SetSnapshotEvery(0)

	for r.Occupancy().Collisions() < 50 {
		if _, err := r.Step(0.005); err != nil {
			t.Fatal(err)
		}
	}
	if n := len(r.Series()); n != 0 {
		t.Errorf("recorded %d snapshots with snapshots disabled", n)
	}
}

func TestRunContinues(t *testing.T) {
	r := newTestRunner(t, exchange.NewUniform(gas.NewSource(3)))
	b := Budget{Dt: 0.005, Collisions: 100, SnapshotEvery: 10}

	first, err := r.Run(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Run(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}

	if second.StopReason != StopCollisions || second.Collisions < 100 {
		t.Errorf("second run stopped by %s after %d collisions", second.StopReason, second.Collisions)
	}
	if want := first.Collisions + second.Collisions; second.Final.Collision != want {
		t.Errorf("final covers %d collisions, want %d", second.Final.Collision, want)
	}
	if len(second.Series) == 0 || second.Series[0].Collision <= first.Final.Collision {
		t.Errorf("second series should start after collision %d", first.Final.Collision)
	}
	if got := len(first.Series) + len(second.Series); got != len(r.Series()) {
		t.Errorf("series split %d+%d, runner holds %d", len(first.Series), len(second.Series), len(r.Series()))
	}
}

func TestRunMaxSteps(t *testing.T) {
	r := newTestRunner(t, exchange.NewUniform(gas.NewSource(3)))

	result, err := r.Run(context.Background(), Budget{Dt: 0.005, MaxSteps: 250})
	if err != nil {
		t.Fatal(err)
	}
	if result.Steps != 250 || result.StopReason != StopMaxSteps {
		t.Errorf("steps = %d, reason = %s", result.Steps, result.StopReason)
	}
}

func TestRunWallClock(t *testing.T) {
	world := physics.NewWorld([]gas.Disk{{Radius: 1}}, physics.NewResolver(exchange.NewUniform(gas.NewSource(4)), 0), physics.Open{})
	r := New(world, metrics.NewOccupancy(0), nil)

	result, err := r.Run(context.Background(), Budget{Dt: 0.01, WallClock: 20 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	if result.StopReason != StopWallClock {
		t.Errorf("stop reason = %s", result.StopReason)
	}
	if result.Collisions != 0 || result.Steps == 0 {
		t.Errorf("collisions = %d, steps = %d", result.Collisions, result.Steps)
	}
}

func TestRunCancelled(t *testing.T) {
	r := newTestRunner(t, exchange.NewUniform(gas.NewSource(5)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := r.Run(ctx, Budget{Dt: 0.005, Collisions: 1000})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StopReason != StopCancelled {
		t.Fatalf("expected a partial result, got %+v", result)
	}
}

func TestRunInvariantViolation(t *testing.T) {
	r := newTestRunner(t, breakingPolicy{})

	result, err := r.Run(context.Background(), Budget{Dt: 0.005, Collisions: 100})
	if !errors.Is(err, gas.ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}

	var runErr *RunError
	if !errors.As(err, &runErr) || runErr.Step == 0 {
		t.Errorf("expected a RunError with a step, got %v", err)
	}
	if result.StopReason != StopInvariant || result.Collisions != 0 {
		t.Errorf("reason = %s, collisions = %d", result.StopReason, result.Collisions)
	}
}

func TestRunInvalidBudget(t *testing.T) {
	r := newTestRunner(t, exchange.NewUniform(gas.NewSource(6)))
	if _, err := r.Run(context.Background(), Budget{Dt: 0.01}); err == nil {
		t.Error("expected error for a budget without limits")
	}
}

func TestRunDeterministic(t *testing.T) {
	for _, name := range exchange.Names() {
		t.Run(name, func(t *testing.T) {
			var finals [2][]float64
			for i := range finals {
				p, err := exchange.New(name, gas.NewSource(42))
				if err != nil {
					t.Fatal(err)
				}
				res, err := newTestRunner(t, p).Run(context.Background(), Budget{Dt: 0.005, MaxSteps: 2000})
				if err != nil {
					t.Fatal(err)
				}
				finals[i] = res.Final.Occupancy
			}
			for k := range finals[0] {
				if finals[0][k] != finals[1][k] {
					t.Fatalf("runs with the same seed differ: %v vs %v", finals[0], finals[1])
				}
			}
		})
	}
}
