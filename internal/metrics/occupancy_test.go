package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/coingas/internal/gas"
)

func disksAt(levels ...int) []gas.Disk {
	disks := make([]gas.Disk, len(levels))
	for i, k := range levels {
		disks[i].Energy = k
	}
	return disks
}

func TestOccupancyEmpty(t *testing.T) {
	o := NewOccupancy(4)
	if o.Levels() != 5 {
		t.Errorf("Levels() = %d, want 5", o.Levels())
	}
	for k := -1; k <= 5; k++ {
		if got := o.AverageOccupancy(k); got != 0 {
			t.Errorf("AverageOccupancy(%d) = %v before any observation", k, got)
		}
	}
}

func TestOccupancyRunningAverage(t *testing.T) {
	o := NewOccupancy(4)

	observations := [][]int{
		{4, 0, 0},
		{2, 2, 0},
		{1, 1, 2},
		{0, 3, 1},
	}
	for _, levels := range observations {
		if err := o.Observe(disksAt(levels...)); err != nil {
			t.Fatal(err)
		}
	}

	want := []float64{4.0 / 4, 3.0 / 4, 3.0 / 4, 1.0 / 4, 1.0 / 4}
	for k, w := range want {
		if got := o.AverageOccupancy(k); math.Abs(got-w) > 1e-12 {
			t.Errorf("AverageOccupancy(%d) = %v, want %v", k, got, w)
		}
	}

	snap := o.Snapshot()
	if snap.Collision != 4 || len(snap.Occupancy) != 5 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	sum := 0.0
	for _, v := range snap.Occupancy {
		sum += v
	}
	if math.Abs(sum-3) > 1e-12 {
		t.Errorf("occupancies sum to %v, want the disk count 3", sum)
	}
}

func TestOccupancyPrefixIsStable(t *testing.T) {
	o := NewOccupancy(2)
	_ = o.Observe(disksAt(2, 0))
	first := o.Snapshot().Clone()

	_ = o.Observe(disksAt(1, 1))
	if first.Occupancy[2] != 1 || first.Occupancy[1] != 0 {
		t.Errorf("earlier snapshot changed: %v", first.Occupancy)
	}
	if o.Count(1) != 2 || o.Count(2) != 1 {
		t.Errorf("counts = %d,%d", o.Count(1), o.Count(2))
	}
}

func TestOccupancyRejectsOutOfRange(t *testing.T) {
	o := NewOccupancy(2)
	_ = o.Observe(disksAt(1, 1))

	for _, levels := range [][]int{{3, 0}, {-1, 3}} {
		err := o.Observe(disksAt(levels...))
		if !errors.Is(err, gas.ErrInvariant) {
			t.Fatalf("Observe(%v) error = %v, want ErrInvariant", levels, err)
		}
	}

	if o.Collisions() != 1 || o.Count(1) != 2 || o.Count(0) != 0 {
		t.Errorf("a rejected observation was recorded: collisions=%d", o.Collisions())
	}
}
