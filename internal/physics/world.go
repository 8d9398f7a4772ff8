package physics

import (
	"github.com/san-kum/coingas/internal/gas"
	"gonum.org/v1/gonum/spatial/r2"
)

// World owns the disks and is the only writer of their state.
type World struct {
	disks      []gas.Disk
	view       []gas.Disk
	resolver   *Resolver
	boundary   Boundary
	steps      int
	collisions int64
	total      int
}

// NewWorld takes ownership of a copy of disks.
func NewWorld(disks []gas.Disk, resolver *Resolver, boundary Boundary) *World {
	if boundary == nil {
		boundary = Open{}
	}
	owned := make([]gas.Disk, len(disks))
	copy(owned, disks)
	return &World{
		disks:    owned,
		view:     make([]gas.Disk, len(disks)),
		resolver: resolver,
		boundary: boundary,
		total:    gas.TotalEnergy(owned),
	}
}

// Step advances every disk by dt and resolves each overlapping pair once, in
// (i, j) index order. onCollision, when non-nil, runs right after each
// resolution and sees the world as that collision left it. Step returns the
// number of collisions resolved.
func (w *World) Step(dt float64, onCollision func(Event) error) (int, error) {
	for i := range w.disks {
		d := &w.disks[i]
		d.Pos = r2.Add(d.Pos, r2.Scale(dt, d.Vel))
		w.boundary.Apply(d)
	}
	w.steps++

	resolved := 0
	n := len(w.disks)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := &w.disks[i], &w.disks[j]
			if !gas.Overlaps(*a, *b) {
				continue
			}

			ev, err := w.resolver.Resolve(i, j, a, b)
			if err != nil {
				return resolved, err
			}
			resolved++
			w.collisions++

			if onCollision != nil {
				if err := onCollision(ev); err != nil {
					return resolved, err
				}
			}
		}
	}

	return resolved, nil
}

// Disks returns a copy of the disk state. The slice is reused by the next call.
func (w *World) Disks() []gas.Disk {
	copy(w.view, w.disks)
	return w.view
}

// Energy returns the energy count of disk i.
func (w *World) Energy(i int) int { return w.disks[i].Energy }

func (w *World) Len() int            { return len(w.disks) }
func (w *World) Steps() int          { return w.steps }
func (w *World) Collisions() int64   { return w.collisions }
func (w *World) TotalEnergy() int    { return w.total }
func (w *World) Resolver() *Resolver { return w.resolver }

// CheckConservation verifies the energy total and the capacity bound over
// the whole world.
func (w *World) CheckConservation() error {
	sum := 0
	c := w.resolver.Capacity()
	for i, d := range w.disks {
		if d.Energy < 0 || d.Energy > c {
			return gas.Invariantf("world", "disk %d holds %d units, outside [0,%d]", i, d.Energy, c)
		}
		sum += d.Energy
	}
	if sum != w.total {
		return gas.Invariantf("world", "total energy %d, want %d", sum, w.total)
	}
	return nil
}
