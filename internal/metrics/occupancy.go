package metrics

import "github.com/san-kum/coingas/internal/gas"

// Snapshot is the running average occupancy of every level at one point of a
// run. Occupancy[k] is the mean number of disks found at level k.
type Snapshot struct {
	Collision int64
	Occupancy []float64
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	occ := make([]float64, len(s.Occupancy))
	copy(occ, s.Occupancy)
	return Snapshot{Collision: s.Collision, Occupancy: occ}
}

// Occupancy counts, per energy level, how many disks were seen at that level
// after each collision. It only ever grows, so any prefix of a run reproduces
// the running average the full run reported at that point.
type Occupancy struct {
	counts     []int64
	collisions int64
	levels     []int
}

// NewOccupancy tracks levels 0..capacity.
func NewOccupancy(capacity int) *Occupancy {
	if capacity < 0 {
		capacity = 0
	}
	return &Occupancy{counts: make([]int64, capacity+1)}
}

// Observe records the level of every disk and counts one collision. A disk
// outside 0..capacity is an invariant violation and nothing is recorded.
func (o *Occupancy) Observe(disks []gas.Disk) error {
	o.levels = gas.Levels(disks, o.levels)
	for i, k := range o.levels {
		if k < 0 || k >= len(o.counts) {
			return gas.Invariantf("observe", "disk %d at level %d, outside [0,%d]", i, k, len(o.counts)-1)
		}
	}
	for _, k := range o.levels {
		o.counts[k]++
	}
	o.collisions++
	return nil
}

// AverageOccupancy is the running mean number of disks at level. It is 0
// before the first observation and for levels outside 0..capacity.
func (o *Occupancy) AverageOccupancy(level int) float64 {
	if o.collisions == 0 || level < 0 || level >= len(o.counts) {
		return 0
	}
	return float64(o.counts[level]) / float64(o.collisions)
}

func (o *Occupancy) Collisions() int64 { return o.collisions }

// Levels is the number of tracked levels, capacity+1.
func (o *Occupancy) Levels() int { return len(o.counts) }

// Count is the raw number of disk observations at level.
func (o *Occupancy) Count(level int) int64 {
	if level < 0 || level >= len(o.counts) {
		return 0
	}
	return o.counts[level]
}

func (o *Occupancy) Snapshot() Snapshot {
	s := Snapshot{Collision: o.collisions, Occupancy: make([]float64, len(o.counts))}
	for k := range o.counts {
		s.Occupancy[k] = o.AverageOccupancy(k)
	}
	return s
}
