package gas

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Epsilon is the floor applied to a center distance before dividing by it.
const Epsilon = 1e-5

// Disk is a unit-mass disk. Its identity is its index in the world.
type Disk struct {
	Pos    r2.Vec
	Vel    r2.Vec
	Radius float64
	Energy int
}

// Distance returns the Euclidean distance between the centers of a and b.
func Distance(a, b Disk) float64 {
	return r2.Norm(r2.Sub(b.Pos, a.Pos))
}

// Overlaps reports whether the extents of a and b intersect.
func Overlaps(a, b Disk) bool {
	return Distance(a, b) < a.Radius+b.Radius
}

// SafeDistance is Distance floored at Epsilon.
func SafeDistance(a, b Disk) float64 {
	return math.Max(Distance(a, b), Epsilon)
}

// KineticEnergy returns the total kinetic energy of the disks.
func KineticEnergy(disks []Disk) float64 {
	ke := 0.0
	for _, d := range disks {
		ke += 0.5 * r2.Dot(d.Vel, d.Vel)
	}
	return ke
}

// Momentum returns the total momentum of the disks.
func Momentum(disks []Disk) r2.Vec {
	var p r2.Vec
	for _, d := range disks {
		p = r2.Add(p, d.Vel)
	}
	return p
}

// TotalEnergy returns the number of energy units held by the disks.
func TotalEnergy(disks []Disk) int {
	total := 0
	for _, d := range disks {
		total += d.Energy
	}
	return total
}

// Levels returns the energy count of every disk, reusing dst when it is large enough.
func Levels(disks []Disk, dst []int) []int {
	if cap(dst) < len(disks) {
		dst = make([]int, len(disks))
	}
	dst = dst[:len(disks)]
	for i, d := range disks {
		dst[i] = d.Energy
	}
	return dst
}
