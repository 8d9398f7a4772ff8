// Package reference computes and loads the theoretical occupancy of every
// energy level for a (disks, total energy, capacity) triple and compares it
// with the running averages of a simulation.
package reference

import (
	"github.com/san-kum/coingas/internal/gas"
	"gonum.org/v1/gonum/stat/combin"
)

// Table is the expected number of disks at each level 0..Capacity.
type Table struct {
	Disks     int       `yaml:"disks" json:"disks"`
	Total     int       `yaml:"total_energy" json:"total_energy"`
	Capacity  int       `yaml:"capacity" json:"capacity"`
	Occupancy []float64 `yaml:"occupancy" json:"occupancy"`
}

// Levels is the number of tabulated levels.
func (t Table) Levels() int { return len(t.Occupancy) }

// At returns the expected occupancy of level, 0 outside the table.
func (t Table) At(level int) float64 {
	if level < 0 || level >= len(t.Occupancy) {
		return 0
	}
	return t.Occupancy[level]
}

// Boltzmann counts microstates. Every assignment of total units to disks with
// no disk above capacity is equally likely, so the mean number of disks at
// level k is disks * W(disks-1, total-k) / W(disks, total), where W counts
// those assignments.
func Boltzmann(disks, total, capacity int) (Table, error) {
	if disks <= 0 {
		return Table{}, gas.Configf("disks must be positive, got %d", disks)
	}
	if total < 0 || capacity < 0 {
		return Table{}, gas.Configf("energy and capacity must not be negative")
	}
	if disks*capacity < total {
		return Table{}, gas.Configf("%d disks of capacity %d cannot hold %d units", disks, capacity, total)
	}

	t := Table{Disks: disks, Total: total, Capacity: capacity, Occupancy: make([]float64, capacity+1)}

	var count func(n, e int) float64
	if capacity >= total {
		count = unbounded
	} else {
		count = bounded(disks, total, capacity)
	}

	all := count(disks, total)
	for k := 0; k <= capacity && k <= total; k++ {
		t.Occupancy[k] = float64(disks) * count(disks-1, total-k) / all
	}
	return t, nil
}

// unbounded is the stars and bars count of ways to put e units on n disks.
func unbounded(n, e int) float64 {
	switch {
	case e < 0:
		return 0
	case n == 0:
		if e == 0 {
			return 1
		}
		return 0
	}
	return combin.GeneralizedBinomial(float64(e+n-1), float64(n-1))
}

// bounded tabulates W(n, e) for n <= disks, e <= total, each disk holding at
// most capacity units.
func bounded(disks, total, capacity int) func(n, e int) float64 {
	w := make([][]float64, disks+1)
	for n := range w {
		w[n] = make([]float64, total+1)
	}
	w[0][0] = 1
	for n := 1; n <= disks; n++ {
		for e := 0; e <= total; e++ {
			sum := 0.0
			for k := 0; k <= capacity && k <= e; k++ {
				sum += w[n-1][e-k]
			}
			w[n][e] = sum
		}
	}
	return func(n, e int) float64 {
		if e < 0 || e > total {
			return 0
		}
		return w[n][e]
	}
}
