package reference

import (
	"math"

	"github.com/san-kum/coingas/internal/metrics"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Level pairs the empirical and expected occupancy of one level.
type Level struct {
	Level     int
	Empirical float64
	Expected  float64
	AbsError  float64
}

// Comparison summarizes how far a running average is from a table.
type Comparison struct {
	Collision   int64
	Levels      []Level
	MaxAbsError float64
	// Hellinger distance between the two occupancies normalized to
	// probability distributions over levels. 0 is identical, 1 disjoint.
	Hellinger float64
	// Monotone reports whether the empirical occupancy never increases with
	// the level, the ordering the table itself always has.
	Monotone bool
}

// Compare lines snap up against t level by level. Levels present in only one
// of them count as zero in the other.
func Compare(snap metrics.Snapshot, t Table) Comparison {
	n := len(snap.Occupancy)
	if len(t.Occupancy) > n {
		n = len(t.Occupancy)
	}

	emp := make([]float64, n)
	exp := make([]float64, n)
	copy(emp, snap.Occupancy)
	copy(exp, t.Occupancy)

	c := Comparison{Collision: snap.Collision, Levels: make([]Level, n), Monotone: true}
	for k := 0; k < n; k++ {
		diff := math.Abs(emp[k] - exp[k])
		c.Levels[k] = Level{Level: k, Empirical: emp[k], Expected: exp[k], AbsError: diff}
		c.MaxAbsError = math.Max(c.MaxAbsError, diff)
		if k > 0 && emp[k] > emp[k-1] {
			c.Monotone = false
		}
	}

	c.Hellinger = hellinger(emp, exp)
	return c
}

func hellinger(p, q []float64) float64 {
	sp, sq := floats.Sum(p), floats.Sum(q)
	if sp == 0 || sq == 0 {
		if sp == sq {
			return 0
		}
		return 1
	}
	pn := make([]float64, len(p))
	qn := make([]float64, len(q))
	floats.ScaleTo(pn, 1/sp, p)
	floats.ScaleTo(qn, 1/sq, q)
	return stat.Hellinger(pn, qn)
}
