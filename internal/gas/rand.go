package gas

import "math/rand/v2"

// Source is a uniform random source over [0, 1).
type Source interface {
	Float64() float64
}

type pcgSource struct{ r *rand.Rand }

// NewSource returns a deterministic Source for seed.
func NewSource(seed uint64) Source {
	return &pcgSource{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *pcgSource) Float64() float64 { return s.r.Float64() }

// Split derives an independent Source from s, so that the components of a run
// drawing from their own streams stay reproducible for a single seed.
func Split(s Source, stream uint64) Source {
	seed := uint64(s.Float64() * (1 << 53))
	return &pcgSource{r: rand.New(rand.NewPCG(seed, stream))}
}
