package exchange

import "github.com/san-kum/coingas/internal/gas"

// Uniform draws the new split uniformly from every split of the pair's units
// that respects the capacity bound. It is the only policy whose stationary
// distribution matches the microstate count, and the default one.
type Uniform struct {
	src gas.Source
}

func NewUniform(src gas.Source) *Uniform {
	return &Uniform{src: src}
}

func (p *Uniform) Name() string { return NameUniform }

func (p *Uniform) Exchange(e1, e2, capacity int) (int, int) {
	lo, hi := Splits(e1+e2, capacity)
	if lo > hi {
		return e1, e2
	}
	n := hi - lo + 1
	k := lo + int(p.src.Float64()*float64(n))
	if k > hi {
		k = hi
	}
	return k, e1 + e2 - k
}

// Splits returns the range [lo, hi] of first-disk counts k such that both k
// and total-k fit within capacity. lo > hi means no split exists.
func Splits(total, capacity int) (lo, hi int) {
	lo = max(0, total-capacity)
	hi = min(total, capacity)
	return lo, hi
}
