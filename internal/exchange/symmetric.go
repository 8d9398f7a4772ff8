package exchange

import "github.com/san-kum/coingas/internal/gas"

// Symmetric draws both transfer counts from the counts held before the
// collision and applies them together. The result no longer depends on which
// disk comes first, but two independent binomial draws still do not give a
// uniform distribution over the possible splits.
type Symmetric struct {
	src gas.Source
}

func NewSymmetric(src gas.Source) *Symmetric {
	return &Symmetric{src: src}
}

func (p *Symmetric) Name() string { return NameSymmetric }

func (p *Symmetric) Exchange(e1, e2, capacity int) (int, int) {
	toSecond := binomial(p.src, e1)
	toFirst := binomial(p.src, e2)
	return e1 - toSecond + toFirst, e2 - toFirst + toSecond
}
