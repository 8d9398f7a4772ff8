package exchange

import "github.com/san-kum/coingas/internal/gas"

// Asymmetric moves units from the first disk to the second and then lets every
// unit now on the second disk, including the ones that just arrived, move back.
// The coupling between the two phases biases the long-run distribution away
// from the Boltzmann form.
type Asymmetric struct {
	src gas.Source
}

func NewAsymmetric(src gas.Source) *Asymmetric {
	return &Asymmetric{src: src}
}

func (p *Asymmetric) Name() string { return NameAsymmetric }

func (p *Asymmetric) Exchange(e1, e2, capacity int) (int, int) {
	toSecond := binomial(p.src, e1)
	e1 -= toSecond
	e2 += toSecond

	toFirst := binomial(p.src, e2)
	return e1 + toFirst, e2 - toFirst
}
