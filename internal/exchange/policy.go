// Package exchange implements the rules that redistribute energy units between
// two colliding disks.
//
// A Policy sees only the two current counts and the capacity bound. Callers
// validate every result with Check; a policy that breaks conservation or the
// bound is a programming error and is reported, never clamped.
package exchange

import (
	"fmt"
	"sort"

	"github.com/san-kum/coingas/internal/gas"
)

// Policy redistributes the energy units of a colliding pair.
type Policy interface {
	Name() string
	Exchange(e1, e2, capacity int) (int, int)
}

// Check validates the result of an exchange against the input pair.
func Check(e1, e2, capacity, n1, n2 int) error {
	if n1+n2 != e1+e2 {
		return gas.Invariantf("exchange", "(%d,%d) -> (%d,%d) does not conserve %d units", e1, e2, n1, n2, e1+e2)
	}
	if n1 < 0 || n2 < 0 || n1 > capacity || n2 > capacity {
		return gas.Invariantf("exchange", "(%d,%d) -> (%d,%d) leaves [0,%d]", e1, e2, n1, n2, capacity)
	}
	return nil
}

// Bounded reports whether p never produces a count above the capacity bound
// by construction.
func Bounded(p Policy) bool {
	_, ok := p.(*Uniform)
	return ok
}

const (
	NameAsymmetric = "asymmetric"
	NameSymmetric  = "symmetric"
	NameUniform    = "uniform"
)

var constructors = map[string]func(gas.Source) Policy{
	NameAsymmetric: func(src gas.Source) Policy { return NewAsymmetric(src) },
	NameSymmetric:  func(src gas.Source) Policy { return NewSymmetric(src) },
	NameUniform:    func(src gas.Source) Policy { return NewUniform(src) },
}

// New returns the policy registered under name, drawing from src.
func New(name string, src gas.Source) (Policy, error) {
	fn, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown policy: %s (available: %v)", name, Names())
	}
	return fn(src), nil
}

// Names lists the registered policies in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// binomial counts how many of n units move under independent fair coin flips.
func binomial(src gas.Source, n int) int {
	moved := 0
	for i := 0; i < n; i++ {
		if src.Float64() < 0.5 {
			moved++
		}
	}
	return moved
}
