package physics

import (
	"errors"

	"github.com/san-kum/coingas/internal/exchange"
	"github.com/san-kum/coingas/internal/gas"
	"gonum.org/v1/gonum/spatial/r2"
)

// Event describes one resolved collision. It is only valid for the duration
// of the callback it is passed to.
type Event struct {
	I, J       int
	Normal     r2.Vec
	Distance   float64
	VelBefore  [2]r2.Vec
	VelAfter   [2]r2.Vec
	EnergyPre  [2]int
	EnergyPost [2]int
}

// Resolver applies an equal-mass elastic collision and delegates the energy
// redistribution to an exchange policy.
type Resolver struct {
	policy   exchange.Policy
	capacity int
}

func NewResolver(policy exchange.Policy, capacity int) *Resolver {
	return &Resolver{policy: policy, capacity: capacity}
}

func (r *Resolver) Policy() exchange.Policy { return r.policy }
func (r *Resolver) Capacity() int           { return r.capacity }

// Resolve collides a and b, the disks at indices i and j, which the caller
// knows to overlap. On an invariant violation the velocities are already
// exchanged but the energies are left untouched.
func (r *Resolver) Resolve(i, j int, a, b *gas.Disk) (Event, error) {
	ev := Event{
		I:         i,
		J:         j,
		Distance:  gas.Distance(*a, *b),
		VelBefore: [2]r2.Vec{a.Vel, b.Vel},
		EnergyPre: [2]int{a.Energy, b.Energy},
	}

	dist := gas.SafeDistance(*a, *b)
	n := r2.Scale(1/dist, r2.Sub(b.Pos, a.Pos))
	v1n := r2.Dot(a.Vel, n)
	v2n := r2.Dot(b.Vel, n)

	a.Vel = r2.Add(a.Vel, r2.Scale(v2n-v1n, n))
	b.Vel = r2.Add(b.Vel, r2.Scale(v1n-v2n, n))

	ev.Normal = n
	ev.VelAfter = [2]r2.Vec{a.Vel, b.Vel}

	e1, e2 := r.policy.Exchange(a.Energy, b.Energy, r.capacity)
	if err := exchange.Check(a.Energy, b.Energy, r.capacity, e1, e2); err != nil {
		var inv *gas.InvariantError
		if errors.As(err, &inv) {
			inv.Op = r.policy.Name()
			inv.I, inv.J = i, j
		}
		return ev, err
	}
	a.Energy, b.Energy = e1, e2
	ev.EnergyPost = [2]int{e1, e2}

	return ev, nil
}
