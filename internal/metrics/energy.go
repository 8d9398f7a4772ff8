package metrics

import (
	"math"

	"github.com/san-kum/coingas/internal/gas"
)

// KineticDrift is the largest relative deviation of total kinetic energy from
// the first sample. Walls and collisions both conserve it, so anything above
// rounding noise points at a broken resolver or boundary.
type KineticDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewKineticDrift() *KineticDrift {
	return &KineticDrift{name: "kinetic_drift"}
}

func (k *KineticDrift) Name() string { return k.name }

func (k *KineticDrift) Observe(s Sample) {
	ke := gas.KineticEnergy(s.Disks)
	if k.samples == 0 {
		k.initial = ke
	}
	k.samples++

	if k.initial != 0 {
		drift := math.Abs(ke-k.initial) / math.Abs(k.initial)
		k.maxDrift = math.Max(k.maxDrift, drift)
	}
}

func (k *KineticDrift) Value() float64 { return k.maxDrift }

func (k *KineticDrift) Reset() {
	k.initial = 0
	k.maxDrift = 0
	k.samples = 0
}

// Transfer is the mean number of units that changed hands per collision.
type Transfer struct {
	name    string
	sum     float64
	samples int
}

func NewTransfer() *Transfer {
	return &Transfer{name: "mean_transfer"}
}

func (t *Transfer) Name() string { return t.name }

func (t *Transfer) Observe(s Sample) {
	moved := s.Event.EnergyPost[0] - s.Event.EnergyPre[0]
	t.sum += math.Abs(float64(moved))
	t.samples++
}

func (t *Transfer) Value() float64 {
	if t.samples == 0 {
		return 0
	}
	return t.sum / float64(t.samples)
}

func (t *Transfer) Reset() {
	t.sum = 0
	t.samples = 0
}
