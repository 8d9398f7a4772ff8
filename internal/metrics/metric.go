// Package metrics accumulates statistics over the collisions of a run.
package metrics

import (
	"github.com/san-kum/coingas/internal/gas"
	"github.com/san-kum/coingas/internal/physics"
)

// Sample is what a metric sees after each resolved collision. Disks is a view
// owned by the world and must not be retained.
type Sample struct {
	Step      int
	Collision int64
	Event     physics.Event
	Disks     []gas.Disk
}

// Metric reduces a stream of samples to one number.
type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}
