package physics

import (
	"fmt"

	"github.com/san-kum/coingas/internal/gas"
)

// Boundary keeps a disk inside the arena after its position is integrated.
type Boundary interface {
	Apply(d *gas.Disk)
}

// Reflect bounces disks off the walls of a [0,Width]x[0,Height] box. A disk
// crossing a wall is clamped back to touch it and the velocity component
// normal to that wall is negated, which preserves its speed.
type Reflect struct {
	Width, Height float64
}

func (b Reflect) Apply(d *gas.Disk) {
	if d.Pos.X-d.Radius < 0 {
		d.Pos.X = d.Radius
		d.Vel.X = -d.Vel.X
	} else if d.Pos.X+d.Radius > b.Width {
		d.Pos.X = b.Width - d.Radius
		d.Vel.X = -d.Vel.X
	}

	if d.Pos.Y-d.Radius < 0 {
		d.Pos.Y = d.Radius
		d.Vel.Y = -d.Vel.Y
	} else if d.Pos.Y+d.Radius > b.Height {
		d.Pos.Y = b.Height - d.Radius
		d.Vel.Y = -d.Vel.Y
	}
}

// Open is an unbounded plane.
type Open struct{}

func (Open) Apply(*gas.Disk) {}

const (
	BoundaryReflect = "reflect"
	BoundaryOpen    = "open"
)

// NewBoundary returns the boundary registered under name.
func NewBoundary(name string, width, height float64) (Boundary, error) {
	switch name {
	case BoundaryReflect:
		return Reflect{Width: width, Height: height}, nil
	case BoundaryOpen:
		return Open{}, nil
	default:
		return nil, fmt.Errorf("unknown boundary: %s", name)
	}
}
