package physics

import (
	"testing"

	"github.com/san-kum/coingas/internal/gas"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestReflect(t *testing.T) {
	b := Reflect{Width: 100, Height: 50}

	tests := []struct {
		name    string
		in      gas.Disk
		wantPos r2.Vec
		wantVel r2.Vec
	}{
		{"inside", gas.Disk{Pos: r2.Vec{X: 50, Y: 25}, Vel: r2.Vec{X: 1, Y: 1}, Radius: 5}, r2.Vec{X: 50, Y: 25}, r2.Vec{X: 1, Y: 1}},
		{"left wall", gas.Disk{Pos: r2.Vec{X: 2, Y: 25}, Vel: r2.Vec{X: -3, Y: 1}, Radius: 5}, r2.Vec{X: 5, Y: 25}, r2.Vec{X: 3, Y: 1}},
		{"right wall", gas.Disk{Pos: r2.Vec{X: 99, Y: 25}, Vel: r2.Vec{X: 3, Y: 1}, Radius: 5}, r2.Vec{X: 95, Y: 25}, r2.Vec{X: -3, Y: 1}},
		{"floor", gas.Disk{Pos: r2.Vec{X: 50, Y: 1}, Vel: r2.Vec{X: 1, Y: -2}, Radius: 5}, r2.Vec{X: 50, Y: 5}, r2.Vec{X: 1, Y: 2}},
		{"corner", gas.Disk{Pos: r2.Vec{X: 98, Y: 49}, Vel: r2.Vec{X: 2, Y: 2}, Radius: 5}, r2.Vec{X: 95, Y: 45}, r2.Vec{X: -2, Y: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.in
			b.Apply(&d)
			if d.Pos != tt.wantPos || d.Vel != tt.wantVel {
				t.Errorf("Apply() = pos %v vel %v, want pos %v vel %v", d.Pos, d.Vel, tt.wantPos, tt.wantVel)
			}
		})
	}
}

func TestNewBoundary(t *testing.T) {
	if _, err := NewBoundary(BoundaryReflect, 10, 10); err != nil {
		t.Error(err)
	}
	if _, err := NewBoundary(BoundaryOpen, 0, 0); err != nil {
		t.Error(err)
	}
	if _, err := NewBoundary("torus", 10, 10); err == nil {
		t.Error("expected error for unknown boundary")
	}
}
