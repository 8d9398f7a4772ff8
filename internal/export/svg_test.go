package export

import (
	"strings"
	"testing"

	"github.com/san-kum/coingas/internal/gas"
	"github.com/san-kum/coingas/internal/metrics"
	"github.com/san-kum/coingas/internal/reference"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestArenaToSVG(t *testing.T) {
	disks := []gas.Disk{
		{Pos: r2.Vec{X: 50, Y: 50}, Radius: 10, Energy: 0},
		{Pos: r2.Vec{X: 150, Y: 20}, Radius: 10, Energy: 4},
	}
	svg := ArenaToSVG(disks, 200, 100, 4)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("not a complete svg document")
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 circles, got %d", n)
	}
	// y is flipped: 100 - 20
	if !strings.Contains(svg, `cx="150.0" cy="80.0"`) {
		t.Error("disk not flipped into svg coordinates")
	}
	if !strings.Contains(svg, `fill-opacity="1.00"`) {
		t.Error("full disk should be opaque")
	}
}

func TestSeriesToSVG(t *testing.T) {
	table, err := reference.Boltzmann(3, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	series := []metrics.Snapshot{
		{Collision: 1, Occupancy: []float64{2, 0, 0, 0, 1}},
		{Collision: 2, Occupancy: []float64{1.5, 0.5, 0, 0.5, 0.5}},
		{Collision: 3, Occupancy: []float64{1, 1, 0.33, 0.33, 0.33}},
	}

	svg := SeriesToSVG(series, table, 400, 200)
	if n := strings.Count(svg, "<path"); n != 5 {
		t.Errorf("expected one path per level, got %d", n)
	}
	if n := strings.Count(svg, "<line"); n != 5 {
		t.Errorf("expected one reference line per level, got %d", n)
	}
	if !strings.Contains(svg, "M0.0,") {
		t.Error("first point should start at the left edge")
	}
}

func TestSeriesToSVGTooShort(t *testing.T) {
	if svg := SeriesToSVG([]metrics.Snapshot{{Collision: 1}}, reference.Table{}, 100, 100); svg != "" {
		t.Error("single snapshot should produce no plot")
	}
}
