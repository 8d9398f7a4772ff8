package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/coingas/internal/gas"
	"github.com/san-kum/coingas/internal/metrics"
	"github.com/san-kum/coingas/internal/reference"
)

var palette = []string{"#00ffff", "#ff00ff", "#ffff00", "#00ff00", "#ff5555", "#5599ff"}

func levelColor(level int) string {
	return palette[level%len(palette)]
}

func header(sb *strings.Builder, width, height float64) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))
}

// ArenaToSVG draws the disks in a width x height arena, filled in proportion
// to how many of the capacity units each one holds. SVG y grows downward so
// the arena is flipped.
func ArenaToSVG(disks []gas.Disk, width, height float64, capacity int) string {
	var sb strings.Builder
	header(&sb, width, height)

	for _, d := range disks {
		fill := 0.0
		if capacity > 0 {
			fill = float64(d.Energy) / float64(capacity)
		}
		sb.WriteString(fmt.Sprintf(
			`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="%.2f" stroke="%s"/>
`, d.Pos.X, height-d.Pos.Y, d.Radius, levelColor(d.Energy), 0.15+0.85*fill, levelColor(d.Energy)))
		sb.WriteString(fmt.Sprintf(
			`<text x="%.1f" y="%.1f" fill="#ffffff" font-size="%.0f" text-anchor="middle" dominant-baseline="middle">%d</text>
`, d.Pos.X, height-d.Pos.Y, d.Radius, d.Energy))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesToSVG plots the running occupancy of every level against the
// collision count, with the table's value for each level as a dashed line.
// A table with no levels draws the series alone.
func SeriesToSVG(series []metrics.Snapshot, table reference.Table, width, height int) string {
	if len(series) < 2 {
		return ""
	}

	levels := table.Levels()
	maxY := 0.0
	for _, s := range series {
		if len(s.Occupancy) > levels {
			levels = len(s.Occupancy)
		}
		for _, v := range s.Occupancy {
			maxY = max(maxY, v)
		}
	}
	for _, v := range table.Occupancy {
		maxY = max(maxY, v)
	}
	if maxY == 0 {
		maxY = 1
	}
	maxY *= 1.1

	minX := float64(series[0].Collision)
	rangeX := float64(series[len(series)-1].Collision) - minX
	if rangeX == 0 {
		rangeX = 1
	}
	w, h := float64(width), float64(height)
	px := func(c int64) float64 { return (float64(c) - minX) / rangeX * w }
	py := func(v float64) float64 { return h - v/maxY*h }

	var sb strings.Builder
	header(&sb, w, h)

	for k := 0; k < levels; k++ {
		color := levelColor(k)
		if k < table.Levels() {
			y := py(table.At(k))
			sb.WriteString(fmt.Sprintf(
				`<line x1="0" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-dasharray="4 4" stroke-opacity="0.6"/>
`, y, w, y, color))
		}

		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
		for i, s := range series {
			v := 0.0
			if k < len(s.Occupancy) {
				v = s.Occupancy[k]
			}
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", px(s.Collision), py(v)))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px(s.Collision), py(v)))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
