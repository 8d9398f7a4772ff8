package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(52)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

func headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Secondary).Bold(true).MarginBottom(1)
}

func statusStyle(running bool, failed bool) lipgloss.Style {
	c := CurrentTheme.Accent
	switch {
	case failed:
		c = CurrentTheme.Error
	case !running:
		c = CurrentTheme.Warning
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}

// ProgressBar renders a fraction in [0, 1] as a bar of width cells.
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	filled = max(0, min(filled, width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Render(bar)
}

// OccupancyBar draws the running occupancy of one level against its
// expected value. scale is the occupancy that fills the whole bar; the
// expected value is marked with a bar of its own.
func OccupancyBar(level int, empirical, expected, scale float64, width int) string {
	if scale <= 0 {
		scale = 1
	}
	emp := max(0, min(int(empirical/scale*float64(width)+0.5), width))
	exp := max(0, min(int(expected/scale*float64(width)+0.5), width))

	var b strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i == exp && exp < width:
			b.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Render("│"))
		case i < emp:
			b.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Render("█"))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Render("·"))
		}
	}
	return fmt.Sprintf("E%-2d %s %5.3f (%5.3f)", level, b.String(), empirical, expected)
}
