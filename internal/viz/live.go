package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/coingas/internal/config"
	"github.com/san-kum/coingas/internal/reference"
	"github.com/san-kum/coingas/internal/sim"
)

const (
	width           = 64
	height          = 20
	historyCapacity = 300
	maxStepsPerTick = 512
)

type TickMsg time.Time

// Model steps a runner a few steps per frame and draws the arena next to the
// occupancy of every level.
type Model struct {
	runner   *sim.Runner
	cfg      *config.Config
	table    reference.Table
	canvas   *Canvas
	running  bool
	speed    int
	history  [][]float64
	err      error
	done     bool
	showHelp bool
}

// NewModel shows runner, built from cfg. table is drawn as the expected
// occupancy and may be empty. The model keeps its own bounded history, so the
// runner stops recording snapshots.
func NewModel(runner *sim.Runner, cfg *config.Config, table reference.Table) Model {
	runner.SetSnapshotEvery(0)
	levels := runner.Occupancy().Levels()
	history := make([][]float64, levels)
	for k := range history {
		history[k] = make([]float64, 0, historyCapacity)
	}
	return Model{
		runner:  runner,
		cfg:     cfg,
		table:   table,
		canvas:  NewCanvas(width, height),
		running: true,
		speed:   8,
		history: history,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			m.speed = min(m.speed*2, maxStepsPerTick)
		case "-", "_":
			m.speed = max(m.speed/2, 1)
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && !m.done && m.err == nil {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance runs up to speed steps, stopping early at the collision budget.
func (m *Model) advance() {
	occ := m.runner.Occupancy()
	for i := 0; i < m.speed; i++ {
		if b := m.cfg.Budget.Collisions; b > 0 && occ.Collisions() >= b {
			m.done = true
			break
		}
		if _, err := m.runner.Step(m.cfg.Dt); err != nil {
			m.err = err
			m.running = false
			break
		}
	}

	if occ.Collisions() == 0 {
		return
	}
	for k := range m.history {
		m.history[k] = append(m.history[k], occ.AverageOccupancy(k))
		if len(m.history[k]) > historyCapacity {
			m.history[k] = m.history[k][1:]
		}
	}
}

// draw maps the arena onto the canvas, keeping its aspect ratio.
func (m *Model) draw() {
	m.canvas.Clear()
	dw, dh := m.canvas.Dots()

	aw, ah := m.cfg.Arena.Width, m.cfg.Arena.Height
	if aw <= 0 || ah <= 0 {
		aw, ah = config.DefaultWidth, config.DefaultHeight
	}
	scale := min(float64(dw-1)/aw, float64(dh-1)/ah)
	m.canvas.Rect(0, 0, int(aw*scale), int(ah*scale))

	capacity := float64(max(m.cfg.Capacity, 1))
	for _, d := range m.runner.World().Disks() {
		cx, cy := int(d.Pos.X*scale), int(d.Pos.Y*scale)
		r := max(int(d.Radius*scale), 1)
		m.canvas.Disc(cx, cy, r, float64(d.Energy)/capacity)
	}
}

func (m Model) View() string {
	m.draw()
	occ := m.runner.Occupancy()
	world := m.runner.World()

	var s strings.Builder
	title := fmt.Sprintf("%d DISKS · %d UNITS · C=%d · %s", world.Len(), world.TotalEnergy(), m.cfg.Capacity, strings.ToUpper(m.cfg.Policy))
	s.WriteString(headerStyle().Render(title) + "\n")

	status := "RUNNING"
	switch {
	case m.err != nil:
		status = "FAILED: " + m.err.Error()
	case m.done:
		status = "DONE"
	case !m.running:
		status = "PAUSED"
	}
	s.WriteString(statusStyle(m.running && !m.done, m.err != nil).Render(status) + "\n\n")

	s.WriteString(labelStyle.Render("Collisions") + valueStyle.Render(fmt.Sprintf("%d", occ.Collisions())) + "\n")
	s.WriteString(labelStyle.Render("Steps") + valueStyle.Render(fmt.Sprintf("%d", world.Steps())) + "\n")
	s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%d steps/frame", m.speed)) + "\n")
	if b := m.cfg.Budget.Collisions; b > 0 {
		s.WriteString(labelStyle.Render("Budget") + ProgressBar(float64(occ.Collisions())/float64(b), 24) + "\n")
	}

	s.WriteString("\nOCCUPANCY\n")
	scale := float64(world.Len())
	for k := 0; k < occ.Levels(); k++ {
		s.WriteString(OccupancyBar(k, occ.AverageOccupancy(k), m.table.At(k), scale, 20) + "\n")
	}

	if len(m.history) >= 2 && len(m.history[0]) > 1 {
		chart := asciigraph.PlotMany(m.history[:2],
			asciigraph.Height(6),
			asciigraph.Width(36),
			asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Magenta),
			asciigraph.Caption("n(E0) cyan, n(E1) magenta"),
		)
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause +/-:Speed T:Theme ?:Help Q:Quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas.String()), statsStyle.Render(s.String()))
	if m.showHelp {
		return `
  Space  pause or resume
  + / -  double or halve the steps per frame
  t      cycle color themes
  ?      toggle this help
  q      quit
` + "\n" + main
	}
	return main
}

// Run starts the live view and blocks until the user quits.
func Run(runner *sim.Runner, cfg *config.Config, table reference.Table) error {
	_, err := tea.NewProgram(NewModel(runner, cfg, table), tea.WithAltScreen()).Run()
	return err
}
