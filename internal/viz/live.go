package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/metrics"
)

const (
	defaultCols     = 60
	defaultRows     = 22
	statsWidth      = 45
	historyCapacity = 300

	// the canvas is rendered with canvasStyle's padding in the top left
	// corner, so mouse cells are offset by it
	canvasPadX = 2
	canvasPadY = 1
)

var (
	canvasStyle      = lipgloss.NewStyle().Padding(canvasPadY, canvasPadX)
	statsStyle       = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(statsWidth)
	activeParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model is the live terminal view of one cloth. It steps the simulation on
// every tick while running and cuts where the left mouse button is pressed.
type Model struct {
	cfg           *config.Config
	sim           *cloth.Simulation
	snap          *cloth.Snapshot
	title         string
	viewport      Viewport
	canvas        *Canvas
	pins          map[[2]int]bool
	width, height int
	fps           int
	running       bool
	cuts          int
	lastCut       string
	strain        []float64
	energy        []float64
	paramKeys     []string
	selected      int
	status        string
	showHelp      bool
}

// NewModel builds the simulation described by cfg.
func NewModel(cfg *config.Config, title string) (Model, error) {
	s, err := cfg.NewSimulation()
	if err != nil {
		return Model{}, err
	}

	keys := make([]string, 0)
	for k := range s.GetParams() {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fps := cfg.View.FPS
	if fps <= 0 {
		fps = config.DefaultFPS
	}

	m := Model{
		cfg:       cfg,
		sim:       s,
		title:     title,
		fps:       fps,
		running:   true,
		strain:    make([]float64, 0, historyCapacity),
		energy:    make([]float64, 0, historyCapacity),
		paramKeys: keys,
	}
	m.resize(defaultCols, defaultRows)
	return m, nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
			}
		case "r":
			m.reset()
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.cutAt(msg.X-canvasPadX, msg.Y-canvasPadY)
		}
	case tea.WindowSizeMsg:
		cols := max(msg.Width-statsWidth-2*canvasPadX-2, 10)
		rows := max(msg.Height-2*canvasPadY-1, 5)
		m.resize(cols, rows)
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) resize(cols, rows int) {
	m.width, m.height = cols, rows
	m.canvas = NewCanvas(cols, rows)
	if m.snap == nil {
		m.snap = m.sim.Snapshot()
	}
	viewW, viewH := 0.0, 0.0
	if m.cfg.View.Center {
		viewW, viewH = float64(m.cfg.View.Width), float64(m.cfg.View.Height)
	}
	m.viewport = ViewportFor(m.snap, viewW, viewH, cols, rows)
}

func (m *Model) step() {
	m.sim.Step()
	m.snap = m.sim.Snapshot()
	m.strain = appendCapped(m.strain, metrics.MaxStrain(m.snap))
	m.energy = appendCapped(m.energy, metrics.TotalKineticEnergy(m.snap))
	if !m.snap.Valid() {
		m.running = false
		m.status = "state went NaN/Inf; press r to reset"
	}
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

// cutAt tries the sub-pixels of a canvas cell in turn and stops at the first
// one that severs a constraint. A terminal cell spans several world units, so
// a single probe at its centre would miss most threads.
func (m *Model) cutAt(col, row int) bool {
	if !m.viewport.Contains(col, row) {
		return false
	}
	for _, p := range m.viewport.CellPoints(col, row) {
		if m.sim.CutNear(p) {
			m.cuts++
			m.lastCut = fmt.Sprintf("(%.0f, %.0f)", p.X, p.Y)
			m.snap = m.sim.Snapshot()
			return true
		}
	}
	return false
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.sim.GetParams()[key]
	if val == 0 && factor > 1 {
		val = 0.01
	}
	if err := m.sim.SetParam(key, val*factor); err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
}

// reset rebuilds the cloth from the config, dropping cuts and tuned params.
func (m *Model) reset() {
	s, err := m.cfg.NewSimulation()
	if err != nil {
		m.status = err.Error()
		return
	}
	m.sim = s
	m.snap = s.Snapshot()
	m.cuts = 0
	m.lastCut = ""
	m.strain = m.strain[:0]
	m.energy = m.energy[:0]
	m.status = ""
	m.running = true
}

// draw renders the latest snapshot into the canvas and records which cells
// hold a pinned particle.
func (m *Model) draw() {
	m.canvas.Clear()
	m.pins = make(map[[2]int]bool)
	limit := 4 * max(m.width*2, m.height*4)

	for _, s := range m.snap.Segments {
		x0, y0 := m.viewport.ToScreen(s.From)
		x1, y1 := m.viewport.ToScreen(s.To)
		if absInt(x0) > limit || absInt(y0) > limit || absInt(x1) > limit || absInt(y1) > limit {
			continue
		}
		m.canvas.DrawLine(x0, y0, x1, y1)
	}
	for _, row := range m.snap.Particles {
		for _, p := range row {
			if !p.Pinned {
				continue
			}
			x, y := m.viewport.ToScreen(p.Position)
			m.canvas.DrawBlock(x, y)
			m.pins[[2]int{y / 4, x / 2}] = true
		}
	}
}

func (m Model) renderCanvas() string {
	clothStyle := lipgloss.NewStyle().Foreground(CurrentTheme.Thread)
	pinStyle := lipgloss.NewStyle().Foreground(CurrentTheme.Pin).Bold(true)

	var b strings.Builder
	for r, row := range m.canvas.Grid {
		start := 0
		for c := range row {
			if !m.pins[[2]int{r, c}] {
				continue
			}
			b.WriteString(clothStyle.Render(string(row[start:c])))
			b.WriteString(pinStyle.Render(string(row[c])))
			start = c + 1
		}
		b.WriteString(clothStyle.Render(string(row[start:])))
		b.WriteByte('\n')
	}
	return b.String()
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(strings.TrimSuffix(m.renderCanvas(), "\n"))

	var s strings.Builder
	s.WriteString(headerStyle().Render(strings.ToUpper(m.title)) + "\n")
	if m.running {
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	remaining := len(m.snap.Segments)
	total := max(m.snap.InitialConstraints, 1)
	s.WriteString(MetricLabel.Render("Frame") + MetricValue.Render(fmt.Sprintf("%d", m.snap.Frame)) + "\n")
	s.WriteString(MetricLabel.Render("Threads") + MetricValue.Render(fmt.Sprintf("%d/%d ", remaining, m.snap.InitialConstraints)) +
		IntactBar(float64(remaining)/float64(total), 12) + "\n")
	s.WriteString(MetricLabel.Render("Cuts") + MetricValue.Render(fmt.Sprintf("%d %s", m.cuts, m.lastCut)) + "\n")

	last := func(h []float64) float64 {
		if len(h) == 0 {
			return 0
		}
		return h[len(h)-1]
	}
	s.WriteString(MetricLabel.Render("Strain") + MetricValue.Render(fmt.Sprintf("%.3f", last(m.strain))) + "\n")
	s.WriteString(MetricLabel.Render("Energy") + MetricValue.Render(fmt.Sprintf("%.2f ", last(m.energy))) +
		Sparkline(m.energy, 16) + "\n")

	if len(m.strain) > 1 {
		chart := asciigraph.Plot(m.strain, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Strain"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	params := m.sim.GetParams()
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-16s %8.3f", k, params[k])
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + Subtle.Render(line) + "\n")
		}
	}
	if m.status != "" {
		s.WriteString("\n" + Warn.Render(m.status) + "\n")
	}

	s.WriteString(helpStyle.Render(Rule(30) + "\nSP:Pause N:Step R:Reset Q:Quit\nTab ↑↓:Tune T:Theme ?:Help\nClick: cut"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return mainView + "\n" + KeyHint.Render(`space pause/resume · n step once while paused · r reset · q quit
tab select parameter · up/k +5% · down/j -5% · t cycle theme
left click cuts the first thread near the cell`)
	}
	return mainView
}

// Run opens the live view for cfg in the alternate screen with mouse input.
func Run(cfg *config.Config, title string) error {
	m, err := NewModel(cfg, title)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
