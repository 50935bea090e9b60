package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/clothsim/internal/config"
)

var presetInfo = map[string]string{
	"default": "19x11 sheet, every other top pin",
	"large":   "40x25 sheet in a wide view",
	"curtain": "pinned along the whole top",
	"hammock": "hung from the two top corners",
	"stiff":   "stiffer springs, four relax passes",
	"windy":   "top pinned sheet in perlin gusts",
	"heavy":   "double mass under strong gravity",
	"slashed": "scripted cuts down the middle",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// field is one editable setting on the config screen.
type field struct {
	name string
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
	step float64
}

var fields = []field{
	{"columns", func(c *config.Config) float64 { return float64(c.Layout.Columns) }, func(c *config.Config, v float64) { c.Layout.Columns = int(v) }, 1},
	{"rows", func(c *config.Config) float64 { return float64(c.Layout.Rows) }, func(c *config.Config, v float64) { c.Layout.Rows = int(v) }, 1},
	{"spacing", func(c *config.Config) float64 { return c.Layout.Spacing }, func(c *config.Config, v float64) { c.Layout.Spacing = v }, 1},
	{"gravity", func(c *config.Config) float64 { return c.Physics.Gravity }, func(c *config.Config, v float64) { c.Physics.Gravity = v }, 0.1},
	{"damping", func(c *config.Config) float64 { return c.Physics.Damping }, func(c *config.Config, v float64) { c.Physics.Damping = v }, 0.05},
	{"wind", func(c *config.Config) float64 { return c.Physics.Wind.Strength }, func(c *config.Config, v float64) { c.Physics.Wind.Strength = v }, 0.1},
}

type model struct {
	state, cursor int
	presets       []string
	selected      string
	cfg           *config.Config
	fieldCursor   int
	editing       bool
	editBuf       string
	err           string
	width, height int
	liveModel     Model
}

func NewInteractiveApp() *model {
	return &model{
		state:   stateMenu,
		presets: config.ListPresets(),
		width:   80,
		height:  24,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}
	if m.state == stateSim {
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.presets[m.cursor]
		m.cfg = config.GetPreset(m.selected)
		m.state, m.fieldCursor, m.err = stateConfig, 0, ""
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	f := fields[m.fieldCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%f", &val); err == nil {
				f.set(m.cfg, val)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(fields)-1 {
			m.fieldCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, fmt.Sprintf("%g", f.get(m.cfg))
	case "s":
		return m.start()
	case "left", "h":
		f.set(m.cfg, f.get(m.cfg)-f.step)
	case "right", "l":
		f.set(m.cfg, f.get(m.cfg)+f.step)
	}
	return m, nil
}

func (m model) start() (model, tea.Cmd) {
	if err := m.cfg.Validate(); err != nil {
		m.err = err.Error()
		return m, nil
	}
	live, err := NewModel(m.cfg, m.selected)
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	m.liveModel = live
	newLive, _ := m.liveModel.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
	m.liveModel = newLive.(Model)
	m.state = stateSim
	return m, m.liveModel.Init()
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	pickedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	descStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

func hints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyStyle.Render(pairs[i]) + idleStyle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render("CLOTHSIM") + "\n    " + subStyle.Render("verlet cloth you can cut") + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), pickedStyle.Render(fmt.Sprintf("%-10s", name)), descStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", idleStyle.Render(fmt.Sprintf("  %-10s", name)), subStyle.Render(desc)))
		}
	}
	b.WriteString("\n    " + hints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render(strings.ToUpper(m.selected)) + "\n    " + subStyle.Render(presetInfo[m.selected]) + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, f := range fields {
		valStr := fmt.Sprintf("%8.3f", f.get(m.cfg))
		if m.editing && i == m.fieldCursor {
			valStr = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		if i == m.fieldCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cursorStyle.Render("▸"), pickedStyle.Render(fmt.Sprintf("%-10s", f.name)), descStyle.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", idleStyle.Render(fmt.Sprintf("  %-10s", f.name)), subStyle.Render(valStr)))
		}
	}
	if m.err != "" {
		b.WriteString("\n    " + Warn.Render(m.err) + "\n")
	}
	b.WriteString("\n    " + hints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive opens the preset picker, then the live view.
func RunInteractive() error {
	_, err := tea.NewProgram(NewInteractiveApp(), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
