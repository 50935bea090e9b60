package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Subtle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777"))
	KeyHint = Subtle.Italic(true)

	StatusRunning = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#55ff55"))
	StatusPaused  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))
	Warn          = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555"))

	MetricLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999")).Width(10)
	MetricValue = lipgloss.NewStyle().Foreground(lipgloss.Color("#55ccff")).Bold(true)
)

// headerStyle underlines a title in the current theme's frame colour.
func headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(CurrentTheme.Frame)
}

// IntactBar shows the fraction of threads still holding, in [0,1].
func IntactBar(fraction float64, width int) string {
	n := min(max(int(fraction*float64(width)+0.5), 0), width)
	style := lipgloss.NewStyle().Foreground(CurrentTheme.Thread)
	if fraction < 0.5 {
		style = Warn
	}
	return style.Render(strings.Repeat("█", n)) + Subtle.Render(strings.Repeat("░", width-n))
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders the most recent width values scaled to their own range.
func Sparkline(values []float64, width int) string {
	if len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) == 0 {
		return Subtle.Render(strings.Repeat("─", width))
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	line := make([]rune, len(values))
	for i, v := range values {
		idx := int((v - lo) / span * float64(len(sparkLevels)-1))
		line[i] = sparkLevels[min(max(idx, 0), len(sparkLevels)-1)]
	}
	return lipgloss.NewStyle().Foreground(CurrentTheme.Thread).Render(string(line))
}

func Rule(width int) string {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Frame).Render(strings.Repeat("─", width))
}
