package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the live view.
type Theme struct {
	Name   string
	Thread lipgloss.Color // intact constraints
	Pin    lipgloss.Color // anchored particles
	Frame  lipgloss.Color // header rule and separators
}

var Themes = []Theme{
	{Name: "phosphor", Thread: "#00ff00", Pin: "#ff5555", Frame: "#005500"},
	{Name: "linen", Thread: "#e8dcc4", Pin: "#b5651d", Frame: "#6b5b45"},
	{Name: "silk", Thread: "#ff9ff3", Pin: "#feca57", Frame: "#8b6b8c"},
	{Name: "denim", Thread: "#6fa8dc", Pin: "#ffd700", Frame: "#1f3b5a"},
	{Name: "mono", Thread: "#c0c0c0", Pin: "#ffffff", Frame: "#444444"},
}

var CurrentTheme = Themes[0]

// GetTheme returns the named theme, or the first one for unknown names.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func SetTheme(name string) { CurrentTheme = GetTheme(name) }

// NextTheme cycles to the theme after the current one.
func NextTheme() {
	i := 0
	for j, t := range Themes {
		if t.Name == CurrentTheme.Name {
			i = j + 1
			break
		}
	}
	CurrentTheme = Themes[i%len(Themes)]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
