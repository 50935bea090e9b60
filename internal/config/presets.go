package config

import "sort"

// Presets are overlays on DefaultConfig; each func mutates a fresh default.
var Presets = map[string]func(*Config){
	"default": func(c *Config) {},
	"large": func(c *Config) {
		c.Layout.Columns, c.Layout.Rows, c.Layout.Spacing = 40, 25, 10
		c.View.Width, c.View.Height = 1280, 720
	},
	"curtain": func(c *Config) {
		c.Layout.Columns, c.Layout.Rows = 30, 18
		c.Layout.Spacing = 12
		c.Layout.Pin = "top"
	},
	"hammock": func(c *Config) {
		c.Layout.Pin = "corners"
		c.Physics.RelaxIterations = 3
	},
	"stiff": func(c *Config) {
		c.Physics.SpringConstant = 1.5
		c.Physics.RelaxIterations = 4
	},
	"windy": func(c *Config) {
		c.Layout.Pin = "top"
		c.Physics.Wind.Strength = 1.2
	},
	"heavy": func(c *Config) {
		c.Layout.Mass = 2
		c.Physics.Gravity = 6
		c.Physics.Damping = 0.4
	},
	"slashed": func(c *Config) {
		c.Run.Frames = 400
		for i := 0; i < 8; i++ {
			c.Cuts = append(c.Cuts, CutConfig{Frame: 100 + i, X: 300 + float64(i)*25, Y: 120})
		}
	},
}

// GetPreset returns a default config with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
