package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/clothsim/internal/cloth"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Layout.Columns != 19 || cfg.Layout.Rows != 11 {
		t.Errorf("expected 19x11 grid, got %dx%d", cfg.Layout.Columns, cfg.Layout.Rows)
	}
	if cfg.Physics.TimeStep <= 0 {
		t.Error("time step should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.Params() != cloth.DefaultParams() {
		t.Errorf("default params mismatch: %+v", cfg.Params())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloth.yaml")
	cfg := GetPreset("slashed")
	cfg.Physics.Wind.Strength = 0.5

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded.Cuts) != len(cfg.Cuts) {
		t.Errorf("expected %d cuts, got %d", len(cfg.Cuts), len(loaded.Cuts))
	}
	if loaded.Physics.Wind.Strength != 0.5 {
		t.Errorf("expected wind 0.5, got %f", loaded.Physics.Wind.Strength)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("layout:\n  columns: 7\nphysics:\n  gravity: 1.5\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Layout.Columns != 7 || cfg.Layout.Rows != DefaultRows {
		t.Errorf("got %dx%d", cfg.Layout.Columns, cfg.Layout.Rows)
	}
	if cfg.Physics.Gravity != 1.5 || cfg.Physics.Damping != cloth.DefaultDamping {
		t.Errorf("physics not merged: %+v", cfg.Physics)
	}
}

func TestLoadRejectsNonFiniteLayout(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"nan spacing", "layout:\n  spacing: .nan\n"},
		{"inf mass", "layout:\n  mass: .inf\n"},
		{"nan origin", "layout:\n  origin_x: .nan\nview:\n  center: false\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, cloth.ErrInvalidLayout) {
				t.Errorf("Load() = %v, want %v", err, cloth.ErrInvalidLayout)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero columns", func(c *Config) { c.Layout.Columns = 0 }, cloth.ErrInvalidLayout},
		{"bad pin", func(c *Config) { c.Layout.Pin = "diagonal" }, cloth.ErrInvalidLayout},
		{"huge spacing", func(c *Config) { c.Layout.Spacing = 1e200 }, cloth.ErrInvalidLayout},
		{"no relaxation", func(c *Config) { c.Physics.RelaxIterations = 0 }, cloth.ErrInvalidParams},
		{"zero dt", func(c *Config) { c.Physics.TimeStep = 0 }, cloth.ErrInvalidParams},
		{"negative frames", func(c *Config) { c.Run.Frames = -1 }, ErrInvalidConfig},
		{"negative cut frame", func(c *Config) { c.Cuts = []CutConfig{{Frame: -3}} }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestClothLayoutCentering(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Layout.OriginX, cfg.Layout.OriginY = 3, 4

	want := cloth.CenteredOrigin(19, 11, 15, 800, 600)
	if got := cfg.ClothLayout().Origin; got != want {
		t.Errorf("centered origin = %v, want %v", got, want)
	}

	cfg.View.Center = false
	if got := cfg.ClothLayout().Origin; got != cloth.V(3, 4) {
		t.Errorf("explicit origin = %v", got)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("curtain")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Layout.Pin != "top" {
		t.Errorf("expected top pins, got %s", cfg.Layout.Pin)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset invalid: %v", err)
	}
	if DefaultConfig().Layout.Pin != "alternate" {
		t.Error("preset leaked into defaults")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestNewSimulation(t *testing.T) {
	sim, err := DefaultConfig().NewSimulation()
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}
	if sim.ConstraintCount() != 18*11+19*10 {
		t.Errorf("unexpected constraint count %d", sim.ConstraintCount())
	}
}
