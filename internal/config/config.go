package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/clothsim/internal/cloth"
	"gopkg.in/yaml.v3"
)

const (
	DefaultColumns     = 19
	DefaultRows        = 11
	DefaultSpacing     = 15.0
	DefaultFrames      = 600
	DefaultSampleEvery = 1
	DefaultFPS         = 60
	DefaultViewWidth   = 800
	DefaultViewHeight  = 600
	DefaultAddr        = ":8080"
)

var ErrInvalidConfig = errors.New("config: invalid config")

type Config struct {
	Layout  LayoutConfig  `yaml:"layout"`
	Physics PhysicsConfig `yaml:"physics"`
	Run     RunConfig     `yaml:"run"`
	View    ViewConfig    `yaml:"view"`
	Cuts    []CutConfig   `yaml:"cuts"`
}

type LayoutConfig struct {
	Columns int     `yaml:"columns"`
	Rows    int     `yaml:"rows"`
	Spacing float64 `yaml:"spacing"`
	OriginX float64 `yaml:"origin_x"`
	OriginY float64 `yaml:"origin_y"`
	Pin     string  `yaml:"pin"`
	Mass    float64 `yaml:"mass"`
}

type PhysicsConfig struct {
	Gravity         float64    `yaml:"gravity"`
	SpringConstant  float64    `yaml:"spring_constant"`
	Damping         float64    `yaml:"damping"`
	MaxAcceleration float64    `yaml:"max_acceleration"`
	MaxVelocity     float64    `yaml:"max_velocity"`
	TimeStep        float64    `yaml:"time_step"`
	CutThreshold    float64    `yaml:"cut_threshold"`
	Stiffness       float64    `yaml:"stiffness"`
	RelaxIterations int        `yaml:"relax_iterations"`
	Workers         int        `yaml:"workers"`
	Wind            WindConfig `yaml:"wind"`
}

type WindConfig struct {
	Strength float64 `yaml:"strength"`
	Scale    float64 `yaml:"scale"`
	Speed    float64 `yaml:"speed"`
	Seed     int64   `yaml:"seed"`
}

type RunConfig struct {
	Frames      int  `yaml:"frames"`
	SampleEvery int  `yaml:"sample_every"`
	Validate    bool `yaml:"validate"`
}

type ViewConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	FPS    int    `yaml:"fps"`
	Center bool   `yaml:"center"`
	Addr   string `yaml:"addr"`
}

// CutConfig schedules a cut at X,Y before the given frame is stepped.
type CutConfig struct {
	Frame int     `yaml:"frame"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
}

func DefaultConfig() *Config {
	p := cloth.DefaultParams()
	return &Config{
		Layout: LayoutConfig{
			Columns: DefaultColumns,
			Rows:    DefaultRows,
			Spacing: DefaultSpacing,
			Pin:     string(cloth.PinAlternate),
			Mass:    cloth.DefaultMass,
		},
		Physics: PhysicsConfig{
			Gravity:         p.Gravity,
			SpringConstant:  p.SpringConstant,
			Damping:         p.Damping,
			MaxAcceleration: p.MaxAcceleration,
			MaxVelocity:     p.MaxVelocity,
			TimeStep:        p.TimeStep,
			CutThreshold:    p.CutThreshold,
			Stiffness:       p.Stiffness,
			RelaxIterations: p.RelaxIterations,
			Wind: WindConfig{
				Strength: p.Wind.Strength,
				Scale:    p.Wind.Scale,
				Speed:    p.Wind.Speed,
				Seed:     p.Wind.Seed,
			},
		},
		Run: RunConfig{
			Frames:      DefaultFrames,
			SampleEvery: DefaultSampleEvery,
			Validate:    true,
		},
		View: ViewConfig{
			Width:  DefaultViewWidth,
			Height: DefaultViewHeight,
			FPS:    DefaultFPS,
			Center: true,
			Addr:   DefaultAddr,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.ClothLayout().Validate(); err != nil {
		return err
	}
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if c.Run.Frames < 0 {
		return fmt.Errorf("%w: frames must not be negative, got %d", ErrInvalidConfig, c.Run.Frames)
	}
	if c.Run.SampleEvery < 0 {
		return fmt.Errorf("%w: sample_every must not be negative, got %d", ErrInvalidConfig, c.Run.SampleEvery)
	}
	for i, cut := range c.Cuts {
		if cut.Frame < 0 {
			return fmt.Errorf("%w: cut %d has negative frame %d", ErrInvalidConfig, i, cut.Frame)
		}
	}
	return nil
}

// ClothLayout converts the layout section. With View.Center set, the origin
// is computed to centre the sheet in the view instead of taken from the file.
func (c *Config) ClothLayout() cloth.Layout {
	origin := cloth.V(c.Layout.OriginX, c.Layout.OriginY)
	if c.View.Center && c.View.Width > 0 && c.View.Height > 0 {
		origin = cloth.CenteredOrigin(c.Layout.Columns, c.Layout.Rows, c.Layout.Spacing,
			float64(c.View.Width), float64(c.View.Height))
	}
	return cloth.Layout{
		Columns: c.Layout.Columns,
		Rows:    c.Layout.Rows,
		Spacing: c.Layout.Spacing,
		Origin:  origin,
		Pin:     cloth.PinMode(c.Layout.Pin),
		Mass:    c.Layout.Mass,
	}
}

func (c *Config) Params() cloth.Params {
	ph := c.Physics
	return cloth.Params{
		Gravity:         ph.Gravity,
		SpringConstant:  ph.SpringConstant,
		Damping:         ph.Damping,
		MaxAcceleration: ph.MaxAcceleration,
		MaxVelocity:     ph.MaxVelocity,
		TimeStep:        ph.TimeStep,
		CutThreshold:    ph.CutThreshold,
		Stiffness:       ph.Stiffness,
		RelaxIterations: ph.RelaxIterations,
		Workers:         ph.Workers,
		Wind: cloth.WindParams{
			Strength: ph.Wind.Strength,
			Scale:    ph.Wind.Scale,
			Speed:    ph.Wind.Speed,
			Seed:     ph.Wind.Seed,
		},
	}
}

// NewSimulation builds a simulation from the config.
func (c *Config) NewSimulation() (*cloth.Simulation, error) {
	return cloth.New(c.ClothLayout(), c.Params())
}
