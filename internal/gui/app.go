package gui

import (
	"fmt"
	"sort"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/metrics"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColThread  = rl.NewColor(180, 180, 180, 255)
	ColPin     = rl.NewColor(255, 85, 85, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColCursor  = rl.NewColor(255, 255, 255, 60)
)

const maxTelemetry = 200

type App struct {
	Cfg       *config.Config
	Sim       *cloth.Simulation
	Snap      *cloth.Snapshot
	Title     string
	Width     int32
	Height    int32
	Running   bool
	InMenu    bool
	Presets   []string
	Selected  int
	ParamKeys []string
	ParamSel  int
	Cuts      int
	Telemetry []float64 // peak strain per frame
	Status    string
	Font      rl.Font
}

func initWindow(cfg *config.Config) {
	rl.InitWindow(int32(cfg.View.Width), int32(cfg.View.Height), "clothsim")
	fps := cfg.View.FPS
	if fps <= 0 {
		fps = config.DefaultFPS
	}
	rl.SetTargetFPS(int32(fps))
	rl.SetExitKey(0)
}

// loadFont prefers Liberation Mono and falls back to raylib's built-in font.
func loadFont() rl.Font {
	const path = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
	if !rl.FileExists(path) {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(path, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// NewApp creates an App. With interactive set it opens on the preset menu,
// otherwise it starts simulating cfg straight away.
func NewApp(cfg *config.Config, title string, interactive bool) (*App, error) {
	app := &App{
		Cfg:       cfg,
		Title:     title,
		Width:     int32(cfg.View.Width),
		Height:    int32(cfg.View.Height),
		InMenu:    interactive,
		Presets:   config.ListPresets(),
		Telemetry: make([]float64, 0, maxTelemetry),
		Font:      loadFont(),
	}
	if !interactive {
		if err := app.load(cfg, title); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Run opens a window simulating cfg and blocks until it is closed.
func Run(cfg *config.Config, title string) error {
	initWindow(cfg)
	defer rl.CloseWindow()
	app, err := NewApp(cfg, title, false)
	if err != nil {
		return err
	}
	app.RunLoop()
	return nil
}

// RunInteractive opens the preset menu in a window of the default size.
func RunInteractive() error {
	cfg := config.DefaultConfig()
	initWindow(cfg)
	defer rl.CloseWindow()
	app, err := NewApp(cfg, "", true)
	if err != nil {
		return err
	}
	app.RunLoop()
	return nil
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if a.Update() {
			return
		}
		a.Draw()
	}
}

// load builds a fresh simulation for cfg. Presets centre the sheet in the
// open window rather than the one they were written for.
func (a *App) load(cfg *config.Config, title string) error {
	cfg.View.Width, cfg.View.Height = int(a.Width), int(a.Height)
	s, err := cfg.NewSimulation()
	if err != nil {
		return err
	}

	a.Cfg, a.Title, a.Sim = cfg, title, s
	a.Snap = s.Snapshot()
	a.Running = true
	a.Cuts = 0
	a.Telemetry = a.Telemetry[:0]
	a.Status = ""

	a.ParamKeys = a.ParamKeys[:0]
	for k := range s.GetParams() {
		a.ParamKeys = append(a.ParamKeys, k)
	}
	sort.Strings(a.ParamKeys)
	a.ParamSel = min(a.ParamSel, len(a.ParamKeys)-1)
	return nil
}

// Update handles one frame of input and advances the simulation. It reports
// whether the app should quit.
func (a *App) Update() bool {
	if a.InMenu {
		return a.updateMenu()
	}

	switch {
	case rl.IsKeyPressed(rl.KeyQ):
		return true
	case rl.IsKeyPressed(rl.KeyEscape):
		a.InMenu = true
		return false
	case rl.IsKeyPressed(rl.KeySpace):
		a.Running = !a.Running
	case rl.IsKeyPressed(rl.KeyR):
		if err := a.load(a.Cfg, a.Title); err != nil {
			a.Status = err.Error()
		}
	case rl.IsKeyPressed(rl.KeyTab) && len(a.ParamKeys) > 0:
		a.ParamSel = (a.ParamSel + 1) % len(a.ParamKeys)
	case rl.IsKeyPressed(rl.KeyUp):
		a.tune(1.05)
	case rl.IsKeyPressed(rl.KeyDown):
		a.tune(0.95)
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		m := rl.GetMousePosition()
		if a.Sim.CutNear(cloth.V(float64(m.X), float64(m.Y))) {
			a.Cuts++
		}
	}

	if a.Running || rl.IsKeyPressed(rl.KeyN) {
		a.Sim.Step()
		a.Telemetry = append(a.Telemetry, metrics.MaxStrain(a.Sim.Snapshot()))
		if len(a.Telemetry) > maxTelemetry {
			a.Telemetry = a.Telemetry[1:]
		}
	}
	a.Snap = a.Sim.Snapshot()
	if !a.Snap.Valid() {
		a.Running = false
		a.Status = "state went NaN/Inf; press R to reset"
	}
	return false
}

func (a *App) updateMenu() bool {
	switch {
	case rl.IsKeyPressed(rl.KeyQ):
		return true
	case rl.IsKeyPressed(rl.KeyUp) && a.Selected > 0:
		a.Selected--
	case rl.IsKeyPressed(rl.KeyDown) && a.Selected < len(a.Presets)-1:
		a.Selected++
	case rl.IsKeyPressed(rl.KeyEscape) && a.Sim != nil:
		a.InMenu = false
	case rl.IsKeyPressed(rl.KeyEnter):
		name := a.Presets[a.Selected]
		if err := a.load(config.GetPreset(name), name); err != nil {
			a.Status = err.Error()
			return false
		}
		a.InMenu = false
	}
	return false
}

func (a *App) tune(factor float64) {
	if len(a.ParamKeys) == 0 {
		return
	}
	key := a.ParamKeys[a.ParamSel]
	val := a.Sim.GetParams()[key]
	if val == 0 && factor > 1 {
		val = 0.01
	}
	if err := a.Sim.SetParam(key, val*factor); err != nil {
		a.Status = err.Error()
		return
	}
	a.Status = fmt.Sprintf("%s = %.3f", key, val*factor)
}
