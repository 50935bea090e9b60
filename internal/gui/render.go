package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/clothsim/internal/cloth"
)

func vec(p cloth.Vec2) rl.Vector2 {
	return rl.NewVector2(float32(p.X), float32(p.Y))
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	if a.InMenu {
		a.drawMenu()
	} else {
		a.drawCloth()
		a.DrawHUD()
	}

	rl.EndDrawing()
}

// drawCloth draws in world coordinates, which are window pixels.
func (a *App) drawCloth() {
	for _, s := range a.Snap.Segments {
		rl.DrawLineV(vec(s.From), vec(s.To), ColThread)
	}
	for _, row := range a.Snap.Particles {
		for _, p := range row {
			if p.Pinned {
				rl.DrawCircleV(vec(p.Position), 3, ColPin)
			} else {
				rl.DrawCircleV(vec(p.Position), 1.5, ColThread)
			}
		}
	}

	threshold := float32(a.Sim.Params().CutThreshold)
	rl.DrawCircleLinesV(rl.GetMousePosition(), threshold, ColCursor)
}

func (a *App) DrawHUD() {
	a.drawText("clothsim", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.Title), 160, 34, 16, ColText)

	status, col := "RUNNING", ColSelect
	if !a.Running {
		status, col = "PAUSED", ColTextDim
	}
	a.drawText(status, int(a.Width)-130, 30, 16, col)

	a.drawText(fmt.Sprintf("frame %d  threads %d/%d  cuts %d",
		a.Snap.Frame, len(a.Snap.Segments), a.Snap.InitialConstraints, a.Cuts), 30, 64, 14, ColText)

	y := 90
	params := a.Sim.GetParams()
	for i, k := range a.ParamKeys {
		line := fmt.Sprintf("  %-16s %.3f", k, params[k])
		c := ColTextDim
		if i == a.ParamSel {
			line, c = fmt.Sprintf("> %-16s %.3f", k, params[k]), ColText
		}
		a.drawText(line, 30, y, 14, c)
		y += 18
	}

	a.DrawTelemetry()
	if a.Status != "" {
		a.drawText(a.Status, 30, int(a.Height)-70, 14, ColPin)
	}
	a.drawText("[CLICK] CUT  [SPACE] PAUSE  [N] STEP  [R] RESET  [TAB/ARROWS] TUNE  [ESC] MENU  [Q] QUIT",
		30, int(a.Height)-30, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), int(a.Width)-90, int(a.Height)-30, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

// DrawTelemetry plots recent peak strain in the bottom right corner.
func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	width, height := 300, 50
	rectX, rectY := int(a.Width)-width-40, int(a.Height)-height-60

	lo, hi := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		lo, hi = min(lo, v), max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - lo) / (hi - lo)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColThread)
	a.drawText(fmt.Sprintf("strain %.3f", a.Telemetry[len(a.Telemetry)-1]), rectX, rectY-18, 14, ColText)
}

func (a *App) drawMenu() {
	a.drawText("clothsim", 50, 50, 40, ColSelect)
	a.drawText("Select Preset", 50, 100, 16, ColTextDim)

	y := 160
	for i, name := range a.Presets {
		if i == a.Selected {
			a.drawText(fmt.Sprintf("> %s", name), 50, y, 20, ColSelect)
		} else {
			a.drawText(fmt.Sprintf("  %s", name), 50, y, 20, ColText)
		}
		y += 28
	}
	if a.Status != "" {
		a.drawText(a.Status, 50, y+20, 14, ColPin)
	}

	a.drawText("ARROWS: NAVIGATE  ENTER: SELECT  Q: QUIT", int(a.Width)-430, int(a.Height)-40, 14, ColTextDim)
}
