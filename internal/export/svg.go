package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/clothsim/internal/cloth"
)

const (
	background   = "#0a0a0a"
	segmentColor = "#00ff00"
	pinnedColor  = "#ff5555"
	freeColor    = "#c0c0c0"
)

// frame maps world coordinates onto a width x height image, keeping the aspect
// ratio and a 10% margin. Screen y grows downward, as in the simulation.
type frame struct {
	minX, minY float64
	scale      float64
	offX, offY float64
}

func newFrame(minX, minY, maxX, maxY float64, width, height int) frame {
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	scale := min(float64(width)/rangeX, float64(height)/rangeY)
	return frame{
		minX:  minX,
		minY:  minY,
		scale: scale,
		offX:  (float64(width) - rangeX*scale) / 2,
		offY:  (float64(height) - rangeY*scale) / 2,
	}
}

func (f frame) point(x, y float64) (float64, float64) {
	return f.offX + (x-f.minX)*f.scale, f.offY + (y-f.minY)*f.scale
}

func header(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))
}

// SnapshotToSVG draws every remaining segment as a line and every particle as
// a dot, pinned particles highlighted.
func SnapshotToSVG(snap *cloth.Snapshot, width, height int) string {
	if snap == nil || len(snap.Particles) == 0 {
		return ""
	}

	lo, hi := snap.Bounds()
	f := newFrame(lo.X, lo.Y, hi.X, hi.Y, width, height)

	var sb strings.Builder
	header(&sb, width, height)

	sb.WriteString(fmt.Sprintf(`<g stroke="%s" stroke-width="1">
`, segmentColor))
	for _, s := range snap.Segments {
		x1, y1 := f.point(s.From.X, s.From.Y)
		x2, y2 := f.point(s.To.X, s.To.Y)
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
`, x1, y1, x2, y2))
	}
	sb.WriteString("</g>\n")

	radius := max(1.0, f.scale*snap.Spacing*0.12)
	sb.WriteString("<g>\n")
	for _, row := range snap.Particles {
		for _, p := range row {
			color := freeColor
			if p.Pinned {
				color = pinnedColor
			}
			cx, cy := f.point(p.Position.X, p.Position.Y)
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, radius, color))
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TraceToSVG draws the path of a single particle over a run.
func TraceToSVG(xs, ys []float64, width, height int, strokeColor string) string {
	n := min(len(xs), len(ys))
	if n < 2 {
		return ""
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 0; i < n; i++ {
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}
	f := newFrame(minX, minY, maxX, maxY, width, height)

	var sb strings.Builder
	header(&sb, width, height)
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))

	for i := 0; i < n; i++ {
		x, y := f.point(xs[i], ys[i])
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
