package viz

import (
	"math"

	"github.com/san-kum/clothsim/internal/cloth"
)

// Viewport maps a world rectangle onto a canvas of cols x rows braille cells,
// i.e. cols*2 x rows*4 sub-pixels, with a uniform scale so the cloth keeps
// its proportions. The rectangle is centred in whichever axis has slack.
type Viewport struct {
	lo         cloth.Vec2
	scale      float64
	offX, offY float64
	cols, rows int
}

func NewViewport(lo, hi cloth.Vec2, cols, rows int) Viewport {
	w := math.Max(hi.X-lo.X, 1e-9)
	h := math.Max(hi.Y-lo.Y, 1e-9)
	subW, subH := float64(cols*2), float64(rows*4)

	scale := math.Min(subW/w, subH/h)
	return Viewport{
		lo:    lo,
		scale: scale,
		offX:  (subW - w*scale) / 2,
		offY:  (subH - h*scale) / 2,
		cols:  cols,
		rows:  rows,
	}
}

// ViewportFor frames the whole view rectangle when the sheet is centred in
// one, otherwise the layout grown by two rows of drop below and a column of
// margin either side.
func ViewportFor(snap *cloth.Snapshot, viewW, viewH float64, cols, rows int) Viewport {
	if viewW > 0 && viewH > 0 {
		return NewViewport(cloth.Vec2{}, cloth.V(viewW, viewH), cols, rows)
	}
	lo, hi := snap.Bounds()
	pad := snap.Spacing
	return NewViewport(lo.Sub(cloth.V(pad, pad)), hi.Add(cloth.V(pad, pad*float64(snap.Rows))), cols, rows)
}

func (v Viewport) Scale() float64 { return v.scale }

// ToScreen returns the sub-pixel under world point p. The result may fall
// outside the canvas; Canvas.Set ignores such points.
func (v Viewport) ToScreen(p cloth.Vec2) (int, int) {
	x := v.offX + (p.X-v.lo.X)*v.scale
	y := v.offY + (p.Y-v.lo.Y)*v.scale
	return int(math.Floor(x)), int(math.Floor(y))
}

// ToWorld returns the world point at the centre of sub-pixel (x, y).
func (v Viewport) ToWorld(x, y int) cloth.Vec2 {
	return cloth.V(
		v.lo.X+(float64(x)+0.5-v.offX)/v.scale,
		v.lo.Y+(float64(y)+0.5-v.offY)/v.scale,
	)
}

// CellPoints returns the world points at the centres of the eight sub-pixels
// of cell (col, row), centre-most first.
func (v Viewport) CellPoints(col, row int) []cloth.Vec2 {
	x, y := col*2, row*4
	order := [8][2]int{{0, 1}, {1, 2}, {0, 2}, {1, 1}, {0, 0}, {1, 3}, {1, 0}, {0, 3}}
	pts := make([]cloth.Vec2, 0, len(order))
	for _, o := range order {
		pts = append(pts, v.ToWorld(x+o[0], y+o[1]))
	}
	return pts
}

func (v Viewport) Contains(col, row int) bool {
	return col >= 0 && row >= 0 && col < v.cols && row < v.rows
}
