package analysis

type Point struct {
	X, Y float64
}

// PhasePortrait holds a 2D trace, typically the tracked particle's position
// or its position against its per-sample displacement.
type PhasePortrait struct {
	Points []Point
}

// NewPhasePortrait pairs xs and ys up to the shorter of the two.
func NewPhasePortrait(xs, ys []float64) *PhasePortrait {
	n := min(len(xs), len(ys))
	p := &PhasePortrait{Points: make([]Point, n)}
	for i := 0; i < n; i++ {
		p.Points[i] = Point{X: xs[i], Y: ys[i]}
	}
	return p
}

// Displacement returns the per-sample differences of data; the first entry is 0.
func Displacement(data []float64) []float64 {
	out := make([]float64, len(data))
	for i := 1; i < len(data); i++ {
		out[i] = data[i] - data[i-1]
	}
	return out
}

// ToASCII plots the portrait with y growing downward, matching screen
// coordinates. Zero lines are drawn where they fall inside the plot.
func (p *PhasePortrait) ToASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width <= 1 || height <= 1 {
		return ""
	}

	lo, hi := p.Points[0], p.Points[0]
	for _, pt := range p.Points[1:] {
		lo = Point{min(lo.X, pt.X), min(lo.Y, pt.Y)}
		hi = Point{max(hi.X, pt.X), max(hi.Y, pt.Y)}
	}
	ax := newAxis(lo.X, hi.X, width, 0.1)
	ay := newAxis(lo.Y, hi.Y, height, 0.1)

	plot := newTextPlot(width, height)
	for _, pt := range p.Points {
		col, _ := ax.cell(pt.X)
		row, _ := ay.cell(pt.Y)
		plot.mark(col, row, '•', false)
	}

	if col, ok := ax.cell(0); ok {
		for row := range height {
			plot.mark(col, row, '│', true)
		}
	}
	if row, ok := ay.cell(0); ok {
		for col := range width {
			plot.mark(col, row, '─', true)
		}
	}
	return plot.String()
}
