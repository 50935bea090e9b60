package analysis

import "strings"

// axis maps a data range onto n character cells.
type axis struct {
	lo, span float64
	n        int
}

// newAxis pads [lo, hi] by margin times its span on both sides. A zero
// span is widened to 1.
func newAxis(lo, hi float64, n int, margin float64) axis {
	span := hi - lo
	if span == 0 {
		span = 1
	}
	return axis{lo: lo - span*margin, span: span * (1 + 2*margin), n: n}
}

func (a axis) cell(v float64) (int, bool) {
	i := int((v - a.lo) / a.span * float64(a.n-1))
	return i, i >= 0 && i < a.n
}

type textPlot [][]rune

func newTextPlot(width, height int) textPlot {
	t := make(textPlot, height)
	for i := range t {
		t[i] = []rune(strings.Repeat(" ", width))
	}
	return t
}

// mark sets a cell; with onlyBlank it leaves drawn cells alone.
func (t textPlot) mark(col, row int, r rune, onlyBlank bool) {
	if row < 0 || row >= len(t) || col < 0 || col >= len(t[row]) {
		return
	}
	if onlyBlank && t[row][col] != ' ' {
		return
	}
	t[row][col] = r
}

func (t textPlot) String() string {
	var sb strings.Builder
	for _, row := range t {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}
