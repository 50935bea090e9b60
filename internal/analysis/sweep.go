package analysis

import (
	"errors"
	"fmt"

	"github.com/san-kum/clothsim/internal/cloth"
)

var ErrSweepRange = errors.New("analysis: invalid sweep range")

// Builder constructs a fresh simulation. Sweep and Divergence call it once per
// run so runs never share state.
type Builder func() (*cloth.Simulation, error)

// Measure reduces a snapshot to a single number, e.g. metrics.MaxStrain.
type Measure func(*cloth.Snapshot) float64

type SweepPoint struct {
	Param float64
	Value float64
	Valid bool
}

// Sweep sets param to steps evenly spaced values in [lo, hi], runs each
// simulation for settle frames and records measure of the final state.
// A run that goes NaN/Inf is kept with Valid false.
func Sweep(build Builder, param string, lo, hi float64, steps, settle int, measure Measure) ([]SweepPoint, error) {
	if steps < 2 || hi < lo || settle <= 0 {
		return nil, fmt.Errorf("%w: %d steps over [%g, %g], %d frames", ErrSweepRange, steps, lo, hi, settle)
	}

	stride := (hi - lo) / float64(steps-1)
	points := make([]SweepPoint, 0, steps)
	for i := 0; i < steps; i++ {
		v := lo + float64(i)*stride
		s, err := build()
		if err != nil {
			return nil, err
		}
		if err := s.SetParam(param, v); err != nil {
			return nil, err
		}

		for f := 0; f < settle; f++ {
			s.Step()
		}

		snap := s.Snapshot()
		pt := SweepPoint{Param: v, Valid: snap.Valid()}
		if pt.Valid {
			pt.Value = measure(snap)
		}
		points = append(points, pt)
	}
	return points, nil
}

// SweepToASCII plots one column per point, value growing upward.
func SweepToASCII(points []SweepPoint, width, height int) string {
	if len(points) == 0 || width <= 0 || height <= 1 {
		return ""
	}

	var valid []float64
	for _, p := range points {
		if p.Valid {
			valid = append(valid, p.Value)
		}
	}
	if len(valid) == 0 {
		return ""
	}
	lo, hi := valid[0], valid[0]
	for _, v := range valid {
		lo, hi = min(lo, v), max(hi, v)
	}
	ay := newAxis(lo, hi, height, 0)

	plot := newTextPlot(width, height)
	for i, p := range points {
		col := min(i*width/len(points), width-1)
		if !p.Valid {
			plot.mark(col, 0, 'x', false)
			continue
		}
		row, _ := ay.cell(p.Value)
		plot.mark(col, height-1-row, '•', false)
	}
	return plot.String()
}
