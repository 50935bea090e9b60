package analysis

import (
	"math"

	"github.com/san-kum/clothsim/internal/cloth"
)

type DivergenceResult struct {
	// Separation is the RMS particle distance between the two runs per frame.
	Separation []float64
	// Rate is the mean log growth of the separation per frame, measured from
	// the first frame where the runs differ.
	Rate float64
}

// Divergence runs two simulations from build, the second with param nudged by
// delta, and tracks how far apart their particles drift.
func Divergence(build Builder, param string, delta float64, frames int) (*DivergenceResult, error) {
	if frames <= 0 {
		return &DivergenceResult{}, nil
	}
	a, err := build()
	if err != nil {
		return nil, err
	}
	b, err := build()
	if err != nil {
		return nil, err
	}
	if err := b.SetParam(param, b.GetParams()[param]+delta); err != nil {
		return nil, err
	}

	res := &DivergenceResult{Separation: make([]float64, 0, frames)}
	first, firstFrame := 0.0, -1
	for f := 0; f < frames; f++ {
		a.Step()
		b.Step()

		sep := separation(a.Snapshot(), b.Snapshot())
		res.Separation = append(res.Separation, sep)
		if firstFrame < 0 && sep > 0 && !math.IsInf(sep, 0) {
			first, firstFrame = sep, f
		}
	}

	last := res.Separation[len(res.Separation)-1]
	if firstFrame >= 0 && last > 0 && frames-1 > firstFrame {
		res.Rate = math.Log(last/first) / float64(frames-1-firstFrame)
	}
	return res, nil
}

func separation(a, b *cloth.Snapshot) float64 {
	sum, n := 0.0, 0
	for r := range a.Particles {
		for c := range a.Particles[r] {
			sum += a.Particles[r][c].Position.Sub(b.Particles[r][c].Position).LenSq()
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(n))
}
