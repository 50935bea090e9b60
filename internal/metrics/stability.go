package metrics

import (
	"math"

	"github.com/san-kum/clothsim/internal/cloth"
)

// Strain tracks the largest relative stretch (length-rest)/rest of any
// constraint over the run. Non-finite frames are left out of the peak.
type Strain struct {
	name string
	peak float64
	last float64
}

func NewStrain() *Strain {
	return &Strain{name: "strain"}
}

func (s *Strain) Name() string { return s.name }

func (s *Strain) Observe(snap *cloth.Snapshot) {
	s.last = MaxStrain(snap)
	if finite(s.last) {
		s.peak = max(s.peak, s.last)
	}
}

func (s *Strain) Value() float64 { return s.peak }
func (s *Strain) Last() float64  { return s.last }

func (s *Strain) Reset() {
	s.peak = 0
	s.last = 0
}

// MaxStrain returns the largest relative stretch among the live segments.
func MaxStrain(snap *cloth.Snapshot) float64 {
	peak := 0.0
	for _, seg := range snap.Segments {
		if seg.RestLength == 0 {
			continue
		}
		peak = max(peak, (seg.Length()-seg.RestLength)/seg.RestLength)
	}
	return peak
}

// Stability is the fraction of observed frames that were finite and kept
// every constraint under threshold strain.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string { return s.name }

func (s *Stability) Observe(snap *cloth.Snapshot) {
	s.samples++
	if !snap.Valid() || MaxStrain(snap) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
