package metrics

import "github.com/san-kum/clothsim/internal/cloth"

// KineticEnergy averages the total kinetic energy of the free particles over
// all observed finite frames.
type KineticEnergy struct {
	name    string
	samples int
	total   float64
	last    float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(s *cloth.Snapshot) {
	e.last = TotalKineticEnergy(s)
	if !finite(e.last) {
		return
	}
	e.total += e.last
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

// Last is the energy seen in the most recent frame.
func (e *KineticEnergy) Last() float64 { return e.last }

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.last = 0
	e.samples = 0
}

// TotalKineticEnergy sums ½mv² over the unpinned particles of s.
func TotalKineticEnergy(s *cloth.Snapshot) float64 {
	energy := 0.0
	for _, row := range s.Particles {
		for _, p := range row {
			if p.Pinned {
				continue
			}
			energy += 0.5 * p.Mass * p.Velocity.LenSq()
		}
	}
	return energy
}
