package metrics

import "github.com/san-kum/clothsim/internal/sim"

// DefaultStrainThreshold flags frames where a constraint is stretched past
// half again its rest length.
const DefaultStrainThreshold = 0.5

// Default returns a fresh set of the standard cloth metrics.
func Default() []sim.Metric {
	return []sim.Metric{
		NewKineticEnergy(),
		NewStrain(),
		NewStability(DefaultStrainThreshold),
		NewSag(),
		NewSevered(),
	}
}
