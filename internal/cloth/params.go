package cloth

import (
	"fmt"
	"math"
	"sort"
)

const (
	DefaultGravity         = 3.5
	DefaultSpringConstant  = 1.0
	DefaultDamping         = 0.2
	DefaultMaxAcceleration = 4.0
	DefaultMaxVelocity     = 10.0
	DefaultTimeStep        = 0.7
	DefaultCutThreshold    = 5.0
	DefaultMass            = 1.0
	DefaultStiffness       = 1.0
	DefaultRelaxIterations = 1
)

// Params holds the simulation-wide tunables. Positive y is down, so Gravity is
// a positive downward acceleration.
type Params struct {
	Gravity         float64
	SpringConstant  float64
	Damping         float64
	MaxAcceleration float64
	MaxVelocity     float64
	TimeStep        float64
	CutThreshold    float64

	// Stiffness is the fraction of the length error removed by one relaxation
	// pass over a free constraint.
	Stiffness       float64
	// RelaxIterations is the number of relaxation passes per step, at least 1.
	RelaxIterations int

	// Workers > 1 runs the force pass over that many goroutines.
	Workers int

	Wind WindParams
}

func DefaultParams() Params {
	return Params{
		Gravity:         DefaultGravity,
		SpringConstant:  DefaultSpringConstant,
		Damping:         DefaultDamping,
		MaxAcceleration: DefaultMaxAcceleration,
		MaxVelocity:     DefaultMaxVelocity,
		TimeStep:        DefaultTimeStep,
		CutThreshold:    DefaultCutThreshold,
		Stiffness:       DefaultStiffness,
		RelaxIterations: DefaultRelaxIterations,
		Wind:            DefaultWindParams(),
	}
}

func (p Params) Validate() error {
	finite := map[string]float64{
		"gravity":          p.Gravity,
		"spring_constant":  p.SpringConstant,
		"damping":          p.Damping,
		"max_acceleration": p.MaxAcceleration,
		"max_velocity":     p.MaxVelocity,
		"time_step":        p.TimeStep,
		"cut_threshold":    p.CutThreshold,
		"stiffness":        p.Stiffness,
		"wind_strength":    p.Wind.Strength,
	}
	for name, v := range finite {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParams, name)
		}
	}
	if p.TimeStep <= 0 {
		return fmt.Errorf("%w: time_step must be positive, got %f", ErrInvalidParams, p.TimeStep)
	}
	if p.MaxAcceleration <= 0 || p.MaxVelocity <= 0 {
		return fmt.Errorf("%w: clamps must be positive", ErrInvalidParams)
	}
	if p.SpringConstant < 0 || p.Damping < 0 || p.CutThreshold < 0 {
		return fmt.Errorf("%w: spring_constant, damping and cut_threshold must not be negative", ErrInvalidParams)
	}
	if p.Stiffness <= 0 || p.Stiffness > 1 {
		return fmt.Errorf("%w: stiffness must be in (0, 1], got %f", ErrInvalidParams, p.Stiffness)
	}
	if p.RelaxIterations < 1 {
		return fmt.Errorf("%w: relax_iterations must be at least 1, got %d", ErrInvalidParams, p.RelaxIterations)
	}
	if p.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidParams, p.Workers)
	}
	return nil
}

// GetParams lists the knobs that can be changed while a simulation runs.
func (p *Params) GetParams() map[string]float64 {
	return map[string]float64{
		"gravity":         p.Gravity,
		"spring_constant": p.SpringConstant,
		"damping":         p.Damping,
		"stiffness":       p.Stiffness,
		"cut_threshold":   p.CutThreshold,
		"wind":            p.Wind.Strength,
	}
}

// ParamNames returns the GetParams keys in a stable order.
func (p *Params) ParamNames() []string {
	params := p.GetParams()
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (p *Params) SetParam(name string, value float64) error {
	next := *p
	switch name {
	case "gravity":
		next.Gravity = value
	case "spring_constant":
		next.SpringConstant = value
	case "damping":
		next.Damping = value
	case "stiffness":
		next.Stiffness = value
	case "cut_threshold":
		next.CutThreshold = value
	case "wind":
		next.Wind.Strength = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*p = next
	return nil
}
