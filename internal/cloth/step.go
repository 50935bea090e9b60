package cloth

// Stepper advances a Grid by one fixed time step: spring forces, Verlet
// integration, then positional relaxation. The order matters; relaxation
// must see the integrated positions.
type Stepper struct {
	params Params
	wind   *Wind
	gather *gatherBuffers
}

func NewStepper(params Params) *Stepper {
	return &Stepper{params: params}
}

func (s *Stepper) Params() Params     { return s.params }
func (s *Stepper) SetParams(p Params) { s.params = p }

// Step runs the three passes in order.
func (s *Stepper) Step(g *Grid) {
	s.AccumulateForces(g)
	s.Integrate(g)
	s.Relax(g)
}

// AccumulateForces adds each constraint's Hooke force to both endpoints,
// pinned ones included; pinned particles simply never integrate it.
func (s *Stepper) AccumulateForces(g *Grid) {
	if s.params.Workers > 1 && len(g.constraints) >= minParallelConstraints {
		s.accumulateParallel(g, s.params.Workers)
		return
	}
	k := s.params.SpringConstant
	for _, c := range g.constraints {
		f := springForce(g, c, k)
		g.At(c.A).ApplyForce(f)
		g.At(c.B).ApplyForce(f.Scale(-1))
	}
}

// springForce is the force on c.A; c.B receives its negation.
func springForce(g *Grid, c Constraint, k float64) Vec2 {
	d := g.At(c.B).Position.Sub(g.At(c.A).Position)
	l := d.Len()
	if l == 0 {
		return Vec2{}
	}
	return d.Scale(k * (l - c.RestLength) / l)
}

// Integrate applies gravity, wind and damping to every free particle, clamps
// the resulting acceleration and takes a Verlet step. Accumulated forces are
// cleared on every particle.
func (s *Stepper) Integrate(g *Grid) {
	p := s.params
	dt := p.TimeStep
	dt2 := dt * dt

	var wind *Wind
	if p.Wind.Strength != 0 {
		wind = s.windField()
	}

	g.each(func(pt *Particle) {
		if pt.Pinned {
			pt.Force = Vec2{}
			return
		}

		f := pt.Force.Add(Vec2{Y: p.Gravity * pt.Mass})
		if wind != nil {
			f = f.Add(wind.Force(p.Wind, pt.Position))
		}
		vel := pt.Position.Sub(pt.Previous).Scale(1 / dt)
		f = f.Add(vel.Scale(-p.Damping))

		acc := f.Scale(1 / pt.Mass).ClampLen(p.MaxAcceleration)
		next := pt.Position.Scale(2).Sub(pt.Previous).Add(acc.Scale(dt2))

		pt.Previous = pt.Position
		pt.Position = next
		pt.Velocity = next.Sub(pt.Previous).Scale(1 / dt).ClampLen(p.MaxVelocity)
		pt.Force = Vec2{}
	})

	if wind != nil {
		wind.Advance(dt)
	}
}

func (s *Stepper) windField() *Wind {
	if s.wind == nil {
		s.wind = NewWind(s.params.Wind.Seed)
	}
	return s.wind
}

// Relax nudges the endpoints of every constraint toward its rest length.
func (s *Stepper) Relax(g *Grid) {
	for i := 0; i < s.params.RelaxIterations; i++ {
		for _, c := range g.constraints {
			relaxConstraint(g, c, s.params.Stiffness)
		}
	}
}

// relaxConstraint moves each free endpoint by half of the stiffness-scaled
// error, in opposite directions, so the pair's midpoint is preserved.
func relaxConstraint(g *Grid, c Constraint, stiffness float64) {
	a, b := g.At(c.A), g.At(c.B)
	d := b.Position.Sub(a.Position)
	l := d.Len()
	if l == 0 {
		return
	}
	offset := d.Scale((l - c.RestLength) / l * 0.5 * stiffness)
	if !a.Pinned {
		a.Position = a.Position.Add(offset)
	}
	if !b.Pinned {
		b.Position = b.Position.Sub(offset)
	}
}
