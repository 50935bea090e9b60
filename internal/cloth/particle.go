package cloth

// Particle is a point mass. Velocity is derived from the position history after
// each integration and is kept for reporting and metrics.
type Particle struct {
	Position Vec2
	Previous Vec2
	Velocity Vec2
	Force    Vec2
	Mass     float64
	Pinned   bool
}

func newParticle(pos Vec2, mass float64, pinned bool) Particle {
	return Particle{
		Position: pos,
		Previous: pos,
		Mass:     mass,
		Pinned:   pinned,
	}
}

// ApplyForce adds f to the force accumulated for the current step.
func (p *Particle) ApplyForce(f Vec2) {
	p.Force = p.Force.Add(f)
}
