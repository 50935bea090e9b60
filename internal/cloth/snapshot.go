package cloth

// ParticleState is a copy of one particle, for readers outside the step.
type ParticleState struct {
	Position Vec2    `json:"position"`
	Velocity Vec2    `json:"velocity"`
	Mass     float64 `json:"mass"`
	Pinned   bool    `json:"pinned"`
}

// Segment is a constraint resolved to its endpoint positions.
type Segment struct {
	A          Coord   `json:"a"`
	B          Coord   `json:"b"`
	From       Vec2    `json:"from"`
	To         Vec2    `json:"to"`
	RestLength float64 `json:"rest_length"`
}

// Length is the current length of the segment.
func (s Segment) Length() float64 { return s.From.Dist(s.To) }

// Snapshot is a deep copy of the simulation state after a frame. It shares
// nothing with the simulation, so it stays valid across later cuts and steps.
type Snapshot struct {
	Frame              int               `json:"frame"`
	Columns            int               `json:"columns"`
	Rows               int               `json:"rows"`
	Spacing            float64           `json:"spacing"`
	Origin             Vec2              `json:"origin"`
	Particles          [][]ParticleState `json:"particles"`
	Segments           []Segment         `json:"segments"`
	InitialConstraints int               `json:"initial_constraints"`
}

func (g *Grid) snapshot(frame int) *Snapshot {
	s := &Snapshot{
		Frame:              frame,
		Columns:            g.columns,
		Rows:               g.rows,
		Spacing:            g.spacing,
		Origin:             g.origin,
		Particles:          make([][]ParticleState, g.rows),
		Segments:           make([]Segment, len(g.constraints)),
		InitialConstraints: g.initial,
	}
	for row := 0; row < g.rows; row++ {
		s.Particles[row] = make([]ParticleState, g.columns)
		for col := 0; col < g.columns; col++ {
			p := g.At(Coord{col, row})
			s.Particles[row][col] = ParticleState{
				Position: p.Position,
				Velocity: p.Velocity,
				Mass:     p.Mass,
				Pinned:   p.Pinned,
			}
		}
	}
	for i, c := range g.constraints {
		s.Segments[i] = Segment{
			A:          c.A,
			B:          c.B,
			From:       g.At(c.A).Position,
			To:         g.At(c.B).Position,
			RestLength: c.RestLength,
		}
	}
	return s
}

// At returns the particle state at c, or false if c is outside the grid.
func (s *Snapshot) At(c Coord) (ParticleState, bool) {
	if c.Row < 0 || c.Row >= len(s.Particles) || c.Col < 0 || c.Col >= len(s.Particles[c.Row]) {
		return ParticleState{}, false
	}
	return s.Particles[c.Row][c.Col], true
}

// LayoutPosition is where the particle at c started.
func (s *Snapshot) LayoutPosition(c Coord) Vec2 {
	return s.Origin.Add(Vec2{X: float64(c.Col) * s.Spacing, Y: float64(c.Row) * s.Spacing})
}

// Severed is the number of constraints cut so far.
func (s *Snapshot) Severed() int { return s.InitialConstraints - len(s.Segments) }

// Valid reports whether every particle position and velocity is finite.
func (s *Snapshot) Valid() bool {
	for _, row := range s.Particles {
		for _, p := range row {
			if !p.Position.IsValid() || !p.Velocity.IsValid() {
				return false
			}
		}
	}
	return true
}

// Bounds returns the smallest box containing every particle.
func (s *Snapshot) Bounds() (lo, hi Vec2) {
	first := true
	for _, row := range s.Particles {
		for _, p := range row {
			if first {
				lo, hi = p.Position, p.Position
				first = false
				continue
			}
			lo.X = min(lo.X, p.Position.X)
			lo.Y = min(lo.Y, p.Position.Y)
			hi.X = max(hi.X, p.Position.X)
			hi.Y = max(hi.Y, p.Position.Y)
		}
	}
	return lo, hi
}
