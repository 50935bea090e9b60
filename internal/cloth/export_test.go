package cloth

func (s *Simulation) Grid() *Grid       { return s.grid }
func (s *Simulation) Stepper() *Stepper { return s.stepper }

// Place moves the particle at c to p with zero velocity.
func (g *Grid) Place(c Coord, p Vec2) {
	pt := g.At(c)
	pt.Position = p
	pt.Previous = p
}
