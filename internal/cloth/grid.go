package cloth

import (
	"fmt"
	"math"
	"slices"
)

type PinMode string

const (
	PinAlternate PinMode = "alternate"
	PinTop       PinMode = "top"
	PinCorners   PinMode = "corners"
	PinNone      PinMode = "none"
)

// MaxExtent bounds how far from zero a layout may reach, so squared
// distances between particles stay finite.
const MaxExtent = 1e9

// Layout describes the initial sheet: Columns x Rows particles, Spacing apart,
// with the top-left particle at Origin.
type Layout struct {
	Columns int
	Rows    int
	Spacing float64
	Origin  Vec2
	Pin     PinMode
	Mass    float64
}

func (l Layout) Validate() error {
	if l.Columns <= 0 || l.Rows <= 0 {
		return fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrInvalidLayout, l.Columns, l.Rows)
	}
	for name, v := range map[string]float64{
		"spacing":  l.Spacing,
		"mass":     l.Mass,
		"origin.x": l.Origin.X,
		"origin.y": l.Origin.Y,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidLayout, name)
		}
	}
	if l.Spacing <= 0 {
		return fmt.Errorf("%w: spacing must be positive, got %f", ErrInvalidLayout, l.Spacing)
	}
	if l.Mass < 0 {
		return fmt.Errorf("%w: mass must not be negative, got %f", ErrInvalidLayout, l.Mass)
	}
	reach := max(math.Abs(l.Origin.X), math.Abs(l.Origin.Y)) + l.Spacing*float64(max(l.Columns, l.Rows))
	if reach > MaxExtent {
		return fmt.Errorf("%w: layout reaches %g, beyond %g", ErrInvalidLayout, reach, float64(MaxExtent))
	}
	switch l.Pin {
	case "", PinAlternate, PinTop, PinCorners, PinNone:
	default:
		return fmt.Errorf("%w: unknown pin mode %q", ErrInvalidLayout, l.Pin)
	}
	return nil
}

func (l Layout) pinned(col, row int) bool {
	switch l.Pin {
	case PinTop:
		return row == 0
	case PinCorners:
		return row == 0 && (col == 0 || col == l.Columns-1)
	case PinNone:
		return false
	default:
		return row == 0 && col%2 == 0
	}
}

// CenteredOrigin places a grid horizontally centred in a width x height view,
// hanging in the upper part of it.
func CenteredOrigin(columns, rows int, spacing, width, height float64) Vec2 {
	x := width/2 - float64(columns)*spacing/2
	y := height/2 - float64(rows)*spacing/2
	return Vec2{X: x, Y: y / 2.5}
}

// Grid owns the particles and the constraints between them. Particles live in
// a flat arena indexed row*columns+col; constraints refer to them by Coord.
type Grid struct {
	columns     int
	rows        int
	spacing     float64
	origin      Vec2
	particles   []Particle
	constraints []Constraint
	initial     int
}

func NewGrid(layout Layout) (*Grid, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	mass := layout.Mass
	if mass == 0 {
		mass = DefaultMass
	}

	g := &Grid{
		columns:   layout.Columns,
		rows:      layout.Rows,
		spacing:   layout.Spacing,
		origin:    layout.Origin,
		particles: make([]Particle, 0, layout.Columns*layout.Rows),
	}

	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.columns; col++ {
			pos := g.LayoutPosition(Coord{col, row})
			g.particles = append(g.particles, newParticle(pos, mass, layout.pinned(col, row)))
		}
	}

	g.constraints = make([]Constraint, 0, 2*g.columns*g.rows)
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.columns; col++ {
			if col < g.columns-1 {
				g.constraints = append(g.constraints, Constraint{
					A:          Coord{col, row},
					B:          Coord{col + 1, row},
					RestLength: g.spacing,
				})
			}
			if row < g.rows-1 {
				g.constraints = append(g.constraints, Constraint{
					A:          Coord{col, row},
					B:          Coord{col, row + 1},
					RestLength: g.spacing,
				})
			}
		}
	}
	g.initial = len(g.constraints)

	return g, nil
}

func (g *Grid) Columns() int     { return g.columns }
func (g *Grid) Rows() int        { return g.rows }
func (g *Grid) Spacing() float64 { return g.spacing }
func (g *Grid) Origin() Vec2     { return g.origin }

// LayoutPosition is where the particle at c was placed at construction.
func (g *Grid) LayoutPosition(c Coord) Vec2 {
	return g.origin.Add(Vec2{X: float64(c.Col) * g.spacing, Y: float64(c.Row) * g.spacing})
}

func (g *Grid) InBounds(c Coord) bool {
	return c.Col >= 0 && c.Col < g.columns && c.Row >= 0 && c.Row < g.rows
}

// At returns the particle at c. An out-of-range coordinate means the constraint
// bookkeeping is broken, so it panics.
func (g *Grid) At(c Coord) *Particle {
	if !g.InBounds(c) {
		panic(fmt.Sprintf("cloth: coordinate %v outside %dx%d grid", c, g.columns, g.rows))
	}
	return &g.particles[c.Row*g.columns+c.Col]
}

// Constraints returns the live constraint list. Callers must not keep it
// across a cut.
func (g *Grid) Constraints() []Constraint { return g.constraints }

func (g *Grid) ConstraintCount() int        { return len(g.constraints) }
func (g *Grid) InitialConstraintCount() int { return g.initial }

// ConstraintsAt returns the indices of the constraints touching c.
func (g *Grid) ConstraintsAt(c Coord) []int {
	var idx []int
	for i, con := range g.constraints {
		if con.Involves(c) {
			idx = append(idx, i)
		}
	}
	return idx
}

// Neighbors returns the particles still linked to c.
func (g *Grid) Neighbors(c Coord) []Coord {
	var out []Coord
	for _, con := range g.constraints {
		if con.Involves(c) {
			out = append(out, con.Other(c))
		}
	}
	return out
}

func (g *Grid) removeConstraint(i int) {
	g.constraints = slices.Delete(g.constraints, i, i+1)
}

func (g *Grid) each(fn func(p *Particle)) {
	for i := range g.particles {
		fn(&g.particles[i])
	}
}
