package cloth

import "math"

// epsilon guards the projection against zero-length segments, which then
// measure to their first endpoint.
const epsilon = 1e-12

// DistanceToSegment returns the distance from p to the segment a-b.
func DistanceToSegment(p, a, b Vec2) float64 {
	v := b.Sub(a)
	w := p.Sub(a)
	t := w.Dot(v) / math.Max(v.LenSq(), epsilon)

	switch {
	case t < 0:
		return p.Dist(a)
	case t > 1:
		return p.Dist(b)
	}
	return p.Dist(a.Add(v.Scale(t)))
}

// CutNear removes the first constraint, in storage order, whose segment lies
// closer than threshold to p. It removes at most one and reports whether it did.
func (g *Grid) CutNear(p Vec2, threshold float64) bool {
	i := g.findCut(p, threshold)
	if i < 0 {
		return false
	}
	g.removeConstraint(i)
	return true
}

func (g *Grid) findCut(p Vec2, threshold float64) int {
	for i, c := range g.constraints {
		if DistanceToSegment(p, g.At(c.A).Position, g.At(c.B).Position) < threshold {
			return i
		}
	}
	return -1
}
