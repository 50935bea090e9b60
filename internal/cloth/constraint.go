package cloth

import "fmt"

// Coord addresses a particle by its grid column and row.
type Coord struct {
	Col, Row int
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.Col, c.Row) }

// Constraint links two particles of a Grid by coordinate. It never owns them.
type Constraint struct {
	A, B       Coord
	RestLength float64
}

func (c Constraint) Involves(at Coord) bool {
	return c.A == at || c.B == at
}

// Other returns the endpoint opposite to at. It panics if at is not an endpoint.
func (c Constraint) Other(at Coord) Coord {
	switch at {
	case c.A:
		return c.B
	case c.B:
		return c.A
	}
	panic(fmt.Sprintf("cloth: %v is not an endpoint of constraint %v-%v", at, c.A, c.B))
}
