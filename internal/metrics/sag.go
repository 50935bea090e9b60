package metrics

import "github.com/san-kum/clothsim/internal/cloth"

// Sag is the mean downward drop of the bottom row from its layout position,
// as of the last observed frame.
type Sag struct {
	name string
	last float64
}

func NewSag() *Sag { return &Sag{name: "sag"} }

func (s *Sag) Name() string { return s.name }

func (s *Sag) Observe(snap *cloth.Snapshot) {
	if snap.Rows == 0 || snap.Columns == 0 {
		return
	}
	row := snap.Rows - 1
	total := 0.0
	for col, p := range snap.Particles[row] {
		total += p.Position.Y - snap.LayoutPosition(cloth.Coord{Col: col, Row: row}).Y
	}
	s.last = total / float64(snap.Columns)
}

func (s *Sag) Value() float64 { return s.last }
func (s *Sag) Last() float64  { return s.last }
func (s *Sag) Reset()         { s.last = 0 }

// Severed reports how many constraints have been cut.
type Severed struct {
	name string
	last int
}

func NewSevered() *Severed { return &Severed{name: "severed"} }

func (s *Severed) Name() string                 { return s.name }
func (s *Severed) Observe(snap *cloth.Snapshot) { s.last = snap.Severed() }
func (s *Severed) Value() float64               { return float64(s.last) }
func (s *Severed) Last() float64                { return float64(s.last) }
func (s *Severed) Reset()                       { s.last = 0 }
