package cloth

import (
	"math"
	"testing"
)

func TestVec2_ClampLen(t *testing.T) {
	tests := []struct {
		name  string
		v     Vec2
		limit float64
		want  Vec2
	}{
		{"under", Vec2{3, 4}, 10, Vec2{3, 4}},
		{"exact", Vec2{3, 4}, 5, Vec2{3, 4}},
		{"over", Vec2{6, 8}, 5, Vec2{3, 4}},
		{"zero", Vec2{}, 1, Vec2{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.ClampLen(tt.limit)
			if got.Sub(tt.want).Len() > 1e-12 {
				t.Errorf("ClampLen(%v) = %v, want %v", tt.limit, got, tt.want)
			}
		})
	}
}

func TestVec2_IsValid(t *testing.T) {
	if !(Vec2{1, 2}).IsValid() {
		t.Error("finite vector reported invalid")
	}
	if (Vec2{math.NaN(), 0}).IsValid() {
		t.Error("NaN vector reported valid")
	}
	if (Vec2{0, math.Inf(-1)}).IsValid() {
		t.Error("Inf vector reported valid")
	}
}

func TestConstraint_Other(t *testing.T) {
	c := Constraint{A: Coord{0, 0}, B: Coord{1, 0}, RestLength: 1}

	if got := c.Other(Coord{0, 0}); got != (Coord{1, 0}) {
		t.Errorf("Other(A) = %v", got)
	}
	if got := c.Other(Coord{1, 0}); got != (Coord{0, 0}) {
		t.Errorf("Other(B) = %v", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("Other on a non-endpoint did not panic")
		}
	}()
	c.Other(Coord{5, 5})
}

func TestSpringForce(t *testing.T) {
	g, err := NewGrid(Layout{Columns: 2, Rows: 1, Spacing: 10, Pin: PinNone})
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	c := g.constraints[0]

	g.At(c.B).Position = Vec2{15, 0}
	f := springForce(g, c, 2)
	if math.Abs(f.X-10) > 1e-12 || f.Y != 0 {
		t.Errorf("stretched force = %v, want (10, 0)", f)
	}

	g.At(c.B).Position = g.At(c.A).Position
	if f := springForce(g, c, 2); f != (Vec2{}) {
		t.Errorf("coincident endpoints force = %v, want zero", f)
	}
}

func TestCenteredOrigin(t *testing.T) {
	o := CenteredOrigin(19, 11, 15, 800, 600)
	if math.Abs(o.X-(400-142.5)) > 1e-9 {
		t.Errorf("x = %f", o.X)
	}
	if math.Abs(o.Y-(300-82.5)/2.5) > 1e-9 {
		t.Errorf("y = %f", o.Y)
	}
}

func TestParallelFor(t *testing.T) {
	for _, workers := range []int{1, 3, 8} {
		seen := make([]int, 10)
		parallelFor(len(seen), workers, func(start, end int) {
			for i := start; i < end; i++ {
				seen[i]++
			}
		})
		for i, n := range seen {
			if n != 1 {
				t.Errorf("workers=%d: index %d visited %d times", workers, i, n)
			}
		}
	}
}
