package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/clothsim/internal/cloth"
)

func pairSnapshot(from, to cloth.Vec2, v cloth.Vec2) *cloth.Snapshot {
	return &cloth.Snapshot{
		Columns: 2,
		Rows:    1,
		Spacing: 10,
		Particles: [][]cloth.ParticleState{{
			{Position: from, Mass: 1, Pinned: true},
			{Position: to, Velocity: v, Mass: 2},
		}},
		Segments: []cloth.Segment{
			{A: cloth.Coord{Col: 0}, B: cloth.Coord{Col: 1}, From: from, To: to, RestLength: 10},
		},
		InitialConstraints: 3,
	}
}

func TestKineticEnergy(t *testing.T) {
	m := NewKineticEnergy()
	snap := pairSnapshot(cloth.V(0, 0), cloth.V(10, 0), cloth.V(3, 4))

	m.Observe(snap)
	if math.Abs(m.Value()-25) > 1e-12 {
		t.Errorf("expected energy 25, got %f", m.Value())
	}

	snap.Particles[0][1].Velocity = cloth.Vec2{}
	m.Observe(snap)
	if math.Abs(m.Value()-12.5) > 1e-12 {
		t.Errorf("expected mean energy 12.5, got %f", m.Value())
	}
	if m.Last() != 0 {
		t.Errorf("expected last energy 0, got %f", m.Last())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestStrain(t *testing.T) {
	m := NewStrain()
	m.Observe(pairSnapshot(cloth.V(0, 0), cloth.V(15, 0), cloth.Vec2{}))
	m.Observe(pairSnapshot(cloth.V(0, 0), cloth.V(12, 0), cloth.Vec2{}))

	if math.Abs(m.Value()-0.5) > 1e-12 {
		t.Errorf("expected peak strain 0.5, got %f", m.Value())
	}
	if math.Abs(m.Last()-0.2) > 1e-12 {
		t.Errorf("expected last strain 0.2, got %f", m.Last())
	}
}

func TestNonFiniteFramesSkipped(t *testing.T) {
	good := pairSnapshot(cloth.V(0, 0), cloth.V(15, 0), cloth.V(3, 4))
	bad := pairSnapshot(cloth.V(0, 0), cloth.V(math.NaN(), 0), cloth.V(math.Inf(1), 0))

	strain := NewStrain()
	energy := NewKineticEnergy()
	for _, snap := range []*cloth.Snapshot{good, bad, good} {
		strain.Observe(snap)
		energy.Observe(snap)
	}

	if math.Abs(strain.Value()-0.5) > 1e-12 {
		t.Errorf("expected peak strain 0.5 after a NaN frame, got %f", strain.Value())
	}
	if math.Abs(energy.Value()-25) > 1e-12 {
		t.Errorf("expected mean energy 25 after an Inf frame, got %f", energy.Value())
	}

	strain.Observe(bad)
	if !math.IsNaN(strain.Last()) {
		t.Errorf("last strain should report the NaN frame, got %f", strain.Last())
	}
}

func TestMaxStrainIgnoresCompression(t *testing.T) {
	snap := pairSnapshot(cloth.V(0, 0), cloth.V(5, 0), cloth.Vec2{})
	if got := MaxStrain(snap); got != 0 {
		t.Errorf("compressed segment strain = %f, want 0", got)
	}
}

func TestStability(t *testing.T) {
	m := NewStability(0.3)
	if m.Value() != 1.0 {
		t.Errorf("expected 1.0 with no samples, got %f", m.Value())
	}

	m.Observe(pairSnapshot(cloth.V(0, 0), cloth.V(10, 0), cloth.Vec2{}))
	m.Observe(pairSnapshot(cloth.V(0, 0), cloth.V(20, 0), cloth.Vec2{}))
	m.Observe(pairSnapshot(cloth.V(0, 0), cloth.V(math.NaN(), 0), cloth.Vec2{}))
	m.Observe(pairSnapshot(cloth.V(0, 0), cloth.V(11, 0), cloth.Vec2{}))

	if math.Abs(m.Value()-0.5) > 1e-12 {
		t.Errorf("expected stability 0.5, got %f", m.Value())
	}
}

func TestSagAndSevered(t *testing.T) {
	sim, err := cloth.New(cloth.Layout{Columns: 4, Rows: 3, Spacing: 10}, cloth.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}

	sag, severed := NewSag(), NewSevered()
	sag.Observe(sim.Snapshot())
	if sag.Value() != 0 {
		t.Errorf("expected no sag before stepping, got %f", sag.Value())
	}

	sim.CutNear(cloth.V(5, 0))
	for i := 0; i < 20; i++ {
		sim.Step()
	}
	snap := sim.Snapshot()
	sag.Observe(snap)
	severed.Observe(snap)

	if sag.Value() <= 0 {
		t.Errorf("expected positive sag, got %f", sag.Value())
	}
	if severed.Value() != 1 {
		t.Errorf("expected 1 severed, got %f", severed.Value())
	}
}

func TestDefault(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range Default() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 5 {
		t.Errorf("expected 5 metrics, got %d", len(seen))
	}
}
