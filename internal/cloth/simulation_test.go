package cloth_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/clothsim/internal/cloth"
)

func mustNew(layout cloth.Layout, params cloth.Params) *cloth.Simulation {
	sim, err := cloth.New(layout, params)
	Expect(err).NotTo(HaveOccurred())
	return sim
}

// relaxOnly disables every force so only the relaxation pass moves particles.
func relaxOnly() cloth.Params {
	p := cloth.DefaultParams()
	p.Gravity = 0
	p.SpringConstant = 0
	p.Damping = 0
	return p
}

var _ = Describe("Grid construction", func() {
	It("wires a 4-connected lattice", func() {
		g, err := cloth.NewGrid(cloth.Layout{Columns: 4, Rows: 3, Spacing: 10})
		Expect(err).NotTo(HaveOccurred())
		Expect(g.ConstraintCount()).To(Equal(3*3 + 4*2))
		Expect(g.InitialConstraintCount()).To(Equal(g.ConstraintCount()))

		Expect(g.ConstraintsAt(cloth.Coord{Col: 1, Row: 1})).To(HaveLen(4))
		Expect(g.ConstraintsAt(cloth.Coord{Col: 0, Row: 0})).To(HaveLen(2))
		Expect(g.ConstraintsAt(cloth.Coord{Col: 3, Row: 1})).To(HaveLen(3))
		Expect(g.Neighbors(cloth.Coord{Col: 0, Row: 0})).To(ConsistOf(
			cloth.Coord{Col: 1, Row: 0},
			cloth.Coord{Col: 0, Row: 1},
		))

		for _, c := range g.Constraints() {
			Expect(c.A).NotTo(Equal(c.B))
			Expect(g.InBounds(c.A) && g.InBounds(c.B)).To(BeTrue())
			Expect(c.RestLength).To(Equal(10.0))
		}
	})

	It("lays particles out from the origin with zero initial velocity", func() {
		origin := cloth.V(5, 7)
		g, err := cloth.NewGrid(cloth.Layout{Columns: 3, Rows: 2, Spacing: 4, Origin: origin})
		Expect(err).NotTo(HaveOccurred())

		p := g.At(cloth.Coord{Col: 2, Row: 1})
		Expect(p.Position).To(Equal(cloth.V(13, 11)))
		Expect(p.Previous).To(Equal(p.Position))
		Expect(p.Force).To(Equal(cloth.Vec2{}))
		Expect(p.Mass).To(Equal(1.0))
	})

	It("pins alternate top-row particles by default", func() {
		g, err := cloth.NewGrid(cloth.Layout{Columns: 5, Rows: 2, Spacing: 1})
		Expect(err).NotTo(HaveOccurred())
		for col := 0; col < 5; col++ {
			Expect(g.At(cloth.Coord{Col: col, Row: 0}).Pinned).To(Equal(col%2 == 0))
			Expect(g.At(cloth.Coord{Col: col, Row: 1}).Pinned).To(BeFalse())
		}
	})

	DescribeTable("pin modes",
		func(mode cloth.PinMode, want []bool) {
			g, err := cloth.NewGrid(cloth.Layout{Columns: 4, Rows: 2, Spacing: 1, Pin: mode})
			Expect(err).NotTo(HaveOccurred())
			for col, pinned := range want {
				Expect(g.At(cloth.Coord{Col: col, Row: 0}).Pinned).To(Equal(pinned))
			}
		},
		Entry("top", cloth.PinTop, []bool{true, true, true, true}),
		Entry("corners", cloth.PinCorners, []bool{true, false, false, true}),
		Entry("none", cloth.PinNone, []bool{false, false, false, false}),
	)

	DescribeTable("rejects degenerate layouts",
		func(layout cloth.Layout) {
			_, err := cloth.NewGrid(layout)
			Expect(err).To(MatchError(cloth.ErrInvalidLayout))
		},
		Entry("zero columns", cloth.Layout{Columns: 0, Rows: 3, Spacing: 1}),
		Entry("negative rows", cloth.Layout{Columns: 3, Rows: -1, Spacing: 1}),
		Entry("zero spacing", cloth.Layout{Columns: 3, Rows: 3, Spacing: 0}),
		Entry("negative spacing", cloth.Layout{Columns: 3, Rows: 3, Spacing: -2}),
		Entry("unknown pin mode", cloth.Layout{Columns: 3, Rows: 3, Spacing: 1, Pin: "sideways"}),
		Entry("NaN spacing", cloth.Layout{Columns: 3, Rows: 3, Spacing: math.NaN()}),
		Entry("Inf spacing", cloth.Layout{Columns: 3, Rows: 3, Spacing: math.Inf(1)}),
		Entry("overflowing spacing", cloth.Layout{Columns: 3, Rows: 3, Spacing: 1e200}),
		Entry("NaN mass", cloth.Layout{Columns: 3, Rows: 3, Spacing: 1, Mass: math.NaN()}),
		Entry("Inf mass", cloth.Layout{Columns: 3, Rows: 3, Spacing: 1, Mass: math.Inf(1)}),
		Entry("NaN origin", cloth.Layout{Columns: 3, Rows: 3, Spacing: 1, Origin: cloth.V(math.NaN(), 0)}),
		Entry("Inf origin", cloth.Layout{Columns: 3, Rows: 3, Spacing: 1, Origin: cloth.V(0, math.Inf(-1))}),
	)

	It("panics on an out-of-range lookup", func() {
		g, err := cloth.NewGrid(cloth.Layout{Columns: 2, Rows: 2, Spacing: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(func() { g.At(cloth.Coord{Col: 2, Row: 0}) }).To(Panic())
	})
})

var _ = Describe("Stepping", func() {
	It("never moves pinned particles", func() {
		sim := mustNew(cloth.Layout{Columns: 19, Rows: 11, Spacing: 15}, cloth.DefaultParams())
		before := sim.Snapshot()

		for i := 0; i < 200; i++ {
			if i%20 == 0 {
				sim.CutNear(cloth.V(float64(i), 60))
			}
			sim.Step()
		}

		after := sim.Snapshot()
		g := sim.Grid()
		for row := range before.Particles {
			for col, p := range before.Particles[row] {
				if !p.Pinned {
					continue
				}
				c := cloth.Coord{Col: col, Row: row}
				Expect(after.Particles[row][col].Position).To(Equal(p.Position))
				Expect(g.At(c).Previous).To(Equal(p.Position))
			}
		}
	})

	It("lets the free top-middle particle of a 3x3 sheet fall", func() {
		sim := mustNew(cloth.Layout{Columns: 3, Rows: 3, Spacing: 10}, cloth.DefaultParams())
		sim.Step()

		snap := sim.Snapshot()
		Expect(snap.Particles[0][0].Position).To(Equal(cloth.V(0, 0)))
		Expect(snap.Particles[0][2].Position).To(Equal(cloth.V(20, 0)))
		Expect(snap.Particles[0][1].Position.Y).To(BeNumerically(">", 0))
		Expect(snap.Particles[2][1].Position.Y).To(BeNumerically(">", 20))
		Expect(snap.Frame).To(Equal(1))
	})

	It("clamps acceleration", func() {
		params := cloth.DefaultParams()
		params.Gravity = 100
		sim := mustNew(cloth.Layout{Columns: 1, Rows: 1, Spacing: 1, Pin: cloth.PinNone}, params)
		sim.Step()

		dt := params.TimeStep
		y := sim.Snapshot().Particles[0][0].Position.Y
		Expect(y).To(BeNumerically("~", params.MaxAcceleration*dt*dt, 1e-12))
	})

	It("clamps the reported velocity", func() {
		params := cloth.DefaultParams()
		params.Damping = 0
		sim := mustNew(cloth.Layout{Columns: 1, Rows: 1, Spacing: 1, Pin: cloth.PinNone}, params)
		for i := 0; i < 100; i++ {
			sim.Step()
		}
		v := sim.Snapshot().Particles[0][0].Velocity
		Expect(v.Len()).To(BeNumerically("<=", params.MaxVelocity+1e-9))
	})

	It("damps a free fall to a terminal speed", func() {
		params := cloth.DefaultParams()
		sim := mustNew(cloth.Layout{Columns: 1, Rows: 1, Spacing: 1, Pin: cloth.PinNone}, params)
		for i := 0; i < 300; i++ {
			sim.Step()
		}
		p := sim.Grid().At(cloth.Coord{})
		perFrame := p.Position.Sub(p.Previous).Y
		Expect(perFrame).To(BeNumerically("~", params.Gravity*params.TimeStep/params.Damping, 1e-6))
	})

	It("stays finite over a long run of the default sheet", func() {
		sim := mustNew(cloth.Layout{Columns: 19, Rows: 11, Spacing: 15}, cloth.DefaultParams())
		for i := 0; i < 1000; i++ {
			sim.Step()
		}
		Expect(sim.Snapshot().Valid()).To(BeTrue())
	})

	It("gives the same forces with a parallel gather", func() {
		layout := cloth.Layout{Columns: 30, Rows: 20, Spacing: 5}
		serial := mustNew(layout, cloth.DefaultParams())
		pp := cloth.DefaultParams()
		pp.Workers = 4
		parallel := mustNew(layout, pp)

		rng := rand.New(rand.NewSource(7))
		for row := 1; row < layout.Rows; row++ {
			for col := 0; col < layout.Columns; col++ {
				c := cloth.Coord{Col: col, Row: row}
				p := serial.Grid().At(c).Position.Add(cloth.V(rng.Float64()*3, rng.Float64()*3))
				serial.Grid().Place(c, p)
				parallel.Grid().Place(c, p)
			}
		}

		serial.Stepper().AccumulateForces(serial.Grid())
		parallel.Stepper().AccumulateForces(parallel.Grid())
		for row := 0; row < layout.Rows; row++ {
			for col := 0; col < layout.Columns; col++ {
				c := cloth.Coord{Col: col, Row: row}
				a, b := serial.Grid().At(c).Force, parallel.Grid().At(c).Force
				Expect(a.Sub(b).Len()).To(BeNumerically("<", 1e-9))
			}
		}
	})

	It("blows free particles sideways when wind is on", func() {
		params := cloth.DefaultParams()
		params.Gravity = 0
		params.Wind.Strength = 2
		layout := cloth.Layout{Columns: 2, Rows: 1, Spacing: 10, Pin: cloth.PinNone}

		a, b := mustNew(layout, params), mustNew(layout, params)
		for i := 0; i < 20; i++ {
			a.Step()
			b.Step()
		}
		Expect(a.Snapshot().Particles).To(Equal(b.Snapshot().Particles))
		Expect(a.Snapshot().Particles[0][0].Position).NotTo(Equal(cloth.V(0, 0)))
	})
})

var _ = Describe("Relaxation", func() {
	var (
		sim    *cloth.Simulation
		a, b   cloth.Coord
		length func() float64
	)

	setup := func(params cloth.Params, from, to cloth.Vec2) {
		sim = mustNew(cloth.Layout{Columns: 2, Rows: 1, Spacing: 10, Pin: cloth.PinNone}, params)
		a, b = cloth.Coord{Col: 0, Row: 0}, cloth.Coord{Col: 1, Row: 0}
		sim.Grid().Place(a, from)
		sim.Grid().Place(b, to)
		length = func() float64 {
			return sim.Grid().At(a).Position.Dist(sim.Grid().At(b).Position)
		}
	}

	It("keeps the midpoint of a free pair", func() {
		setup(relaxOnly(), cloth.V(0, 0), cloth.V(16, 12))
		mid := func() cloth.Vec2 {
			return sim.Grid().At(a).Position.Add(sim.Grid().At(b).Position).Scale(0.5)
		}
		before := mid()
		sim.Stepper().Relax(sim.Grid())
		after := mid()
		Expect(after.Sub(before).Len()).To(BeNumerically("<", 1e-12))
	})

	It("converges two particles 20 apart to the rest length", func() {
		setup(relaxOnly(), cloth.V(0, 0), cloth.V(20, 0))
		iterations := 0
		for math.Abs(length()-10) >= 1e-3 && iterations < 50 {
			sim.Stepper().Relax(sim.Grid())
			iterations++
		}
		Expect(length()).To(BeNumerically("~", 10, 1e-3))
		Expect(iterations).To(BeNumerically("<=", 50))
	})

	It("shrinks the relative error by a fixed fraction per pass", func() {
		params := relaxOnly()
		params.Stiffness = 0.5
		setup(params, cloth.V(0, 0), cloth.V(30, 0))

		prevErr := math.Abs(length() - 10)
		for i := 0; i < 8; i++ {
			sim.Stepper().Relax(sim.Grid())
			err := math.Abs(length() - 10)
			Expect(err).To(BeNumerically("<", prevErr))
			Expect(err / prevErr).To(BeNumerically("~", 1-params.Stiffness, 1e-9))
			prevErr = err
		}
	})

	It("compresses toward the rest length from below", func() {
		setup(relaxOnly(), cloth.V(0, 0), cloth.V(4, 0))
		sim.Stepper().Relax(sim.Grid())
		Expect(length()).To(BeNumerically("~", 10, 1e-9))
	})

	It("leaves coincident endpoints alone", func() {
		setup(relaxOnly(), cloth.V(3, 3), cloth.V(3, 3))
		sim.Stepper().Relax(sim.Grid())
		Expect(sim.Grid().At(a).Position).To(Equal(cloth.V(3, 3)))
		Expect(sim.Grid().At(b).Position).To(Equal(cloth.V(3, 3)))
	})
})

var _ = Describe("Cutting", func() {
	It("measures distance to the clamped segment", func() {
		a, b := cloth.V(0, 0), cloth.V(10, 0)
		Expect(cloth.DistanceToSegment(a, a, b)).To(Equal(0.0))
		Expect(cloth.DistanceToSegment(b, a, b)).To(Equal(0.0))
		Expect(cloth.DistanceToSegment(cloth.V(5, 2), a, b)).To(BeNumerically("~", 2, 1e-12))
		Expect(cloth.DistanceToSegment(cloth.V(13, 4), a, b)).To(BeNumerically("~", 5, 1e-12))
		Expect(cloth.DistanceToSegment(cloth.V(-3, 4), a, b)).To(BeNumerically("~", 5, 1e-12))
	})

	It("measures a zero-length segment as a point", func() {
		p := cloth.V(3, 4)
		Expect(cloth.DistanceToSegment(p, cloth.V(0, 0), cloth.V(0, 0))).To(BeNumerically("~", 5, 1e-12))
	})

	It("cuts only within the threshold", func() {
		sim := mustNew(cloth.Layout{Columns: 2, Rows: 1, Spacing: 10, Pin: cloth.PinNone}, cloth.DefaultParams())
		Expect(sim.CutNear(cloth.V(5, 10))).To(BeFalse())
		Expect(sim.ConstraintCount()).To(Equal(1))

		Expect(sim.CutNear(cloth.V(5, 2))).To(BeTrue())
		Expect(sim.ConstraintCount()).To(Equal(0))
	})

	It("removes the first match in storage order, not the nearest", func() {
		sim := mustNew(cloth.Layout{Columns: 3, Rows: 1, Spacing: 10, Pin: cloth.PinNone}, cloth.DefaultParams())
		// (11,0) is 1 from the first segment and on top of the second.
		Expect(sim.CutNear(cloth.V(11, 0))).To(BeTrue())

		left := sim.Grid().Constraints()
		Expect(left).To(HaveLen(1))
		Expect(left[0].A).To(Equal(cloth.Coord{Col: 1, Row: 0}))
		Expect(left[0].B).To(Equal(cloth.Coord{Col: 2, Row: 0}))
	})

	It("leaves everything untouched on a miss", func() {
		sim := mustNew(cloth.Layout{Columns: 5, Rows: 4, Spacing: 10}, cloth.DefaultParams())
		sim.Step()
		before := sim.Snapshot()
		Expect(sim.CutNear(cloth.V(500, 500))).To(BeFalse())
		Expect(sim.Snapshot()).To(Equal(before))
	})

	It("never grows the constraint list", func() {
		sim := mustNew(cloth.Layout{Columns: 10, Rows: 8, Spacing: 10}, cloth.DefaultParams())
		rng := rand.New(rand.NewSource(3))
		count := sim.ConstraintCount()
		for i := 0; i < 300; i++ {
			sim.CutNear(cloth.V(rng.Float64()*100, rng.Float64()*80))
			sim.Step()
			Expect(sim.ConstraintCount()).To(BeNumerically("<=", count))
			count = sim.ConstraintCount()
		}
		Expect(sim.Snapshot().Severed()).To(Equal(sim.Snapshot().InitialConstraints - count))
	})

	It("drops a severed particle free of its anchor", func() {
		params := cloth.DefaultParams()
		sim := mustNew(cloth.Layout{Columns: 1, Rows: 2, Spacing: 10}, params)
		Expect(sim.CutNear(cloth.V(0, 5))).To(BeTrue())
		for i := 0; i < 10; i++ {
			sim.Step()
		}
		Expect(sim.Snapshot().Particles[1][0].Position.Y).To(BeNumerically(">", 20))
	})
})

var _ = Describe("Params", func() {
	It("rejects invalid tunables at construction", func() {
		params := cloth.DefaultParams()
		params.TimeStep = 0
		_, err := cloth.New(cloth.Layout{Columns: 2, Rows: 2, Spacing: 1}, params)
		Expect(err).To(MatchError(cloth.ErrInvalidParams))
	})

	It("requires at least one relaxation pass", func() {
		params := cloth.DefaultParams()
		params.RelaxIterations = 0
		_, err := cloth.New(cloth.Layout{Columns: 2, Rows: 2, Spacing: 1}, params)
		Expect(err).To(MatchError(cloth.ErrInvalidParams))
	})

	It("changes live knobs by name", func() {
		sim := mustNew(cloth.Layout{Columns: 2, Rows: 2, Spacing: 1}, cloth.DefaultParams())
		Expect(sim.SetParam("gravity", 9)).To(Succeed())
		Expect(sim.Params().Gravity).To(Equal(9.0))
		Expect(sim.GetParams()).To(HaveKeyWithValue("gravity", 9.0))

		Expect(sim.SetParam("warp", 1)).To(MatchError(cloth.ErrUnknownParam))
		Expect(sim.SetParam("stiffness", 2)).To(MatchError(cloth.ErrInvalidParams))
		Expect(sim.Params().Stiffness).To(Equal(cloth.DefaultStiffness))
	})
})
