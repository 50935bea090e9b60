package cloth

// Simulation is a cloth sheet advanced once per frame. It is not safe for
// concurrent use; one goroutine drives CutNear and Step.
type Simulation struct {
	grid    *Grid
	stepper *Stepper
	params  Params
	frame   int
}

func New(layout Layout, params Params) (*Simulation, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	grid, err := NewGrid(layout)
	if err != nil {
		return nil, err
	}
	return &Simulation{
		grid:    grid,
		stepper: NewStepper(params),
		params:  params,
	}, nil
}

// Step advances the simulation by one time step.
func (s *Simulation) Step() {
	s.stepper.Step(s.grid)
	s.frame++
}

// CutNear removes at most one constraint near p, using the configured
// threshold, and reports whether one was removed.
func (s *Simulation) CutNear(p Vec2) bool {
	return s.grid.CutNear(p, s.params.CutThreshold)
}

// Snapshot returns a deep copy of the current state for rendering.
func (s *Simulation) Snapshot() *Snapshot {
	return s.grid.snapshot(s.frame)
}

func (s *Simulation) Frame() int           { return s.frame }
func (s *Simulation) Params() Params       { return s.params }
func (s *Simulation) ConstraintCount() int { return s.grid.ConstraintCount() }

// SetParam changes one live tunable by name.
func (s *Simulation) SetParam(name string, value float64) error {
	if err := s.params.SetParam(name, value); err != nil {
		return err
	}
	s.stepper.SetParams(s.params)
	return nil
}

func (s *Simulation) GetParams() map[string]float64 {
	return s.params.GetParams()
}
