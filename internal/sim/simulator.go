package sim

import (
	"context"
	"fmt"
	"sort"

	"github.com/san-kum/clothsim/internal/cloth"
)

type Simulator struct {
	cloth     *cloth.Simulation
	metrics   []Metric
	observers []Observer
}

func New(c *cloth.Simulation) *Simulator {
	return &Simulator{
		cloth:     c,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Cloth returns the simulation being driven.
func (s *Simulator) Cloth() *cloth.Simulation { return s.cloth }

// Run advances the cloth cfg.Frames times. Scheduled cuts for a frame are
// applied before it is stepped, so a removed constraint never contributes
// force in that frame.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	sampleEvery := cfg.SampleEvery
	if sampleEvery == 0 {
		sampleEvery = 1
	}
	cuts := make([]Cut, len(cfg.Cuts))
	copy(cuts, cfg.Cuts)
	sort.SliceStable(cuts, func(i, j int) bool { return cuts[i].Frame < cuts[j].Frame })

	result := &Result{
		Frames:  make([]int, 0, cfg.Frames/sampleEvery+1),
		Series:  make(map[string][]float64),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	snap := s.cloth.Snapshot()
	trace := cloth.Coord{Col: snap.Columns / 2, Row: snap.Rows - 1}
	s.observe(snap)
	s.sample(result, snap, trace)

	next := 0
	for i := 0; i < cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			result.Final = snap
			return result, ctx.Err()
		default:
		}

		for next < len(cuts) && cuts[next].Frame <= i {
			if s.cloth.CutNear(cuts[next].Point) {
				result.CutsApplied++
			}
			next++
		}

		s.cloth.Step()
		result.StepsTaken++

		snap = s.cloth.Snapshot()
		if cfg.ValidateState && !snap.Valid() {
			result.Errors = append(result.Errors, SimError{Frame: snap.Frame, Message: "invalid state (NaN/Inf)"})
			break
		}
		s.observe(snap)
		if (i+1)%sampleEvery == 0 {
			s.sample(result, snap, trace)
		}
	}

	result.Final = snap
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", cfg.Frames)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("sample interval must not be negative, got %d", cfg.SampleEvery)
	}
	for _, c := range cfg.Cuts {
		if c.Frame < 0 {
			return fmt.Errorf("cut scheduled at negative frame %d", c.Frame)
		}
	}
	return nil
}

func (s *Simulator) observe(snap *cloth.Snapshot) {
	for _, m := range s.metrics {
		m.Observe(snap)
	}
	for _, o := range s.observers {
		o.OnFrame(snap)
	}
}

func (s *Simulator) sample(result *Result, snap *cloth.Snapshot, trace cloth.Coord) {
	result.Frames = append(result.Frames, snap.Frame)
	for _, m := range s.metrics {
		v := m.Value()
		if sm, ok := m.(Sampler); ok {
			v = sm.Last()
		}
		result.Series[m.Name()] = append(result.Series[m.Name()], v)
	}
	if p, ok := snap.At(trace); ok {
		result.Series["trace_x"] = append(result.Series["trace_x"], p.Position.X)
		result.Series["trace_y"] = append(result.Series["trace_y"], p.Position.Y)
	}
}
