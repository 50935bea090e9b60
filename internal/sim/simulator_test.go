package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/clothsim/internal/cloth"
)

func newCloth(t *testing.T, cols, rows int) *cloth.Simulation {
	t.Helper()
	c, err := cloth.New(cloth.Layout{Columns: cols, Rows: rows, Spacing: 10}, cloth.DefaultParams())
	if err != nil {
		t.Fatalf("cloth: %v", err)
	}
	return c
}

type testMetric struct {
	count    int
	segments int
}

func (m *testMetric) Name() string { return "test" }
func (m *testMetric) Observe(s *cloth.Snapshot) {
	m.count++
	m.segments = len(s.Segments)
}
func (m *testMetric) Value() float64 { return float64(m.count) }
func (m *testMetric) Last() float64  { return float64(m.segments) }
func (m *testMetric) Reset()         { m.count, m.segments = 0, 0 }

type frameRecorder struct {
	frames []int
}

func (r *frameRecorder) OnFrame(s *cloth.Snapshot) { r.frames = append(r.frames, s.Frame) }

func TestSimulatorRun(t *testing.T) {
	s := New(newCloth(t, 5, 4))
	metric := &testMetric{}
	rec := &frameRecorder{}
	s.AddMetric(metric)
	s.AddObserver(rec)

	result, err := s.Run(context.Background(), Config{Frames: 10, SampleEvery: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}
	if len(result.Frames) != 11 {
		t.Errorf("expected 11 samples, got %d", len(result.Frames))
	}
	if len(result.Series["trace_y"]) != 11 {
		t.Errorf("expected 11 trace samples, got %d", len(result.Series["trace_y"]))
	}
	if metric.count != 11 {
		t.Errorf("expected 11 observations, got %d", metric.count)
	}
	if result.Metrics["test"] != 11 {
		t.Errorf("metric not reported: %v", result.Metrics)
	}
	if len(rec.frames) != 11 || rec.frames[10] != 10 {
		t.Errorf("observer frames = %v", rec.frames)
	}
	if result.Final == nil || result.Final.Frame != 10 {
		t.Error("final snapshot missing")
	}

	first, last := result.Series["trace_y"][0], result.Series["trace_y"][10]
	if last <= first {
		t.Errorf("expected the bottom to drop, %f -> %f", first, last)
	}
}

func TestSimulatorSampling(t *testing.T) {
	s := New(newCloth(t, 3, 3))
	result, err := s.Run(context.Background(), Config{Frames: 10, SampleEvery: 5})
	if err != nil {
		t.Fatal(err)
	}
	want := []int{0, 5, 10}
	if len(result.Frames) != len(want) {
		t.Fatalf("frames = %v, want %v", result.Frames, want)
	}
	for i := range want {
		if result.Frames[i] != want[i] {
			t.Errorf("frames = %v, want %v", result.Frames, want)
		}
	}
}

func TestSimulatorScheduledCuts(t *testing.T) {
	c := newCloth(t, 2, 1)
	s := New(c)
	metric := &testMetric{}
	s.AddMetric(metric)

	cfg := Config{
		Frames: 5,
		Cuts: []Cut{
			{Frame: 3, Point: cloth.V(500, 500)},
			{Frame: 2, Point: cloth.V(5, 0)},
		},
	}
	result, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if result.CutsApplied != 1 {
		t.Errorf("expected 1 applied cut, got %d", result.CutsApplied)
	}
	series := result.Series["test"]
	if series[2] != 1 || series[3] != 0 {
		t.Errorf("cut should land before frame 3 is stepped: %v", series)
	}
	if c.ConstraintCount() != 0 {
		t.Errorf("expected constraint removed, %d left", c.ConstraintCount())
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := New(newCloth(t, 2, 2))

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero frames", Config{Frames: 0}},
		{"negative frames", Config{Frames: -1}},
		{"negative sampling", Config{Frames: 5, SampleEvery: -1}},
		{"negative cut", Config{Frames: 5, Cuts: []Cut{{Frame: -1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Run(context.Background(), tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSimulatorCancel(t *testing.T) {
	s := New(newCloth(t, 3, 3))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Run(ctx, Config{Frames: 100})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected no steps, got %d", result.StepsTaken)
	}
}

func TestEnsemble(t *testing.T) {
	e := NewEnsemble(2)
	for i := 0; i < 4; i++ {
		e.Add(Job{Name: "job", Simulator: New(newCloth(t, 3+i, 3)), Config: Config{Frames: 5}})
	}

	results, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	for i, r := range results {
		if r.Final.Columns != 3+i {
			t.Errorf("result %d out of order: %d columns", i, r.Final.Columns)
		}
	}
}

func TestEnsembleError(t *testing.T) {
	e := NewEnsemble(0,
		Job{Simulator: New(newCloth(t, 2, 2)), Config: Config{Frames: 3}},
		Job{Simulator: New(newCloth(t, 2, 2)), Config: Config{Frames: 0}},
	)
	if _, err := e.Run(context.Background()); err == nil {
		t.Error("expected error from invalid job")
	}
}
