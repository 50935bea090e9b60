package sim

import (
	"fmt"

	"github.com/san-kum/clothsim/internal/cloth"
)

type Metric interface {
	Name() string
	Observe(s *cloth.Snapshot)
	Value() float64
	Reset()
}

// Sampler is implemented by metrics that can report their per-frame value,
// which is what goes into a Result series.
type Sampler interface {
	Last() float64
}

type Observer interface {
	OnFrame(s *cloth.Snapshot)
}

// Cut is a scripted cut applied just before the given frame is stepped.
type Cut struct {
	Frame int
	Point cloth.Vec2
}

type Config struct {
	Frames        int
	SampleEvery   int
	Cuts          []Cut
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Frames:        600,
		SampleEvery:   1,
		ValidateState: true,
	}
}

// Result holds the sampled series of a run. Series are keyed by metric name
// plus "trace_x" and "trace_y" for the bottom-centre particle; Frames holds the
// frame number of each sample.
type Result struct {
	Frames      []int
	Series      map[string][]float64
	Metrics     map[string]float64
	Final       *cloth.Snapshot
	StepsTaken  int
	CutsApplied int
	Errors      []error
}

type SimError struct {
	Frame   int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("frame %d: %s", e.Frame, e.Message)
}
