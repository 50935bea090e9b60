package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of cloth runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run of a scenario. Preset picks the starting config
// ("default" when empty); Params are runtime knobs applied after the sheet
// is built; Cuts are appended to whatever the preset already schedules.
type ScenarioStep struct {
	Preset string             `yaml:"preset"`
	Frames int                `yaml:"frames"`
	Params map[string]float64 `yaml:"params"`
	Cuts   []config.CutConfig `yaml:"cuts"`
	SaveAs string             `yaml:"save_as"`
}

// StepResult pairs a finished step with the run id it was stored under, if
// any.
type StepResult struct {
	Name   string
	RunID  string
	Result *sim.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// stepConfig resolves the config a step runs with.
func stepConfig(step ScenarioStep) (*config.Config, string, error) {
	name := step.Preset
	if name == "" {
		name = "default"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, "", fmt.Errorf("unknown preset: %s", name)
	}
	if step.Frames > 0 {
		cfg.Run.Frames = step.Frames
	}
	cfg.Cuts = append(cfg.Cuts, step.Cuts...)
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

// SimConfig converts the run section and scheduled cuts of cfg.
func SimConfig(cfg *config.Config) sim.Config {
	sc := sim.Config{
		Frames:        cfg.Run.Frames,
		SampleEvery:   cfg.Run.SampleEvery,
		ValidateState: cfg.Run.Validate,
	}
	for _, c := range cfg.Cuts {
		sc.Cuts = append(sc.Cuts, sim.Cut{Frame: c.Frame, Point: cloth.V(c.X, c.Y)})
	}
	return sc
}

// NewSimulator builds the sheet for cfg with the default metrics attached.
func NewSimulator(cfg *config.Config) (*sim.Simulator, error) {
	c, err := cfg.NewSimulation()
	if err != nil {
		return nil, err
	}
	s := sim.New(c)
	for _, m := range metrics.Default() {
		s.AddMetric(m)
	}
	return s, nil
}

// RunScenario executes the steps in order. Steps with SaveAs set are stored
// in st; st may be nil when nothing is saved.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, name, err := stepConfig(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		fmt.Printf("running step %d/%d: %s\n", i+1, len(scenario.Steps), name)

		s, err := NewSimulator(cfg)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		keys := make([]string, 0, len(step.Params))
		for k := range step.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := s.Cloth().SetParam(k, step.Params[k]); err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
		}

		result, err := s.Run(ctx, SimConfig(cfg))
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: name, Result: result}
		if step.SaveAs != "" {
			if st == nil {
				return results, fmt.Errorf("step %d: save_as %q needs a store", i+1, step.SaveAs)
			}
			if sr.RunID, err = st.Save(step.SaveAs, cfg, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// MonteCarloConfig cuts the sheet at random places and times, NumCuts per
// trial, to see how often random damage tears it apart or blows it up.
type MonteCarloConfig struct {
	Base      *config.Config
	NumTrials int
	NumCuts   int
	Seed      int64
	Workers   int
}

type MonteCarloResult struct {
	TrialID int
	Cuts    []sim.Cut
	Applied int
	Severed int
	Stable  bool // stayed finite for every frame
}

// randomCuts draws n cuts uniformly over the rest layout of the sheet and
// over the run's frames.
func randomCuts(rng *rand.Rand, layout cloth.Layout, frames, n int) []sim.Cut {
	w := float64(layout.Columns-1) * layout.Spacing
	h := float64(layout.Rows-1) * layout.Spacing
	cuts := make([]sim.Cut, n)
	for i := range cuts {
		cuts[i] = sim.Cut{
			Frame: rng.Intn(frames),
			Point: layout.Origin.Add(cloth.V(rng.Float64()*w, rng.Float64()*h)),
		}
	}
	return cuts
}

// RunMonteCarlo runs the trials concurrently. The cut plan of every trial is
// drawn up front from one seeded source, so results do not depend on
// scheduling.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.Base == nil {
		return nil, fmt.Errorf("monte carlo needs a base config")
	}
	if cfg.NumTrials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d", cfg.NumTrials)
	}
	if cfg.Base.Run.Frames <= 0 {
		return nil, fmt.Errorf("frames must be positive, got %d", cfg.Base.Run.Frames)
	}
	if cfg.NumCuts < 0 {
		return nil, fmt.Errorf("cuts must not be negative, got %d", cfg.NumCuts)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	layout := cfg.Base.ClothLayout()
	base := SimConfig(cfg.Base)
	base.ValidateState = true

	results := make([]MonteCarloResult, cfg.NumTrials)
	ens := sim.NewEnsemble(cfg.Workers)
	for trial := range results {
		s, err := NewSimulator(cfg.Base)
		if err != nil {
			return nil, err
		}
		sc := base
		sc.Cuts = append(append([]sim.Cut{}, base.Cuts...), randomCuts(rng, layout, base.Frames, cfg.NumCuts)...)
		results[trial] = MonteCarloResult{TrialID: trial, Cuts: sc.Cuts}
		ens.Add(sim.Job{Name: fmt.Sprintf("trial-%d", trial), Simulator: s, Config: sc})
	}

	runs, err := ens.Run(ctx)
	if err != nil {
		return nil, err
	}
	for i, res := range runs {
		results[i].Applied = res.CutsApplied
		results[i].Severed = res.Final.Severed()
		results[i].Stable = len(res.Errors) == 0
	}
	return results, nil
}

// MonteCarloStats counts stable and unstable trials.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
