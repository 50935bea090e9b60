package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job is one independent run of an Ensemble. Each job owns its simulation.
type Job struct {
	Name      string
	Simulator *Simulator
	Config    Config
}

type Ensemble struct {
	jobs  []Job
	limit int
}

// NewEnsemble runs at most limit jobs at a time; limit <= 0 means no limit.
func NewEnsemble(limit int, jobs ...Job) *Ensemble {
	return &Ensemble{jobs: jobs, limit: limit}
}

func (e *Ensemble) Add(j Job) { e.jobs = append(e.jobs, j) }

// Run executes every job and returns the results in job order. The first
// error cancels the jobs still running.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, len(e.jobs))

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i, job := range e.jobs {
		g.Go(func() error {
			res, err := job.Simulator.Run(ctx, job.Config)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
