package cloth

import "sync"

const minParallelConstraints = 256

// gatherBuffers holds one force slot per particle for every worker, so
// constraint forces can be accumulated without sharing writes.
type gatherBuffers struct {
	local [][]Vec2
}

func (b *gatherBuffers) ensure(workers, particles int) {
	if len(b.local) != workers || (workers > 0 && len(b.local[0]) != particles) {
		b.local = make([][]Vec2, workers)
		for w := range b.local {
			b.local[w] = make([]Vec2, particles)
		}
		return
	}
	for w := range b.local {
		clear(b.local[w])
	}
}

// accumulateParallel splits the constraint list across workers, each writing
// into its own buffer, then sums the buffers per particle.
func (s *Stepper) accumulateParallel(g *Grid, workers int) {
	if s.gather == nil {
		s.gather = &gatherBuffers{}
	}
	s.gather.ensure(workers, len(g.particles))
	k := s.params.SpringConstant
	cons := g.constraints

	chunk := (len(cons) + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := min(start+chunk, len(cons))
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(local []Vec2, part []Constraint) {
			defer wg.Done()
			for _, c := range part {
				f := springForce(g, c, k)
				ia := c.A.Row*g.columns + c.A.Col
				ib := c.B.Row*g.columns + c.B.Col
				local[ia] = local[ia].Add(f)
				local[ib] = local[ib].Sub(f)
			}
		}(s.gather.local[w], cons[start:end])
	}
	wg.Wait()

	parallelFor(len(g.particles), workers, func(start, end int) {
		for i := start; i < end; i++ {
			for w := range s.gather.local {
				g.particles[i].Force = g.particles[i].Force.Add(s.gather.local[w][i])
			}
		}
	})
}

// parallelFor executes fn over [0, n) in at most workers contiguous chunks.
func parallelFor(n, workers int, fn func(start, end int)) {
	if workers <= 1 || n < workers {
		fn(0, n)
		return
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
