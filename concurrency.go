package contagiongo

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// parallelForAgents splits agents into p.cfg.NumWorkers contiguous chunks
// and runs fn over each chunk on its own goroutine, the Go analogue of the
// OpenMP parallel-for regions of the original C++ kernel. In sequential mode
// (or for an empty slice) it simply calls fn once over the whole slice.
// Returns the first error any worker returns, if any.
func parallelForAgents(ctx context.Context, p *Population, agents []*Agent, fn func(worker int, chunk []*Agent) error) error {
	if !p.cfg.Parallel || len(agents) == 0 {
		return fn(0, agents)
	}
	workers := p.cfg.NumWorkers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(agents) {
		workers = len(agents)
	}
	chunkSize := (len(agents) + workers - 1) / workers

	g, _ := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		start := w * chunkSize
		if start >= len(agents) {
			break
		}
		end := start + chunkSize
		if end > len(agents) {
			end = len(agents)
		}
		chunk := agents[start:end]
		g.Go(func() error {
			return fn(w, chunk)
		})
	}
	return g.Wait()
}

// reduceEarliest runs the earliest-event search over agents, using one
// result slot per worker in parallel mode and combining them serially
// afterwards — a per-thread local best, then serial combine reduction,
// expressed with an errgroup instead of OpenMP reduction clauses.
func reduceEarliest(ctx context.Context, p *Population, agents []*Agent) (*PopulationEvent, error) {
	if !p.cfg.Parallel {
		var best *PopulationEvent
		for _, a := range agents {
			if e, ok := a.events.Earliest(); ok {
				best = combineEarliest(best, e)
			}
		}
		return best, nil
	}

	workers := p.cfg.NumWorkers
	if workers <= 0 {
		workers = 1
	}
	slots := make([]*PopulationEvent, workers)

	err := parallelForAgents(ctx, p, agents, func(worker int, chunk []*Agent) error {
		var local *PopulationEvent
		for _, a := range chunk {
			if e, ok := a.events.Earliest(); ok {
				local = combineEarliest(local, e)
			}
		}
		slots[worker] = local
		return nil
	})
	if err != nil {
		return nil, err
	}

	var best *PopulationEvent
	for _, s := range slots {
		best = combineEarliest(best, s)
	}
	return best, nil
}

// combineEarliest returns whichever of a, b fires first, breaking ties by
// event ID. Either argument may be nil.
func combineEarliest(a, b *PopulationEvent) *PopulationEvent {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if b.tFire < a.tFire || (b.tFire == a.tFire && b.eventID < a.eventID) {
		return b
	}
	return a
}
