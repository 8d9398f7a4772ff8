package sim

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Factory builds an independent runner for one seed.
type Factory func(seed uint64) (*Runner, error)

// Ensemble runs one runner per seed, concurrently. Runners share nothing, so
// each result is identical to a sequential run with the same seed.
type Ensemble struct {
	build   Factory
	seeds   []uint64
	workers int
}

// NewEnsemble runs numRuns consecutive seeds starting at seedStart. A
// non-positive workers uses GOMAXPROCS.
func NewEnsemble(build Factory, numRuns int, seedStart uint64, workers int) *Ensemble {
	seeds := make([]uint64, numRuns)
	for i := range seeds {
		seeds[i] = seedStart + uint64(i)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{build: build, seeds: seeds, workers: workers}
}

func (e *Ensemble) Seeds() []uint64 { return e.seeds }

// Run returns the results in seed order. The first failure cancels the
// remaining runs.
func (e *Ensemble) Run(ctx context.Context, b Budget) ([]*Result, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	results := make([]*Result, len(e.seeds))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, seed := range e.seeds {
		g.Go(func() error {
			r, err := e.build(seed)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			res, err := r.Run(ctx, b)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
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

// Mean averages the final occupancy of several results level by level.
func Mean(results []*Result) []float64 {
	if len(results) == 0 {
		return nil
	}
	mean := make([]float64, len(results[0].Final.Occupancy))
	for _, r := range results {
		for k := range mean {
			mean[k] += r.Occupancy(k)
		}
	}
	for k := range mean {
		mean[k] /= float64(len(results))
	}
	return mean
}
