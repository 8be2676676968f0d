package dynamo

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// Member is one independently built run of an ensemble.
type Member struct {
	Sim *Simulator
	X0  State
}

// Factory builds one ensemble member from its seed. Neural controllers carry
// network state, so members never share a simulator.
type Factory func(seed int64) (Member, error)

type Ensemble struct {
	build     Factory
	numRuns   int
	seedStart int64
}

func NewEnsemble(build Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

// Run executes the members on at most GOMAXPROCS goroutines. Results are
// indexed by member; a member that fails to build or start is reported in the
// joined error and leaves a nil result.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	ParallelFor(e.numRuns, 1, func(start, end int) {
		for idx := start; idx < end; idx++ {
			if err := ctx.Err(); err != nil {
				errs[idx] = err
				continue
			}
			member := cfg
			member.Seed = e.seedStart + int64(idx)

			m, err := e.build(member.Seed)
			if err != nil {
				errs[idx] = fmt.Errorf("member %d: %w", idx, err)
				continue
			}
			results[idx], errs[idx] = m.Sim.Run(ctx, m.X0, member)
		}
	})

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return results, nil
}

// ParallelFor executes fn in parallel over the range [0, n).
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	numWorkers := runtime.GOMAXPROCS(0)
	if minChunk < 1 {
		minChunk = 1
	}
	if n <= minChunk || numWorkers <= 1 {
		fn(0, n)
		return
	}

	workers := numWorkers
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}
