package core

import (
	"context"
	"runtime"
	"sync"
)

// ParallelExecutor resolves services concurrently. Services share no
// mutable state, so resolution is an embarrassingly parallel map; results
// come back in input order so output is identical to a sequential run.
type ParallelExecutor struct {
	maxWorkers int
}

// NewParallelExecutor creates an executor. maxWorkers 0 picks a default
// from the CPU count.
func NewParallelExecutor(maxWorkers int) *ParallelExecutor {
	workers := maxWorkers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	if workers > 8 {
		workers = 8
	}
	return &ParallelExecutor{maxWorkers: workers}
}

// ResolveServiceFunc resolves a single service.
type ResolveServiceFunc func(ctx context.Context, svc *ManagedService) ServiceOutcome

// Run resolves all services through fn using a worker pool.
func (p *ParallelExecutor) Run(ctx context.Context, services []*ManagedService, fn ResolveServiceFunc) []ServiceOutcome {
	if len(services) == 0 {
		return nil
	}

	workerCount := p.maxWorkers
	if workerCount > len(services) {
		workerCount = len(services)
	}

	jobs := make(chan int, len(services))
	outcomes := make([]ServiceOutcome, len(services))

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				svc := services[idx]
				if err := ctx.Err(); err != nil {
					outcomes[idx] = ServiceOutcome{Service: svc, Err: err}
					continue
				}
				outcomes[idx] = fn(ctx, svc)
			}
		}()
	}

	for i := range services {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}
