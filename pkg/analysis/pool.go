package analysis

import (
	"context"
	"sync"
)

// Job is a unit of work run by the pool.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a Job produces.
type Result interface {
	GetError() error
}

// Pool runs jobs on a fixed number of goroutines.
type Pool struct {
	workers int
}

// NewPool creates a pool with the given number of workers (at least 1).
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Run executes every job and returns the results in job order. Jobs not yet
// started when ctx is cancelled are skipped and their slot left nil.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	queue := make(chan int, p.workers*2)
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range queue {
				if ctx.Err() != nil {
					continue
				}
				// Each index is written by exactly one worker.
				results[idx] = jobs[idx].Execute(ctx)
			}
		}()
	}

submit:
	for i := range jobs {
		select {
		case <-ctx.Done():
			break submit
		case queue <- i:
		}
	}
	close(queue)
	wg.Wait()
	return results
}
