// Package pool implements the fixed-size worker pool the mixture pipeline
// runs its batches on.  Workers share no state with the submitter; tasks
// go in over a channel and results come back positionally, so a batch can
// be reassembled regardless of completion order.
package pool

import (
	"runtime"
	"sync"
)

// Pool is a fixed-size pool of worker goroutines.  A pool is acquired for
// one pipeline run and must be released with Release when the run ends.
type Pool struct {
	jobs    chan func()
	workers int
	wg      sync.WaitGroup
}

// New starts a pool with the given number of workers.  If workers <= 0,
// one worker per available CPU is started.
func New(workers int) *Pool {

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	p := &Pool{
		jobs:    make(chan func()),
		workers: workers,
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
			}
		}()
	}

	return p
}

// Workers returns the pool size.
func (p *Pool) Workers() int {
	return p.workers
}

// Release shuts the pool down and waits for the workers to exit.  No
// submissions may follow.
func (p *Pool) Release() {
	close(p.jobs)
	p.wg.Wait()
}

// Map applies fn to every item on the pool's workers and returns the
// results in input order.  The batch is all-or-nothing: if any application
// fails, Map returns the first error (by item position) and no results.
func Map[T, R any](p *Pool, items []T, fn func(T) (R, error)) ([]R, error) {

	results := make([]R, len(items))
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	for i := range items {
		i := i
		wg.Add(1)
		p.jobs <- func() {
			defer wg.Done()
			results[i], errs[i] = fn(items[i])
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// Chunks splits the half-open range [0, n) into consecutive spans of at
// most size items, returned as (start, stop) pairs.  A non-positive size
// yields a single span covering everything.
func Chunks(n, size int) [][2]int {

	if n <= 0 {
		return nil
	}
	if size <= 0 || size >= n {
		return [][2]int{{0, n}}
	}

	var spans [][2]int
	for start := 0; start < n; start += size {
		stop := start + size
		if stop > n {
			stop = n
		}
		spans = append(spans, [2]int{start, stop})
	}

	return spans
}
