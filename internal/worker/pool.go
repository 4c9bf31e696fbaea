package worker

import (
	"context"
	"sync"
)

// Job is a unit of work executed by the pool.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of one job.
type Result interface {
	Err() error
}

// Pool runs jobs on a bounded set of goroutines and streams results as
// they complete. Results are not buffered beyond a small channel, so a
// consumer must drain Results() while jobs are being submitted.
type Pool struct {
	workers int
	jobs    chan Job
	results chan Result
	wg      sync.WaitGroup
	once    sync.Once
}

// NewPool creates a pool with the given number of workers.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		workers: workers,
		jobs:    make(chan Job, workers),
		results: make(chan Result, workers),
	}
}

// Start launches the workers. The pool stops accepting work when Close
// is called or ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-p.jobs:
					if !ok {
						return
					}
					res := job.Execute(ctx)
					select {
					case p.results <- res:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}
	go func() {
		p.wg.Wait()
		p.once.Do(func() { close(p.results) })
	}()
}

// Submit queues a job. It blocks while all workers are busy and returns
// false if ctx is cancelled before the job is accepted.
func (p *Pool) Submit(ctx context.Context, job Job) bool {
	select {
	case <-ctx.Done():
		return false
	case p.jobs <- job:
		return true
	}
}

// Close signals that no more jobs will be submitted. The results channel
// is closed once all in-flight jobs finish.
func (p *Pool) Close() {
	close(p.jobs)
}

// Results returns the stream of completed job results.
func (p *Pool) Results() <-chan Result {
	return p.results
}
