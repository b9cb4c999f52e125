package worker

import (
	"context"
	"sync"
)

// Job is a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of one job execution
type Result interface {
	GetError() error
}

// Pool runs jobs on a fixed set of workers. Workers append outcomes to
// a shared slice as they finish, so callers may submit any number of
// jobs before collecting: there is no bounded result buffer to fill.
type Pool struct {
	workers int
	jobs    chan Job
	ctx     context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	results []Result
	wg      sync.WaitGroup
}

// NewPool creates a pool with the specified number of workers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers: workers,
		jobs:    make(chan Job),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			p.mu.Lock()
			p.results = append(p.results, result)
			p.mu.Unlock()
		}
	}
}

// Submit hands a job to the pool, blocking until a worker accepts it.
// After Shutdown the job is dropped.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
	case p.jobs <- job:
	}
}

// Wait closes the queue, waits for in-flight jobs to finish and returns
// the collected results in completion order. Submit must not be called
// after Wait.
func (p *Pool) Wait() []Result {
	close(p.jobs)
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.results
}

// Shutdown cancels pending work and waits for the workers to exit.
// Jobs already executing run to completion.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}
