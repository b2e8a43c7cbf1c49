// Package worker runs jobs on a fixed set of goroutines.
package worker

import (
	"context"
	"sync"
)

// Job is one unit of work. It receives the pool's context.
type Job func(ctx context.Context)

// Pool manages workers draining a job queue.
type Pool struct {
	ctx  context.Context
	jobs chan Job
	wg   sync.WaitGroup
}

// NewPool creates a pool with the given queue size. Jobs run with ctx.
func NewPool(ctx context.Context, queueSize int) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{ctx: ctx, jobs: make(chan Job, queueSize)}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job(p.ctx)
			}
		}()
	}
}

// Stop waits for workers to finish after closing the queue. Submit must not
// be called afterwards.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

// Submit queues a job, blocking while the queue is full.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Map applies fn to every item on at most workers goroutines and returns the
// results in input order. The first error cancels the items not yet started
// and is returned.
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}
	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		once     sync.Once
		firstErr error
		out      = make([]R, len(items))
	)
	pool := NewPool(ctx, len(items))
	pool.Start(min(workers, len(items)))
	for i, item := range items {
		err := pool.Submit(ctx, func(ctx context.Context) {
			if ctx.Err() != nil {
				return
			}
			r, err := fn(ctx, item)
			if err != nil {
				once.Do(func() {
					firstErr = err
					cancel()
				})
				return
			}
			out[i] = r
		})
		if err != nil {
			break
		}
	}
	pool.Stop()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
