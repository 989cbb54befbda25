package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrQueueFull is returned by Submit when the submission queue is
// saturated; callers translate it to a backpressure response.
var ErrQueueFull = errors.New("task queue full")

// Submission is one unit of work accepted by the pool.
type Submission struct {
	TaskID     string
	SourcePath string
	PlayerName string
}

// Pool runs pipeline tasks on a fixed set of workers. Submission is
// fire-and-forget: the caller gets its task ID back immediately and polls
// the registry for progress. Concurrent tasks share no media state; each
// owns a disjoint work directory keyed by its task ID.
type Pool struct {
	pipeline *Pipeline
	size     int
	jobs     chan Submission

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPool(pipeline *Pipeline, size, queueSize int) *Pool {
	return &Pool{
		pipeline: pipeline,
		size:     size,
		jobs:     make(chan Submission, queueSize),
	}
}

// Start launches the workers. It returns an error if the pool is already
// running.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return fmt.Errorf("pool already started")
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()

	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}

	return nil
}

// Stop cancels in-flight work and waits for the workers to exit.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()

	p.wg.Wait()
}

// Submit enqueues a task without blocking the request path.
func (p *Pool) Submit(sub Submission) error {
	select {
	case p.jobs <- sub:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case sub, ok := <-p.jobs:
			if !ok {
				return
			}
			p.pipeline.Run(ctx, sub.TaskID, sub.SourcePath, sub.PlayerName)
		}
	}
}
