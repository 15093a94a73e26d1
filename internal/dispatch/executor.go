// Package dispatch routes classified tasks to their handlers and runs the
// query pipeline. The web layer hands whole queries to an Executor and
// returns immediately; the frontend observes progress through the shared
// state instead of the HTTP response.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

const (
	defaultWorkers = 4
	queueCapacity  = 16
)

type job struct {
	name string
	fn   func(ctx context.Context)
}

// Executor is a fixed-size worker pool for fire-and-forget jobs. Panics in a
// job are contained to that job.
type Executor struct {
	jobs chan job
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewExecutor starts workers goroutines draining the queue. Jobs receive
// ctx; canceling it signals running jobs to stop but does not drop queued
// ones.
func NewExecutor(ctx context.Context, workers int) *Executor {
	if workers <= 0 {
		workers = defaultWorkers
	}
	e := &Executor{jobs: make(chan job, queueCapacity)}
	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.worker(ctx)
	}
	return e
}

func (e *Executor) worker(ctx context.Context) {
	defer e.wg.Done()
	for j := range e.jobs {
		e.run(ctx, j)
	}
}

func (e *Executor) run(ctx context.Context, j job) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("background job panicked", "job", j.name, "panic", fmt.Sprint(r))
		}
	}()
	j.fn(ctx)
}

// Submit queues fn for execution. It blocks while the queue is full and
// fails once the executor is closed.
func (e *Executor) Submit(name string, fn func(ctx context.Context)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return fmt.Errorf("dispatch: executor is closed")
	}
	// The lock is held across the send so Close cannot close the channel
	// under a blocked Submit.
	e.jobs <- job{name: name, fn: fn}
	return nil
}

// Close stops accepting jobs and waits for queued ones to finish.
func (e *Executor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.jobs)
	e.mu.Unlock()

	e.wg.Wait()
}
