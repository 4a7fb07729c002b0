// Package refresh runs cache refresh tasks on a fixed worker pool, off the
// request-serving path.
package refresh

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/tkorhonen/opprec/pkg/logger"
	"github.com/tkorhonen/opprec/pkg/metrics"
)

// Default executor configuration constants.
const (
	defaultQueueSize    = 16
	executorStopTimeout = 30 * time.Second
)

// Executor is a bounded worker pool for background refresh tasks. Submit
// never blocks: when the queue is full the task is rejected and the caller
// defers the refresh instead of queueing behind a slow one. Safe for
// concurrent use.
type Executor struct {
	tasks chan func()
	count int
	log   logger.Logger

	mu      sync.Mutex
	started bool
	stopped bool
	done    []chan struct{}
}

// NewExecutor creates an executor with configuration options.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		count: runtime.NumCPU(),
		log:   logger.Named("refresh"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(e)
	}

	if e.tasks == nil {
		e.tasks = make(chan func(), defaultQueueSize)
	}

	return e
}

// Start launches the worker goroutines. Calling Start twice is an error.
func (e *Executor) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return fmt.Errorf("refresh executor already started")
	}
	e.started = true

	e.done = make([]chan struct{}, e.count)
	for i := 0; i < e.count; i++ {
		done := make(chan struct{})
		e.done[i] = done
		go e.run(ctx, "refresh-"+strconv.Itoa(i), done)
	}
	metrics.UpdateRefreshWorkerCount(e.count)
	return nil
}

func (e *Executor) run(ctx context.Context, name string, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-e.tasks:
			if !ok {
				return
			}
			e.execute(ctx, name, task)
		}
	}
}

func (e *Executor) execute(ctx context.Context, name string, task func()) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error(ctx, "refresh task panicked",
				logger.String("worker", name),
				logger.Any("panic", r),
			)
		}
	}()
	task()
}

// Submit offers a task to the pool without blocking. It reports false when
// the executor is saturated or stopped.
func (e *Executor) Submit(task func()) bool {
	// The mutex also orders Submit against Stop's close of the queue.
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return false
	}

	select {
	case e.tasks <- task:
		metrics.RecordRefreshTask()
		return true
	default:
		metrics.RecordRefreshTaskRejected()
		return false
	}
}

// Stop closes the queue and waits for the workers to drain it, bounded by
// ctx and a hard timeout.
func (e *Executor) Stop(ctx context.Context) error {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return nil
	}
	e.stopped = true
	started := e.started
	close(e.tasks)
	e.mu.Unlock()

	if !started {
		return nil
	}

	stopCtx, cancel := context.WithTimeout(ctx, executorStopTimeout)
	defer cancel()

	for i, done := range e.done {
		select {
		case <-done:
		case <-stopCtx.Done():
			e.log.Warn(ctx, "refresh worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("refresh executor shutdown: %w", stopCtx.Err())
		}
	}
	return nil
}
