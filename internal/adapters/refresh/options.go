package refresh

import "github.com/tkorhonen/opprec/pkg/logger"

// Option applies a configuration option to the Executor.
type Option func(*Executor)

// WithWorkerCount sets the number of pool workers.
func WithWorkerCount(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.count = n
		}
	}
}

// WithQueueSize sets the bounded task queue capacity.
func WithQueueSize(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.tasks = make(chan func(), n)
		}
	}
}

// WithLogger sets the executor logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Executor) {
		if log != nil {
			e.log = log
		}
	}
}
