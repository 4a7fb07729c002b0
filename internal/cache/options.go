package cache

import (
	"time"

	"github.com/tkorhonen/opprec/pkg/logger"
)

// Option applies a configuration option to the Cache.
type Option[T any] func(*Cache[T])

// WithTTL sets the staleness window after which a read schedules a refresh.
func WithTTL[T any](ttl time.Duration) Option[T] {
	return func(c *Cache[T]) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock injects the time source, so tests can control staleness
// deterministically.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *Cache[T]) {
		if now != nil {
			c.now = now
		}
	}
}

// WithExecutor injects the background refresh executor.
func WithExecutor[T any](exec Executor) Option[T] {
	return func(c *Cache[T]) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger sets a custom logger for refresh failures.
func WithLogger[T any](log logger.Logger) Option[T] {
	return func(c *Cache[T]) {
		if log != nil {
			c.log = log
		}
	}
}

// WithName labels the cache in logs and metrics.
func WithName[T any](name string) Option[T] {
	return func(c *Cache[T]) {
		if name != "" {
			c.name = name
		}
	}
}
