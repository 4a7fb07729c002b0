package catalog

import (
	"time"

	"github.com/tkorhonen/opprec/internal/cache"
	"github.com/tkorhonen/opprec/pkg/logger"
)

// Option applies a configuration option to the Catalog.
type Option func(*Catalog)

// WithTTL sets the staleness window of the underlying caches.
func WithTTL(ttl time.Duration) Option {
	return func(c *Catalog) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock injects the time source used for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		if now != nil {
			c.now = now
		}
	}
}

// WithExecutor injects the background refresh executor shared by all views.
func WithExecutor(exec cache.Executor) Option {
	return func(c *Catalog) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger sets the logger passed to the underlying caches.
func WithLogger(log logger.Logger) Option {
	return func(c *Catalog) {
		if log != nil {
			c.log = log
		}
	}
}
