// Package cache provides a single-key, refresh-ahead cache whose payload is
// stamped with a monotonically increasing version. Readers never observe a
// partially built snapshot: the current snapshot is replaced wholesale by an
// atomic pointer swap when a background refresh completes.
package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tkorhonen/opprec/pkg/logger"
	"github.com/tkorhonen/opprec/pkg/metrics"
)

// Default cache configuration constants.
const (
	defaultTTL = time.Minute
)

// Snapshot is an immutable payload plus the version it was loaded at.
// Version strictly increases on every successful refresh, so callers can
// detect whether the backing data changed without comparing payloads.
type Snapshot[T any] struct {
	Version uint64
	Payload T
}

// Loader computes a fresh payload. It is invoked once for the cold load and
// once per background refresh cycle.
type Loader[T any] func(ctx context.Context) (T, error)

// Executor runs refresh tasks off the request path. Submit must not block;
// it returns false when the executor is saturated, in which case the refresh
// is simply deferred until a later read triggers it again.
type Executor interface {
	Submit(task func()) bool
}

// goExecutor runs each task on its own goroutine.
type goExecutor struct{}

func (goExecutor) Submit(task func()) bool {
	go task()
	return true
}

type entry[T any] struct {
	snap     Snapshot[T]
	loadedAt time.Time
}

// Cache holds exactly one logical key. The first Get blocks on the loader;
// after the staleness window elapses, the next Get schedules an asynchronous
// refresh and returns the still-valid stale snapshot immediately.
type Cache[T any] struct {
	loader Loader[T]
	ttl    time.Duration
	now    func() time.Time
	exec   Executor
	log    logger.Logger
	name   string

	// mu guards the cold load and the refresh in-flight flag. Steady-state
	// reads go through the atomic pointer only.
	mu         sync.Mutex
	refreshing bool
	cur        atomic.Pointer[entry[T]]
}

// New constructs a Cache around loader with the given options.
func New[T any](loader Loader[T], opts ...Option[T]) *Cache[T] {
	c := &Cache[T]{
		loader: loader,
		ttl:    defaultTTL,
		now:    time.Now,
		exec:   goExecutor{},
		name:   "cache",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the current snapshot, cold-loading it on first access. When the
// snapshot is older than the staleness window, a background refresh is
// scheduled and the stale snapshot is returned without blocking.
func (c *Cache[T]) Get(ctx context.Context) (Snapshot[T], error) {
	if e := c.cur.Load(); e != nil {
		if c.now().Sub(e.loadedAt) >= c.ttl {
			c.scheduleRefresh()
		}
		return e.snap, nil
	}
	return c.coldLoad(ctx)
}

// Version reports the current snapshot version, or false before the cold load.
func (c *Cache[T]) Version() (uint64, bool) {
	if e := c.cur.Load(); e != nil {
		return e.snap.Version, true
	}
	return 0, false
}

// Clear drops the snapshot so the next Get performs a blocking cold load.
// Intended as a process-start hook so a stale payload is never served.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur.Store(nil)
}

func (c *Cache[T]) coldLoad(ctx context.Context) (Snapshot[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Another reader may have completed the cold load while we waited.
	if e := c.cur.Load(); e != nil {
		return e.snap, nil
	}

	payload, err := c.loader(ctx)
	if err != nil {
		return Snapshot[T]{}, fmt.Errorf("cache %s: %w: %w", c.name, ErrColdLoad, err)
	}

	e := &entry[T]{
		snap:     Snapshot[T]{Version: 1, Payload: payload},
		loadedAt: c.now(),
	}
	c.cur.Store(e)
	metrics.RecordCacheLoad(c.name)
	metrics.UpdateCacheVersion(c.name, e.snap.Version)
	return e.snap, nil
}

// scheduleRefresh starts at most one background refresh. Concurrent staleness
// triggers while one is in flight are no-ops.
func (c *Cache[T]) scheduleRefresh() {
	c.mu.Lock()
	if c.refreshing {
		c.mu.Unlock()
		return
	}
	c.refreshing = true
	c.mu.Unlock()

	if !c.exec.Submit(func() { c.refresh() }) {
		// Executor saturated: defer until a later read triggers again.
		c.mu.Lock()
		c.refreshing = false
		c.mu.Unlock()
		metrics.RecordCacheRefreshDeferred(c.name)
	}
}

func (c *Cache[T]) refresh() {
	defer func() {
		c.mu.Lock()
		c.refreshing = false
		c.mu.Unlock()
	}()

	ctx := context.Background()
	payload, err := c.loader(ctx)
	if err != nil {
		// The prior snapshot and version stay authoritative.
		if c.log != nil {
			c.log.Warn(ctx, "cache refresh failed; serving previous snapshot",
				logger.String("cache", c.name),
				logger.Error(err),
			)
		}
		metrics.RecordCacheRefreshError(c.name)
		return
	}

	prev := c.cur.Load()
	if prev == nil {
		// Cleared while refreshing; discard the result and let the next read
		// cold-load.
		return
	}

	e := &entry[T]{
		snap:     Snapshot[T]{Version: prev.snap.Version + 1, Payload: payload},
		loadedAt: c.now(),
	}
	c.cur.Store(e)
	metrics.RecordCacheRefresh(c.name)
	metrics.UpdateCacheVersion(c.name, e.snap.Version)
}
