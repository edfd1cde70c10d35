package cache

import (
	"context"
	"errors"
	"time"
)

const defaultL1TTL = 5 * time.Minute

// MultiLevelCache fronts an optional shared L2. The in-process L1 is only
// used when there is no L2: other instances cannot invalidate it, so with a
// shared level configured every read and write goes to L2. L2 read and write
// failures are counted and swallowed; callers only ever see a miss.
type MultiLevelCache struct {
	l1      *MemoryCache
	l2      Cache
	breaker *CircuitBreaker
	metrics *CacheMetrics
	l1TTL   time.Duration
}

type MultiLevelOption func(*MultiLevelCache)

func WithCircuitBreaker(cb *CircuitBreaker) MultiLevelOption {
	return func(c *MultiLevelCache) { c.breaker = cb }
}

func WithMetrics(m *CacheMetrics) MultiLevelOption {
	return func(c *MultiLevelCache) { c.metrics = m }
}

func WithL1TTL(ttl time.Duration) MultiLevelOption {
	return func(c *MultiLevelCache) { c.l1TTL = ttl }
}

// NewMultiLevelCache builds the cache. l2 may be nil, in which case only the
// in-process level is used.
func NewMultiLevelCache(l2 Cache, opts ...MultiLevelOption) *MultiLevelCache {
	c := &MultiLevelCache{
		l1:      NewMemoryCache(),
		l2:      l2,
		breaker: NewCircuitBreaker(nil),
		metrics: NewCacheMetrics(),
		l1TTL:   defaultL1TTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MultiLevelCache) Metrics() *CacheMetrics {
	return c.metrics
}

func (c *MultiLevelCache) l1Expiry(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > c.l1TTL {
		return c.l1TTL
	}
	return ttl
}

func (c *MultiLevelCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.l2 == nil {
		if err := c.l1.Set(ctx, key, value, c.l1Expiry(ttl)); err != nil {
			c.metrics.RecordError()
			return err
		}
		c.metrics.RecordSet()
		return nil
	}

	err := c.breaker.Execute(func() error {
		return c.l2.Set(ctx, key, value, ttl)
	})
	if err != nil {
		c.metrics.RecordError()
		return nil
	}
	c.metrics.RecordSet()
	return nil
}

func (c *MultiLevelCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.l2 == nil {
		err := c.l1.Get(ctx, key, dest)
		switch {
		case err == nil:
			c.metrics.RecordHit(LevelMemory)
			return nil
		case !errors.Is(err, ErrCacheMiss):
			c.metrics.RecordError()
		}
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	err := c.breaker.Execute(func() error {
		return c.l2.Get(ctx, key, dest)
	})
	switch {
	case err == nil:
		c.metrics.RecordHit(LevelRedis)
		return nil
	case errors.Is(err, ErrCacheMiss):
		c.metrics.RecordMiss()
	default:
		c.metrics.RecordError()
		c.metrics.RecordMiss()
	}
	return ErrCacheMiss
}

func (c *MultiLevelCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if c.l2 == nil {
		_ = c.l1.Delete(ctx, keys...)
		c.metrics.RecordDelete()
		return nil
	}

	// A failed delete is returned: the caller must not assume the entry is gone.
	err := c.breaker.Execute(func() error {
		return c.l2.Delete(ctx, keys...)
	})
	if err != nil {
		c.metrics.RecordError()
		return err
	}
	c.metrics.RecordDelete()
	return nil
}

// Health reports L2 reachability. Without an L2 the cache is always healthy.
func (c *MultiLevelCache) Health(ctx context.Context) error {
	if c.l2 == nil {
		return nil
	}
	if c.breaker.GetState() == CircuitBreakerOpen {
		return ErrCacheDown
	}
	return c.l2.Health(ctx)
}

func (c *MultiLevelCache) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"l1":      c.l1.Stats(),
		"metrics": c.metrics.Snapshot(),
		"breaker": c.breaker.GetStats(),
	}
	if c.l2 != nil {
		stats["l2"] = c.l2.Stats()
	}
	return stats
}

func (c *MultiLevelCache) Close() error {
	_ = c.l1.Close()
	if c.l2 != nil {
		return c.l2.Close()
	}
	return nil
}
