// Package cache provides the task cache: an in-process L1 in front of an
// optional Redis L2 guarded by a circuit breaker.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache miss")
	ErrCacheDown = errors.New("cache unavailable")
)

type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Health(ctx context.Context) error
	Stats() map[string]interface{}
	Close() error
}
