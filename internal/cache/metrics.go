package cache

import (
	"sync/atomic"
	"time"
)

type Level int

const (
	LevelMemory Level = iota + 1
	LevelRedis
)

// CacheMetrics counts multilevel cache traffic. Hits are kept per level.
type CacheMetrics struct {
	memoryHits atomic.Int64
	redisHits  atomic.Int64
	misses     atomic.Int64
	errors     atomic.Int64
	sets       atomic.Int64
	deletes    atomic.Int64
	started    time.Time
}

type MetricsSnapshot struct {
	MemoryHits    int64   `json:"memory_hits"`
	RedisHits     int64   `json:"redis_hits"`
	Misses        int64   `json:"misses"`
	Errors        int64   `json:"errors"`
	Sets          int64   `json:"sets"`
	Deletes       int64   `json:"deletes"`
	HitRate       float64 `json:"hit_rate"`
	UptimeSeconds int64   `json:"uptime_seconds"`
}

func (s MetricsSnapshot) Hits() int64 {
	return s.MemoryHits + s.RedisHits
}

func NewCacheMetrics() *CacheMetrics {
	return &CacheMetrics{started: time.Now()}
}

func (m *CacheMetrics) RecordHit(level Level) {
	if level == LevelRedis {
		m.redisHits.Add(1)
		return
	}
	m.memoryHits.Add(1)
}

func (m *CacheMetrics) RecordMiss()   { m.misses.Add(1) }
func (m *CacheMetrics) RecordError()  { m.errors.Add(1) }
func (m *CacheMetrics) RecordSet()    { m.sets.Add(1) }
func (m *CacheMetrics) RecordDelete() { m.deletes.Add(1) }

func (m *CacheMetrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		MemoryHits:    m.memoryHits.Load(),
		RedisHits:     m.redisHits.Load(),
		Misses:        m.misses.Load(),
		Errors:        m.errors.Load(),
		Sets:          m.sets.Load(),
		Deletes:       m.deletes.Load(),
		UptimeSeconds: int64(time.Since(m.started).Seconds()),
	}
	// Percentage of lookups answered by either level.
	if total := s.Hits() + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits()) / float64(total) * 100
	}
	return s
}
