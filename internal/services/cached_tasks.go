package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tareas/internal/cache"
	"tareas/internal/models"
	"tareas/internal/repositories"

	"github.com/gofrs/uuid"
)

// CachedTaskStore wraps a TaskStore with read-through caching. The wrapped
// store stays authoritative: cache failures are logged and ignored. Keys
// whose invalidation failed are never served or refilled from the cache
// until a retried delete goes through.
type CachedTaskStore struct {
	store   repositories.TaskStore
	cache   cache.Cache
	taskTTL time.Duration
	listTTL time.Duration
	logger  *slog.Logger

	mu    sync.Mutex
	stale map[string]struct{}
}

var _ repositories.TaskStore = (*CachedTaskStore)(nil)

func NewCachedTaskStore(store repositories.TaskStore, c cache.Cache, taskTTL, listTTL time.Duration, logger *slog.Logger) *CachedTaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedTaskStore{
		store:   store,
		cache:   c,
		taskTTL: taskTTL,
		listTTL: listTTL,
		logger:  logger,
		stale:   make(map[string]struct{}),
	}
}

func taskKey(id uuid.UUID) string {
	return fmt.Sprintf("tarea:%s", id)
}

func ownerListKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("user_tareas:%s", ownerID)
}

func (s *CachedTaskStore) Create(ctx context.Context, task *models.Task) error {
	if err := s.store.Create(ctx, task); err != nil {
		return err
	}
	s.invalidate(ctx, ownerListKey(task.UserID))
	return nil
}

func (s *CachedTaskStore) Find(ctx context.Context, id uuid.UUID) (models.Task, error) {
	key := taskKey(id)

	var task models.Task
	if s.lookup(ctx, key, &task) {
		return task, nil
	}

	task, err := s.store.Find(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	s.remember(ctx, key, task, s.taskTTL)
	return task, nil
}

func (s *CachedTaskStore) Update(ctx context.Context, id uuid.UUID, changes models.TaskChanges) (models.Task, error) {
	task, err := s.store.Update(ctx, id, changes)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.invalidate(ctx, taskKey(id))
		}
		return models.Task{}, err
	}
	s.invalidate(ctx, taskKey(id), ownerListKey(task.UserID))
	return task, nil
}

func (s *CachedTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	keys := []string{taskKey(id)}
	if task, err := s.Find(ctx, id); err == nil {
		keys = append(keys, ownerListKey(task.UserID))
	}

	err := s.store.Delete(ctx, id)
	s.invalidate(ctx, keys...)
	return err
}

func (s *CachedTaskStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Task, error) {
	key := ownerListKey(ownerID)

	var tasks []models.Task
	if s.lookup(ctx, key, &tasks) && tasks != nil {
		return tasks, nil
	}

	tasks, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	s.remember(ctx, key, tasks, s.listTTL)
	return tasks, nil
}

func (s *CachedTaskStore) lookup(ctx context.Context, key string, dest interface{}) bool {
	if s.isStale(ctx, key) {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}
	return false
}

func (s *CachedTaskStore) remember(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.isStale(ctx, key) {
		return
	}
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		s.logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
}

func (s *CachedTaskStore) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.WarnContext(ctx, "cache invalidation failed", "keys", keys, "error", err)
		s.mu.Lock()
		for _, k := range keys {
			s.stale[k] = struct{}{}
		}
		s.mu.Unlock()
	}
}

// isStale retries any outstanding invalidations and reports whether key is
// still among them.
func (s *CachedTaskStore) isStale(ctx context.Context, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stale) == 0 {
		return false
	}

	keys := make([]string, 0, len(s.stale))
	for k := range s.stale {
		keys = append(keys, k)
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		_, stale := s.stale[key]
		return stale
	}
	s.logger.InfoContext(ctx, "cache invalidation retried", "keys", keys)
	clear(s.stale)
	return false
}
