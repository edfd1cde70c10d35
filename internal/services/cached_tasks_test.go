package services_test

import (
	"context"
	"testing"
	"time"

	"tareas/internal/cache"
	"tareas/internal/models"
	"tareas/internal/repositories"
	"tareas/internal/services"
	"tareas/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/suite"
)

// countingStore records how often reads reach the database.
type countingStore struct {
	repositories.TaskStore
	finds int
	lists int
}

func (c *countingStore) Find(ctx context.Context, id uuid.UUID) (models.Task, error) {
	c.finds++
	return c.TaskStore.Find(ctx, id)
}

func (c *countingStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Task, error) {
	c.lists++
	return c.TaskStore.ListByOwner(ctx, ownerID)
}

type CachedTaskStoreTestSuite struct {
	suite.Suite
	ctx     context.Context
	mr      *miniredis.Miniredis
	backing *countingStore
	store   *services.CachedTaskStore
	owner   models.User
}

func (s *CachedTaskStoreTestSuite) SetupTest() {
	db := testutil.NewTestDB(s.T())
	s.ctx = context.Background()
	s.mr = miniredis.RunT(s.T())

	redisCache := cache.NewRedisCache(&cache.CacheConfig{Addr: s.mr.Addr(), KeyPrefix: "test:"})
	multi := cache.NewMultiLevelCache(redisCache, cache.WithL1TTL(time.Minute))
	s.T().Cleanup(func() { multi.Close() })

	s.backing = &countingStore{TaskStore: repositories.NewTaskRepository(db)}
	s.store = services.NewCachedTaskStore(s.backing, multi, 30*time.Minute, 15*time.Minute, nil)

	s.owner = models.User{Name: "Ana", Email: "ana@example.com", Password: "hash"}
	s.Require().NoError(repositories.NewUserRepository(db).Create(s.ctx, &s.owner))
}

func (s *CachedTaskStoreTestSuite) newTask(title string) models.Task {
	task := models.Task{UserID: s.owner.ID, Titulo: title}
	s.Require().NoError(s.store.Create(s.ctx, &task))
	return task
}

func (s *CachedTaskStoreTestSuite) TestFind_ReadThrough() {
	task := s.newTask("Buy milk")

	for i := 0; i < 3; i++ {
		got, err := s.store.Find(s.ctx, task.ID)
		s.Require().NoError(err)
		s.Equal("Buy milk", got.Titulo)
	}
	s.Equal(1, s.backing.finds)
	s.True(s.mr.Exists("test:tarea:" + task.ID.String()))
}

func (s *CachedTaskStoreTestSuite) TestList_InvalidatedByMutations() {
	first := s.newTask("first")

	list, err := s.store.ListByOwner(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Len(list, 1)
	_, _ = s.store.ListByOwner(s.ctx, s.owner.ID)
	s.Equal(1, s.backing.lists)

	s.newTask("second")
	list, err = s.store.ListByOwner(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Len(list, 2)
	s.Equal(2, s.backing.lists)

	done := models.StatusCompleted
	_, err = s.store.Update(s.ctx, first.ID, models.TaskChanges{Estado: &done})
	s.Require().NoError(err)

	got, err := s.store.Find(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, got.Estado)

	list, err = s.store.ListByOwner(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, list[0].Estado)

	s.Require().NoError(s.store.Delete(s.ctx, first.ID))
	_, err = s.store.Find(s.ctx, first.ID)
	s.ErrorIs(err, repositories.ErrNotFound)

	list, err = s.store.ListByOwner(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *CachedTaskStoreTestSuite) TestEmptyListIsNotNil() {
	list, err := s.store.ListByOwner(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.NotNil(list)

	list, err = s.store.ListByOwner(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.NotNil(list)
}

func (s *CachedTaskStoreTestSuite) TestRedisDown_StoreStaysAuthoritative() {
	task := s.newTask("Buy milk")
	s.mr.Close()

	title := "Buy bread"
	updated, err := s.store.Update(s.ctx, task.ID, models.TaskChanges{Titulo: &title})
	s.Require().NoError(err)
	s.Equal("Buy bread", updated.Titulo)

	got, err := s.store.Find(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Equal("Buy bread", got.Titulo)
}

func (s *CachedTaskStoreTestSuite) TestFailedInvalidation_NotServedAfterRecovery() {
	task := s.newTask("Buy milk")
	_, err := s.store.Find(s.ctx, task.ID)
	s.Require().NoError(err)
	_, err = s.store.ListByOwner(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	key := "test:tarea:" + task.ID.String()
	s.Require().True(s.mr.Exists(key))

	s.mr.SetError("READONLY unavailable")
	s.Require().NoError(s.store.Delete(s.ctx, task.ID))
	s.mr.SetError("")
	s.Require().True(s.mr.Exists(key), "delete should have failed while redis errored")

	_, err = s.store.Find(s.ctx, task.ID)
	s.ErrorIs(err, repositories.ErrNotFound)
	s.False(s.mr.Exists(key), "retried invalidation should remove the entry")

	list, err := s.store.ListByOwner(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Empty(list)
	s.Equal(2, s.backing.lists)
}

func TestCachedTaskStoreTestSuite(t *testing.T) {
	suite.Run(t, new(CachedTaskStoreTestSuite))
}
