package repositories

import (
	"context"
	"errors"
	"fmt"

	"tareas/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// TaskStore persists task records. Every method is a single-row point
// operation except ListByOwner.
type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	Find(ctx context.Context, id uuid.UUID) (models.Task, error)
	Update(ctx context.Context, id uuid.UUID, changes models.TaskChanges) (models.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Task, error)
}

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("failed to generate task ID: %w", err)
		}
		task.ID = id
	}
	if task.Estado == "" {
		task.Estado = models.StatusPending
	}

	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Find(ctx context.Context, id uuid.UUID) (models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to find task %s: %w", id, err)
	}
	return task, nil
}

func (r *TaskRepository) Update(ctx context.Context, id uuid.UUID, changes models.TaskChanges) (models.Task, error) {
	if changes.Empty() {
		return r.Find(ctx, id)
	}

	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", id).
		Updates(changes.Columns())
	if result.Error != nil {
		return models.Task{}, fmt.Errorf("failed to update task %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return models.Task{}, ErrNotFound
	}

	return r.Find(ctx, id)
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete task %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Task, error) {
	tasks := []models.Task{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks for user %s: %w", ownerID, err)
	}
	return tasks, nil
}
