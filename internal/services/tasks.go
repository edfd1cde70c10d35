package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"tareas/internal/models"
	"tareas/internal/repositories"

	"github.com/gofrs/uuid"
)

type CreateTaskInput struct {
	Titulo      string  `json:"titulo"`
	Descripcion *string `json:"descripcion"`
}

// TaskPatch is a partial update. Absent fields are left untouched.
type TaskPatch struct {
	Titulo      NullableString `json:"titulo"`
	Descripcion NullableString `json:"descripcion"`
	Estado      NullableString `json:"estado"`
}

// NullableString tells an absent JSON field apart from an explicit null.
type NullableString struct {
	Set   bool
	Value *string
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

func (n NullableString) MarshalJSON() ([]byte, error) {
	if !n.Set || n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

type TaskService interface {
	ListMine(ctx context.Context, user models.User) ([]models.Task, error)
	Create(ctx context.Context, user models.User, input CreateTaskInput) (models.Task, error)
	Get(ctx context.Context, user models.User, id uuid.UUID) (models.Task, error)
	Update(ctx context.Context, user models.User, id uuid.UUID, patch TaskPatch) (models.Task, error)
	Delete(ctx context.Context, user models.User, id uuid.UUID) error
}

type TaskServiceImpl struct {
	store  repositories.TaskStore
	policy Policy
}

func NewTaskService(store repositories.TaskStore, policy Policy) *TaskServiceImpl {
	if policy == nil {
		policy = CanModify
	}
	return &TaskServiceImpl{store: store, policy: policy}
}

func (s *TaskServiceImpl) ListMine(ctx context.Context, user models.User) ([]models.Task, error) {
	return s.store.ListByOwner(ctx, user.ID)
}

func (s *TaskServiceImpl) Create(ctx context.Context, user models.User, input CreateTaskInput) (models.Task, error) {
	title := strings.TrimSpace(input.Titulo)

	verr := NewValidationError()
	checkVar(verr, "titulo", title, "required,max=255")
	if err := verr.OrNil(); err != nil {
		return models.Task{}, err
	}

	task := models.Task{
		UserID:      user.ID,
		Titulo:      title,
		Descripcion: normalizeDescripcion(input.Descripcion),
		Estado:      models.StatusPending,
	}
	if err := s.store.Create(ctx, &task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) Get(ctx context.Context, user models.User, id uuid.UUID) (models.Task, error) {
	return s.authorize(ctx, user, id)
}

func (s *TaskServiceImpl) Update(ctx context.Context, user models.User, id uuid.UUID, patch TaskPatch) (models.Task, error) {
	task, err := s.authorize(ctx, user, id)
	if err != nil {
		return models.Task{}, err
	}

	changes, err := patch.changes()
	if err != nil {
		return models.Task{}, err
	}
	if changes.Empty() {
		return task, nil
	}

	updated, err := s.store.Update(ctx, id, changes)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Task{}, ErrNotFound
	}
	return updated, err
}

func (s *TaskServiceImpl) Delete(ctx context.Context, user models.User, id uuid.UUID) error {
	if _, err := s.authorize(ctx, user, id); err != nil {
		return err
	}

	err := s.store.Delete(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// authorize loads the task and applies the ownership policy.
func (s *TaskServiceImpl) authorize(ctx context.Context, user models.User, id uuid.UUID) (models.Task, error) {
	task, err := s.store.Find(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, err
	}

	if !s.policy(user, task) {
		return models.Task{}, ErrForbidden
	}
	return task, nil
}

func (p TaskPatch) changes() (models.TaskChanges, error) {
	var changes models.TaskChanges
	verr := NewValidationError()

	// titulo may be omitted but never nulled.
	if p.Titulo.Set {
		if p.Titulo.Value == nil {
			verr.Add("titulo", "The titulo field must be a string.")
		} else {
			title := strings.TrimSpace(*p.Titulo.Value)
			checkVar(verr, "titulo", title, "required,max=255")
			changes.Titulo = &title
		}
	}

	if p.Descripcion.Set {
		if desc := normalizeDescripcion(p.Descripcion.Value); desc != nil {
			changes.Descripcion = desc
		} else {
			changes.ClearDescripcion = true
		}
	}

	if p.Estado.Set {
		if p.Estado.Value == nil {
			verr.Add("estado", "The selected estado is invalid.")
		} else {
			checkVar(verr, "estado", *p.Estado.Value, "required,oneof=pendiente completada")
			status := models.TaskStatus(*p.Estado.Value)
			changes.Estado = &status
		}
	}

	if err := verr.OrNil(); err != nil {
		return models.TaskChanges{}, err
	}
	return changes, nil
}

// normalizeDescripcion trims the value and turns an empty string into null.
func normalizeDescripcion(desc *string) *string {
	if desc == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*desc)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
