package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type TaskStatus string

const (
	StatusPending   TaskStatus = "pendiente"
	StatusCompleted TaskStatus = "completada"
)

const MaxTitleLength = 255

func (s TaskStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

type Task struct {
	ID          uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Titulo      string     `json:"titulo" gorm:"size:255;not null"`
	Descripcion *string    `json:"descripcion"`
	Estado      TaskStatus `json:"estado" gorm:"size:20;not null;default:'pendiente'"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Task) TableName() string {
	return "tareas"
}

func (t Task) IsCompleted() bool {
	return t.Estado == StatusCompleted
}

// TaskChanges carries the columns an update writes. Nil fields are left
// untouched; ClearDescripcion sets descripcion to NULL.
type TaskChanges struct {
	Titulo           *string
	Descripcion      *string
	ClearDescripcion bool
	Estado           *TaskStatus
}

func (c TaskChanges) Empty() bool {
	return c.Titulo == nil && c.Descripcion == nil && !c.ClearDescripcion && c.Estado == nil
}

// Columns returns the column/value map handed to gorm's Updates.
func (c TaskChanges) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if c.Titulo != nil {
		cols["titulo"] = *c.Titulo
	}
	if c.ClearDescripcion {
		cols["descripcion"] = nil
	} else if c.Descripcion != nil {
		cols["descripcion"] = *c.Descripcion
	}
	if c.Estado != nil {
		cols["estado"] = string(*c.Estado)
	}
	return cols
}

// Apply writes the changes onto t in memory.
func (c TaskChanges) Apply(t *Task) {
	if c.Titulo != nil {
		t.Titulo = *c.Titulo
	}
	if c.ClearDescripcion {
		t.Descripcion = nil
	} else if c.Descripcion != nil {
		d := *c.Descripcion
		t.Descripcion = &d
	}
	if c.Estado != nil {
		t.Estado = *c.Estado
	}
}
