package services

import "tareas/internal/models"

// Policy decides whether user may read, modify or delete task.
type Policy func(user models.User, task models.Task) bool

// CanModify grants access to the task's owner only.
func CanModify(user models.User, task models.Task) bool {
	return user.Owns(task)
}
