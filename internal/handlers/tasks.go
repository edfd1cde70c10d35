package handlers

import (
	"log/slog"
	"net/http"

	"tareas/internal/middleware"
	"tareas/internal/models"
	"tareas/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

type TaskHandler struct {
	taskService services.TaskService
	logger      *slog.Logger
}

func NewTaskHandler(taskService services.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{taskService: taskService, logger: logger}
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListMine(c.Request.Context(), user)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var input services.CreateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), user, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.taskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.Get(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTask serves both PUT and PATCH; fields missing from the body are
// left as they are.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.taskID(c)
	if !ok {
		return
	}

	var patch services.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, h.logger, err)
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), user, id, patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.taskID(c)
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), user, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tarea eliminada"})
}

func (h *TaskHandler) currentUser(c *gin.Context) (models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.logger, services.ErrUnauthenticated)
	}
	return user, ok
}

// taskID parses the :id param. Anything that is not a UUID cannot name a
// task, so it is reported as not found.
func (h *TaskHandler) taskID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil || id == uuid.Nil {
		respondError(c, h.logger, services.ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}
