package client

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"

	"tareas/internal/models"

	"github.com/gofrs/uuid"
)

const (
	RouteLogin = "/login"
	RouteTasks = "/tareas"

	minPasswordLength = 6
	minNameLength     = 2
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	msgInvalidEmail       = "Correo electrónico inválido"
	msgShortPassword      = "La contraseña debe tener al menos 6 caracteres"
	msgShortName          = "El nombre debe tener al menos 2 caracteres"
	msgInvalidCredentials = "Credenciales inválidas"
	msgLoginFailed        = "Error al iniciar sesión"
	msgLoggedIn           = "Inicio de sesión exitoso"
	msgRegistered         = "Cuenta creada exitosamente"
	msgRegisterFailed     = "Error al crear cuenta"
	msgLoggedOut          = "Sesión cerrada"
	msgInvalidSession     = "Sesión inválida"
	msgTaskCreated        = "Tarea creada"
	msgTaskCreateFailed   = "Error al crear tarea"
	msgTaskUpdated        = "Tarea actualizada"
	msgTaskUpdateFailed   = "Error al actualizar tarea"
	msgTaskCompleted      = "Tarea completada"
	msgTaskCompleteFailed = "Error al marcar como completada"
	msgTaskDeleted        = "Tarea eliminada"
	msgTaskDeleteFailed   = "Error al eliminar tarea"
)

type Navigator interface {
	Navigate(route string)
}

type Notifier interface {
	Success(message string)
	Error(message string)
}

// Controller owns the client session and the cached task list. Every
// successful mutation is followed by a full reload of the list.
type Controller struct {
	api     API
	session *Session
	tokens  TokenStore
	nav     Navigator
	notify  Notifier

	mu    sync.RWMutex
	tasks []models.Task
}

func NewController(api API, session *Session, tokens TokenStore, nav Navigator, notify Notifier) *Controller {
	return &Controller{
		api:     api,
		session: session,
		tokens:  tokens,
		nav:     nav,
		notify:  notify,
	}
}

func (c *Controller) Session() *Session {
	return c.session
}

// Init restores a saved session. A saved token the server no longer accepts
// logs the user out.
func (c *Controller) Init(ctx context.Context) error {
	token, err := c.tokens.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	c.session.SetToken(token)
	profile, err := c.api.Me(ctx)
	if err != nil {
		c.Logout()
		return err
	}
	c.session.SetUser(profile)
	return nil
}

func (c *Controller) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if err := checkCredentials(email, password); err != nil {
		c.notify.Error(err.Message)
		return err
	}

	result, err := c.api.Login(ctx, email, password)
	if err != nil {
		c.reportAuthFailure(err, msgLoginFailed)
		return err
	}

	if err := c.establish(ctx, result.Token); err != nil {
		c.reportAuthFailure(err, msgLoginFailed)
		return err
	}
	c.notify.Success(msgLoggedIn)
	c.nav.Navigate(RouteTasks)
	return nil
}

func (c *Controller) Register(ctx context.Context, name, email, password string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if len([]rune(name)) < minNameLength {
		err := &APIError{Kind: KindValidation, Message: msgShortName}
		c.notify.Error(err.Message)
		return err
	}
	if err := checkCredentials(email, password); err != nil {
		c.notify.Error(err.Message)
		return err
	}

	result, err := c.api.Register(ctx, name, email, password)
	if err != nil {
		c.reportAuthFailure(err, msgRegisterFailed)
		return err
	}

	if err := c.establish(ctx, result.Token); err != nil {
		c.reportAuthFailure(err, msgRegisterFailed)
		return err
	}
	c.notify.Success(msgRegistered)
	c.nav.Navigate(RouteTasks)
	return nil
}

// Logout forgets the token, the profile and the task list.
func (c *Controller) Logout() {
	c.session.Clear()
	_ = c.tokens.Clear()

	c.mu.Lock()
	c.tasks = nil
	c.mu.Unlock()

	c.notify.Success(msgLoggedOut)
	c.nav.Navigate(RouteLogin)
}

// Refresh reloads the task list. Any failure is treated as an invalid
// session.
func (c *Controller) Refresh(ctx context.Context) error {
	tasks, err := c.api.ListTasks(ctx)
	if err != nil {
		c.notify.Error(msgInvalidSession)
		c.Logout()
		return err
	}

	c.mu.Lock()
	c.tasks = tasks
	c.mu.Unlock()
	return nil
}

func (c *Controller) CreateTask(ctx context.Context, titulo string, descripcion *string) error {
	_, err := c.api.CreateTask(ctx, NewTask{Titulo: titulo, Descripcion: descripcion})
	return c.afterMutation(ctx, err, msgTaskCreated, msgTaskCreateFailed)
}

func (c *Controller) UpdateTask(ctx context.Context, id uuid.UUID, update TaskUpdate) error {
	_, err := c.api.UpdateTask(ctx, id, update)
	return c.afterMutation(ctx, err, msgTaskUpdated, msgTaskUpdateFailed)
}

func (c *Controller) CompleteTask(ctx context.Context, id uuid.UUID) error {
	done := models.StatusCompleted
	_, err := c.api.UpdateTask(ctx, id, TaskUpdate{Estado: &done})
	return c.afterMutation(ctx, err, msgTaskCompleted, msgTaskCompleteFailed)
}

func (c *Controller) DeleteTask(ctx context.Context, id uuid.UUID) error {
	err := c.api.DeleteTask(ctx, id)
	return c.afterMutation(ctx, err, msgTaskDeleted, msgTaskDeleteFailed)
}

func (c *Controller) Tasks() []models.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Task(nil), c.tasks...)
}

func (c *Controller) Pending() []models.Task {
	return c.filter(func(t models.Task) bool { return !t.IsCompleted() })
}

func (c *Controller) Completed() []models.Task {
	return c.filter(models.Task.IsCompleted)
}

func (c *Controller) filter(keep func(models.Task) bool) []models.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []models.Task{}
	for _, t := range c.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (c *Controller) establish(ctx context.Context, token string) error {
	c.session.SetToken(token)
	if err := c.tokens.Save(token); err != nil {
		c.session.Clear()
		return err
	}

	profile, err := c.api.Me(ctx)
	if err != nil {
		c.session.Clear()
		_ = c.tokens.Clear()
		return err
	}
	c.session.SetUser(profile)

	tasks, err := c.api.ListTasks(ctx)
	if err != nil {
		c.session.Clear()
		_ = c.tokens.Clear()
		return err
	}
	c.mu.Lock()
	c.tasks = tasks
	c.mu.Unlock()
	return nil
}

func (c *Controller) afterMutation(ctx context.Context, err error, success, failure string) error {
	if err != nil {
		c.reportError(err, failure)
		return err
	}
	c.notify.Success(success)
	return c.Refresh(ctx)
}

func (c *Controller) reportAuthFailure(err error, fallback string) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Kind == KindUnauthenticated {
		c.notify.Error(msgInvalidCredentials)
		return
	}
	c.reportError(err, fallback)
}

// reportError shows field messages for validation failures and the server's
// own message for the rest.
func (c *Controller) reportError(err error, fallback string) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		c.notify.Error(fallback)
		return
	}

	switch apiErr.Kind {
	case KindValidation:
		msgs := apiErr.Messages()
		if len(msgs) == 0 {
			msgs = []string{fallback}
		}
		for _, msg := range msgs {
			c.notify.Error(msg)
		}
	case KindForbidden, KindNotFound, KindUnauthenticated:
		c.notify.Error(apiErr.Message)
	default:
		c.notify.Error(fallback)
	}
}

func checkCredentials(email, password string) *APIError {
	if !emailPattern.MatchString(email) {
		return &APIError{Kind: KindValidation, Message: msgInvalidEmail}
	}
	if len(password) < minPasswordLength {
		return &APIError{Kind: KindValidation, Message: msgShortPassword}
	}
	return nil
}
