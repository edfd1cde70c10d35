package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tareas/internal/client"
	"tareas/internal/models"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/suite"
)

type ControllerTestSuite struct {
	suite.Suite
	ctx     context.Context
	srv     *httptest.Server
	api     *client.HTTPClient
	session *client.Session
	tokens  *client.MemoryTokenStore
	events  *recorder
	ctrl    *client.Controller
}

func (s *ControllerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.srv = newAPIServer(s.T())
	s.api, s.session = newHTTPClient(s.T(), s.srv)
	s.tokens = &client.MemoryTokenStore{}
	s.events = &recorder{}
	s.ctrl = client.NewController(s.api, s.session, s.tokens, s.events, s.events)
}

func (s *ControllerTestSuite) register() {
	s.Require().NoError(s.ctrl.Register(s.ctx, "Ana", "ana@example.com", "secret123"))
}

func (s *ControllerTestSuite) TestRegister_EstablishesSession() {
	s.register()

	s.True(s.session.Authenticated())
	user, ok := s.session.User()
	s.Require().True(ok)
	s.Equal("Ana", user.Name)

	saved, _ := s.tokens.Load()
	s.Equal(s.session.AccessToken(), saved)

	s.Equal(client.RouteTasks, s.events.lastRoute())
	s.Contains(s.events.successes, "Cuenta creada exitosamente")
	s.NotNil(s.ctrl.Tasks())
	s.Empty(s.ctrl.Tasks())
}

func (s *ControllerTestSuite) TestLogin_ThenTasksLoaded() {
	s.register()
	s.Require().NoError(s.ctrl.CreateTask(s.ctx, "Buy milk", nil))
	s.ctrl.Logout()
	s.Empty(s.ctrl.Tasks())

	s.Require().NoError(s.ctrl.Login(s.ctx, "ana@example.com", "secret123"))

	s.Contains(s.events.successes, "Inicio de sesión exitoso")
	s.Require().Len(s.ctrl.Tasks(), 1)
	s.Equal("Buy milk", s.ctrl.Tasks()[0].Titulo)
}

func (s *ControllerTestSuite) TestLogin_WrongPassword() {
	s.register()
	s.ctrl.Logout()

	err := s.ctrl.Login(s.ctx, "ana@example.com", "wrong-password")
	s.True(client.IsKind(err, client.KindUnauthenticated))
	s.Contains(s.events.errors, "Credenciales inválidas")
	s.False(s.session.Authenticated())
}

func (s *ControllerTestSuite) TestRegister_DuplicateEmailShowsFieldMessage() {
	s.register()
	s.ctrl.Logout()

	err := s.ctrl.Register(s.ctx, "Ana Two", "ana@example.com", "secret123")
	s.True(client.IsKind(err, client.KindValidation))
	s.Contains(s.events.errors, "The email has already been taken.")
}

func (s *ControllerTestSuite) TestCompleteTask_MovesToCompleted() {
	s.register()
	s.Require().NoError(s.ctrl.CreateTask(s.ctx, "Buy milk", nil))
	s.Require().Len(s.ctrl.Pending(), 1)
	s.Empty(s.ctrl.Completed())

	id := s.ctrl.Pending()[0].ID
	s.Require().NoError(s.ctrl.CompleteTask(s.ctx, id))

	s.Empty(s.ctrl.Pending())
	s.Require().Len(s.ctrl.Completed(), 1)
	s.Equal(id, s.ctrl.Completed()[0].ID)
	s.Contains(s.events.successes, "Tarea completada")
}

func (s *ControllerTestSuite) TestUpdateAndDelete() {
	s.register()
	desc := "two litres"
	s.Require().NoError(s.ctrl.CreateTask(s.ctx, "Buy milk", &desc))
	id := s.ctrl.Tasks()[0].ID

	title := "Buy oat milk"
	s.Require().NoError(s.ctrl.UpdateTask(s.ctx, id, client.TaskUpdate{Titulo: &title}))
	s.Equal("Buy oat milk", s.ctrl.Tasks()[0].Titulo)
	s.Require().NotNil(s.ctrl.Tasks()[0].Descripcion)
	s.Contains(s.events.successes, "Tarea actualizada")

	s.Require().NoError(s.ctrl.DeleteTask(s.ctx, id))
	s.Empty(s.ctrl.Tasks())
	s.Contains(s.events.successes, "Tarea eliminada")
}

func (s *ControllerTestSuite) TestCreateTask_ValidationErrorIsNotified() {
	s.register()

	err := s.ctrl.CreateTask(s.ctx, "", nil)
	s.True(client.IsKind(err, client.KindValidation))
	s.Contains(s.events.errors, "The titulo field is required.")
	s.True(s.session.Authenticated(), "validation errors keep the session")
}

func (s *ControllerTestSuite) TestInit_RestoresSavedToken() {
	s.register()
	saved, _ := s.tokens.Load()

	api, session := newHTTPClient(s.T(), s.srv)
	events := &recorder{}
	tokens := &client.MemoryTokenStore{}
	s.Require().NoError(tokens.Save(saved))

	ctrl := client.NewController(api, session, tokens, events, events)
	s.Require().NoError(ctrl.Init(s.ctx))

	s.True(session.Authenticated())
	user, ok := session.User()
	s.Require().True(ok)
	s.Equal("ana@example.com", user.Email)
	s.Empty(events.routes)
}

func (s *ControllerTestSuite) TestInit_NoTokenIsNoop() {
	s.Require().NoError(s.ctrl.Init(s.ctx))
	s.False(s.session.Authenticated())
	s.Empty(s.events.routes)
}

func TestControllerTestSuite(t *testing.T) {
	suite.Run(t, new(ControllerTestSuite))
}

// stubAPI lets tests fail specific calls and count requests.
type stubAPI struct {
	calls   int
	meErr   error
	listErr error
	tasks   []models.Task
	profile models.Profile
}

func (a *stubAPI) Register(ctx context.Context, name, email, password string) (client.AuthResult, error) {
	a.calls++
	return client.AuthResult{Token: "tok"}, nil
}

func (a *stubAPI) Login(ctx context.Context, email, password string) (client.AuthResult, error) {
	a.calls++
	return client.AuthResult{Token: "tok"}, nil
}

func (a *stubAPI) Me(ctx context.Context) (models.Profile, error) {
	a.calls++
	return a.profile, a.meErr
}

func (a *stubAPI) ListTasks(ctx context.Context) ([]models.Task, error) {
	a.calls++
	return a.tasks, a.listErr
}

func (a *stubAPI) CreateTask(ctx context.Context, task client.NewTask) (models.Task, error) {
	a.calls++
	return models.Task{}, nil
}

func (a *stubAPI) UpdateTask(ctx context.Context, id uuid.UUID, update client.TaskUpdate) (models.Task, error) {
	a.calls++
	return models.Task{}, &client.APIError{Kind: client.KindForbidden, Status: http.StatusForbidden, Message: "No autorizado"}
}

func (a *stubAPI) DeleteTask(ctx context.Context, id uuid.UUID) error {
	a.calls++
	return &client.APIError{Kind: client.KindTransport, Err: errors.New("connection refused")}
}

func newStubController(api *stubAPI) (*client.Controller, *client.Session, *client.MemoryTokenStore, *recorder) {
	session := client.NewSession()
	tokens := &client.MemoryTokenStore{}
	events := &recorder{}
	return client.NewController(api, session, tokens, events, events), session, tokens, events
}

func TestController_PreChecksSendNoRequest(t *testing.T) {
	cases := []struct {
		name string
		run  func(*client.Controller) error
		want string
	}{
		{"bad email", func(c *client.Controller) error {
			return c.Login(context.Background(), "not-an-email", "secret123")
		}, "Correo electrónico inválido"},
		{"short password", func(c *client.Controller) error {
			return c.Login(context.Background(), "ana@example.com", "12345")
		}, "La contraseña debe tener al menos 6 caracteres"},
		{"short name", func(c *client.Controller) error {
			return c.Register(context.Background(), "A", "ana@example.com", "secret123")
		}, "El nombre debe tener al menos 2 caracteres"},
		{"register bad email", func(c *client.Controller) error {
			return c.Register(context.Background(), "Ana", "ana@example", "secret123")
		}, "Correo electrónico inválido"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &stubAPI{}
			ctrl, _, _, events := newStubController(api)

			err := tc.run(ctrl)
			if !client.IsKind(err, client.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if api.calls != 0 {
				t.Errorf("expected no requests, got %d", api.calls)
			}
			if len(events.errors) != 1 || events.errors[0] != tc.want {
				t.Errorf("expected %q, got %v", tc.want, events.errors)
			}
		})
	}
}

func TestController_InitWithRejectedTokenLogsOut(t *testing.T) {
	api := &stubAPI{meErr: &client.APIError{Kind: client.KindUnauthenticated, Status: http.StatusUnauthorized}}
	ctrl, session, tokens, events := newStubController(api)
	_ = tokens.Save("stale")

	if err := ctrl.Init(context.Background()); err == nil {
		t.Fatal("expected error for rejected token")
	}
	if session.Authenticated() {
		t.Error("session should be cleared")
	}
	if saved, _ := tokens.Load(); saved != "" {
		t.Errorf("persisted token should be cleared, got %q", saved)
	}
	if events.lastRoute() != client.RouteLogin {
		t.Errorf("expected navigation to %s, got %v", client.RouteLogin, events.routes)
	}
}

func TestController_RefreshFailureForcesLogout(t *testing.T) {
	api := &stubAPI{tasks: []models.Task{{Titulo: "x"}}}
	ctrl, session, tokens, events := newStubController(api)

	if err := ctrl.Login(context.Background(), "ana@example.com", "secret123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if len(ctrl.Tasks()) != 1 {
		t.Fatalf("expected 1 task, got %d", len(ctrl.Tasks()))
	}

	api.listErr = &client.APIError{Kind: client.KindServer, Status: http.StatusInternalServerError}
	if err := ctrl.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}

	if session.Authenticated() {
		t.Error("session should be cleared")
	}
	if saved, _ := tokens.Load(); saved != "" {
		t.Errorf("persisted token should be cleared, got %q", saved)
	}
	if len(ctrl.Tasks()) != 0 {
		t.Error("task list should be cleared")
	}
	if events.lastRoute() != client.RouteLogin {
		t.Errorf("expected navigation to %s, got %v", client.RouteLogin, events.routes)
	}
	found := false
	for _, msg := range events.errors {
		if msg == "Sesión inválida" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected invalid session notification, got %v", events.errors)
	}
}

func TestController_MutationErrorsAreNotified(t *testing.T) {
	api := &stubAPI{}
	ctrl, session, _, events := newStubController(api)
	session.SetToken("tok")
	id := uuid.Must(uuid.NewV4())

	before := api.calls
	if err := ctrl.CompleteTask(context.Background(), id); !client.IsKind(err, client.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if api.calls-before != 1 {
		t.Errorf("expected exactly one request and no refresh, got %d", api.calls-before)
	}

	if err := ctrl.DeleteTask(context.Background(), id); !client.IsKind(err, client.KindTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}

	want := []string{"No autorizado", "Error al eliminar tarea"}
	if len(events.errors) != len(want) {
		t.Fatalf("expected %v, got %v", want, events.errors)
	}
	for i := range want {
		if events.errors[i] != want[i] {
			t.Errorf("error %d: expected %q, got %q", i, want[i], events.errors[i])
		}
	}
	if !session.Authenticated() {
		t.Error("mutation errors should not end the session")
	}
}
