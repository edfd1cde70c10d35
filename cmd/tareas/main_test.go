package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tareas/internal/config"
	"tareas/internal/models"
	"tareas/internal/server"
	"tareas/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type cli struct {
	t      *testing.T
	url    string
	dir    string
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("TAREAS_API_URL", "")

	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		Auth: config.AuthConfig{
			JWTSecret:  "cli-test-secret",
			Issuer:     "tareas-api",
			TokenTTL:   time.Hour,
			BCryptCost: bcrypt.MinCost,
		},
	}
	app := server.New(server.Options{Config: cfg, DB: testutil.NewTestDB(t)})
	srv := httptest.NewServer(app.Router)
	t.Cleanup(srv.Close)

	return &cli{t: t, url: srv.URL, dir: t.TempDir()}
}

// run executes one command and returns its error. Output accumulates.
func (c *cli) run(args ...string) error {
	c.t.Helper()
	c.stdout.Reset()
	c.stderr.Reset()

	root := newRootCmd(&c.stdout, &c.stderr)
	root.SetArgs(append([]string{"--config-dir", c.dir, "--api-url", c.url}, args...))
	return root.Execute()
}

func (c *cli) register() {
	c.t.Helper()
	require.NoError(c.t, c.run("register", "--name", "Ana", "--email", "ana@example.com", "--password", "secret123"))
}

func TestCLI_RegisterSavesToken(t *testing.T) {
	c := newCLI(t)
	c.register()

	assert.Contains(t, c.stderr.String(), "Cuenta creada exitosamente")

	info, err := os.Stat(filepath.Join(c.dir, "token"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, c.run("me"))
	assert.Equal(t, "Ana <ana@example.com>\n", c.stdout.String())
}

func TestCLI_TaskWorkflow(t *testing.T) {
	c := newCLI(t)
	c.register()

	require.NoError(t, c.run("add", "Buy", "milk", "-d", "two litres"))
	assert.Contains(t, c.stderr.String(), "Tarea creada")
	require.NoError(t, c.run("add", "Pay rent"))

	require.NoError(t, c.run("list"))
	out := c.stdout.String()
	assert.Contains(t, out, "Pendientes (2)")
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "two litres")
	assert.Contains(t, out, "Completadas (0)")

	require.NoError(t, c.run("done", "1"))
	assert.Contains(t, c.stderr.String(), "Tarea completada")

	require.NoError(t, c.run("list", "--completed"))
	assert.Contains(t, c.stdout.String(), "Completadas (1)")
	assert.NotContains(t, c.stdout.String(), "Pendientes")

	require.NoError(t, c.run("edit", "1", "--titulo", "Pay rent today"))
	assert.Contains(t, c.stderr.String(), "Tarea actualizada")

	require.NoError(t, c.run("list", "--pending"))
	assert.Contains(t, c.stdout.String(), "Pay rent today")

	require.NoError(t, c.run("rm", "1"))
	assert.Contains(t, c.stderr.String(), "Tarea eliminada")

	require.NoError(t, c.run("list"))
	assert.Contains(t, c.stdout.String(), "Pendientes (0)")
	assert.Contains(t, c.stdout.String(), "Completadas (1)")
}

func TestCLI_LoginAndLogout(t *testing.T) {
	c := newCLI(t)
	c.register()

	require.NoError(t, c.run("logout"))
	assert.Contains(t, c.stderr.String(), "Sesión cerrada")
	_, err := os.Stat(filepath.Join(c.dir, "token"))
	assert.True(t, os.IsNotExist(err))

	err = c.run("list")
	assert.ErrorIs(t, err, errNotLoggedIn)

	err = c.run("login", "--email", "ana@example.com", "--password", "wrong-password")
	assert.Error(t, err)
	assert.Contains(t, c.stderr.String(), "Credenciales inválidas")

	require.NoError(t, c.run("login", "-e", "ana@example.com", "-p", "secret123"))
	assert.Contains(t, c.stderr.String(), "Inicio de sesión exitoso")
}

func TestCLI_ValidationMessages(t *testing.T) {
	c := newCLI(t)

	err := c.run("register", "--name", "Ana", "--email", "not-an-email", "--password", "secret123")
	assert.Error(t, err)
	assert.Contains(t, c.stderr.String(), "Correo electrónico inválido")
	_, statErr := os.Stat(filepath.Join(c.dir, "token"))
	assert.True(t, os.IsNotExist(statErr))

	c.register()
	err = c.run("edit", "1", "--estado", "archivada")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "estado must be")

	err = c.run("edit", "1")
	assert.Error(t, err)
}

func TestCLI_ExpiredTokenIsReported(t *testing.T) {
	c := newCLI(t)
	require.NoError(t, os.WriteFile(filepath.Join(c.dir, "token"), []byte("not-a-jwt"), 0o600))

	err := c.run("list")
	assert.ErrorIs(t, err, errSessionExpired)

	_, statErr := os.Stat(filepath.Join(c.dir, "token"))
	assert.True(t, os.IsNotExist(statErr), "rejected token should be removed")
}

func TestResolveTask(t *testing.T) {
	a := models.Task{ID: uuid.Must(uuid.FromString("3f2a9c1e-0000-4000-8000-000000000001")), Titulo: "a"}
	b := models.Task{ID: uuid.Must(uuid.FromString("3f2b0000-0000-4000-8000-000000000002")), Titulo: "b"}
	tasks := []models.Task{a, b}

	tests := []struct {
		ref     string
		want    string
		wantErr string
	}{
		{"1", "a", ""},
		{"2", "b", ""},
		{"3", "", "no task number"},
		{"0", "", "no task number"},
		{"3f2a", "a", ""},
		{"3F2B", "b", ""},
		{"3f2", "", "matches 2 tasks"},
		{"ffff", "", "no task matches"},
		{" ", "", "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := resolveTask(tasks, tt.ref)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Titulo)
		})
	}
}
