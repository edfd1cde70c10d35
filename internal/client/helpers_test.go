package client_test

import (
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"tareas/internal/client"
	"tareas/internal/config"
	"tareas/internal/server"
	"tareas/internal/testutil"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// newAPIServer runs the real router over an in-memory database.
func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		Auth: config.AuthConfig{
			JWTSecret:  "client-test-secret",
			Issuer:     "tareas-api",
			TokenTTL:   time.Hour,
			BCryptCost: bcrypt.MinCost,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
	app := server.New(server.Options{Config: cfg, DB: testutil.NewTestDB(t)})

	srv := httptest.NewServer(app.Router)
	t.Cleanup(srv.Close)
	return srv
}

func newHTTPClient(t *testing.T, srv *httptest.Server) (*client.HTTPClient, *client.Session) {
	t.Helper()
	session := client.NewSession()
	return client.NewHTTPClient(srv.URL, session, 5*time.Second), session
}

type recorder struct {
	mu        sync.Mutex
	routes    []string
	successes []string
	errors    []string
}

func (r *recorder) Navigate(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

func (r *recorder) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, msg)
}

func (r *recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, msg)
}

func (r *recorder) lastRoute() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return ""
	}
	return r.routes[len(r.routes)-1]
}
