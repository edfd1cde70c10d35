package monitoring_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tareas/internal/monitoring"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMonitoredRouter(m *monitoring.Monitor) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusForbidden) })
	router.GET("/health", m.HealthHandler())
	router.GET("/health/ready", m.ReadinessHandler())
	router.GET("/health/live", m.LivenessHandler())
	router.GET("/metrics", m.MetricsHandler())
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMonitor_CountsRequests(t *testing.T) {
	m := monitoring.New()
	router := newMonitoredRouter(m)

	get(router, "/ok")
	get(router, "/ok")
	get(router, "/fail")

	snapshot := m.Snapshot()
	assert.Equal(t, int64(3), snapshot.RequestCount)
	assert.Equal(t, int64(1), snapshot.ErrorCount)
	assert.Equal(t, int64(2), snapshot.StatusCodes["200"])
	assert.Equal(t, int64(2), snapshot.Endpoints["GET /ok"])
	assert.Equal(t, int64(0), snapshot.ActiveRequests)

	w := get(router, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "application")
	assert.Contains(t, body, "system")
}

func TestMonitor_HealthChecksRunOnEveryRequest(t *testing.T) {
	m := monitoring.New()
	router := newMonitoredRouter(m)

	var dbErr error
	m.RegisterHealthCheck("database", func(context.Context) error { return dbErr })

	assert.Equal(t, http.StatusOK, get(router, "/health").Code)
	assert.Equal(t, http.StatusOK, get(router, "/health/ready").Code)

	dbErr = errors.New("connection refused")

	w := get(router, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
	assert.Equal(t, http.StatusServiceUnavailable, get(router, "/health/ready").Code)
	assert.Equal(t, http.StatusOK, get(router, "/health/live").Code)
}
