package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tareas/internal/middleware"

	"github.com/gin-gonic/gin"
)

func TestRecoveryWithLog_NoPanic(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.RecoveryWithLog())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestRecoveryWithLog_WithPanic(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	router := gin.New()
	router.Use(middleware.RecoveryWithLog(logger))
	router.DELETE("/tareas/:id", func(c *gin.Context) {
		panic("store exploded")
	})

	req, _ := http.NewRequest("DELETE", "/tareas/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if body := w.Body.String(); body != `{"error":"internal server error"}` {
		t.Errorf("Expected generic error body, got %s", body)
	}
	if strings.Contains(w.Body.String(), "store exploded") {
		t.Error("Panic value must not reach the client")
	}

	logged := buf.String()
	for _, want := range []string{"panic recovered", "store exploded", "path=/tareas/42", "method=DELETE"} {
		if !strings.Contains(logged, want) {
			t.Errorf("Expected log to contain %q, got %s", want, logged)
		}
	}
}

func TestRequestLogger_LogsStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	})

	req, _ := http.NewRequest("GET", "/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	line := buf.String()
	if !strings.Contains(line, `"status":404`) || !strings.Contains(line, `"level":"WARN"`) {
		t.Errorf("Expected a WARN line with status 404, got %s", line)
	}
}
