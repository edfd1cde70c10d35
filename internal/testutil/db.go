// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"
	"time"

	"tareas/internal/database"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB returns a migrated in-memory sqlite database that is closed when
// the test finishes.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	pool, err := database.NewDatabasePool(&database.PoolConfig{
		Driver:          "sqlite",
		DSN:             "file::memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		LogLevel:        logger.Silent,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	if err := pool.Migrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return pool.DB
}
