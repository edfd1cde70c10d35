// Command server runs the tareas REST API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"tareas/internal/cache"
	"tareas/internal/config"
	"tareas/internal/database"
	"tareas/internal/server"

	"gorm.io/gorm/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := newLogger(cfg)
	slog.SetDefault(log)

	pool, err := database.NewDatabasePool(poolConfig(cfg))
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Migrate(); err != nil {
		return err
	}
	log.Info("database ready", "driver", cfg.Database.Driver)

	taskCache := newTaskCache(cfg, log)
	if taskCache != nil {
		defer taskCache.Close()
	}

	app := server.New(server.Options{
		Config: cfg,
		DB:     pool.DB,
		Cache:  taskCache,
		Logger: log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.ListenAndServe(ctx)
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func poolConfig(cfg *config.Config) *database.PoolConfig {
	gormLevel := logger.Warn
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		gormLevel = logger.Info
	case "error":
		gormLevel = logger.Error
	}

	return &database.PoolConfig{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.GetDatabaseDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		LogLevel:        gormLevel,
	}
}

// newTaskCache returns nil when caching is off. Redis sits behind the
// in-process level when enabled.
func newTaskCache(cfg *config.Config, log *slog.Logger) cache.Cache {
	if !cfg.Cache.Enabled && !cfg.Redis.Enabled {
		return nil
	}

	breaker := cache.NewCircuitBreaker(&cache.CircuitBreakerConfig{
		MaxFailures:      5,
		Timeout:          cache.DefaultCircuitBreakerConfig().Timeout,
		HalfOpenMaxCalls: 3,
		OnStateChange: func(from, to cache.CircuitBreakerState) {
			log.Warn("redis circuit breaker changed state", "from", from.String(), "to", to.String())
		},
	})

	if !cfg.Redis.Enabled {
		log.Info("task cache enabled", "levels", "memory")
		return cache.NewMultiLevelCache(nil, cache.WithCircuitBreaker(breaker))
	}

	redisCache := cache.NewRedisCache(&cache.CacheConfig{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		KeyPrefix:    cache.DefaultCacheConfig().KeyPrefix,
	})
	if err := redisCache.Health(context.Background()); err != nil {
		log.Warn("redis unreachable at startup, serving from memory until it recovers", "addr", cfg.GetRedisAddr(), "error", err)
	}
	log.Info("task cache enabled", "levels", "memory+redis", "addr", cfg.GetRedisAddr())
	return cache.NewMultiLevelCache(redisCache, cache.WithCircuitBreaker(breaker))
}
