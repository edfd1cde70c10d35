// Package server wires configuration, storage and services into the gin
// engine that serves the tareas API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"tareas/internal/cache"
	"tareas/internal/config"
	"tareas/internal/handlers"
	"tareas/internal/middleware"
	"tareas/internal/monitoring"
	"tareas/internal/repositories"
	"tareas/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Options struct {
	Config *config.Config
	DB     *gorm.DB
	// Cache is optional; without it the task store reads straight from DB.
	Cache  cache.Cache
	Logger *slog.Logger
}

type App struct {
	Router  *gin.Engine
	Monitor *monitoring.Monitor

	cfg     *config.Config
	logger  *slog.Logger
	limiter *middleware.IPRateLimiter
}

func New(opts Options) *App {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var taskStore repositories.TaskStore = repositories.NewTaskRepository(opts.DB)
	if opts.Cache != nil {
		taskStore = services.NewCachedTaskStore(taskStore, opts.Cache, cfg.Cache.TaskTTL, cfg.Cache.ListTTL, logger)
	}
	userStore := repositories.NewUserRepository(opts.DB)

	tokens := services.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	authService := services.NewAuthService(userStore, tokens, cfg.Auth.BCryptCost)
	taskService := services.NewTaskService(taskStore, services.CanModify)

	monitor := monitoring.New()
	monitor.RegisterHealthCheck("database", func(ctx context.Context) error {
		sqlDB, err := opts.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	if opts.Cache != nil {
		monitor.RegisterHealthCheck("cache", opts.Cache.Health)
	}

	app := &App{
		Monitor: monitor,
		cfg:     cfg,
		logger:  logger,
	}

	router := gin.New()
	// gin trusts every proxy by default, which would let any client choose
	// its own rate limit key through X-Forwarded-For.
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Warn("invalid trusted proxies, trusting none", "proxies", cfg.Server.TrustedProxies, "error", err)
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(middleware.RecoveryWithLog(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(monitor.Middleware())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	router.GET("/health", monitor.HealthHandler())
	router.GET("/health/live", monitor.LivenessHandler())
	router.GET("/health/ready", monitor.ReadinessHandler())
	router.GET("/metrics", monitor.MetricsHandler())

	authHandler := handlers.NewAuthHandler(authService, logger)
	taskHandler := handlers.NewTaskHandler(taskService, logger)

	public := router.Group("/")
	if cfg.RateLimit.Enabled {
		app.limiter = middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstSize)
		public.Use(app.limiter.Middleware())
	}
	public.POST("/register", authHandler.Register)
	public.POST("/login", authHandler.Login)

	protected := router.Group("/")
	protected.Use(middleware.BearerAuth(authService, logger))
	protected.GET("/me", authHandler.Me)

	tareas := protected.Group("/tareas")
	tareas.GET("", taskHandler.ListTasks)
	tareas.POST("", taskHandler.CreateTask)
	tareas.GET("/:id", taskHandler.GetTask)
	tareas.PUT("/:id", taskHandler.UpdateTask)
	tareas.PATCH("/:id", taskHandler.UpdateTask)
	tareas.DELETE("/:id", taskHandler.DeleteTask)

	app.Router = router
	return app
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests within the configured shutdown timeout.
func (a *App) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         a.cfg.GetServerAddr(),
		Handler:      a.Router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	if a.limiter != nil {
		go a.limiter.Run(ctx, a.cfg.RateLimit.CleanupInterval)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "addr", srv.Addr, "environment", a.cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server", "timeout", a.cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
