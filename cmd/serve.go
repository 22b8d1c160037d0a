package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"silsilah_go/internal/handler"
	"silsilah_go/internal/repository"
	"silsilah_go/internal/service"
)

func newServeCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *cfgFile)
		},
	}
}

func runServe(ctx context.Context, cfgFile string) error {
	cfg, err := service.LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	logger, err := service.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// 初始化数据库连接
	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	checks := map[string]handler.HealthCheck{"database": db.Ping}

	// 初始化视图状态存储
	var store service.ViewStateStore
	if cfg.Redis.Enabled {
		redisStore := service.NewRedisViewStore(cfg.Redis)
		if err := redisStore.Ping(ctx); err != nil {
			redisStore.Close()
			return service.NewError(service.ErrSystem, "failed to connect to redis", err)
		}
		checks["redis"] = redisStore.Ping
		breaker := service.NewCircuitBreaker("redis", cfg.Redis.Breaker, logger)
		store = service.NewBreakerViewStore(redisStore, breaker)
	} else {
		store = service.NewMemoryViewStore(cfg.Redis.SessionTTL)
	}
	defer store.Close()

	limiter := service.NewRateLimiter(cfg.RateLimit)
	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	go limiter.Run(stopCleanup)

	trees := service.NewTreeService(repository.NewPersonRepository(db), store, cfg.Tree, logger)

	gin.SetMode(cfg.Server.Mode)
	router := handler.NewRouter(handler.RouterDeps{
		Trees:   handler.NewTreeHandler(trees, service.NewErrorHandler(logger)),
		Auth:    service.NewAuth(cfg.Auth),
		Limiter: limiter,
		Logger:  logger,
		Checks:  checks,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server is running", zap.String("addr", srv.Addr))
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

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
