// Package handler 家谱树的 HTTP 接口
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"silsilah_go/internal/middleware"
)

// HealthCheck 依赖健康检查
type HealthCheck func(ctx context.Context) error

// RouterDeps 路由依赖
type RouterDeps struct {
	Trees   *TreeHandler
	Auth    middleware.TokenValidator
	Limiter middleware.Limiter
	Logger  *zap.Logger
	Checks  map[string]HealthCheck
}

// NewRouter 创建 gin 路由
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(deps.Logger))

	r.GET("/healthz", health(deps.Checks))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api",
		middleware.ViewerMiddleware(deps.Auth),
		middleware.RateLimitMiddleware(deps.Limiter, deps.Logger),
		middleware.SessionMiddleware(),
	)
	deps.Trees.Register(api)
	return r
}

func health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": results})
	}
}
