package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/assetbeta/internal/middleware"
)

// RequestTimeout bounds every request, including provider downloads.
const RequestTimeout = 10 * time.Second

// MetricsRecorder records HTTP metrics and exposes them for scraping.
type MetricsRecorder interface {
	middleware.HTTPRecorder
	Handler() http.Handler
}

// RouterOptions configures NewRouter.
//
// Fields:
//   - RequestsPerMinute: per-client rate limit (middleware default when zero).
//   - Metrics: optional recorder; when set, requests are measured and /metrics is mounted.
type RouterOptions struct {
	RequestsPerMinute int
	Metrics           MetricsRecorder
}

// NewRouter creates a Gin engine with routes configured.
//
// Responsibilities:
//   - Registers global middlewares (RequestID, Logger, Recovery, ErrorHandler, RateLimiter, Metrics).
//   - Adds request timeout handling (RequestTimeout).
//   - Mounts Swagger docs (/swagger/*any) and Prometheus metrics (/metrics).
//   - Configures API v1 routes (/api/v1).
//
// Note:
//   - Health and readiness endpoints (/healthz, /readyz) are registered in app.InitializeApp().
func NewRouter(handler *Handler, opts RouterOptions) *gin.Engine {
	router := gin.New()

	// ─── Middlewares ───────────────────────────────
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		middleware.RateLimiter(opts.RequestsPerMinute),
	)
	if opts.Metrics != nil {
		router.Use(middleware.Metrics(opts.Metrics))
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	// ─── Timeout ──────────────────────────────────
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), RequestTimeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	// ─── Swagger ──────────────────────────────────
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ─── API v1 ───────────────────────────────────
	v1 := router.Group("/api/v1")
	{
		v1.GET("/assets", handler.GetAssets)
		v1.GET("/years", handler.GetYears)
		v1.GET("/regression", handler.GetRegression)
		v1.GET("/regression/chart", handler.GetChart)
	}

	return router
}
