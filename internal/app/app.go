package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/assetbeta/config"
	"github.com/guttosm/assetbeta/internal/api"
	"github.com/guttosm/assetbeta/internal/metrics"
)

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Creates the Prometheus recorder.
//   - Builds the configured data source (csv, yahoo or postgres) behind a series cache.
//   - Creates the regression service and the HTTP handler layer.
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close resources (e.g., DB connection).
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	rec := metrics.New()

	src, err := NewSource(cfg, rec)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize data source: %w", err)
	}

	svc := NewService(cfg, src, rec)
	handler := api.NewHandler(svc)

	router := api.NewRouter(handler, api.RouterOptions{
		RequestsPerMinute: cfg.Server.RateLimitPerMinute,
		Metrics:           rec,
	})

	api.NewHealthHandler(src.Provider.Name(), src.Ready).Register(router)

	return router, src.Close, nil
}
