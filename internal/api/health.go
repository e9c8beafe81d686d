package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/assetbeta/internal/logger"
)

// HealthHandler provides liveness and readiness endpoints for the service.
//
// Responsibilities:
//   - /healthz: Basic liveness probe (always returns 200 OK).
//   - /readyz: Readiness probe (depends on the configured data source).
type HealthHandler struct {
	source string       // Name of the data source reported by /readyz
	ready  func() error // Checks the data source; nil means always ready
}

// NewHealthHandler constructs a HealthHandler.
//
// Parameters:
//   - source (string): data source name, e.g. "postgres" or "csv".
//   - ready (func() error): reachability check for that source, e.g. db.Ping
//     or a stat of the returns file.
func NewHealthHandler(source string, ready func() error) *HealthHandler {
	return &HealthHandler{source: source, ready: ready}
}

// Register mounts the health and readiness endpoints into the provided Gin router.
//
// Routes:
//   - GET /healthz: Always returns 200 OK.
//   - GET /readyz: Returns 200 OK if the source is reachable, 503 otherwise.
func (h *HealthHandler) Register(r *gin.Engine) {
	// @Summary      Liveness probe
	// @Description  Always returns OK if the service is running
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]string
	// @Router       /healthz [get]
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// @Summary      Readiness probe
	// @Description  Returns ready if the configured data source is reachable
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]string
	// @Failure      503  {object}  map[string]string
	// @Router       /readyz [get]
	r.GET("/readyz", func(c *gin.Context) {
		if h.ready != nil {
			if err := h.ready(); err != nil {
				logger.L().Warn().Err(err).Str("source", h.source).Msg("readiness check failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "source": h.source})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "source": h.source})
	})
}
