package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/assetbeta/internal/domain/dto"
	"github.com/guttosm/assetbeta/internal/logger"
	"github.com/guttosm/assetbeta/internal/regression"
)

// StatusFor maps an error to the HTTP status the API answers with.
//
//	missing_column                       → 400
//	empty_slice                          → 404
//	insufficient_data, singular_matrix   → 422
//	anything else                        → 500
func StatusFor(err error) int {
	switch regression.KindOf(err) {
	case regression.KindMissingColumn:
		return http.StatusBadRequest
	case regression.KindEmptySlice:
		return http.StatusNotFound
	case regression.KindInsufficientData, regression.KindSingularMatrix:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler turns the last error attached with c.Error into a JSON
// dto.ErrorResponse, unless a handler already wrote a response.
//
// Usage:
//
//	router.Use(middleware.ErrorHandler)
//	...
//	if err != nil { _ = c.Error(err); return }
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	err := c.Errors.Last().Err
	status := StatusFor(err)

	message := "Internal server error"
	if status != http.StatusInternalServerError {
		message = "Regression failed"
	}

	ev := logger.L().Warn()
	if status == http.StatusInternalServerError {
		ev = logger.L().Error()
	}
	rid, _ := c.Get(RequestIDKey)
	ev.Str("request_id", toString(rid)).Int("status", status).Err(err).Msg("request failed")

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}

// AbortWithError stops the chain and writes a dto.ErrorResponse with status.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
