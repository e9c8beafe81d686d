package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/guttosm/assetbeta/config"
	"github.com/guttosm/assetbeta/internal/middleware"
	"github.com/guttosm/assetbeta/internal/service"
)

// regressionParams are the query parameters shared by the JSON and chart endpoints.
type regressionParams struct {
	Assets    string `form:"assets"`
	Year      int    `form:"year" binding:"required,min=1,max=9999"`
	Dependent string `form:"dependent" binding:"required"`
	Exclude   string `form:"exclude"`
}

// parseQuery binds and validates the regression parameters, answering 400 on failure.
func parseQuery(c *gin.Context) (service.Query, bool) {
	var p regressionParams
	if err := c.ShouldBindQuery(&p); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, validationMessage(err), err)
		return service.Query{}, false
	}

	dependent := strings.TrimSpace(p.Dependent)
	if dependent == "" {
		middleware.AbortWithError(c, http.StatusBadRequest, "dependent is required", nil)
		return service.Query{}, false
	}

	return service.Query{
		Assets:    config.SplitList(p.Assets),
		Year:      p.Year,
		Dependent: dependent,
		Excluded:  config.SplitList(p.Exclude),
	}, true
}

// validationMessage turns the first binding failure into a client-facing message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid query parameters"
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
