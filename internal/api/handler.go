package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/assetbeta/config"
	"github.com/guttosm/assetbeta/internal/domain/dto"
	"github.com/guttosm/assetbeta/internal/middleware"
	"github.com/guttosm/assetbeta/internal/service"
)

// Handler provides HTTP handlers for the regression endpoints.
//
// Responsibilities:
//   - Validate incoming HTTP query parameters
//   - Delegate to the regression service
//   - Translate results into response DTOs
//   - Hand domain errors to middleware.ErrorHandler via c.Error
type Handler struct {
	svc service.RegressionService
}

// NewHandler constructs a new Handler instance.
func NewHandler(svc service.RegressionService) *Handler {
	return &Handler{svc: svc}
}

// GetAssets godoc
// @Summary      List selectable assets
// @Description  Returns the configured asset universe and the default selection
// @Tags         regression
// @Produce      json
// @Success      200  {object}  dto.AssetsResponse
// @Router       /api/v1/assets [get]
func (h *Handler) GetAssets(c *gin.Context) {
	c.JSON(http.StatusOK, dto.AssetsResponse{
		Assets:    h.svc.Universe(),
		Defaults:  h.svc.DefaultAssets(),
		MinAssets: service.MinAssets,
	})
}

// GetYears godoc
// @Summary      Years available for a selection
// @Description  Returns the calendar years with at least one month of data for the selected assets
// @Tags         regression
// @Produce      json
// @Param        assets  query     string  false  "Comma-separated asset names (default selection when empty)"  example(Bitcoin,S&P 500,Gold)
// @Success      200     {object}  dto.YearsResponse
// @Failure      400     {object}  dto.ErrorResponse  "Too few assets"
// @Failure      422     {object}  dto.ErrorResponse  "No data"
// @Failure      500     {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/years [get]
func (h *Handler) GetYears(c *gin.Context) {
	assets := config.SplitList(c.Query("assets"))
	years, err := h.svc.Years(c.Request.Context(), assets)
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(assets) == 0 {
		assets = h.svc.DefaultAssets()
	}
	c.JSON(http.StatusOK, dto.YearsResponse{Assets: assets, Years: years})
}

// GetRegression godoc
// @Summary      Regress one asset on the others for a year
// @Description  Fits an OLS regression with intercept of the dependent asset's monthly returns on the remaining selected assets
// @Tags         regression
// @Produce      json
// @Param        assets     query     string  false  "Comma-separated asset names (default selection when empty)"  example(Bitcoin,S&P 500,Gold)
// @Param        year       query     int     true   "Calendar year"  example(2020)
// @Param        dependent  query     string  true   "Dependent asset"  example(Gold)
// @Param        exclude    query     string  false  "Comma-separated columns left out of the explanatory set"  example(RF)
// @Success      200        {object}  dto.RegressionResponse
// @Failure      400        {object}  dto.ErrorResponse  "Bad Request"
// @Failure      404        {object}  dto.ErrorResponse  "No data for the year"
// @Failure      422        {object}  dto.ErrorResponse  "Insufficient data or singular design"
// @Failure      500        {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/regression [get]
func (h *Handler) GetRegression(c *gin.Context) {
	q, ok := parseQuery(c)
	if !ok {
		return
	}

	res, err := h.svc.Regress(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRegressionResponse(res))
}

// GetChart godoc
// @Summary      Coefficient bar chart
// @Description  Renders the slope coefficients of the regression as a PNG bar chart
// @Tags         regression
// @Produce      png
// @Param        assets     query     string  false  "Comma-separated asset names"  example(Bitcoin,S&P 500,Gold)
// @Param        year       query     int     true   "Calendar year"  example(2020)
// @Param        dependent  query     string  true   "Dependent asset"  example(Gold)
// @Param        exclude    query     string  false  "Comma-separated excluded columns"
// @Success      200        {file}    binary
// @Failure      400        {object}  dto.ErrorResponse  "Bad Request"
// @Failure      404        {object}  dto.ErrorResponse  "No data for the year"
// @Failure      422        {object}  dto.ErrorResponse  "Insufficient data or singular design"
// @Router       /api/v1/regression/chart [get]
func (h *Handler) GetChart(c *gin.Context) {
	q, ok := parseQuery(c)
	if !ok {
		return
	}

	png, err := h.svc.Chart(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// fail answers selection errors directly and leaves the rest to ErrorHandler.
func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, service.ErrTooFewAssets) {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid asset selection", err)
		return
	}
	_ = c.Error(err)
}
