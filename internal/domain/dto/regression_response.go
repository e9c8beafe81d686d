package dto

import (
	"math"

	"github.com/guttosm/assetbeta/internal/domain/models"
	"github.com/guttosm/assetbeta/internal/regression"
)

// AssetsResponse lists the selectable assets.
type AssetsResponse struct {
	Assets    []models.Asset `json:"assets"`
	Defaults  []string       `json:"defaults" example:"Bitcoin,S&P 500,Gold"`
	MinAssets int            `json:"min_assets" example:"2"`
}

// YearsResponse lists the years with data for an asset selection.
type YearsResponse struct {
	Assets []string `json:"assets"`
	Years  []int    `json:"years" example:"2014,2015,2016"`
}

// ParamResponse is one estimated parameter. Statistics that are undefined
// (zero residual degrees of freedom) are null.
type ParamResponse struct {
	Name   string   `json:"name" example:"Bitcoin"`
	Coef   float64  `json:"coef" example:"0.42"`
	StdErr *float64 `json:"std_err"`
	T      *float64 `json:"t"`
	P      *float64 `json:"p"`
	CILow  *float64 `json:"ci_low"`
	CIHigh *float64 `json:"ci_high"`
}

// RegressionResponse is the JSON rendition of a fitted regression.
type RegressionResponse struct {
	Dependent     string                   `json:"dependent" example:"Gold"`
	Year          int                      `json:"year" example:"2020"`
	Explanatory   []string                 `json:"explanatory"`
	Intercept     float64                  `json:"intercept"`
	Coefficients  []regression.Coefficient `json:"coefficients"`
	Params        []ParamResponse          `json:"params"`
	NObs          int                      `json:"nobs" example:"12"`
	DFModel       float64                  `json:"df_model"`
	DFResid       float64                  `json:"df_resid"`
	RSquared      *float64                 `json:"r_squared"`
	AdjRSquared   *float64                 `json:"adj_r_squared"`
	FStat         *float64                 `json:"f_statistic"`
	FPValue       *float64                 `json:"f_pvalue"`
	LogLikelihood *float64                 `json:"log_likelihood"`
	AIC           *float64                 `json:"aic"`
	BIC           *float64                 `json:"bic"`
	DurbinWatson  *float64                 `json:"durbin_watson"`
	Summary       string                   `json:"summary"`
}

// NewRegressionResponse converts a pipeline result; non-finite statistics become null.
func NewRegressionResponse(res *regression.Result) RegressionResponse {
	f := res.Fit
	out := RegressionResponse{
		Dependent:     f.Dependent,
		Year:          f.Year,
		Explanatory:   append([]string(nil), f.Explanatory...),
		Intercept:     f.Intercept(),
		Coefficients:  res.Coefficients,
		NObs:          f.NObs,
		DFModel:       f.DFModel,
		DFResid:       f.DFResid,
		RSquared:      finite(f.RSquared),
		AdjRSquared:   finite(f.AdjRSquared),
		FStat:         finite(f.FStat),
		FPValue:       finite(f.FPValue),
		LogLikelihood: finite(f.LogLikelihood),
		AIC:           finite(f.AIC),
		BIC:           finite(f.BIC),
		DurbinWatson:  finite(f.DurbinWatson),
		Summary:       f.Summary(),
	}
	for _, p := range f.Params {
		out.Params = append(out.Params, ParamResponse{
			Name:   p.Name,
			Coef:   p.Coef,
			StdErr: finite(p.StdErr),
			T:      finite(p.T),
			P:      finite(p.P),
			CILow:  finite(p.CILow),
			CIHigh: finite(p.CIHigh),
		})
	}
	return out
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
