package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guttosm/assetbeta/internal/chart"
	"github.com/guttosm/assetbeta/internal/domain/models"
	"github.com/guttosm/assetbeta/internal/logger"
	"github.com/guttosm/assetbeta/internal/provider"
	"github.com/guttosm/assetbeta/internal/regression"
)

// MinAssets is the smallest selection a regression can be run on.
const MinAssets = 2

// ErrTooFewAssets is returned when fewer than MinAssets distinct assets are selected.
var ErrTooFewAssets = fmt.Errorf("select at least %d assets", MinAssets)

// Query describes one regression request.
//
// Fields:
//   - Assets: selected asset names; empty means the default selection.
//   - Year: calendar year to regress on.
//   - Dependent: asset used as the response.
//   - Excluded: columns left out of the explanatory set, on top of the configured ones.
type Query struct {
	Assets    []string
	Year      int
	Dependent string
	Excluded  []string
}

// Metrics receives service-level measurements.
type Metrics interface {
	RecordRegression(outcome string, seconds float64)
	RecordProviderLoad(provider string, err error, seconds float64)
}

type nopMetrics struct{}

func (nopMetrics) RecordRegression(string, float64)           {}
func (nopMetrics) RecordProviderLoad(string, error, float64) {}

// RegressionService defines business logic for asset regressions.
type RegressionService interface {
	Universe() []models.Asset
	DefaultAssets() []string
	Years(ctx context.Context, assets []string) ([]int, error)
	Regress(ctx context.Context, q Query) (*regression.Result, error)
	Chart(ctx context.Context, q Query) ([]byte, error)
}

// Options configures a regression service.
type Options struct {
	Universe      []models.Asset
	DefaultAssets []string
	Excluded      []string
	Metrics       Metrics
}

type regressionService struct {
	provider provider.Provider
	universe []models.Asset
	byName   map[string]models.Asset
	defaults []string
	excluded []string
	metrics  Metrics
}

func NewRegressionService(p provider.Provider, opts Options) RegressionService {
	s := &regressionService{
		provider: p,
		universe: append([]models.Asset(nil), opts.Universe...),
		byName:   make(map[string]models.Asset, len(opts.Universe)),
		defaults: append([]string(nil), opts.DefaultAssets...),
		excluded: append([]string(nil), opts.Excluded...),
		metrics:  opts.Metrics,
	}
	for _, a := range opts.Universe {
		s.byName[a.Name] = a
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	return s
}

func (s *regressionService) Universe() []models.Asset {
	return append([]models.Asset(nil), s.universe...)
}

func (s *regressionService) DefaultAssets() []string {
	return append([]string(nil), s.defaults...)
}

func (s *regressionService) Years(ctx context.Context, names []string) ([]int, error) {
	assets, err := s.resolve(names)
	if err != nil {
		return nil, err
	}
	series, err := s.load(ctx, assets)
	if err != nil {
		return nil, &regression.Error{Kind: regression.KindInsufficientData, Err: err}
	}
	return regression.Years(series), nil
}

func (s *regressionService) Regress(ctx context.Context, q Query) (*regression.Result, error) {
	assets, err := s.resolve(q.Assets)
	if err != nil {
		return nil, err
	}

	log := logger.L().With().Int("year", q.Year).Str("dependent", q.Dependent).Int("assets", len(assets)).Logger()

	series, err := s.load(ctx, assets)
	if err != nil {
		log.Warn().Err(err).Str("provider", s.provider.Name()).Msg("data provider failed")
		err = &regression.Error{Kind: regression.KindInsufficientData, Asset: q.Dependent, Year: q.Year, Err: err}
		s.metrics.RecordRegression(regression.KindInsufficientData.String(), 0)
		return nil, err
	}

	excluded := append(append([]string(nil), s.excluded...), q.Excluded...)
	start := time.Now()
	res, err := regression.Run(series, regression.Request{Year: q.Year, Dependent: q.Dependent, Excluded: excluded})
	elapsed := time.Since(start)

	if err != nil {
		kind := regression.KindOf(err)
		s.metrics.RecordRegression(kind.String(), elapsed.Seconds())
		log.Info().Str("kind", kind.String()).Err(err).Msg("regression rejected")
		return nil, err
	}

	s.metrics.RecordRegression("ok", elapsed.Seconds())
	log.Info().
		Int("nobs", res.Fit.NObs).
		Float64("r_squared", res.Fit.RSquared).
		Dur("elapsed", elapsed).
		Msg("regression done")
	return res, nil
}

func (s *regressionService) Chart(ctx context.Context, q Query) ([]byte, error) {
	res, err := s.Regress(ctx, q)
	if err != nil {
		return nil, err
	}
	return chart.RenderCoefficients(chart.Title(q.Year, q.Dependent), res.Coefficients)
}

// resolve maps names to assets of the universe, falling back to the default
// selection for an empty request. Names outside the universe are kept with
// the name as ticker, so file-based sources can expose their own columns.
func (s *regressionService) resolve(names []string) ([]models.Asset, error) {
	if len(names) == 0 {
		names = s.defaults
	}
	seen := make(map[string]bool, len(names))
	out := make([]models.Asset, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		a, ok := s.byName[n]
		if !ok {
			a = models.Asset{Name: n, Ticker: n}
		}
		out = append(out, a)
	}
	if len(out) < MinAssets {
		return nil, ErrTooFewAssets
	}
	return out, nil
}

func (s *regressionService) load(ctx context.Context, assets []models.Asset) (models.ReturnSeries, error) {
	start := time.Now()
	series, err := s.provider.Load(ctx, assets)
	s.metrics.RecordProviderLoad(s.provider.Name(), err, time.Since(start).Seconds())
	if err != nil {
		return models.ReturnSeries{}, err
	}
	if series.IsEmpty() {
		return models.ReturnSeries{}, errNoData
	}
	return series, nil
}

var errNoData = errors.New("data provider returned no data")
