package marketdata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/assetbeta/internal/domain/models"
	"github.com/guttosm/assetbeta/internal/logger"
)

// maxConcurrentFetches bounds in-flight chart requests; the limiter still paces them.
const maxConcurrentFetches = 4

// SimpleReturns converts monthly closes into simple returns p[t]/p[t-1] - 1,
// keyed by the month of p[t].
//
// A return is produced only when the previous calendar month has a positive
// close; gaps are never filled.
func SimpleReturns(points []PricePoint) map[time.Time]float64 {
	out := make(map[time.Time]float64, len(points))
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		if !prev.Date.AddDate(0, 1, 0).Equal(cur.Date) || prev.Close <= 0 {
			continue
		}
		out[cur.Date] = cur.Close/prev.Close - 1
	}
	return out
}

// Name identifies the data source in logs and metrics.
func (c *Client) Name() string { return "yahoo" }

// Load downloads every asset's monthly closes in parallel and assembles a
// ReturnSeries with one column per asset that could be fetched.
//
// Assets that fail to download are logged and skipped; Load fails only when
// none could be fetched.
func (c *Client) Load(ctx context.Context, assets []models.Asset) (models.ReturnSeries, error) {
	if len(assets) == 0 {
		return models.ReturnSeries{}, nil
	}

	results := make([]map[time.Time]float64, len(assets))
	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, a := range assets {
		idx, asset := i, a
		g.Go(func() error {
			ticker := asset.Ticker
			if ticker == "" {
				ticker = asset.Name
			}
			points, err := c.MonthlyCloses(gctx, ticker)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.L().Warn().Str("asset", asset.Name).Str("ticker", ticker).Err(err).Msg("asset download failed, skipping")
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s (%s): %w", asset.Name, ticker, err))
				mu.Unlock()
				return nil
			}
			results[idx] = SimpleReturns(points)
			logger.L().Debug().Str("asset", asset.Name).Int("months", len(points)).Msg("asset downloaded")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.ReturnSeries{}, err
	}

	series := assemble(assets, results)
	if len(series.Assets) == 0 && len(errs) > 0 {
		return models.ReturnSeries{}, fmt.Errorf("no asset could be downloaded: %w", errors.Join(errs...))
	}
	return series, nil
}

// assemble merges per-asset returns into a series ordered by month.
// A nil entry in returns marks an asset that failed and is left out.
func assemble(assets []models.Asset, returns []map[time.Time]float64) models.ReturnSeries {
	var series models.ReturnSeries
	byMonth := map[time.Time]map[string]float64{}
	for i, a := range assets {
		if returns[i] == nil {
			continue
		}
		series.Assets = append(series.Assets, a.Name)
		for d, v := range returns[i] {
			row, ok := byMonth[d]
			if !ok {
				row = map[string]float64{}
				byMonth[d] = row
			}
			row[a.Name] = v
		}
	}

	for d, row := range byMonth {
		series.Records = append(series.Records, models.ReturnRecord{Date: d, Values: row})
	}
	sort.Slice(series.Records, func(i, j int) bool {
		return series.Records[i].Date.Before(series.Records[j].Date)
	})
	return series
}
