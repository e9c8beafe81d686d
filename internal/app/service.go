package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/guttosm/assetbeta/config"
	"github.com/guttosm/assetbeta/internal/logger"
	"github.com/guttosm/assetbeta/internal/marketdata"
	"github.com/guttosm/assetbeta/internal/metrics"
	"github.com/guttosm/assetbeta/internal/provider"
	"github.com/guttosm/assetbeta/internal/service"
	"github.com/guttosm/assetbeta/internal/storage"
)

// readyTimeout bounds a readiness check against the data source.
const readyTimeout = 2 * time.Second

// Source is the configured data provider together with its lifecycle hooks.
//
// Fields:
//   - Provider: the return-series provider, wrapped in a series cache.
//   - Ready: readiness probe for /readyz.
//   - Close: releases resources (e.g., the DB connection).
type Source struct {
	Provider provider.Provider
	Ready    func() error
	Close    func()
}

// NewSource builds the provider selected by cfg.Data.Source.
// Postgres is only connected when it is the selected source.
func NewSource(cfg config.Config, rec *metrics.Recorder) (*Source, error) {
	var (
		p       provider.Provider
		ready   func() error
		closeFn = func() {}
	)

	switch cfg.Data.Source {
	case config.SourceCSV, "":
		path := cfg.Data.CSVPath
		p = provider.NewCSVFile(path)
		ready = func() error {
			_, err := os.Stat(path)
			return err
		}

	case config.SourceYahoo:
		p = marketdata.NewClient(
			marketdata.WithBaseURL(cfg.Yahoo.BaseURL),
			marketdata.WithRateLimit(cfg.Yahoo.RateLimit),
			marketdata.WithTimeout(cfg.Yahoo.Timeout),
			marketdata.WithStart(cfg.Yahoo.Start),
		)

	case config.SourcePostgres:
		// indirection for unit testing
		db, err := postgresOpener(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		p = provider.NewRepository(storage.NewReturnsRepository(db))
		ready = pingWithTimeout(db)
		closeFn = func() { _ = db.Close() }

	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}

	var opts []provider.CacheOption
	if rec != nil {
		opts = append(opts, provider.WithLookupHook(rec.RecordCacheLookup))
	}

	logger.L().Info().Str("source", p.Name()).Msg("data source configured")
	return &Source{Provider: provider.NewCache(p, opts...), Ready: ready, Close: closeFn}, nil
}

// NewService builds the regression service on top of src.
func NewService(cfg config.Config, src *Source, rec *metrics.Recorder) service.RegressionService {
	opts := service.Options{
		Universe:      cfg.Assets.Universe,
		DefaultAssets: cfg.Assets.Defaults,
		Excluded:      cfg.Assets.Excluded,
	}
	if rec != nil {
		opts.Metrics = rec
	}
	return service.NewRegressionService(src.Provider, opts)
}

func pingWithTimeout(db *sql.DB) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
		defer cancel()
		return db.PingContext(ctx)
	}
}
