// Package provider supplies monthly return series to the regression service.
package provider

import (
	"context"
	"fmt"

	"github.com/guttosm/assetbeta/internal/domain/models"
	"github.com/guttosm/assetbeta/internal/ingestion"
	"github.com/guttosm/assetbeta/internal/logger"
	"github.com/guttosm/assetbeta/internal/storage"
)

// Provider loads the monthly returns of a set of assets.
//
// Implementations return one column per requested asset they have data for,
// in request order; assets they know nothing about are left out.
type Provider interface {
	Name() string
	Load(ctx context.Context, assets []models.Asset) (models.ReturnSeries, error)
}

// CSVFile serves returns from a local returns file (see ingestion.ParseReturns).
// The file is read on every Load; wrap it in a Cache to avoid re-reading.
type CSVFile struct {
	path string
}

func NewCSVFile(path string) *CSVFile {
	return &CSVFile{path: path}
}

func (p *CSVFile) Name() string { return "csv" }

func (p *CSVFile) Load(ctx context.Context, assets []models.Asset) (models.ReturnSeries, error) {
	if err := ctx.Err(); err != nil {
		return models.ReturnSeries{}, err
	}
	s, err := ingestion.ParseReturnsFile(p.path)
	if err != nil {
		return models.ReturnSeries{}, err
	}
	return Project(s, names(assets)), nil
}

// Repository serves returns previously loaded into Postgres.
type Repository struct {
	repo storage.ReturnsRepository
}

func NewRepository(repo storage.ReturnsRepository) *Repository {
	return &Repository{repo: repo}
}

func (p *Repository) Name() string { return "postgres" }

func (p *Repository) Load(ctx context.Context, assets []models.Asset) (models.ReturnSeries, error) {
	s, err := p.repo.LoadSeries(ctx, names(assets))
	if err != nil {
		return models.ReturnSeries{}, fmt.Errorf("load series: %w", err)
	}
	return s, nil
}

// Project keeps only the requested columns of s, in request order, and drops
// records left without any value. Requested names that are not columns of s
// are logged and skipped. An empty request keeps every column.
func Project(s models.ReturnSeries, want []string) models.ReturnSeries {
	if len(want) == 0 {
		return s
	}

	out := models.ReturnSeries{}
	seen := map[string]bool{}
	for _, name := range want {
		if seen[name] {
			continue
		}
		seen[name] = true
		if !s.HasAsset(name) {
			logger.L().Warn().Str("asset", name).Msg("asset not present in data source, skipping")
			continue
		}
		out.Assets = append(out.Assets, name)
	}

	for _, rec := range s.Records {
		values := make(map[string]float64, len(out.Assets))
		for _, a := range out.Assets {
			if v, ok := rec.Values[a]; ok {
				values[a] = v
			}
		}
		if len(values) == 0 {
			continue
		}
		out.Records = append(out.Records, models.ReturnRecord{Date: rec.Date, Values: values})
	}
	return out
}

func names(assets []models.Asset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.Name
	}
	return out
}
