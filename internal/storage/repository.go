package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/guttosm/assetbeta/internal/domain/models"
	pq "github.com/lib/pq"
)

// ErrMonthAlreadyLoaded reports an asset-month that another file already stored.
var ErrMonthAlreadyLoaded = errors.New("month already loaded")

// ReturnsRepository defines contract for DB operations.
type ReturnsRepository interface {
	InsertReturnsBatch(obs []models.ReturnObservation) error
	LoadSeries(ctx context.Context, assets []string) (models.ReturnSeries, error)
	ListAssets(ctx context.Context) ([]string, error)
	HasIngestionForFile(filename string) (bool, error)
	UpsertIngestionLog(filename string, rowCount int) error
	DeleteReturnsBySource(source string) error
}

type returnsRepository struct {
	db *sql.DB
}

func NewReturnsRepository(db *sql.DB) ReturnsRepository {
	return &returnsRepository{db: db}
}

// InsertReturnsBatch copies observations into asset_returns in a single transaction.
func (r *returnsRepository) InsertReturnsBatch(obs []models.ReturnObservation) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`SET LOCAL synchronous_commit = OFF`); err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.Prepare(pq.CopyIn("asset_returns", "period", "asset", "value", "source"))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, o := range obs {
		if _, err := stmt.Exec(models.MonthStart(o.Period), o.Asset, o.Value, o.Source); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return copyError(err, obs)
		}
	}

	if _, err := stmt.Exec(); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return copyError(err, obs)
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return copyError(err, obs)
	}

	return tx.Commit()
}

// copyError turns a primary key violation on asset_returns into
// ErrMonthAlreadyLoaded naming the incoming source and the conflicting key.
func copyError(err error, obs []models.ReturnObservation) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code.Name() != "unique_violation" {
		return err
	}
	source := "batch"
	if len(obs) > 0 {
		source = obs[0].Source
	}
	return fmt.Errorf("%w: %s overlaps rows from another source (%s)", ErrMonthAlreadyLoaded, source, pqErr.Detail)
}

// LoadSeries pivots the stored observations into a ReturnSeries.
//
// Columns follow the order of assets, keeping only those with at least one
// stored value. An empty assets list loads every stored asset, sorted by name.
func (r *returnsRepository) LoadSeries(ctx context.Context, assets []string) (models.ReturnSeries, error) {
	query := `SELECT period, asset, value FROM asset_returns`
	var args []interface{}
	if len(assets) > 0 {
		query += ` WHERE asset = ANY($1)`
		args = append(args, pq.Array(assets))
	}
	query += ` ORDER BY period, asset`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return models.ReturnSeries{}, err
	}
	defer func() { _ = rows.Close() }()

	var series models.ReturnSeries
	seen := map[string]bool{}
	for rows.Next() {
		var (
			period time.Time
			asset  string
			value  float64
		)
		if err := rows.Scan(&period, &asset, &value); err != nil {
			return models.ReturnSeries{}, err
		}
		period = models.MonthStart(period)
		n := len(series.Records)
		if n == 0 || !series.Records[n-1].Date.Equal(period) {
			series.Records = append(series.Records, models.ReturnRecord{Date: period, Values: map[string]float64{}})
			n++
		}
		series.Records[n-1].Values[asset] = value
		seen[asset] = true
	}
	if err := rows.Err(); err != nil {
		return models.ReturnSeries{}, err
	}

	if len(assets) > 0 {
		for _, a := range assets {
			if seen[a] {
				series.Assets = append(series.Assets, a)
				delete(seen, a)
			}
		}
	} else {
		for a := range seen {
			series.Assets = append(series.Assets, a)
		}
		sort.Strings(series.Assets)
	}
	return series, nil
}

// ListAssets returns the distinct asset names stored in asset_returns.
func (r *returnsRepository) ListAssets(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT asset FROM asset_returns ORDER BY asset`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// HasIngestionForFile checks if a file was already loaded.
func (r *returnsRepository) HasIngestionForFile(filename string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM ingestion_log WHERE filename = $1)`, filename).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// UpsertIngestionLog records (or updates) an ingestion entry for a file.
func (r *returnsRepository) UpsertIngestionLog(filename string, rowCount int) error {
	_, err := r.db.Exec(`
		INSERT INTO ingestion_log (filename, row_count)
		VALUES ($1, $2)
		ON CONFLICT (filename)
		DO UPDATE SET row_count = EXCLUDED.row_count,
					  ingested_at = NOW()
	`, filename, rowCount)
	return err
}

// DeleteReturnsBySource removes every observation loaded from source.
func (r *returnsRepository) DeleteReturnsBySource(source string) error {
	_, err := r.db.Exec(`DELETE FROM asset_returns WHERE source = $1`, source)
	return err
}
