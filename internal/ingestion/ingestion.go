package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/assetbeta/internal/logger"
	"github.com/guttosm/assetbeta/internal/storage"
)

const (
	filePattern      = "*.csv"
	defaultBatchSize = 5000
	maxParallelFiles = 7
)

// repoCtor is an indirection for creating the repository; tests can override this.
var repoCtor = func(db *sql.DB) storage.ReturnsRepository {
	return storage.NewReturnsRepository(db)
}

// ProcessDirectory loads every returns file (*.csv) found in dir.
//
// Parameters:
//   - dir: directory containing the returns files.
//   - db:  open *sql.DB (PostgreSQL).
//   - parallel: max files processed at once (0 = min(7, NumCPU)).
//   - force: reload files already present in the ingestion log.
func ProcessDirectory(ctx context.Context, dir string, db *sql.DB, parallel int, force bool) error {
	files, err := filepath.Glob(filepath.Join(dir, filePattern))
	if err != nil {
		return fmt.Errorf("list %s: %w", dir, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files in %s", filePattern, dir)
	}
	sort.Strings(files)
	return ProcessFiles(ctx, files, db, parallel, force)
}

// ProcessFiles loads the given returns files into asset_returns.
//
// Behavior:
//   - Each file is identified by its base name; the name is stored as the
//     source of every row and as the ingestion log key.
//   - A file already in the ingestion log is skipped unless force is set, in
//     which case its previous rows are deleted and it is loaded again.
//   - If any file returns error, the rest are cancelled and that error is returned.
func ProcessFiles(ctx context.Context, files []string, db *sql.DB, parallel int, force bool) error {
	repo := repoCtor(db)

	maxParallel := maxParallelFiles
	if parallel > 0 {
		if parallel < maxParallel {
			maxParallel = parallel
		}
	} else if c := runtime.NumCPU(); c < maxParallel {
		maxParallel = c
	}

	logger.L().Info().Int("files", len(files)).Int("max_parallel", maxParallel).Msg("ingestion start")

	// errgroup will cancel siblings on first error.
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxParallel)

	for i, file := range files {
		idx := i
		f := file
		sem <- struct{}{}

		g.Go(func() error {
			defer func() { <-sem }()
			start := time.Now()
			base := filepath.Base(f)
			logger.L().Info().Int("idx", idx+1).Int("total", len(files)).Str("file", base).Msg("file start")

			exists, err := repo.HasIngestionForFile(base)
			if err != nil {
				logger.L().Error().Str("file", base).Err(err).Msg("check ingestion log failed")
				return fmt.Errorf("file %s: check ingestion log: %w", f, err)
			}
			if exists && !force {
				logger.L().Info().Int("idx", idx+1).Int("total", len(files)).Str("file", base).Bool("skipped", true).Msg("already ingested")
				return nil
			}
			if exists && force {
				if err := repo.DeleteReturnsBySource(base); err != nil {
					logger.L().Error().Str("file", base).Err(err).Msg("delete existing failed")
					return fmt.Errorf("file %s: delete existing: %w", f, err)
				}
			}

			total, err := parseAndPersistFile(gctx, f, repo, defaultBatchSize, base)
			if err != nil {
				logger.L().Error().Str("file", base).Dur("elapsed", time.Since(start)).Err(err).Msg("file failed")
				return fmt.Errorf("file %s: %w", f, err)
			}
			if err := repo.UpsertIngestionLog(base, total); err != nil {
				logger.L().Error().Str("file", base).Err(err).Msg("update ingestion log failed")
				return fmt.Errorf("file %s: upsert ingestion log: %w", f, err)
			}
			logger.L().Info().Int("idx", idx+1).Int("total", len(files)).Str("file", base).Int("rows", total).Dur("elapsed", time.Since(start)).Bool("force", force).Msg("file done")
			return nil
		})
	}

	return g.Wait()
}
