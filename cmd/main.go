package main

//
//  @title           assetbeta API
//  @version         1.0
//  @description     Year-sliced OLS regressions over monthly asset returns.
//  @termsOfService  https://github.com/guttosm/assetbeta
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/assetbeta
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        regression
//  @tag.description Asset selection, available years, regression summaries and charts
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/assetbeta/config"
	_ "github.com/guttosm/assetbeta/docs" // swagger docs
	"github.com/guttosm/assetbeta/internal/app"
	"github.com/guttosm/assetbeta/internal/chart"
	"github.com/guttosm/assetbeta/internal/ingestion"
	"github.com/guttosm/assetbeta/internal/logger"
	"github.com/guttosm/assetbeta/internal/service"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// runFit runs one regression and writes its summary to out. When chartPath is
// set the coefficient chart of the same fit is written there as PNG.
func runFit(ctx context.Context, svc service.RegressionService, q service.Query, chartPath string, out io.Writer) error {
	res, err := svc.Regress(ctx, q)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(out, res.Fit.Summary()); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	if chartPath == "" {
		return nil
	}
	png, err := chart.RenderCoefficients(chart.Title(q.Year, q.Dependent), res.Coefficients)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if err := os.WriteFile(chartPath, png, 0o644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	logger.L().Info().Str("path", chartPath).Msg("chart written")
	return nil
}

// runIngest loads returns CSVs into Postgres, from a single file or every *.csv of dir.
func runIngest(ctx context.Context, file, dir string, parallel int, force bool) error {
	if err := config.RequirePostgres(config.AppConfig); err != nil {
		return err
	}

	db, err := app.InitPostgres(config.AppConfig)
	if err != nil {
		return fmt.Errorf("db connect error: %w", err)
	}
	defer func() { _ = db.Close() }()

	if file != "" {
		return ingestion.ProcessFiles(ctx, []string{file}, db, parallel, force)
	}
	return ingestion.ProcessDirectory(ctx, dir, db, parallel, force)
}

// main is the entry point of the assetbeta application.
//
// Modes (selected via --mode flag):
//   - api:    Starts the REST API (regressions, charts, health, metrics).
//   - fit:    Runs one regression and prints the summary table.
//   - ingest: Loads returns CSV files into PostgreSQL.
//
// Flags:
//   - --mode: Execution mode ("api", "fit" or "ingest"). Default: "api".
//   - --year, --dependent, --assets, --exclude, --chart: fit parameters.
//   - --file, --dir, --parallel, --force: ingest parameters.
//   - --port: Port for the API server. Defaults to value from config (SERVER_PORT).
func main() {
	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	mode := flag.String("mode", "api", "Mode: api, fit or ingest")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")

	year := flag.Int("year", 0, "Calendar year to regress on (fit mode)")
	dependent := flag.String("dependent", "", "Dependent asset (fit mode)")
	assets := flag.String("assets", "", "Comma-separated asset names (fit mode; default selection when empty)")
	exclude := flag.String("exclude", "", "Comma-separated columns left out of the explanatory set (fit mode)")
	chartPath := flag.String("chart", "", "Write the coefficient chart PNG to this path (fit mode)")

	file := flag.String("file", "", "Returns CSV file to ingest")
	dir := flag.String("dir", "./data", "Directory with returns *.csv files to ingest")
	parallel := flag.Int("parallel", 0, "How many files to process concurrently (0=auto up to CPU, max 7)")
	force := flag.Bool("force", false, "Reload files even if already ingested (deletes their existing rows)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "api":
		stop() // gracefulShutdown owns the signals in this mode
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(context.Background(), server, cleanup)

	case "fit":
		if *year == 0 || *dependent == "" {
			logger.L().Fatal().Msg("fit mode requires --year and --dependent")
		}

		src, err := app.NewSource(config.AppConfig, nil)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("data source error")
		}
		defer src.Close()

		q := service.Query{
			Assets:    config.SplitList(*assets),
			Year:      *year,
			Dependent: *dependent,
			Excluded:  config.SplitList(*exclude),
		}
		if err := runFit(ctx, app.NewService(config.AppConfig, src, nil), q, *chartPath, os.Stdout); err != nil {
			logger.L().Error().Err(err).Msg("regression failed")
			src.Close()
			os.Exit(1)
		}

	case "ingest":
		logger.L().Info().Str("file", *file).Str("dir", *dir).Msg("running ingestion")
		if err := runIngest(ctx, *file, *dir, *parallel, *force); err != nil {
			logger.L().Fatal().Err(err).Msg("ingestion failed")
		}
		logger.L().Info().Msg("ingestion completed successfully")

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
