package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/guttosm/assetbeta/internal/domain/models"
)

// Supported return-series sources (DATA_SOURCE).
const (
	SourceCSV      = "csv"
	SourceYahoo    = "yahoo"
	SourcePostgres = "postgres"
)

const (
	defaultAssets        = "Bitcoin=BTC-USD,S&P 500=SPY,Gold=GLD,US Bonds (20Y)=TLT,MSCI EAFE=EFA,Emerging Markets=EEM"
	defaultSelection     = "Bitcoin,S&P 500,Gold"
	dateLayout           = "2006-01-02"
	defaultYahooStartISO = "2014-01-01"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	RATE_LIMIT_PER_MINUTE=60
//	DATA_SOURCE=csv
//	DATA_CSV_PATH=./data/returns.csv
//	ASSETS=Bitcoin=BTC-USD,S&P 500=SPY,Gold=GLD
//	DEFAULT_ASSETS=Bitcoin,S&P 500,Gold
//	EXCLUDED_ASSETS=RF
//	POSTGRES_HOST=localhost
//	POSTGRES_DB=assetbeta
type Config struct {
	Server   ServerConfig   // HTTP server configuration
	Postgres PostgresConfig // PostgreSQL connection settings
	Data     DataConfig     // Where return series come from
	Yahoo    YahooConfig    // Market data client settings
	Assets   AssetsConfig   // Asset universe and selections
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string // The TCP port the HTTP server will listen on (e.g., "8080")
	RateLimitPerMinute int    // Requests allowed per client IP per minute
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// DataConfig selects the return-series provider.
type DataConfig struct {
	Source  string // csv | yahoo | postgres
	CSVPath string // file read when Source is csv
}

// YahooConfig configures the market data client used when Source is yahoo.
type YahooConfig struct {
	BaseURL   string
	Start     time.Time
	RateLimit int // requests per second
	Timeout   time.Duration
}

// AssetsConfig describes the selectable assets.
//
// Fields:
//   - Universe: every known asset, display name and ticker.
//   - Defaults: names selected when a request names none.
//   - Excluded: columns never used as explanatory variables (e.g. a risk-free rate).
type AssetsConfig struct {
	Universe []models.Asset
	Defaults []string
	Excluded []string
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing or malformed, validateConfig() terminates
//     the app with a descriptive log message.
func LoadConfig() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 60)

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "assetbeta")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	viper.SetDefault("DATA_SOURCE", SourceCSV)
	viper.SetDefault("DATA_CSV_PATH", "./data/returns.csv")

	viper.SetDefault("YAHOO_BASE_URL", "https://query1.finance.yahoo.com")
	viper.SetDefault("YAHOO_START", defaultYahooStartISO)
	viper.SetDefault("YAHOO_RATE_LIMIT", 2)
	viper.SetDefault("YAHOO_TIMEOUT", "30s")

	viper.SetDefault("ASSETS", defaultAssets)
	viper.SetDefault("DEFAULT_ASSETS", defaultSelection)
	viper.SetDefault("EXCLUDED_ASSETS", "")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	var invalid []string

	universe, err := ParseAssets(viper.GetString("ASSETS"))
	if err != nil {
		invalid = append(invalid, "ASSETS: "+err.Error())
	}
	start, err := time.Parse(dateLayout, viper.GetString("YAHOO_START"))
	if err != nil {
		invalid = append(invalid, "YAHOO_START: expected YYYY-MM-DD")
	}

	AppConfig = Config{
		Server: ServerConfig{
			Port:               viper.GetString("SERVER_PORT"),
			RateLimitPerMinute: viper.GetInt("RATE_LIMIT_PER_MINUTE"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
		Data: DataConfig{
			Source:  strings.ToLower(strings.TrimSpace(viper.GetString("DATA_SOURCE"))),
			CSVPath: viper.GetString("DATA_CSV_PATH"),
		},
		Yahoo: YahooConfig{
			BaseURL:   viper.GetString("YAHOO_BASE_URL"),
			Start:     start,
			RateLimit: viper.GetInt("YAHOO_RATE_LIMIT"),
			Timeout:   viper.GetDuration("YAHOO_TIMEOUT"),
		},
		Assets: AssetsConfig{
			Universe: universe,
			Defaults: SplitList(viper.GetString("DEFAULT_ASSETS")),
			Excluded: SplitList(viper.GetString("EXCLUDED_ASSETS")),
		},
	}

	AppConfig.Postgres.URL = AppConfig.Postgres.DSN()

	validateConfig(invalid)
}

// DSN builds the PostgreSQL connection string used by database/sql.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode,
	)
}

// ParseAssets parses a comma-separated list of Name=TICKER pairs.
// An entry without '=' uses its name as ticker.
func ParseAssets(s string) ([]models.Asset, error) {
	var out []models.Asset
	seen := make(map[string]bool)
	for _, entry := range SplitList(s) {
		name, ticker, ok := strings.Cut(entry, "=")
		name, ticker = strings.TrimSpace(name), strings.TrimSpace(ticker)
		if !ok {
			ticker = name
		}
		if name == "" || ticker == "" {
			return nil, fmt.Errorf("malformed entry %q", entry)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate asset %q", name)
		}
		seen[name] = true
		out = append(out, models.Asset{Name: name, Ticker: ticker})
	}
	return out, nil
}

// SplitList splits a comma-separated list, trimming blanks and dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// RequirePostgres reports the Postgres settings that are missing.
// Ingest mode calls it regardless of DATA_SOURCE.
func RequirePostgres(cfg Config) error {
	if missing := missingPostgres(cfg.Postgres); len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	return nil
}

// validateConfig terminates the application when required variables are
// missing or malformed.
func validateConfig(invalid []string) {
	issues := append(problems(AppConfig), invalid...)
	if len(issues) > 0 {
		log.Fatalf("❌ Invalid configuration: %v\n", issues)
	}
}

// problems lists every missing or inconsistent setting of cfg.
func problems(cfg Config) []string {
	var out []string

	if cfg.Server.Port == "" {
		out = append(out, "SERVER_PORT")
	}
	if cfg.Server.RateLimitPerMinute <= 0 {
		out = append(out, "RATE_LIMIT_PER_MINUTE")
	}

	switch cfg.Data.Source {
	case SourceCSV:
		if cfg.Data.CSVPath == "" {
			out = append(out, "DATA_CSV_PATH")
		}
	case SourceYahoo:
		if cfg.Yahoo.BaseURL == "" {
			out = append(out, "YAHOO_BASE_URL")
		}
		if cfg.Yahoo.RateLimit <= 0 {
			out = append(out, "YAHOO_RATE_LIMIT")
		}
	case SourcePostgres:
		out = append(out, missingPostgres(cfg.Postgres)...)
	default:
		out = append(out, fmt.Sprintf("DATA_SOURCE (unknown %q)", cfg.Data.Source))
	}

	if len(cfg.Assets.Universe) == 0 {
		out = append(out, "ASSETS")
	}
	known := make(map[string]bool, len(cfg.Assets.Universe))
	for _, a := range cfg.Assets.Universe {
		known[a.Name] = true
	}
	for _, name := range cfg.Assets.Defaults {
		if !known[name] {
			out = append(out, fmt.Sprintf("DEFAULT_ASSETS (unknown %q)", name))
		}
	}
	return out
}

func missingPostgres(p PostgresConfig) []string {
	var missing []string
	if p.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if p.Port == 0 {
		missing = append(missing, "POSTGRES_PORT")
	}
	if p.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if p.Password == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if p.DBName == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	return missing
}
