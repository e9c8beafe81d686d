package app

import (
	"context"
	"testing"

	"github.com/guttosm/assetbeta/config"
	"github.com/guttosm/assetbeta/internal/metrics"
	"github.com/guttosm/assetbeta/internal/service"
)

func TestNewSource(t *testing.T) {
	cases := []struct {
		name     string
		source   string
		wantName string
		wantErr  bool
		ready    bool
	}{
		{name: "csv", source: config.SourceCSV, wantName: "csv", ready: true},
		{name: "empty defaults to csv", source: "", wantName: "csv", ready: true},
		{name: "yahoo", source: config.SourceYahoo, wantName: "yahoo"},
		{name: "unknown", source: "excel", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(tc.source, writeReturnsCSV(t))
			cfg.Yahoo = config.YahooConfig{BaseURL: "http://127.0.0.1:1", RateLimit: 1}

			src, err := NewSource(cfg, nil)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer src.Close()
			if src.Provider.Name() != tc.wantName {
				t.Fatalf("provider = %q, want %q", src.Provider.Name(), tc.wantName)
			}
			if (src.Ready != nil) != tc.ready {
				t.Fatalf("ready probe set = %v, want %v", src.Ready != nil, tc.ready)
			}
		})
	}
}

func TestNewService_FitsFromCSV(t *testing.T) {
	cfg := testConfig(config.SourceCSV, writeReturnsCSV(t))
	src, err := NewSource(cfg, metrics.New())
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	defer src.Close()

	svc := NewService(cfg, src, nil)
	years, err := svc.Years(context.Background(), nil)
	if err != nil || len(years) != 1 || years[0] != 2020 {
		t.Fatalf("years = %v, err = %v", years, err)
	}

	res, err := svc.Regress(context.Background(), service.Query{Year: 2020, Dependent: "Gold"})
	if err != nil {
		t.Fatalf("regress: %v", err)
	}
	if res.Fit.NObs != 12 || len(res.Coefficients) != 2 {
		t.Fatalf("unexpected fit: nobs=%d coefs=%+v", res.Fit.NObs, res.Coefficients)
	}
	if res.Coefficients[0].Asset != "Bitcoin" || res.Coefficients[1].Asset != "S&P 500" {
		t.Fatalf("unexpected coefficient order: %+v", res.Coefficients)
	}
}
