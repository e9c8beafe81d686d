package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/assetbeta/internal/domain/dto"
	"github.com/guttosm/assetbeta/internal/domain/models"
	"github.com/guttosm/assetbeta/internal/middleware"
	"github.com/guttosm/assetbeta/internal/regression"
	"github.com/guttosm/assetbeta/internal/service"
)

type mockRegressionService struct {
	years []int
	res   *regression.Result
	png   []byte
	err   error

	gotQuery  service.Query
	gotAssets []string
}

func (m *mockRegressionService) Universe() []models.Asset {
	return []models.Asset{{Name: "Bitcoin", Ticker: "BTC-USD"}, {Name: "Gold", Ticker: "GLD"}}
}

func (m *mockRegressionService) DefaultAssets() []string { return []string{"Bitcoin", "Gold"} }

func (m *mockRegressionService) Years(_ context.Context, assets []string) ([]int, error) {
	m.gotAssets = assets
	return m.years, m.err
}

func (m *mockRegressionService) Regress(_ context.Context, q service.Query) (*regression.Result, error) {
	m.gotQuery = q
	return m.res, m.err
}

func (m *mockRegressionService) Chart(_ context.Context, q service.Query) ([]byte, error) {
	m.gotQuery = q
	return m.png, m.err
}

var _ service.RegressionService = (*mockRegressionService)(nil)

// sampleResult fits Gold on Bitcoin over five months with known estimates
// (intercept 2.2, slope 0.6).
func sampleResult(t *testing.T) *regression.Result {
	t.Helper()
	fit, err := regression.FitOLS(&regression.Input{
		Dependent:   "Gold",
		Year:        2020,
		Explanatory: []string{"Bitcoin"},
		X:           [][]float64{{1}, {2}, {3}, {4}, {5}},
		Y:           []float64{2, 4, 5, 4, 5},
	})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	return &regression.Result{Fit: fit, Coefficients: fit.Coefficients()}
}

func setupRouterWithMock(s service.RegressionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s)
	r := gin.New()
	r.Use(middleware.ErrorHandler)
	v1 := r.Group("/api/v1")
	v1.GET("/assets", h.GetAssets)
	v1.GET("/years", h.GetYears)
	v1.GET("/regression", h.GetRegression)
	v1.GET("/regression/chart", h.GetChart)
	return r
}

func TestGetAssets(t *testing.T) {
	r := setupRouterWithMock(&mockRegressionService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/assets", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out dto.AssetsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(out.Assets) != 2 || out.Assets[0].Ticker != "BTC-USD" || out.MinAssets != service.MinAssets {
		t.Fatalf("unexpected body: %+v", out)
	}
}

func TestGetYears_TableDriven(t *testing.T) {
	cases := []struct {
		name       string
		svc        *mockRegressionService
		query      string
		status     int
		wantAssets []string
		wantYears  []int
	}{
		{
			name:       "explicit selection",
			svc:        &mockRegressionService{years: []int{2019, 2020}},
			query:      "/api/v1/years?assets=Bitcoin,%20Gold",
			status:     http.StatusOK,
			wantAssets: []string{"Bitcoin", "Gold"},
			wantYears:  []int{2019, 2020},
		},
		{
			name:       "default selection",
			svc:        &mockRegressionService{years: []int{2021}},
			query:      "/api/v1/years",
			status:     http.StatusOK,
			wantAssets: []string{"Bitcoin", "Gold"},
			wantYears:  []int{2021},
		},
		{
			name:   "too few assets",
			svc:    &mockRegressionService{err: service.ErrTooFewAssets},
			query:  "/api/v1/years?assets=Gold",
			status: http.StatusBadRequest,
		},
		{
			name:   "provider failure",
			svc:    &mockRegressionService{err: &regression.Error{Kind: regression.KindInsufficientData, Err: errors.New("timeout")}},
			query:  "/api/v1/years",
			status: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouterWithMock(tc.svc)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.query, nil))
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d body=%s", w.Code, tc.status, w.Body.String())
			}
			if tc.status != http.StatusOK {
				return
			}
			var out dto.YearsResponse
			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if !reflect.DeepEqual(out.Assets, tc.wantAssets) || !reflect.DeepEqual(out.Years, tc.wantYears) {
				t.Fatalf("unexpected body: %+v", out)
			}
		})
	}
}

func TestGetRegression_TableDriven(t *testing.T) {
	cases := []struct {
		name     string
		svc      *mockRegressionService
		query    string
		status   int
		wantKind string
	}{
		{name: "missing year", svc: &mockRegressionService{}, query: "/api/v1/regression?dependent=Gold", status: http.StatusBadRequest},
		{name: "invalid year", svc: &mockRegressionService{}, query: "/api/v1/regression?year=twenty&dependent=Gold", status: http.StatusBadRequest},
		{name: "missing dependent", svc: &mockRegressionService{}, query: "/api/v1/regression?year=2020", status: http.StatusBadRequest},
		{name: "too few assets", svc: &mockRegressionService{err: service.ErrTooFewAssets}, query: "/api/v1/regression?year=2020&dependent=Gold&assets=Gold", status: http.StatusBadRequest},
		{
			name:     "missing column",
			svc:      &mockRegressionService{err: &regression.Error{Kind: regression.KindMissingColumn, Asset: "Oil", Year: 2020}},
			query:    "/api/v1/regression?year=2020&dependent=Oil",
			status:   http.StatusBadRequest,
			wantKind: "missing_column",
		},
		{
			name:     "empty slice",
			svc:      &mockRegressionService{err: &regression.Error{Kind: regression.KindEmptySlice, Asset: "Gold", Year: 2031}},
			query:    "/api/v1/regression?year=2031&dependent=Gold",
			status:   http.StatusNotFound,
			wantKind: "empty_slice",
		},
		{
			name:     "singular",
			svc:      &mockRegressionService{err: &regression.Error{Kind: regression.KindSingularMatrix, Asset: "Gold", Year: 2020}},
			query:    "/api/v1/regression?year=2020&dependent=Gold",
			status:   http.StatusUnprocessableEntity,
			wantKind: "singular_matrix",
		},
		{name: "unexpected", svc: &mockRegressionService{err: errors.New("boom")}, query: "/api/v1/regression?year=2020&dependent=Gold", status: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouterWithMock(tc.svc)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.query, nil))
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d body=%s", w.Code, tc.status, w.Body.String())
			}
			var out dto.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if out.Message == "" || out.Kind != tc.wantKind {
				t.Fatalf("unexpected error body: %+v", out)
			}
		})
	}
}

func TestGetRegression_OK(t *testing.T) {
	svc := &mockRegressionService{res: sampleResult(t)}
	r := setupRouterWithMock(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/regression?assets=Bitcoin,Gold,RF&year=2020&dependent=Gold&exclude=RF", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	want := service.Query{Assets: []string{"Bitcoin", "Gold", "RF"}, Year: 2020, Dependent: "Gold", Excluded: []string{"RF"}}
	if !reflect.DeepEqual(svc.gotQuery, want) {
		t.Fatalf("query = %+v, want %+v", svc.gotQuery, want)
	}

	var out dto.RegressionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if out.Dependent != "Gold" || out.Year != 2020 || out.NObs != 5 {
		t.Fatalf("unexpected header fields: %+v", out)
	}
	if len(out.Coefficients) != 1 || out.Coefficients[0].Asset != "Bitcoin" {
		t.Fatalf("unexpected coefficients: %+v", out.Coefficients)
	}
	if d := out.Coefficients[0].Value - 0.6; d > 1e-9 || d < -1e-9 {
		t.Fatalf("slope = %v, want 0.6", out.Coefficients[0].Value)
	}
	if out.Summary == "" || out.RSquared == nil {
		t.Fatalf("expected summary and r_squared in body")
	}
}

func TestGetChart(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nfake")

	t.Run("ok", func(t *testing.T) {
		r := setupRouterWithMock(&mockRegressionService{png: png})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/regression/chart?year=2020&dependent=Gold", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "image/png" {
			t.Fatalf("content type = %q", ct)
		}
		if w.Body.String() != string(png) {
			t.Fatalf("unexpected body")
		}
	})

	t.Run("empty slice", func(t *testing.T) {
		svc := &mockRegressionService{err: &regression.Error{Kind: regression.KindEmptySlice, Year: 1990}}
		r := setupRouterWithMock(svc)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/regression/chart?year=1990&dependent=Gold", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d", w.Code)
		}
	})
}

func TestParseQuery_Messages(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  string
	}{
		{name: "missing year", query: "dependent=Gold", want: "year is required"},
		{name: "negative year", query: "year=-3&dependent=Gold", want: "year must be at least 1"},
		{name: "not a number", query: "year=twenty&dependent=Gold", want: "invalid query parameters"},
		{name: "missing dependent", query: "year=2020", want: "dependent is required"},
		{name: "blank dependent", query: "year=2020&dependent=%20%20", want: "dependent is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouterWithMock(&mockRegressionService{})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/regression?"+tc.query, nil))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", w.Code)
			}
			var out dto.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if out.Message != tc.want {
				t.Fatalf("message = %q, want %q", out.Message, tc.want)
			}
		})
	}
}
