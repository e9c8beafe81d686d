// Package marketdata fetches monthly adjusted closes from the Yahoo Finance
// chart API and turns them into monthly returns.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/guttosm/assetbeta/internal/domain/models"
	"github.com/guttosm/assetbeta/internal/logger"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 2 // requests per second
	defaultUserAgent = "Mozilla/5.0 (compatible; assetbeta/1.0)"
)

// DefaultStart is the first month requested when no start is configured.
var DefaultStart = time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC)

// Client is a rate-limited Yahoo Finance chart client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	start      time.Time
	now        func() time.Time
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithStart sets the first month requested.
func WithStart(start time.Time) ClientOption {
	return func(c *Client) {
		if !start.IsZero() {
			c.start = start
		}
	}
}

// NewClient creates a new chart client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		start:   DefaultStart,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a non-200 answer or an error payload from the chart API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Ticker     string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("chart API error for %s: %s: %s (status: %d)", e.Ticker, e.Code, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("chart API error for %s: %s (status: %d)", e.Ticker, e.Message, e.StatusCode)
}

// PricePoint is one monthly adjusted close.
type PricePoint struct {
	Date  time.Time
	Close float64
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// MonthlyCloses returns the monthly adjusted closes of ticker from the
// configured start month until now, one point per month, ascending.
// Months where the API reports no price are omitted.
func (c *Client) MonthlyCloses(ctx context.Context, ticker string) ([]PricePoint, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("period1", strconv.FormatInt(c.start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(c.now().Unix(), 10))
	params.Set("interval", "1mo")
	params.Set("events", "div,split")
	params.Set("includeAdjustedClose", "true")

	path := "/v8/finance/chart/" + url.PathEscape(ticker)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/json")

	logger.L().Debug().Str("ticker", ticker).Str("url", c.baseURL+path).Msg("chart API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(body), Ticker: ticker}
		var payload chartResponse
		if json.Unmarshal(body, &payload) == nil && payload.Chart.Error != nil {
			apiErr.Code = payload.Chart.Error.Code
			apiErr.Message = payload.Chart.Error.Description
		}
		return nil, apiErr
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if payload.Chart.Error != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Code: payload.Chart.Error.Code, Message: payload.Chart.Error.Description, Ticker: ticker}
	}
	if len(payload.Chart.Result) == 0 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "empty result", Ticker: ticker}
	}

	return monthlyPoints(payload.Chart.Result[0]), nil
}

// monthlyPoints prefers adjusted closes and falls back to raw closes.
// When a month appears twice (Yahoo appends an intra-month bar for the
// current month) the later value wins.
func monthlyPoints(r chartResult) []PricePoint {
	var closes []*float64
	if len(r.Indicators.AdjClose) > 0 && len(r.Indicators.AdjClose[0].AdjClose) > 0 {
		closes = r.Indicators.AdjClose[0].AdjClose
	} else if len(r.Indicators.Quote) > 0 {
		closes = r.Indicators.Quote[0].Close
	}

	out := make([]PricePoint, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		d := models.MonthStart(time.Unix(ts, 0))
		if n := len(out); n > 0 && out[n-1].Date.Equal(d) {
			out[n-1].Close = *closes[i]
			continue
		}
		out = append(out, PricePoint{Date: d, Close: *closes[i]})
	}
	return out
}
