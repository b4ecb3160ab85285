// Package yahoo fetches OHLCV candles from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"papertrading-systemv1/internal/marketdata"
	"papertrading-systemv1/internal/model"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client fetches candle windows over HTTP. Every request carries the
// client-level timeout so a hung upstream cannot stall a trading tick.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithTimeout overrides the request timeout (default 10s).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a Yahoo chart API client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// chartResponse mirrors the subset of the chart API envelope we consume.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch returns the candle window for ticker at interval covering rangeSpec
// (e.g. "2d", "1mo"). Fails with marketdata.ErrNoData on an empty result.
func (c *Client) Fetch(ctx context.Context, ticker, interval, rangeSpec string) ([]model.Candle, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		c.baseURL, url.PathEscape(ticker), url.QueryEscape(interval), url.QueryEscape(rangeSpec))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("yahoo: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "papertrading-systemv1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo: fetch %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("yahoo: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: unexpected status %d for %s", resp.StatusCode, ticker)
	}

	var cr chartResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("yahoo: decode response: %w", err)
	}
	if cr.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo: api error %s: %s", cr.Chart.Error.Code, cr.Chart.Error.Description)
	}
	if len(cr.Chart.Result) == 0 || len(cr.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: %s: %w", ticker, marketdata.ErrNoData)
	}

	res := cr.Chart.Result[0]
	quote := res.Indicators.Quote[0]

	candles := make([]model.Candle, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		// Yahoo emits nulls for bars with no trades; skip them.
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		candles = append(candles, model.Candle{
			Ticker:   ticker,
			Interval: interval,
			TS:       time.Unix(ts, 0).UTC(),
			Open:     deref(quote.Open, i),
			High:     deref(quote.High, i),
			Low:      deref(quote.Low, i),
			Close:    *quote.Close[i],
			Volume:   deref(quote.Volume, i),
		})
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("yahoo: %s: %w", ticker, marketdata.ErrNoData)
	}
	if err := model.ValidateSeries(candles); err != nil {
		return nil, fmt.Errorf("yahoo: %w", err)
	}
	return candles, nil
}

func deref(s []*float64, i int) float64 {
	if i >= len(s) || s[i] == nil {
		return 0
	}
	return *s[i]
}
