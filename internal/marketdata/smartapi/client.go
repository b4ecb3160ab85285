// Package smartapi fetches historical OHLCV candles from a SmartAPI-style
// broker endpoint, handling TOTP session login and token refresh.
package smartapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"papertrading-systemv1/internal/marketdata"
	"papertrading-systemv1/internal/model"

	"github.com/pquerna/otp/totp"
)

const defaultRootURL = "https://apiconnect.angelone.in"

var routes = map[string]string{
	"api.login":       "/rest/auth/angelbroking/user/v1/loginByPassword",
	"api.candle.data": "/rest/secure/angelbroking/historical/v1/getCandleData",
}

// intervalNames maps our interval strings to the broker's enum values.
var intervalNames = map[string]string{
	"1m":  "ONE_MINUTE",
	"5m":  "FIVE_MINUTE",
	"15m": "FIFTEEN_MINUTE",
	"30m": "THIRTY_MINUTE",
	"1h":  "ONE_HOUR",
	"1d":  "ONE_DAY",
}

// Config holds broker credentials and instrument mapping.
type Config struct {
	APIKey     string
	ClientCode string
	Password   string
	TOTPSecret string

	Exchange    string // e.g. "NSE"
	SymbolToken string // broker instrument token for the configured ticker

	RootURL string        // default: https://apiconnect.angelone.in
	Timeout time.Duration // default: 7s
}

// Client is an authenticated candle source. A session is established lazily
// on the first fetch and refreshed when the broker rejects the token.
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
}

// New creates a SmartAPI client.
func New(cfg Config) *Client {
	if cfg.RootURL == "" {
		cfg.RootURL = defaultRootURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 7 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// login generates a fresh TOTP code and exchanges credentials for a session
// token.
func (c *Client) login(ctx context.Context) error {
	code, err := totp.GenerateCode(c.cfg.TOTPSecret, time.Now())
	if err != nil {
		return fmt.Errorf("smartapi: totp generation: %w", err)
	}

	params := map[string]any{
		"clientcode": c.cfg.ClientCode,
		"password":   c.cfg.Password,
		"totp":       code,
	}
	res, err := c.post(ctx, "api.login", params, "")
	if err != nil {
		return fmt.Errorf("smartapi: login: %w", err)
	}

	status, _ := res["status"].(bool)
	if !status {
		msg, _ := res["message"].(string)
		return fmt.Errorf("smartapi: login rejected: %s", msg)
	}
	data, ok := res["data"].(map[string]any)
	if !ok {
		return fmt.Errorf("smartapi: unexpected login response format")
	}
	token, _ := data["jwtToken"].(string)
	if token == "" {
		return fmt.Errorf("smartapi: login response missing jwtToken")
	}

	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
	return nil
}

// Fetch returns the candle window covering rangeSpec (e.g. "2d") ending now.
// The ticker argument is informational; the instrument is addressed by the
// configured exchange and symbol token.
func (c *Client) Fetch(ctx context.Context, ticker, interval, rangeSpec string) ([]model.Candle, error) {
	name, ok := intervalNames[interval]
	if !ok {
		return nil, fmt.Errorf("smartapi: unsupported interval %q", interval)
	}
	lookback, err := parseRangeSpec(rangeSpec)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	token := c.accessToken
	c.mu.Unlock()
	if token == "" {
		if err := c.login(ctx); err != nil {
			return nil, err
		}
		c.mu.Lock()
		token = c.accessToken
		c.mu.Unlock()
	}

	now := time.Now()
	params := map[string]any{
		"exchange":    c.cfg.Exchange,
		"symboltoken": c.cfg.SymbolToken,
		"interval":    name,
		"fromdate":    now.Add(-lookback).Format("2006-01-02 15:04"),
		"todate":      now.Format("2006-01-02 15:04"),
	}
	res, err := c.post(ctx, "api.candle.data", params, token)
	if err != nil {
		return nil, fmt.Errorf("smartapi: candle data: %w", err)
	}

	status, _ := res["status"].(bool)
	if !status {
		msg, _ := res["message"].(string)
		return nil, fmt.Errorf("smartapi: candle data rejected: %s", msg)
	}
	rows, ok := res["data"].([]any)
	if !ok || len(rows) == 0 {
		return nil, fmt.Errorf("smartapi: %s: %w", ticker, marketdata.ErrNoData)
	}

	candles := make([]model.Candle, 0, len(rows))
	for _, raw := range rows {
		row, ok := raw.([]any)
		if !ok || len(row) < 6 {
			continue
		}
		tsStr, _ := row[0].(string)
		ts, err := time.Parse("2006-01-02T15:04:05-07:00", tsStr)
		if err != nil {
			continue
		}
		candles = append(candles, model.Candle{
			Ticker:   ticker,
			Interval: interval,
			TS:       ts.UTC(),
			Open:     toFloat(row[1]),
			High:     toFloat(row[2]),
			Low:      toFloat(row[3]),
			Close:    toFloat(row[4]),
			Volume:   toFloat(row[5]),
		})
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("smartapi: %s: %w", ticker, marketdata.ErrNoData)
	}
	if err := model.ValidateSeries(candles); err != nil {
		return nil, fmt.Errorf("smartapi: %w", err)
	}
	return candles, nil
}

func (c *Client) post(ctx context.Context, route string, params map[string]any, token string) (map[string]any, error) {
	uri, ok := routes[route]
	if !ok {
		return nil, fmt.Errorf("smartapi: unknown route %s", route)
	}
	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.RootURL+uri, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-UserType", "USER")
	req.Header.Set("X-SourceID", "WEB")
	req.Header.Set("X-PrivateKey", c.cfg.APIKey)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusForbidden {
		// Session expired; drop the token so the next call re-logs in.
		c.mu.Lock()
		c.accessToken = ""
		c.mu.Unlock()
		return nil, fmt.Errorf("smartapi: session expired (status 403)")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("smartapi: unexpected status %d", resp.StatusCode)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("smartapi: decode response: %w", err)
	}
	return out, nil
}

// parseRangeSpec converts a window spec like "2d", "12h" or "1mo" into a
// lookback duration.
func parseRangeSpec(spec string) (time.Duration, error) {
	switch {
	case strings.HasSuffix(spec, "mo"):
		n, err := strconv.Atoi(strings.TrimSuffix(spec, "mo"))
		if err != nil {
			return 0, fmt.Errorf("smartapi: bad range spec %q", spec)
		}
		return time.Duration(n) * 30 * 24 * time.Hour, nil
	case strings.HasSuffix(spec, "d"):
		n, err := strconv.Atoi(strings.TrimSuffix(spec, "d"))
		if err != nil {
			return 0, fmt.Errorf("smartapi: bad range spec %q", spec)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	case strings.HasSuffix(spec, "h"):
		n, err := strconv.Atoi(strings.TrimSuffix(spec, "h"))
		if err != nil {
			return 0, fmt.Errorf("smartapi: bad range spec %q", spec)
		}
		return time.Duration(n) * time.Hour, nil
	default:
		return 0, fmt.Errorf("smartapi: bad range spec %q", spec)
	}
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		f, _ := strconv.ParseFloat(x, 64)
		return f
	default:
		return 0
	}
}
