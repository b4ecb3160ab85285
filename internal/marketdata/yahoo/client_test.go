package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"papertrading-systemv1/internal/marketdata"
)

func chartServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/BTC-USD" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("interval"); got != "5m" {
			t.Errorf("interval = %q, want 5m", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestFetchParsesCandles(t *testing.T) {
	srv := chartServer(t, `{
		"chart": {
			"result": [{
				"timestamp": [1709290800, 1709291100, 1709291400],
				"indicators": {
					"quote": [{
						"open":   [100.0, 101.0, 102.0],
						"high":   [101.5, 102.5, 103.5],
						"low":    [99.5, 100.5, 101.5],
						"close":  [101.0, 102.0, 103.0],
						"volume": [1000, 1100, 1200]
					}]
				}
			}],
			"error": null
		}
	}`)
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	candles, err := c.Fetch(context.Background(), "BTC-USD", "5m", "2d")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(candles) != 3 {
		t.Fatalf("got %d candles, want 3", len(candles))
	}

	first := candles[0]
	if first.Ticker != "BTC-USD" || first.Interval != "5m" {
		t.Errorf("instrument = %s %s, want BTC-USD 5m", first.Ticker, first.Interval)
	}
	if want := time.Unix(1709290800, 0).UTC(); !first.TS.Equal(want) {
		t.Errorf("ts = %v, want %v", first.TS, want)
	}
	if first.Open != 100 || first.High != 101.5 || first.Low != 99.5 || first.Close != 101 {
		t.Errorf("ohlc = %v/%v/%v/%v", first.Open, first.High, first.Low, first.Close)
	}
	if first.Volume != 1000 {
		t.Errorf("volume = %f, want 1000", first.Volume)
	}
}

func TestFetchSkipsNullBars(t *testing.T) {
	srv := chartServer(t, `{
		"chart": {
			"result": [{
				"timestamp": [1709290800, 1709291100, 1709291400],
				"indicators": {
					"quote": [{
						"open":   [100.0, null, 102.0],
						"high":   [101.5, null, 103.5],
						"low":    [99.5, null, 101.5],
						"close":  [101.0, null, 103.0],
						"volume": [1000, null, 1200]
					}]
				}
			}],
			"error": null
		}
	}`)
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	candles, err := c.Fetch(context.Background(), "BTC-USD", "5m", "2d")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("got %d candles, want 2 (null bar skipped)", len(candles))
	}
	if candles[1].Close != 103 {
		t.Errorf("second close = %f, want 103", candles[1].Close)
	}
}

func TestFetchEmptyResult(t *testing.T) {
	srv := chartServer(t, `{"chart": {"result": [], "error": null}}`)
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	_, err := c.Fetch(context.Background(), "BTC-USD", "5m", "2d")
	if !errors.Is(err, marketdata.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestFetchAPIError(t *testing.T) {
	srv := chartServer(t, `{
		"chart": {
			"result": [],
			"error": {"code": "Not Found", "description": "No data found"}
		}
	}`)
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	_, err := c.Fetch(context.Background(), "BTC-USD", "5m", "2d")
	if err == nil {
		t.Fatal("expected an error on an API error envelope")
	}
}

func TestFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	if _, err := c.Fetch(context.Background(), "BTC-USD", "5m", "2d"); err == nil {
		t.Fatal("expected an error on HTTP 429")
	}
}
