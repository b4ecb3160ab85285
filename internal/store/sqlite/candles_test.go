package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"papertrading-systemv1/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "candles.db"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testCandles(n int) []model.Candle {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	out := make([]model.Candle, n)
	for i := range out {
		out[i] = model.Candle{
			Ticker:   "BTC-USD",
			Interval: "5m",
			TS:       start.Add(time.Duration(i) * 5 * time.Minute),
			Open:     100 + float64(i),
			High:     101 + float64(i),
			Low:      99 + float64(i),
			Close:    100.5 + float64(i),
			Volume:   1000,
		}
	}
	return out
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := testStore(t)
	candles := testCandles(5)

	if err := s.WriteCandles(candles); err != nil {
		t.Fatalf("WriteCandles failed: %v", err)
	}
	got, err := s.ReadCandles("BTC-USD", "5m", 0)
	if err != nil {
		t.Fatalf("ReadCandles failed: %v", err)
	}
	if len(got) != len(candles) {
		t.Fatalf("got %d candles, want %d", len(got), len(candles))
	}
	for i := range candles {
		if !got[i].TS.Equal(candles[i].TS) || got[i].Close != candles[i].Close {
			t.Errorf("candle %d = %+v, want %+v", i, got[i], candles[i])
		}
	}
}

func TestWriteCandlesConverges(t *testing.T) {
	s := testStore(t)
	candles := testCandles(5)

	if err := s.WriteCandles(candles); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	// Re-writing the same bars (a repeated backfill) must replace, not
	// duplicate.
	candles[2].Close = 999
	if err := s.WriteCandles(candles); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	got, err := s.ReadCandles("BTC-USD", "5m", 0)
	if err != nil {
		t.Fatalf("ReadCandles failed: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d candles after rewrite, want 5", len(got))
	}
	if got[2].Close != 999 {
		t.Errorf("rewritten close = %f, want 999", got[2].Close)
	}
}

func TestReadCandlesAfterTS(t *testing.T) {
	s := testStore(t)
	candles := testCandles(5)
	if err := s.WriteCandles(candles); err != nil {
		t.Fatalf("WriteCandles failed: %v", err)
	}

	got, err := s.ReadCandles("BTC-USD", "5m", candles[2].TS.Unix())
	if err != nil {
		t.Fatalf("ReadCandles failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candles after ts filter, want 2", len(got))
	}
	if !got[0].TS.Equal(candles[3].TS) {
		t.Errorf("first candle ts = %v, want %v", got[0].TS, candles[3].TS)
	}
}

func TestLastTimestamp(t *testing.T) {
	s := testStore(t)

	ts, err := s.LastTimestamp("BTC-USD", "5m")
	if err != nil {
		t.Fatalf("LastTimestamp failed: %v", err)
	}
	if ts != 0 {
		t.Errorf("empty store timestamp = %d, want 0", ts)
	}

	candles := testCandles(3)
	if err := s.WriteCandles(candles); err != nil {
		t.Fatalf("WriteCandles failed: %v", err)
	}
	ts, err = s.LastTimestamp("BTC-USD", "5m")
	if err != nil {
		t.Fatalf("LastTimestamp failed: %v", err)
	}
	if want := candles[2].TS.Unix(); ts != want {
		t.Errorf("timestamp = %d, want %d", ts, want)
	}
}
