package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Candle represents one OHLCV bar for a single instrument.
// Prices are in the quote currency as reported by the data source.
type Candle struct {
	Ticker   string    `json:"ticker"`
	Interval string    `json:"interval"` // e.g. "5m", "15m", "1d"
	TS       time.Time `json:"ts"`       // bar open time (UTC)
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// Key returns a unique key for this candle's instrument: "ticker:interval".
func (c *Candle) Key() string {
	return c.Ticker + ":" + c.Interval
}

// JSON returns the JSON-encoded candle (ignoring errors for hot-path usage).
func (c *Candle) JSON() []byte {
	b, _ := json.Marshal(c)
	return b
}

// ValidateSeries checks that candles form a proper series: timestamps
// strictly increasing, no duplicates. Fetched windows must pass this before
// any indicator math runs on them.
func ValidateSeries(candles []Candle) error {
	for i := 1; i < len(candles); i++ {
		if !candles[i].TS.After(candles[i-1].TS) {
			return fmt.Errorf("candle series not strictly increasing at index %d: %s >= %s",
				i, candles[i-1].TS.Format(time.RFC3339), candles[i].TS.Format(time.RFC3339))
		}
	}
	return nil
}

// Closes extracts the close prices of a candle series.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i := range candles {
		out[i] = candles[i].Close
	}
	return out
}
