// Package indicator provides technical indicator calculations over candle
// series.
//
// All computations are pure functions of the input series and parameters:
// re-running on the same input yields bit-identical output. Each derived
// series is aligned 1:1 with the candle series by index; leading entries are
// NaN until enough history accumulates, and NaN values must never feed a
// trading decision.
package indicator

import (
	"errors"
	"fmt"
	"math"
)

// ErrInsufficientData is returned when a candle series is shorter than the
// largest required lookback period.
var ErrInsufficientData = errors.New("insufficient candle data")

// Params holds the lookback configuration for one indicator pass.
type Params struct {
	RSIPeriod  int     // RSI lookback (typically 14)
	BandPeriod int     // band WMA/stddev lookback (typically 20)
	BandWidth  float64 // standard deviations between middle and outer bands
}

// Validate checks parameter sanity.
func (p Params) Validate() error {
	if p.RSIPeriod < 1 {
		return fmt.Errorf("rsi period must be >= 1, got %d", p.RSIPeriod)
	}
	if p.BandPeriod < 2 {
		return fmt.Errorf("band period must be >= 2, got %d", p.BandPeriod)
	}
	if p.BandWidth <= 0 {
		return fmt.Errorf("band width must be > 0, got %f", p.BandWidth)
	}
	return nil
}

// MinCandles returns the smallest series length the parameters can operate on.
func (p Params) MinCandles() int {
	n := p.RSIPeriod + 1 // one extra close for the first diff
	if p.BandPeriod > n {
		n = p.BandPeriod
	}
	return n
}

// Set holds the derived series for one candle series. All slices have the
// same length as the input series.
type Set struct {
	RSI    []float64
	Middle []float64
	Upper  []float64
	Lower  []float64
}

// DefinedAt reports whether every series has a usable (non-NaN) value at t.
func (s *Set) DefinedAt(t int) bool {
	if t < 0 || t >= len(s.RSI) {
		return false
	}
	return !math.IsNaN(s.RSI[t]) && !math.IsNaN(s.Upper[t]) && !math.IsNaN(s.Lower[t])
}

// Compute derives the full indicator set for a series of close prices.
// Fails with ErrInsufficientData when the series is shorter than the
// largest required period.
func Compute(closes []float64, p Params) (*Set, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(closes) < p.MinCandles() {
		return nil, fmt.Errorf("%w: have %d candles, need %d",
			ErrInsufficientData, len(closes), p.MinCandles())
	}

	middle := WMA(closes, p.BandPeriod)
	std := RollingStdDev(closes, p.BandPeriod)

	upper := make([]float64, len(closes))
	lower := make([]float64, len(closes))
	for i := range closes {
		upper[i] = middle[i] + p.BandWidth*std[i]
		lower[i] = middle[i] - p.BandWidth*std[i]
	}

	return &Set{
		RSI:    RSI(closes, p.RSIPeriod),
		Middle: middle,
		Upper:  upper,
		Lower:  lower,
	}, nil
}
