// Package marketdata defines failure sentinels shared by the concrete
// candle-source clients.
package marketdata

import "errors"

// ErrNoData is returned when a source answers successfully but carries no
// candles (unknown ticker, empty range). Callers treat it as retryable.
var ErrNoData = errors.New("no candle data returned")
