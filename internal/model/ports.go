package model

import "context"

// ── Port Interfaces ──
// These interfaces decouple the trading loop and optimizer from concrete
// data-source and storage implementations.

// CandleSource supplies OHLCV candle windows for a ticker/interval.
type CandleSource interface {
	// Fetch returns the most recent candle window covering rangeSpec
	// (source-specific, e.g. "2d"). Fails with a NoData error on an
	// empty result.
	Fetch(ctx context.Context, ticker, interval, rangeSpec string) ([]Candle, error)
}

// TradeLog is the append-only store of executed paper trades.
type TradeLog interface {
	// Append writes one record. Existing rows are never reordered or
	// deleted. Creates the backing store with its schema on first use.
	Append(rec TradeRecord) error

	// Load returns all records in insertion order.
	Load() ([]TradeRecord, error)

	// Close releases underlying resources.
	Close() error
}

// CandleStore persists historical candles for backfill and optimization.
type CandleStore interface {
	WriteCandles(candles []Candle) error
	ReadCandles(ticker, interval string, afterTS int64) ([]Candle, error)
	Close() error
}
