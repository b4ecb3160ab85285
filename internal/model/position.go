package model

import "time"

// Position represents the single open paper position.
// The trader holds at most one position at a time (single-asset, single-lot).
type Position struct {
	EntryPrice float64   `json:"entry_price"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	Size       int64     `json:"size"`
	EntryTime  time.Time `json:"entry_time"` // entry candle timestamp (UTC)
}

// ShouldExit reports whether price crosses the stop-loss or take-profit level.
func (p *Position) ShouldExit(price float64) bool {
	return price <= p.StopLoss || price >= p.TakeProfit
}

// HoldingMinutes returns the whole minutes between entry and exit timestamps.
func (p *Position) HoldingMinutes(exitTS time.Time) int {
	return int(exitTS.Sub(p.EntryTime).Minutes())
}
