package model

import (
	"fmt"
	"time"
)

// TradeTimeFormat is the timestamp layout used in the trade log.
const TradeTimeFormat = "2006-01-02 15:04:05"

// TradeRecord is one append-only row in the trade log.
// ExitPrice and Duration are populated only on closing sell rows.
// Records are never mutated after append; corrections are new rows.
type TradeRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Action       string    `json:"action"` // "buy" or "sell"
	Price        float64   `json:"price"`
	StopLoss     float64   `json:"stop_loss"`
	TakeProfit   float64   `json:"take_profit"`
	PositionSize int64     `json:"position_size"`
	ExitPrice    float64   `json:"exit_price"`       // 0 unless closing row
	DurationMin  int       `json:"duration_minutes"` // 0 unless closing row
	HasExit      bool      `json:"has_exit"`
}

// DurationString renders the duration column value: "<n>min" or "".
func (t *TradeRecord) DurationString() string {
	if !t.HasExit {
		return ""
	}
	return fmt.Sprintf("%dmin", t.DurationMin)
}
