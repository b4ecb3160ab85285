// Package strategy maps indicator values to trade decisions.
//
// Evaluate is a pure function: no I/O, no side effects. Position management
// (refusing to buy while a position is open, logging exits) is the caller's
// job.
package strategy

import (
	"fmt"

	"papertrading-systemv1/internal/indicator"
)

// Action represents a trading decision.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionNone Action = "none"
)

// Signal is the outcome of one evaluation. StopLoss and TakeProfit are set
// only for buy signals. Produced fresh each evaluation, never mutated.
type Signal struct {
	Action     Action
	Price      float64
	StopLoss   float64
	TakeProfit float64
	Reason     string
}

// Thresholds holds the decision parameters.
type Thresholds struct {
	RSIBuy        float64 // oversold level, e.g. 30
	RSISell       float64 // overbought level, e.g. 70
	StopLossPct   float64 // e.g. 0.02
	TakeProfitPct float64 // e.g. 0.05
}

// Validate checks threshold sanity. RSIBuy must stay below RSISell so the
// buy and sell conditions cannot both hold.
func (t Thresholds) Validate() error {
	if t.RSIBuy >= t.RSISell {
		return fmt.Errorf("rsi buy threshold %.1f must be below sell threshold %.1f", t.RSIBuy, t.RSISell)
	}
	if t.StopLossPct <= 0 || t.StopLossPct >= 1 {
		return fmt.Errorf("stop loss pct %.4f out of range (0,1)", t.StopLossPct)
	}
	if t.TakeProfitPct <= 0 {
		return fmt.Errorf("take profit pct %.4f must be positive", t.TakeProfitPct)
	}
	return nil
}

// Evaluate produces the trade decision for the candle at index t.
//
// Callers must pass the latest fully-closed candle's index, never the
// still-forming final bar. If any required indicator value at t is
// undefined (warm-up window), the result is ActionNone.
//
// The buy condition is checked before the sell condition; with valid
// thresholds (RSIBuy < RSISell) both can never hold at once.
func Evaluate(closes []float64, set *indicator.Set, t int, th Thresholds) Signal {
	if !set.DefinedAt(t) {
		return Signal{Action: ActionNone}
	}
	price := closes[t]

	if set.RSI[t] < th.RSIBuy && price < set.Lower[t] {
		return Signal{
			Action:     ActionBuy,
			Price:      price,
			StopLoss:   price * (1 - th.StopLossPct),
			TakeProfit: price * (1 + th.TakeProfitPct),
			Reason:     fmt.Sprintf("RSI %.1f < %.1f and close below lower band", set.RSI[t], th.RSIBuy),
		}
	}

	if set.RSI[t] > th.RSISell || price > set.Upper[t] {
		return Signal{
			Action: ActionSell,
			Price:  price,
			Reason: fmt.Sprintf("RSI %.1f > %.1f or close above upper band", set.RSI[t], th.RSISell),
		}
	}

	return Signal{Action: ActionNone, Price: price}
}
