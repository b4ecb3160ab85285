// Package backtest replays historical candles through the live decision
// rules and grid-searches strategy parameters.
//
// Entry and exit semantics are shared with the trading loop (the same
// strategy.Evaluate and stop-loss/take-profit checks), so optimized
// parameters transfer to live paper trading unchanged.
package backtest

import (
	"fmt"

	"papertrading-systemv1/internal/indicator"
	"papertrading-systemv1/internal/model"
	"papertrading-systemv1/internal/strategy"
)

// RunConfig parameterizes one backtest pass.
type RunConfig struct {
	Params       indicator.Params
	Thresholds   strategy.Thresholds
	StartEquity  float64 // default 10000
	PositionSize int64   // default 1
}

func (c *RunConfig) applyDefaults() {
	if c.StartEquity == 0 {
		c.StartEquity = 10000
	}
	if c.PositionSize == 0 {
		c.PositionSize = 1
	}
}

// Result summarizes a backtest pass.
type Result struct {
	EquityStart float64
	EquityFinal float64
	Trades      int // closed round trips
	Wins        int
	Losses      int
}

// Profit returns the net equity change.
func (r Result) Profit() float64 {
	return r.EquityFinal - r.EquityStart
}

// Run replays the candle series through the live decision rules.
//
// Each bar t is treated as the latest closed bar: while flat, the evaluator
// runs at t and a buy opens a single-lot position at close[t]; while in a
// position, the first later bar whose close crosses the stop-loss or
// take-profit closes it. A position still open at the end is marked to
// market but not counted as a trade.
func Run(candles []model.Candle, cfg RunConfig) (Result, error) {
	cfg.applyDefaults()
	if err := cfg.Thresholds.Validate(); err != nil {
		return Result{}, err
	}

	closes := model.Closes(candles)
	set, err := indicator.Compute(closes, cfg.Params)
	if err != nil {
		return Result{}, fmt.Errorf("backtest indicators: %w", err)
	}

	res := Result{EquityStart: cfg.StartEquity, EquityFinal: cfg.StartEquity}
	size := float64(cfg.PositionSize)
	var pos *model.Position

	for t := 0; t < len(candles); t++ {
		if pos != nil {
			if pos.ShouldExit(closes[t]) {
				pnl := (closes[t] - pos.EntryPrice) * size
				res.EquityFinal += pnl
				res.Trades++
				if pnl >= 0 {
					res.Wins++
				} else {
					res.Losses++
				}
				pos = nil
			}
			continue
		}

		sig := strategy.Evaluate(closes, set, t, cfg.Thresholds)
		if sig.Action == strategy.ActionBuy {
			pos = &model.Position{
				EntryPrice: sig.Price,
				StopLoss:   sig.StopLoss,
				TakeProfit: sig.TakeProfit,
				Size:       cfg.PositionSize,
				EntryTime:  candles[t].TS,
			}
		}
		// A sell signal while flat is a no-op, as in the live loop.
	}

	if pos != nil {
		// Mark the open position to market on the final close.
		res.EquityFinal += (closes[len(closes)-1] - pos.EntryPrice) * size
	}
	return res, nil
}
