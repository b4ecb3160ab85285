// Package trader runs the live paper-trading loop.
//
// The loop is a two-state machine: Flat (no open position) and InPosition.
// Each tick fetches the latest candle window, evaluates the signal on the
// second-to-last bar (the last may still be forming), and journals every
// executed paper trade. Execution is single-threaded and blocking; the only
// suspension points are the timed pauses between ticks.
package trader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"papertrading-systemv1/internal/indicator"
	"papertrading-systemv1/internal/model"
	"papertrading-systemv1/internal/strategy"
)

// ErrJournal marks trade-log write failures. Unlike fetch or compute
// errors, these are fatal: pausing beats losing a trade record.
var ErrJournal = errors.New("trade log failure")

// ErrThinData marks windows too short to evaluate; the loop backs off and
// retries without a state change.
var ErrThinData = errors.New("not enough candles in window")

// Config holds the loop parameters. Defaults match the historical cadence:
// 300s polls, 60s backoff, 20-candle minimum window.
type Config struct {
	Ticker    string
	Interval  string
	RangeSpec string // fetch window passed to the data source, e.g. "2d"

	PollInterval time.Duration
	Backoff      time.Duration
	MinCandles   int
	PositionSize int64

	Params     indicator.Params
	Thresholds strategy.Thresholds
}

func (c *Config) applyDefaults() {
	if c.PollInterval == 0 {
		c.PollInterval = 300 * time.Second
	}
	if c.Backoff == 0 {
		c.Backoff = 60 * time.Second
	}
	if c.MinCandles == 0 {
		c.MinCandles = 20
	}
	if c.PositionSize == 0 {
		c.PositionSize = 1
	}
	if c.RangeSpec == "" {
		c.RangeSpec = "2d"
	}
}

// Loop orchestrates polling, signal evaluation, position tracking, and
// logging on a fixed cadence.
type Loop struct {
	cfg    Config
	source model.CandleSource
	trades model.TradeLog
	logger *slog.Logger

	// optional collaborators
	clock       func() time.Time
	after       func(time.Duration) <-chan time.Time
	sessionOpen func(time.Time) bool
	tradeHooks  []func(model.TradeRecord)
	onTickDone  func(error, bool)

	position  *model.Position
	watermark time.Time // newest closed candle already examined for exits
}

// Option customizes a Loop.
type Option func(*Loop)

// WithClock replaces the wall clock (used by tests).
func WithClock(fn func() time.Time) Option {
	return func(l *Loop) { l.clock = fn }
}

// WithAfter replaces the sleep timer source (used by tests).
func WithAfter(fn func(time.Duration) <-chan time.Time) Option {
	return func(l *Loop) { l.after = fn }
}

// WithSessionGate installs a trading-session predicate; ticks outside the
// session skip fetching entirely.
func WithSessionGate(fn func(time.Time) bool) Option {
	return func(l *Loop) { l.sessionOpen = fn }
}

// WithTradeHook registers a callback invoked after every journaled trade
// (metrics, notifications, broadcast). Hooks must not block.
func WithTradeHook(fn func(model.TradeRecord)) Option {
	return func(l *Loop) { l.tradeHooks = append(l.tradeHooks, fn) }
}

// WithTickObserver registers a callback invoked after every tick with its
// outcome and whether a position is open.
func WithTickObserver(fn func(err error, positionOpen bool)) Option {
	return func(l *Loop) { l.onTickDone = fn }
}

// New creates a paper-trading loop over the given candle source and trade
// log.
func New(cfg Config, source model.CandleSource, trades model.TradeLog, logger *slog.Logger, opts ...Option) (*Loop, error) {
	cfg.applyDefaults()
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, err
	}
	if cfg.MinCandles < cfg.Params.MinCandles() {
		cfg.MinCandles = cfg.Params.MinCandles()
	}

	l := &Loop{
		cfg:    cfg,
		source: source,
		trades: trades,
		logger: logger,
		clock:  time.Now,
		after:  time.After,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// InPosition reports whether a position is currently open.
func (l *Loop) InPosition() bool {
	return l.position != nil
}

// Run executes ticks until ctx is cancelled or a fatal (journal) error
// occurs. Cancellation is cooperative at tick boundaries: an interrupt
// raised mid-tick completes the current tick, including any pending
// journal write, before stopping.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("starting paper trading",
		"ticker", l.cfg.Ticker,
		"interval", l.cfg.Interval,
		"poll", l.cfg.PollInterval.String(),
		"rsi_buy", l.cfg.Thresholds.RSIBuy,
		"rsi_sell", l.cfg.Thresholds.RSISell,
	)

	for {
		err := l.Tick(ctx)
		if l.onTickDone != nil {
			l.onTickDone(err, l.InPosition())
		}

		var delay time.Duration
		switch {
		case err == nil:
			delay = l.cfg.PollInterval
		case errors.Is(err, ErrJournal):
			l.logger.Error("trade log failure, stopping", "err", err)
			return err
		case errors.Is(err, context.Canceled):
			return nil
		default:
			// Transient: fetch failures, thin windows, indicator
			// warm-up, and anything unexpected. Never fatal.
			l.logger.Warn("tick failed, backing off", "err", err, "backoff", l.cfg.Backoff.String())
			delay = l.cfg.Backoff
		}

		select {
		case <-ctx.Done():
			l.logger.Info("paper trading stopped")
			return nil
		case <-l.after(delay):
		}
	}
}

// Tick runs one poll cycle: fetch, evaluate, act.
func (l *Loop) Tick(ctx context.Context) error {
	now := l.clock()
	if l.sessionOpen != nil && !l.sessionOpen(now) {
		l.logger.Debug("session closed, skipping tick")
		return nil
	}

	candles, err := l.source.Fetch(ctx, l.cfg.Ticker, l.cfg.Interval, l.cfg.RangeSpec)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if len(candles) < l.cfg.MinCandles {
		return fmt.Errorf("%w: have %d, need %d", ErrThinData, len(candles), l.cfg.MinCandles)
	}

	if l.position != nil {
		return l.scanExits(candles)
	}

	set, err := indicator.Compute(model.Closes(candles), l.cfg.Params)
	if err != nil {
		// Covers ErrInsufficientData: skip the evaluator, back off.
		return fmt.Errorf("indicators: %w", err)
	}

	t := len(candles) - 2 // last bar may still be forming
	sig := strategy.Evaluate(model.Closes(candles), set, t, l.cfg.Thresholds)

	switch sig.Action {
	case strategy.ActionBuy:
		if err := l.openPosition(sig, candles[t]); err != nil {
			return err
		}
		// The original entry bar may already be followed by closed
		// bars that cross a level; examine them in the same tick.
		return l.scanExits(candles)

	case strategy.ActionSell:
		// A sell signal while flat opens nothing; journaled as a
		// zero-size row for bookkeeping.
		rec := model.TradeRecord{
			Timestamp:    now,
			Action:       "sell",
			Price:        sig.Price,
			PositionSize: 0,
		}
		l.logger.Info("sell signal while flat, logging zero-size row", "price", sig.Price, "reason", sig.Reason)
		return l.journal(rec)
	}

	return nil
}

// openPosition journals the buy row and transitions to InPosition.
func (l *Loop) openPosition(sig strategy.Signal, entry model.Candle) error {
	rec := model.TradeRecord{
		Timestamp:    l.clock(),
		Action:       "buy",
		Price:        sig.Price,
		StopLoss:     sig.StopLoss,
		TakeProfit:   sig.TakeProfit,
		PositionSize: l.cfg.PositionSize,
	}
	if err := l.journal(rec); err != nil {
		return err
	}

	l.position = &model.Position{
		EntryPrice: sig.Price,
		StopLoss:   sig.StopLoss,
		TakeProfit: sig.TakeProfit,
		Size:       l.cfg.PositionSize,
		EntryTime:  entry.TS,
	}
	l.watermark = entry.TS

	l.logger.Info("opened position",
		"price", sig.Price,
		"stop_loss", sig.StopLoss,
		"take_profit", sig.TakeProfit,
		"reason", sig.Reason,
	)
	return nil
}

// scanExits examines closed candles newer than the watermark for the first
// stop-loss or take-profit cross. The watermark advances every tick so each
// candle is examined exactly once across the position's lifetime.
func (l *Loop) scanExits(candles []model.Candle) error {
	pos := l.position
	last := len(candles) - 1 // exclude the still-forming bar

	for i := 0; i < last; i++ {
		c := candles[i]
		if !c.TS.After(l.watermark) {
			continue
		}
		if pos.ShouldExit(c.Close) {
			return l.closePosition(c)
		}
		l.watermark = c.TS
	}
	return nil
}

// closePosition journals the sell row and transitions back to Flat.
func (l *Loop) closePosition(exit model.Candle) error {
	pos := l.position
	rec := model.TradeRecord{
		Timestamp:    l.clock(),
		Action:       "sell",
		Price:        exit.Close,
		StopLoss:     pos.StopLoss,
		TakeProfit:   pos.TakeProfit,
		PositionSize: pos.Size,
		ExitPrice:    exit.Close,
		DurationMin:  pos.HoldingMinutes(exit.TS),
		HasExit:      true,
	}
	if err := l.journal(rec); err != nil {
		return err
	}

	l.logger.Info("closed position",
		"entry", pos.EntryPrice,
		"exit", exit.Close,
		"duration_min", rec.DurationMin,
	)
	l.position = nil
	l.watermark = time.Time{}
	return nil
}

// journal appends one trade row and runs the trade hooks. Append failures
// are wrapped with ErrJournal so Run treats them as fatal.
func (l *Loop) journal(rec model.TradeRecord) error {
	if err := l.trades.Append(rec); err != nil {
		return fmt.Errorf("append %s row: %w", rec.Action, errors.Join(ErrJournal, err))
	}
	for _, hook := range l.tradeHooks {
		hook(rec)
	}
	return nil
}
