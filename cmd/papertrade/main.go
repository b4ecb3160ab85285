// cmd/papertrade runs the live paper-trading loop: poll candles, evaluate
// the RSI/band signal, and journal simulated trades until interrupted.
//
// Configuration is environment-driven; see config.Load. The process exits 0
// on a clean interrupt and non-zero only on a trade-log failure.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"papertrading-systemv1/config"
	"papertrading-systemv1/internal/gateway"
	"papertrading-systemv1/internal/indicator"
	"papertrading-systemv1/internal/journal"
	"papertrading-systemv1/internal/logger"
	"papertrading-systemv1/internal/markethours"
	"papertrading-systemv1/internal/marketdata"
	"papertrading-systemv1/internal/marketdata/smartapi"
	"papertrading-systemv1/internal/marketdata/yahoo"
	"papertrading-systemv1/internal/metrics"
	"papertrading-systemv1/internal/model"
	"papertrading-systemv1/internal/notification"
	redisstore "papertrading-systemv1/internal/store/redis"
	"papertrading-systemv1/internal/strategy"
	"papertrading-systemv1/internal/trader"
)

func main() {
	cfg := config.Load()
	log := logger.Init("papertrade", logger.ParseLevel(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	m := metrics.New()
	health := metrics.NewHealthStatus(cfg.Ticker, cfg.Interval)
	hub := gateway.NewHub()
	metrics.Serve(cfg.MetricsAddr, health, func(mux *http.ServeMux) {
		mux.HandleFunc("/ws", hub.ServeWS)
	})

	// Data source, optionally wrapped in the Redis window cache.
	var source model.CandleSource
	switch cfg.DataSource {
	case "smartapi":
		source = smartapi.New(smartapi.Config{
			APIKey:      cfg.SmartAPIKey,
			ClientCode:  cfg.SmartClientCode,
			Password:    cfg.SmartPassword,
			TOTPSecret:  cfg.SmartTOTPSecret,
			Exchange:    cfg.SmartExchange,
			SymbolToken: cfg.SmartSymbolToken,
		})
	default:
		source = yahoo.New()
	}

	var cache *redisstore.Cache
	if cfg.RedisAddr != "" {
		var err error
		cache, err = redisstore.New(redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}, source)
		if err != nil {
			log.Error("redis cache unavailable", "err", err)
			os.Exit(1)
		}
		defer cache.Close()
		source = cache
	}
	source = instrumentSource(source, m)

	// Trade log: CSV is the contract store, SQLite mirrors it for queries.
	csvLog, err := journal.NewCSV(cfg.TradeLogPath)
	if err != nil {
		log.Error("trade log unavailable", "err", err)
		os.Exit(1)
	}
	sqlLog, err := journal.NewSQLite(cfg.JournalDBPath)
	if err != nil {
		log.Error("sqlite journal unavailable", "err", err)
		os.Exit(1)
	}
	trades := journal.NewTee(instrumentLog(csvLog, m), sqlLog)
	defer trades.Close()

	var notifier notification.Notifier = notification.NewLogNotifier()
	if cfg.TelegramBotToken != "" {
		notifier = notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
	}

	loop, err := trader.New(
		trader.Config{
			Ticker:       cfg.Ticker,
			Interval:     cfg.Interval,
			RangeSpec:    cfg.RangeSpec,
			PollInterval: time.Duration(cfg.PollSeconds) * time.Second,
			Backoff:      time.Duration(cfg.BackoffSeconds) * time.Second,
			MinCandles:   cfg.MinCandles,
			PositionSize: cfg.PositionSize,
			Params: indicator.Params{
				RSIPeriod:  cfg.RSIPeriod,
				BandPeriod: cfg.BandPeriod,
				BandWidth:  cfg.BandWidth,
			},
			Thresholds: strategy.Thresholds{
				RSIBuy:        cfg.RSIBuy,
				RSISell:       cfg.RSISell,
				StopLossPct:   cfg.StopLossPct,
				TakeProfitPct: cfg.TakeProfitPct,
			},
		},
		source, trades, log,
		trader.WithSessionGate(func(t time.Time) bool {
			open := markethours.IsSessionOpen(cfg.Ticker, t)
			if open {
				m.SessionOpen.Set(1)
			} else {
				m.SessionOpen.Set(0)
			}
			return open
		}),
		trader.WithTradeHook(func(rec model.TradeRecord) {
			m.TradesTotal.WithLabelValues(rec.Action).Inc()
			hub.Broadcast(rec)
			if cache != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				cache.PublishTrade(ctx, rec)
				cancel()
			}
			if rec.PositionSize > 0 {
				sendTradeAlert(notifier, rec)
			}
		}),
		trader.WithTickObserver(func(err error, positionOpen bool) {
			m.TicksTotal.Inc()
			if positionOpen {
				m.OpenPosition.Set(1)
			} else {
				m.OpenPosition.Set(0)
			}
			if err != nil {
				m.BackoffsTotal.Inc()
				if errors.Is(err, trader.ErrThinData) {
					m.ThinDataSkips.Inc()
				}
			}
			health.SetTick(time.Now(), err, positionOpen)
		}),
	)
	if err != nil {
		log.Error("loop construction failed", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("interrupt received, stopping after current tick")
		cancel()
	}()

	if err := loop.Run(ctx); err != nil {
		log.Error("paper trading aborted", "err", err)
		os.Exit(1)
	}
}

func sendTradeAlert(n notification.Notifier, rec model.TradeRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	title := "Paper trade: " + rec.Action
	msg := rec.Timestamp.Format(model.TradeTimeFormat)
	if rec.HasExit {
		msg += " exited at " + formatPrice(rec.ExitPrice) + " after " + rec.DurationString()
	} else {
		msg += " entered at " + formatPrice(rec.Price)
	}
	alert := notification.Alert{Level: notification.AlertInfo, Title: title, Message: msg}
	if err := n.Send(ctx, alert); err != nil {
		// Alerts are best-effort; the journal row already exists.
		slog.Warn("trade alert delivery failed", "err", err)
	}
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// instrumentedSource wraps a CandleSource with fetch metrics.
type instrumentedSource struct {
	inner model.CandleSource
	m     *metrics.Metrics
}

func instrumentSource(inner model.CandleSource, m *metrics.Metrics) model.CandleSource {
	return &instrumentedSource{inner: inner, m: m}
}

func (s *instrumentedSource) Fetch(ctx context.Context, ticker, interval, rangeSpec string) ([]model.Candle, error) {
	start := time.Now()
	candles, err := s.inner.Fetch(ctx, ticker, interval, rangeSpec)
	s.m.FetchDur.Observe(time.Since(start).Seconds())
	if err != nil {
		if !errors.Is(err, marketdata.ErrNoData) {
			s.m.FetchErrors.Inc()
		}
		return nil, err
	}
	if len(candles) > 1 {
		closed := candles[len(candles)-2]
		s.m.LastCandleAge.Set(time.Since(closed.TS).Seconds())
	}
	return candles, nil
}

// instrumentedLog wraps a TradeLog with append-latency metrics.
type instrumentedLog struct {
	inner model.TradeLog
	m     *metrics.Metrics
}

func instrumentLog(inner model.TradeLog, m *metrics.Metrics) model.TradeLog {
	return &instrumentedLog{inner: inner, m: m}
}

func (l *instrumentedLog) Append(rec model.TradeRecord) error {
	start := time.Now()
	err := l.inner.Append(rec)
	l.m.JournalDur.Observe(time.Since(start).Seconds())
	return err
}

func (l *instrumentedLog) Load() ([]model.TradeRecord, error) { return l.inner.Load() }
func (l *instrumentedLog) Close() error                       { return l.inner.Close() }
