// cmd/backfill fetches a candle window from the configured data source and
// stores it in the local SQLite candle database for later optimization runs.
//
// Repeated runs converge: re-fetched bars overwrite their previous rows.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"papertrading-systemv1/config"
	"papertrading-systemv1/internal/logger"
	"papertrading-systemv1/internal/marketdata/smartapi"
	"papertrading-systemv1/internal/marketdata/yahoo"
	"papertrading-systemv1/internal/model"
	"papertrading-systemv1/internal/store/sqlite"
)

func main() {
	cfg := config.Load()

	ticker := flag.String("ticker", cfg.Ticker, "instrument symbol")
	interval := flag.String("interval", cfg.Interval, "candle interval, e.g. 5m")
	rangeSpec := flag.String("range", "1mo", "history window to fetch, e.g. 2d, 1mo")
	dbPath := flag.String("db", cfg.CandleDBPath, "candle database path")
	flag.Parse()

	log := logger.Init("backfill", logger.ParseLevel(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

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

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Error("candle store unavailable", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	candles, err := source.Fetch(ctx, *ticker, *interval, *rangeSpec)
	if err != nil {
		log.Error("fetch failed", "ticker", *ticker, "range", *rangeSpec, "err", err)
		os.Exit(1)
	}

	before, err := store.LastTimestamp(*ticker, *interval)
	if err != nil {
		log.Error("reading last timestamp failed", "err", err)
		os.Exit(1)
	}
	if err := store.WriteCandles(candles); err != nil {
		log.Error("writing candles failed", "err", err)
		os.Exit(1)
	}
	after, err := store.LastTimestamp(*ticker, *interval)
	if err != nil {
		log.Error("reading last timestamp failed", "err", err)
		os.Exit(1)
	}

	log.Info("backfill complete",
		"ticker", *ticker,
		"interval", *interval,
		"fetched", len(candles),
		"newest_before", time.Unix(before, 0).UTC().Format(time.RFC3339),
		"newest_after", time.Unix(after, 0).UTC().Format(time.RFC3339),
	)
}
