// cmd/optimize grid-searches indicator and threshold parameters over the
// backfilled candle history and prints the best-scoring tuple.
//
// Run cmd/backfill first to populate the candle database. The score is net
// profit with a penalty for overtrading, so tuples that churn do not win on
// noise.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"papertrading-systemv1/config"
	"papertrading-systemv1/internal/backtest"
	"papertrading-systemv1/internal/logger"
	"papertrading-systemv1/internal/store/sqlite"
)

func main() {
	cfg := config.Load()

	ticker := flag.String("ticker", cfg.Ticker, "instrument symbol")
	interval := flag.String("interval", cfg.Interval, "candle interval, e.g. 5m")
	dbPath := flag.String("db", cfg.CandleDBPath, "candle database path")

	rsiPeriods := flag.String("rsi-periods", "10,11,12,13,14,15,16,17,18,19", "RSI lookbacks to test")
	bandPeriods := flag.String("band-periods", "20", "band lookbacks to test")
	bandWidths := flag.String("band-widths", "2.0", "band width multipliers to test")
	rsiBuys := flag.String("rsi-buys", "20,30", "RSI buy thresholds to test")
	rsiSells := flag.String("rsi-sells", "60,70", "RSI sell thresholds to test")
	slPcts := flag.String("stop-losses", "0.02", "stop-loss fractions to test")
	tpPcts := flag.String("take-profits", "0.05", "take-profit fractions to test")

	tradeLimit := flag.Int("trade-limit", 50, "closed trades allowed before the penalty applies")
	penalty := flag.Float64("trade-penalty", 100, "score deducted per trade beyond the limit")
	flag.Parse()

	log := logger.Init("optimize", logger.ParseLevel(cfg.LogLevel))

	grid := backtest.Grid{
		RSIPeriods:     parseInts(*rsiPeriods),
		BandPeriods:    parseInts(*bandPeriods),
		BandWidths:     parseFloats(*bandWidths),
		RSIBuys:        parseFloats(*rsiBuys),
		RSISells:       parseFloats(*rsiSells),
		StopLossPcts:   parseFloats(*slPcts),
		TakeProfitPcts: parseFloats(*tpPcts),
	}

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Error("candle store unavailable", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	candles, err := store.ReadCandles(*ticker, *interval, 0)
	if err != nil {
		log.Error("reading candles failed", "err", err)
		os.Exit(1)
	}
	if len(candles) == 0 {
		log.Error("no candles stored; run backfill first", "ticker", *ticker, "interval", *interval)
		os.Exit(1)
	}
	log.Info("starting grid search",
		"ticker", *ticker,
		"interval", *interval,
		"candles", len(candles),
		"candidates", len(grid.Candidates()),
	)

	best, err := backtest.Optimize(candles, grid, backtest.DefaultConstraint,
		backtest.ProfitWithTradePenalty(*tradeLimit, *penalty))
	if err != nil {
		log.Error("optimization failed", "err", err)
		os.Exit(1)
	}

	backtest.PrintBest(os.Stdout, *ticker, *interval, len(candles), best)
}

func parseInts(s string) []int {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid integer %q\n", part)
			os.Exit(2)
		}
		out = append(out, n)
	}
	return out
}

func parseFloats(s string) []float64 {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid number %q\n", part)
			os.Exit(2)
		}
		out = append(out, f)
	}
	return out
}
