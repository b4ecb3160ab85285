package backtest

import (
	"fmt"
	"io"
)

// PrintBest writes the optimization report to w.
func PrintBest(w io.Writer, ticker, interval string, candleCount int, best Best) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "╔══════════════════════════════════════════╗")
	fmt.Fprintln(w, "║         OPTIMIZATION COMPLETE            ║")
	fmt.Fprintln(w, "╠══════════════════════════════════════════╣")
	fmt.Fprintf(w, "║  Instrument:      %-8s %-13s ║\n", ticker, interval)
	fmt.Fprintf(w, "║  Candles:         %-22d ║\n", candleCount)
	fmt.Fprintf(w, "║  Tuples tested:   %-22d ║\n", best.Evaluated)
	fmt.Fprintln(w, "╠══════════════════════════════════════════╣")
	fmt.Fprintf(w, "║  RSI period:      %-22d ║\n", best.Candidate.Params.RSIPeriod)
	fmt.Fprintf(w, "║  Band period:     %-22d ║\n", best.Candidate.Params.BandPeriod)
	fmt.Fprintf(w, "║  Band width:      %-22.2f ║\n", best.Candidate.Params.BandWidth)
	fmt.Fprintf(w, "║  RSI buy/sell:    %.1f / %-15.1f ║\n", best.Candidate.Thresholds.RSIBuy, best.Candidate.Thresholds.RSISell)
	fmt.Fprintf(w, "║  Stop loss:       %-21.2f%% ║\n", best.Candidate.Thresholds.StopLossPct*100)
	fmt.Fprintf(w, "║  Take profit:     %-21.2f%% ║\n", best.Candidate.Thresholds.TakeProfitPct*100)
	fmt.Fprintln(w, "╠══════════════════════════════════════════╣")
	fmt.Fprintf(w, "║  Net profit:      %-22.2f ║\n", best.Result.Profit())
	fmt.Fprintf(w, "║  Trades:          %-22d ║\n", best.Result.Trades)
	fmt.Fprintf(w, "║  Wins / Losses:   %d / %-18d ║\n", best.Result.Wins, best.Result.Losses)
	fmt.Fprintf(w, "║  Score:           %-22.2f ║\n", best.Score)
	fmt.Fprintln(w, "╚══════════════════════════════════════════╝")
}
