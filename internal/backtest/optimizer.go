package backtest

import (
	"errors"
	"fmt"

	"papertrading-systemv1/internal/indicator"
	"papertrading-systemv1/internal/model"
	"papertrading-systemv1/internal/strategy"
)

// Candidate is one parameter tuple of the search grid.
type Candidate struct {
	Params     indicator.Params
	Thresholds strategy.Thresholds
}

// Grid enumerates the discrete parameter space. Empty dimensions fall back
// to a single default value.
type Grid struct {
	RSIPeriods     []int
	BandPeriods    []int
	BandWidths     []float64
	RSIBuys        []float64
	RSISells       []float64
	StopLossPcts   []float64
	TakeProfitPcts []float64
}

func orInts(v []int, def int) []int {
	if len(v) == 0 {
		return []int{def}
	}
	return v
}

func orFloats(v []float64, def float64) []float64 {
	if len(v) == 0 {
		return []float64{def}
	}
	return v
}

// Candidates expands the grid into the full Cartesian product.
func (g Grid) Candidates() []Candidate {
	rsiPeriods := orInts(g.RSIPeriods, 14)
	bandPeriods := orInts(g.BandPeriods, 20)
	bandWidths := orFloats(g.BandWidths, 2.0)
	rsiBuys := orFloats(g.RSIBuys, 30)
	rsiSells := orFloats(g.RSISells, 70)
	slPcts := orFloats(g.StopLossPcts, 0.02)
	tpPcts := orFloats(g.TakeProfitPcts, 0.05)

	var out []Candidate
	for _, rp := range rsiPeriods {
		for _, bp := range bandPeriods {
			for _, bw := range bandWidths {
				for _, rb := range rsiBuys {
					for _, rs := range rsiSells {
						for _, sl := range slPcts {
							for _, tp := range tpPcts {
								out = append(out, Candidate{
									Params: indicator.Params{
										RSIPeriod:  rp,
										BandPeriod: bp,
										BandWidth:  bw,
									},
									Thresholds: strategy.Thresholds{
										RSIBuy:        rb,
										RSISell:       rs,
										StopLossPct:   sl,
										TakeProfitPct: tp,
									},
								})
							}
						}
					}
				}
			}
		}
	}
	return out
}

// Score maps a backtest result to a comparable fitness value.
type Score func(Result) float64

// Constraint filters candidate tuples before any backtest runs.
type Constraint func(Candidate) bool

// DefaultConstraint keeps the buy threshold strictly below the sell
// threshold.
func DefaultConstraint(c Candidate) bool {
	return c.Thresholds.RSIBuy < c.Thresholds.RSISell
}

// ProfitWithTradePenalty scores net profit, penalizing each closed trade
// beyond tradeLimit by penalty.
func ProfitWithTradePenalty(tradeLimit int, penalty float64) Score {
	return func(r Result) float64 {
		excess := float64(r.Trades - tradeLimit)
		if excess < 0 {
			excess = 0
		}
		return r.Profit() - excess*penalty
	}
}

// Best is the winning tuple of an optimization run.
type Best struct {
	Candidate Candidate
	Result    Result
	Score     float64
	Evaluated int // candidates actually backtested
}

// ErrNoCandidates is returned when the grid or constraint leaves nothing to
// evaluate.
var ErrNoCandidates = errors.New("no candidates satisfy the constraint")

// Optimize runs a full backtest per surviving candidate and returns the
// tuple maximizing score. Ties keep the earlier candidate so runs are
// deterministic for a fixed grid order.
func Optimize(candles []model.Candle, grid Grid, constraint Constraint, score Score) (Best, error) {
	if constraint == nil {
		constraint = DefaultConstraint
	}
	if score == nil {
		score = ProfitWithTradePenalty(50, 100)
	}

	var best Best
	found := false
	evaluated := 0

	for _, cand := range grid.Candidates() {
		if !constraint(cand) {
			continue
		}
		res, err := Run(candles, RunConfig{Params: cand.Params, Thresholds: cand.Thresholds})
		if err != nil {
			// Series too short for this tuple's lookbacks; skip it
			// rather than abort the search.
			if errors.Is(err, indicator.ErrInsufficientData) {
				continue
			}
			return Best{}, fmt.Errorf("optimize %+v: %w", cand, err)
		}

		evaluated++
		s := score(res)
		if !found || s > best.Score {
			found = true
			best = Best{Candidate: cand, Result: res, Score: s}
		}
	}

	if !found {
		return Best{}, ErrNoCandidates
	}
	best.Evaluated = evaluated
	return best, nil
}
