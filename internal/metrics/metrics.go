// Package metrics exposes Prometheus metrics and health endpoints for the
// paper-trading loop.
package metrics

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the trading loop.
type Metrics struct {
	TicksTotal    prometheus.Counter
	FetchErrors   prometheus.Counter
	ThinDataSkips prometheus.Counter
	TradesTotal   *prometheus.CounterVec // labels: action
	FetchDur      prometheus.Histogram
	JournalDur    prometheus.Histogram
	OpenPosition  prometheus.Gauge // 0=flat, 1=in position
	LastCandleAge prometheus.Gauge // seconds between newest closed candle and now
	SessionOpen   prometheus.Gauge // 0=closed, 1=open
	BackoffsTotal prometheus.Counter
}

// New registers and returns all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "papertrade_ticks_total",
			Help: "Total poll-cycle ticks executed",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "papertrade_fetch_errors_total",
			Help: "Market data fetch failures",
		}),
		ThinDataSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "papertrade_thin_data_skips_total",
			Help: "Ticks skipped because the candle window was too short",
		}),
		TradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "papertrade_trades_total",
			Help: "Trade rows appended to the journal (by action)",
		}, []string{"action"}),
		FetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "papertrade_fetch_duration_seconds",
			Help:    "Market data fetch latency",
			Buckets: prometheus.DefBuckets,
		}),
		JournalDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "papertrade_journal_write_duration_seconds",
			Help:    "Trade log append latency",
			Buckets: prometheus.DefBuckets,
		}),
		OpenPosition: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "papertrade_open_position",
			Help: "Whether a position is currently open (0=flat, 1=in position)",
		}),
		LastCandleAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "papertrade_last_candle_age_seconds",
			Help: "Age of the newest closed candle at evaluation time",
		}),
		SessionOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "papertrade_session_open",
			Help: "Trading session state (0=closed, 1=open)",
		}),
		BackoffsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "papertrade_backoffs_total",
			Help: "Backoff pauses taken after errors or thin data",
		}),
	}

	prometheus.MustRegister(
		m.TicksTotal,
		m.FetchErrors,
		m.ThinDataSkips,
		m.TradesTotal,
		m.FetchDur,
		m.JournalDur,
		m.OpenPosition,
		m.LastCandleAge,
		m.SessionOpen,
		m.BackoffsTotal,
	)
	return m
}

// HealthStatus represents loop health for the /healthz endpoint.
type HealthStatus struct {
	mu sync.RWMutex

	Ticker       string    `json:"ticker"`
	Interval     string    `json:"interval"`
	LastTickAt   time.Time `json:"last_tick_at"`
	LastError    string    `json:"last_error,omitempty"`
	PositionOpen bool      `json:"position_open"`
	StartedAt    time.Time `json:"started_at"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus(ticker, interval string) *HealthStatus {
	return &HealthStatus{
		Ticker:    ticker,
		Interval:  interval,
		StartedAt: time.Now(),
	}
}

// SetTick records a completed tick and its outcome.
func (h *HealthStatus) SetTick(t time.Time, err error, positionOpen bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastTickAt = t
	h.PositionOpen = positionOpen
	if err != nil {
		h.LastError = err.Error()
	} else {
		h.LastError = ""
	}
}

func (h *HealthStatus) snapshot() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HealthStatus{
		Ticker:       h.Ticker,
		Interval:     h.Interval,
		LastTickAt:   h.LastTickAt,
		LastError:    h.LastError,
		PositionOpen: h.PositionOpen,
		StartedAt:    h.StartedAt,
	}
}

// Handler returns the /healthz handler.
func (h *HealthStatus) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(h.snapshot())
	}
}

// Serve starts the metrics/health HTTP server on addr. Extra handlers (e.g.
// the websocket feed) can be attached to mux before the call returns.
func Serve(addr string, health *HealthStatus, register func(mux *http.ServeMux)) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.Handler())
	if register != nil {
		register(mux)
	}
	go func() {
		slog.Info("metrics server listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("metrics server stopped", "err", err)
		}
	}()
}
