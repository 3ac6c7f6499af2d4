package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the collectors for strategy runs and ledger writes.
type Recorder struct {
	registry       *prometheus.Registry
	strategyRuns   *prometheus.CounterVec
	signalRows     *prometheus.CounterVec
	transactions   *prometheus.CounterVec
	latestSignal   *prometheus.GaugeVec
	fetchDurations *prometheus.HistogramVec
	httpDurations  *prometheus.HistogramVec
}

// New creates a Recorder on its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		strategyRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "savetrack_strategy_runs_total",
				Help: "Strategy runs by ticker and outcome",
			},
			[]string{"ticker", "outcome"},
		),
		signalRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "savetrack_signal_rows_persisted_total",
				Help: "Signal rows appended to storage",
			},
			[]string{"ticker"},
		),
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "savetrack_transactions_total",
				Help: "Savings transactions recorded by kind",
			},
			[]string{"kind"},
		),
		latestSignal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "savetrack_latest_signal",
				Help: "Latest computed signal per ticker (1 bullish, -1 bearish)",
			},
			[]string{"ticker"},
		),
		fetchDurations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "savetrack_price_fetch_duration_seconds",
				Help:    "Duration of price history fetches",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		httpDurations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "savetrack_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method", "status"},
		),
	}

	reg.MustRegister(
		r.strategyRuns,
		r.signalRows,
		r.transactions,
		r.latestSignal,
		r.fetchDurations,
		r.httpDurations,
		collectors.NewGoCollector(),
	)
	return r
}

// RecordStrategyRun counts a run outcome ("ok", "unavailable", "storage", "error").
func (r *Recorder) RecordStrategyRun(ticker, outcome string) {
	if r == nil {
		return
	}
	r.strategyRuns.WithLabelValues(ticker, outcome).Inc()
}

// RecordSignalRows adds persisted rows for ticker and sets its latest signal.
func (r *Recorder) RecordSignalRows(ticker string, rows int, latest int) {
	if r == nil {
		return
	}
	r.signalRows.WithLabelValues(ticker).Add(float64(rows))
	r.latestSignal.WithLabelValues(ticker).Set(float64(latest))
}

// RecordTransaction counts a stored transaction.
func (r *Recorder) RecordTransaction(kind string) {
	if r == nil {
		return
	}
	r.transactions.WithLabelValues(kind).Inc()
}

// ObserveFetch records how long a provider call took.
func (r *Recorder) ObserveFetch(outcome string, seconds float64) {
	if r == nil {
		return
	}
	r.fetchDurations.WithLabelValues(outcome).Observe(seconds)
}

// ObserveHTTP records one served request. route should be the templated path.
func (r *Recorder) ObserveHTTP(route, method string, status int, seconds float64) {
	if r == nil {
		return
	}
	r.httpDurations.WithLabelValues(route, method, strconv.Itoa(status)).Observe(seconds)
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
