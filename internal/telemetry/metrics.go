package telemetry

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metrics counts pipeline work for operational visibility. Batch runs
// are short-lived, so exposition is optional and flag-gated.
type Metrics struct {
	registry *prometheus.Registry

	InstrumentsProcessed prometheus.Counter
	InstrumentsSkipped   prometheus.Counter
	SignalsEmitted       *prometheus.CounterVec
	TradesRecorded       prometheus.Counter
	BootstrapRuns        prometheus.Counter
}

// NewMetrics builds a metrics set on its own registry so repeated test
// runs never collide on the default global registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		InstrumentsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quant_instruments_processed_total",
			Help: "Instruments successfully analyzed in this run",
		}),
		InstrumentsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quant_instruments_skipped_total",
			Help: "Instruments skipped due to data or preparation errors",
		}),
		SignalsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quant_signals_emitted_total",
			Help: "Signals emitted by the scan, labeled by tag",
		}, []string{"signal"}),
		TradesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quant_trades_recorded_total",
			Help: "Trades closed by the portfolio simulator",
		}),
		BootstrapRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quant_bootstrap_runs_total",
			Help: "Bootstrap validations executed",
		}),
	}
	reg.MustRegister(m.InstrumentsProcessed, m.InstrumentsSkipped, m.SignalsEmitted, m.TradesRecorded, m.BootstrapRuns)
	return m
}

// Gather exposes the underlying registry for tests and custom sinks.
func (m *Metrics) Gather() prometheus.Gatherer { return m.registry }

// Handler returns the HTTP routes for exposition: /metrics and /health.
func (m *Metrics) Handler() http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)
	return r
}

// Serve starts exposition on addr in the background. Errors other than
// a clean shutdown are logged, not fatal: metrics are best-effort.
func (m *Metrics) Serve(addr string) *http.Server {
	srv := &http.Server{
		Addr:         addr,
		Handler:      m.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	return srv
}
