package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/romarin-hsieh/investment-dashboard/internal/kinetic"
	"github.com/romarin-hsieh/investment-dashboard/internal/market"
	"github.com/romarin-hsieh/investment-dashboard/internal/portfolio"
	"github.com/romarin-hsieh/investment-dashboard/internal/regime"
	"github.com/romarin-hsieh/investment-dashboard/internal/strategy"
	"github.com/romarin-hsieh/investment-dashboard/internal/telemetry"
)

// Config holds the batch runner parameters. Instruments are independent
// until the portfolio reducer, so preparation parallelizes freely.
type Config struct {
	Workers     int `yaml:"workers"`      // 8
	TraceLength int `yaml:"trace_length"` // 30
}

// DefaultConfig returns the production runner parameters.
func DefaultConfig() Config {
	return Config{Workers: 8, TraceLength: 30}
}

// Filters bundles the three market gates shared by every instrument.
type Filters struct {
	Global *regime.GlobalClassifier
	Peers  map[string]*regime.PeerClassifier // sector label -> classifier
	Gauge  *regime.PanicGauge
}

// BuildFilters constructs the shared gates from the benchmark, the
// volatility gauge and the per-sector proxy series. Any nil input
// degrades to the non-blocking default for that gate.
func BuildFilters(benchmark, gauge *market.InstrumentSeries, proxies map[string]*market.InstrumentSeries, cfg regime.Config) *Filters {
	peers := make(map[string]*regime.PeerClassifier, len(proxies))
	for sector, series := range proxies {
		peers[sector] = regime.NewPeerClassifier(series, cfg.PeerWindow)
	}
	return &Filters{
		Global: regime.NewGlobalClassifier(benchmark, cfg.BenchmarkWindow),
		Peers:  peers,
		Gauge:  regime.NewPanicGauge(gauge, cfg.PanicThreshold),
	}
}

// Manifest records what a batch run actually touched: the run identity,
// what succeeded and what was skipped with its reason. Written alongside
// the artifacts so a partial universe is visible, not silent.
type Manifest struct {
	RunID     string            `json:"run_id"`
	Processed []string          `json:"processed"`
	Skipped   map[string]string `json:"skipped"`
}

// Runner prepares instruments and runs the daily scan. One runner per
// batch invocation.
type Runner struct {
	cfg     Config
	engine  *kinetic.Engine
	router  *strategy.Router
	metrics *telemetry.Metrics
}

// NewRunner wires a batch runner. A nil metrics set gets a private one
// so callers without exposition still count work.
func NewRunner(cfg Config, engine *kinetic.Engine, router *strategy.Router, metrics *telemetry.Metrics) *Runner {
	if metrics == nil {
		metrics = telemetry.NewMetrics()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Runner{cfg: cfg, engine: engine, router: router, metrics: metrics}
}

// BuildInstruments routes, prepares and analyzes every instrument in the
// universe across the worker pool. A per-instrument failure is logged
// and recorded in the manifest; only a fully-empty result is an error.
func (r *Runner) BuildInstruments(ctx context.Context, u *market.Universe, sectors *market.SectorMap) (map[string]*portfolio.Instrument, *Manifest, error) {
	manifest := &Manifest{
		RunID:   uuid.New().String(),
		Skipped: make(map[string]string),
	}
	for sym, reason := range u.Skipped {
		manifest.Skipped[sym] = reason
	}

	symbols := make([]string, 0, len(u.Series))
	for sym := range u.Series {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	instruments := make(map[string]*portfolio.Instrument, len(symbols))
	var mu sync.Mutex
	var wg sync.WaitGroup

	jobs := make(chan string)
	for w := 0; w < r.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sym := range jobs {
				ins, err := r.prepare(sym, u.Series[sym], sectors.Sector(sym))

				mu.Lock()
				if err != nil {
					log.Warn().Str("symbol", sym).Err(err).Msg("skipping instrument")
					manifest.Skipped[sym] = err.Error()
					r.metrics.InstrumentsSkipped.Inc()
				} else {
					instruments[sym] = ins
					r.metrics.InstrumentsProcessed.Inc()
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for _, sym := range symbols {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- sym:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("build instruments: %w", err)
	}
	if len(instruments) == 0 {
		return nil, nil, fmt.Errorf("build instruments: all %d instruments failed", len(symbols))
	}

	for sym := range instruments {
		manifest.Processed = append(manifest.Processed, sym)
	}
	sort.Strings(manifest.Processed)

	log.Info().
		Str("run_id", manifest.RunID).
		Int("processed", len(manifest.Processed)).
		Int("skipped", len(manifest.Skipped)).
		Msg("instrument preparation complete")
	return instruments, manifest, nil
}

func (r *Runner) prepare(symbol string, series *market.InstrumentSeries, sector string) (*portfolio.Instrument, error) {
	policy := r.router.PolicyFor(sector)
	frame, err := policy.Prepare(series)
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", symbol, err)
	}
	kin, err := r.engine.Analyze(series)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", symbol, err)
	}
	return &portfolio.Instrument{
		Symbol:  symbol,
		Sector:  sector,
		Series:  series,
		Policy:  policy,
		Frame:   frame,
		Kinetic: kin,
	}, nil
}

// ScanRow is the daily scan output for one instrument: its latest
// kinetic state plus the routed action on the latest bar, evaluated flat.
type ScanRow struct {
	Symbol   string                `json:"symbol"`
	Sector   string                `json:"sector"`
	Strategy string                `json:"strategy"`
	Signal   string                `json:"signal"`
	Action   string                `json:"action"`
	Reason   string                `json:"reason"`
	State    kinetic.StateRow      `json:"state"`
	Trace    []kinetic.Coordinates `json:"trace,omitempty"`
}

// Scan evaluates every prepared instrument on its own latest bar and
// returns the rows sorted by trend strength descending, then symbol.
// When the panic gauge is halted, buy-class signals are overridden to
// CRISIS_HALT before they reach the report.
func (r *Runner) Scan(instruments map[string]*portfolio.Instrument, filters *Filters) []ScanRow {
	rows := make([]ScanRow, 0, len(instruments))
	for _, ins := range instruments {
		if ins.Series.Len() == 0 {
			continue
		}
		i := ins.Series.Len() - 1
		date := ins.Series.Bars[i].Date

		state := ins.Kinetic.Latest()
		d := ins.Policy.Evaluate(ins.Frame, i, nil, filters.Global.At(date), r.peerAt(filters, ins.Sector, date))

		if filters.Gauge.Halted(date) && state.Signal.IsBuy() {
			state.Signal = kinetic.SignalCrisisHalt
			state.Commentary = "Global risk alert: volatility gauge above the panic threshold. All buy signals are suspended."
		}

		r.metrics.SignalsEmitted.WithLabelValues(state.Signal.String()).Inc()
		rows = append(rows, ScanRow{
			Symbol:   ins.Symbol,
			Sector:   ins.Sector,
			Strategy: ins.Policy.Name(),
			Signal:   state.Signal.String(),
			Action:   d.Action.String(),
			Reason:   d.Reason,
			State:    state,
			Trace:    ins.Kinetic.Trace(r.cfg.TraceLength),
		})
	}

	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].State.XTrend != rows[b].State.XTrend {
			return rows[a].State.XTrend > rows[b].State.XTrend
		}
		return rows[a].Symbol < rows[b].Symbol
	})
	return rows
}

func (r *Runner) peerAt(f *Filters, sector string, date time.Time) regime.PeerTrend {
	if c, ok := f.Peers[sector]; ok {
		return c.At(date)
	}
	return regime.Neutral
}
