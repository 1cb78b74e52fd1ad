package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/romarin-hsieh/investment-dashboard/internal/config"
	"github.com/romarin-hsieh/investment-dashboard/internal/kinetic"
	"github.com/romarin-hsieh/investment-dashboard/internal/market"
	"github.com/romarin-hsieh/investment-dashboard/internal/persistence"
	"github.com/romarin-hsieh/investment-dashboard/internal/pipeline"
	"github.com/romarin-hsieh/investment-dashboard/internal/strategy"
	"github.com/romarin-hsieh/investment-dashboard/internal/telemetry"
)

// environment is the shared wiring every subcommand starts from: the
// loaded universe split into tradables and market-context series, plus
// the prepared runner and optional infrastructure.
type environment struct {
	cfg       config.RunConfig
	universe  *market.Universe
	sectors   *market.SectorMap
	benchmark *market.InstrumentSeries
	gauge     *market.InstrumentSeries
	filters   *pipeline.Filters
	runner    *pipeline.Runner
	metrics   *telemetry.Metrics

	cache      *persistence.RedisSeriesCache
	metricsSrv *http.Server
}

// buildEnvironment loads data and wires components. The benchmark, the
// volatility gauge and any sector-proxy ETFs are pulled out of the
// tradable universe; they inform the filters but are never traded.
func buildEnvironment(ctx context.Context, cfg config.RunConfig) (*environment, error) {
	env := &environment{cfg: cfg, metrics: telemetry.NewMetrics()}
	if cfg.MetricsAddr != "" {
		env.metricsSrv = env.metrics.Serve(cfg.MetricsAddr)
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics exposition enabled")
	}

	var cache market.SeriesCache
	if cfg.RedisAddr != "" {
		rc := persistence.NewRedisSeriesCache(cfg.RedisAddr, 24*time.Hour)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Str("addr", cfg.RedisAddr).Err(err).Msg("series cache unreachable, reading from disk")
			rc.Close()
		} else {
			env.cache = rc
			cache = rc
		}
	}

	universe, err := market.LoadUniverse(ctx, cfg.DataDir, cache)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.universe = universe

	env.sectors = loadSectors(cfg)
	env.benchmark = universe.Take(cfg.Benchmark)
	env.gauge = universe.Take(cfg.VolatilityGauge)
	if env.benchmark == nil {
		log.Warn().Str("symbol", cfg.Benchmark).Msg("benchmark series missing, regime filter disabled")
	}
	if env.gauge == nil {
		log.Warn().Str("symbol", cfg.VolatilityGauge).Msg("volatility gauge missing, panic halt disabled")
	}

	proxies := takeProxies(universe, env.sectors, env.benchmark, cfg.Benchmark)
	env.filters = pipeline.BuildFilters(env.benchmark, env.gauge, proxies, cfg.Regime)

	router := strategy.NewRouter(cfg.Groups, cfg.Growth, cfg.Defensive)
	env.runner = pipeline.NewRunner(cfg.Pipeline, kinetic.NewEngine(cfg.Kinetic), router, env.metrics)
	return env, nil
}

func loadSectors(cfg config.RunConfig) *market.SectorMap {
	raw, err := os.ReadFile(filepath.Join(cfg.DataDir, cfg.SectorFile))
	if err != nil {
		log.Warn().Err(err).Msg("sector metadata missing, routing everything as Unknown")
		return market.NewSectorMap()
	}
	m, err := market.ParseSectorMap(raw)
	if err != nil {
		log.Warn().Err(err).Msg("sector metadata malformed, routing everything as Unknown")
		return market.NewSectorMap()
	}
	log.Info().Int("tickers", m.Len()).Msg("sector metadata loaded")
	return m
}

// takeProxies removes each sector's proxy ETF from the tradable set and
// maps it to its sector label. Sectors without a dedicated proxy fall
// back to the broad benchmark.
func takeProxies(u *market.Universe, sectors *market.SectorMap, benchmark *market.InstrumentSeries, benchmarkSym string) map[string]*market.InstrumentSeries {
	sectorSet := make(map[string]struct{})
	for sym := range u.Series {
		sectorSet[sectors.Sector(sym)] = struct{}{}
	}

	proxies := make(map[string]*market.InstrumentSeries)
	for sector := range sectorSet {
		proxySym := market.SectorProxy(sector, benchmarkSym)
		if proxySym == benchmarkSym {
			if benchmark != nil {
				proxies[sector] = benchmark
			}
			continue
		}
		if s := u.Take(proxySym); s != nil {
			proxies[sector] = s
		} else if benchmark != nil {
			proxies[sector] = benchmark
		}
	}
	return proxies
}

// Close releases optional infrastructure. Safe on a partially-built
// environment.
func (e *environment) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
	if e.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = e.metricsSrv.Shutdown(ctx)
	}
}
