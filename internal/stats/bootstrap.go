package stats

import (
	"math/rand"
	"sort"
	"sync"
)

// Config holds the bootstrap parameters. Iterations between 500 and
// 5000 are typical; 98% confidence means the reported bound is the 2nd
// percentile of the resampled distribution.
type Config struct {
	Iterations int     `yaml:"iterations"` // 2000
	Confidence float64 `yaml:"confidence"` // 0.98
	MinTrades  int     `yaml:"min_trades"` // 5
	Workers    int     `yaml:"workers"`    // 4
	Seed       int64   `yaml:"seed"`       // 1
}

// DefaultConfig returns the production bootstrap parameters.
func DefaultConfig() Config {
	return Config{Iterations: 2000, Confidence: 0.98, MinTrades: 5, Workers: 4, Seed: 1}
}

// Metrics is a confidence-bounded summary of a trade-return sample.
// The *LB fields are one-sided lower bounds at the configured
// confidence: "we are N% confident the true value exceeds this".
type Metrics struct {
	ProfitFactorLB float64 `json:"profit_factor_lb"`
	SharpeLB       float64 `json:"sharpe_lb"`
	MaxDrawdownLB  float64 `json:"max_drawdown_lb"`
	SharpeMean     float64 `json:"sharpe_mean"`
	TradeCount     int     `json:"trade_count"`
	Valid          bool    `json:"valid"`
}

// Bootstrap resamples the trade returns with replacement Iterations
// times and reports lower confidence bounds for profit factor, Sharpe
// and max drawdown. Samples under MinTrades yield an invalid sentinel
// rather than statistics computed on noise.
//
// Resampling is parallelized across workers with per-worker seeded
// RNGs; results are deterministic for a given config.
func Bootstrap(returns []float64, cfg Config) Metrics {
	// An empty sample is always invalid, even under min_trades: 0 —
	// there is nothing to resample from.
	if cfg.Iterations <= 0 || len(returns) == 0 || len(returns) < cfg.MinTrades {
		return Metrics{TradeCount: len(returns), Valid: false}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > cfg.Iterations {
		workers = cfg.Iterations
	}

	sharpes := make([]float64, cfg.Iterations)
	pfs := make([]float64, cfg.Iterations)
	mdds := make([]float64, cfg.Iterations)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * cfg.Iterations / workers
		hi := (w + 1) * cfg.Iterations / workers

		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(cfg.Seed + int64(w)))
			sample := make([]float64, len(returns))
			for b := lo; b < hi; b++ {
				for j := range sample {
					sample[j] = returns[rng.Intn(len(returns))]
				}
				sharpes[b] = Sharpe(sample)
				pfs[b] = ProfitFactor(sample)
				mdds[b] = MaxDrawdown(sample)
			}
		}(w, lo, hi)
	}
	wg.Wait()

	idx := int(float64(cfg.Iterations) * (1 - cfg.Confidence))
	if idx >= cfg.Iterations {
		idx = cfg.Iterations - 1
	}
	sort.Float64s(sharpes)
	sort.Float64s(pfs)
	sort.Float64s(mdds)

	return Metrics{
		ProfitFactorLB: pfs[idx],
		SharpeLB:       sharpes[idx],
		MaxDrawdownLB:  mdds[idx],
		SharpeMean:     Mean(sharpes),
		TradeCount:     len(returns),
		Valid:          true,
	}
}

// BootstrapGroups runs the bootstrap per group of returns (sector,
// strategy, exit year) with the same configuration.
func BootstrapGroups(groups map[string][]float64, cfg Config) map[string]Metrics {
	out := make(map[string]Metrics, len(groups))
	for key, returns := range groups {
		out[key] = Bootstrap(returns, cfg)
	}
	return out
}
