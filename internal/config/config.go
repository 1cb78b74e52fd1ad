package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/romarin-hsieh/investment-dashboard/internal/kinetic"
	"github.com/romarin-hsieh/investment-dashboard/internal/pipeline"
	"github.com/romarin-hsieh/investment-dashboard/internal/portfolio"
	"github.com/romarin-hsieh/investment-dashboard/internal/regime"
	"github.com/romarin-hsieh/investment-dashboard/internal/stats"
	"github.com/romarin-hsieh/investment-dashboard/internal/strategy"
)

// RunConfig aggregates every component's tunables into one document so
// a whole run is reproducible from a single YAML file.
type RunConfig struct {
	DataDir         string `yaml:"data_dir"`
	OutputDir       string `yaml:"output_dir"`
	SectorFile      string `yaml:"sector_file"`
	Benchmark       string `yaml:"benchmark"`
	VolatilityGauge string `yaml:"volatility_gauge"`

	Kinetic   kinetic.Config          `yaml:"kinetic"`
	Regime    regime.Config           `yaml:"regime"`
	Groups    strategy.Groups         `yaml:"groups"`
	Growth    strategy.GrowthConfig   `yaml:"growth"`
	Defensive strategy.DefensiveConfig `yaml:"defensive"`
	Portfolio portfolio.Config        `yaml:"portfolio"`
	Bootstrap stats.Config            `yaml:"bootstrap"`
	Pipeline  pipeline.Config         `yaml:"pipeline"`

	// Optional infrastructure; empty means disabled.
	MetricsAddr string `yaml:"metrics_addr"`
	RedisAddr   string `yaml:"redis_addr"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// Default returns the full production configuration.
func Default() RunConfig {
	return RunConfig{
		DataDir:         "data",
		OutputDir:       "out",
		SectorFile:      "sector_industry.json",
		Benchmark:       "SPY",
		VolatilityGauge: "VIX",
		Kinetic:         kinetic.DefaultConfig(),
		Regime:          regime.DefaultConfig(),
		Groups:          strategy.DefaultGroups(),
		Growth:          strategy.DefaultGrowthConfig(),
		Defensive:       strategy.DefaultDefensiveConfig(),
		Portfolio:       portfolio.DefaultConfig(),
		Bootstrap:       stats.DefaultConfig(),
		Pipeline:        pipeline.DefaultConfig(),
	}
}

// Load reads a YAML config over the defaults; fields absent from the
// file keep their default values. An empty path returns the defaults.
func Load(path string) (RunConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations that would make a run silently
// meaningless rather than fail loudly.
func (c RunConfig) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must be set")
	}
	if c.Portfolio.InitialCapital <= 0 {
		return fmt.Errorf("portfolio.initial_capital must be positive, got %.2f", c.Portfolio.InitialCapital)
	}
	if c.Portfolio.MaxPositions <= 0 {
		return fmt.Errorf("portfolio.max_positions must be positive, got %d", c.Portfolio.MaxPositions)
	}
	if c.Portfolio.PositionFraction <= 0 || c.Portfolio.PositionFraction > 1 {
		return fmt.Errorf("portfolio.position_fraction must be in (0, 1], got %.2f", c.Portfolio.PositionFraction)
	}
	if c.Bootstrap.Confidence <= 0 || c.Bootstrap.Confidence >= 1 {
		return fmt.Errorf("bootstrap.confidence must be in (0, 1), got %.2f", c.Bootstrap.Confidence)
	}
	if c.Bootstrap.Iterations <= 0 {
		return fmt.Errorf("bootstrap.iterations must be positive, got %d", c.Bootstrap.Iterations)
	}
	if c.Bootstrap.MinTrades < 1 {
		return fmt.Errorf("bootstrap.min_trades must be at least 1, got %d", c.Bootstrap.MinTrades)
	}
	if c.Kinetic.McGinleyPeriod <= 0 || c.Kinetic.TrendWindow <= 0 {
		return fmt.Errorf("kinetic windows must be positive")
	}
	return nil
}
