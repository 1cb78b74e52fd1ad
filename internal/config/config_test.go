package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "SPY", cfg.Benchmark)
	assert.Equal(t, "VIX", cfg.VolatilityGauge)
	assert.Equal(t, 20, cfg.Kinetic.McGinleyPeriod)
	assert.Equal(t, 2000, cfg.Bootstrap.Iterations)
	assert.Equal(t, 0.10, cfg.Portfolio.PositionFraction)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesSelectedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	doc := `
data_dir: /srv/market
benchmark: QQQ
portfolio:
  initial_capital: 250000
  max_positions: 10
  position_fraction: 0.05
  dust_threshold: 1000
kinetic:
  mcginley_period: 30
  mcginley_factor: 1.0
  stoch_period: 14
  band_window: 20
  band_std_devs: 2.0
  squeeze_lookback: 120
  trend_window: 50
  launchpad_z: 0.8
bootstrap:
  iterations: 500
  confidence: 0.95
  min_trades: 5
  workers: 2
  seed: 7
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/market", cfg.DataDir)
	assert.Equal(t, "QQQ", cfg.Benchmark)
	assert.Equal(t, "VIX", cfg.VolatilityGauge, "untouched fields keep defaults")
	assert.Equal(t, 250000.0, cfg.Portfolio.InitialCapital)
	assert.Equal(t, 0.05, cfg.Portfolio.PositionFraction)
	assert.Equal(t, 30, cfg.Kinetic.McGinleyPeriod)
	assert.Equal(t, 500, cfg.Bootstrap.Iterations)
	assert.Equal(t, int64(7), cfg.Bootstrap.Seed)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/run.yaml")
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("portfolio: ["), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RunConfig)
	}{
		{"empty data dir", func(c *RunConfig) { c.DataDir = "" }},
		{"zero capital", func(c *RunConfig) { c.Portfolio.InitialCapital = 0 }},
		{"zero positions", func(c *RunConfig) { c.Portfolio.MaxPositions = 0 }},
		{"fraction over one", func(c *RunConfig) { c.Portfolio.PositionFraction = 1.5 }},
		{"confidence out of range", func(c *RunConfig) { c.Bootstrap.Confidence = 1.0 }},
		{"no iterations", func(c *RunConfig) { c.Bootstrap.Iterations = 0 }},
		{"zero min trades", func(c *RunConfig) { c.Bootstrap.MinTrades = 0 }},
		{"bad kinetic window", func(c *RunConfig) { c.Kinetic.TrendWindow = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
