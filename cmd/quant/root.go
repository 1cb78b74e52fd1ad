package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/romarin-hsieh/investment-dashboard/internal/config"
)

var (
	flagConfig  string
	flagData    string
	flagOut     string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "Kinetic equity scanner and backtester",
	Long: `quant analyzes daily OHLCV data through a kinetic state engine,
routes tickers to sector-grouped strategies, simulates the resulting
portfolio and validates its edge with a bootstrap.

Data directory layout: one <SYMBOL>.json per ticker plus
sector_industry.json, in either vendor shape (columnar or row).`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to run configuration YAML (defaults used when empty)")
	rootCmd.PersistentFlags().StringVar(&flagData, "data", "", "Override data directory")
	rootCmd.PersistentFlags().StringVar(&flagOut, "out", "", "Override output directory")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// loadConfig reads the run configuration and applies flag overrides.
func loadConfig() (config.RunConfig, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagData != "" {
		cfg.DataDir = flagData
	}
	if flagOut != "" {
		cfg.OutputDir = flagOut
	}
	return cfg, nil
}
