package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/romarin-hsieh/investment-dashboard/internal/market"
	"github.com/romarin-hsieh/investment-dashboard/internal/persistence"
	"github.com/romarin-hsieh/investment-dashboard/internal/portfolio"
	"github.com/romarin-hsieh/investment-dashboard/internal/report"
)

var (
	simStart   string
	simEnd     string
	simTimeout time.Duration
)

// simulateCmd replays the strategy over history as a portfolio.
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Backtest the routed strategies as one portfolio",
	Long: `Simulate the full portfolio over the unified trading calendar:
signals route per sector, entries rank by trend strength, exits follow
each strategy's own rules. Writes the backtest report and trade/equity
artifacts; optionally persists the run to Postgres.

Example usage:
  quant simulate                          # Full history
  quant simulate --start=2020-01-01       # Clamped window
  quant simulate --start=2020-01-01 --end=2023-12-31`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().StringVar(&simStart, "start", "", "Calendar start date (YYYY-MM-DD)")
	simulateCmd.Flags().StringVar(&simEnd, "end", "", "Calendar end date (YYYY-MM-DD)")
	simulateCmd.Flags().DurationVar(&simTimeout, "timeout", 30*time.Minute, "Overall simulation timeout")
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	start, err := parseDate(simStart)
	if err != nil {
		return err
	}
	end, err := parseDate(simEnd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), simTimeout)
	defer cancel()

	env, err := buildEnvironment(ctx, cfg)
	if err != nil {
		return err
	}
	defer env.Close()

	instruments, manifest, err := env.runner.BuildInstruments(ctx, env.universe, env.sectors)
	if err != nil {
		return err
	}

	calendar := market.ClampCalendar(market.UnionCalendar(env.universe.Series), start, end)
	sim := portfolio.NewSimulator(cfg.Portfolio, instruments, env.filters.Global, env.filters.Peers, env.filters.Gauge)
	result, err := sim.Run(calendar)
	if err != nil {
		return err
	}
	env.metrics.TradesRecorded.Add(float64(len(result.Trades)))

	summary := report.Summarize(result, cfg.Portfolio, env.benchmark)

	aw, err := report.NewArtifactWriter(cfg.OutputDir, manifest.RunID)
	if err != nil {
		return err
	}
	if err := report.WriteJSONL(aw, "trades.jsonl", result.Trades); err != nil {
		return err
	}
	if err := report.WriteJSONL(aw, "equity.jsonl", result.EquityCurve); err != nil {
		return err
	}
	if err := aw.WriteJSON("summary.json", summary); err != nil {
		return err
	}
	if err := aw.WriteJSON("manifest.json", manifest); err != nil {
		return err
	}
	if err := report.WriteBacktestReport(aw.Path("report.md"), summary, result.Trades); err != nil {
		return err
	}

	if cfg.PostgresDSN != "" {
		store, err := persistence.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer store.Close()
		if err := store.SaveRun(ctx, manifest.RunID, result.Trades, result.EquityCurve); err != nil {
			return fmt.Errorf("persist run: %w", err)
		}
	}

	fmt.Printf("Run %s — %d trading days, %d trades\n", manifest.RunID, len(result.EquityCurve), len(result.Trades))
	fmt.Printf("Final equity: $%.2f (%.2f%% total, %.2f%% CAGR)\n", summary.FinalEquity, summary.TotalReturn*100, summary.CAGR*100)
	fmt.Printf("Sharpe %.2f, max drawdown %.2f%%, win rate %.1f%%\n", summary.Sharpe, summary.MaxDrawdown*100, summary.WinRate*100)
	if summary.BenchmarkSymbol != "" {
		fmt.Printf("%s buy & hold over the same window: %.2f%%\n", summary.BenchmarkSymbol, summary.BenchmarkReturn*100)
	}
	fmt.Printf("\nArtifacts: %s\n", aw.Dir())
	return nil
}
