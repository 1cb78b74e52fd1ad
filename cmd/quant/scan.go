package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/romarin-hsieh/investment-dashboard/internal/regime"
	"github.com/romarin-hsieh/investment-dashboard/internal/report"
)

var scanTimeout time.Duration

// scanCmd runs the daily signal scan over the whole universe.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the universe for signals on the latest bar",
	Long: `Scan every ticker in the data directory: compute kinetic state, route
through the sector strategy and report the latest signal per ticker,
strongest trend first. Writes a markdown report and JSONL artifacts
under the output directory.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 10*time.Minute, "Overall scan timeout")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
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
	rows := env.runner.Scan(instruments, env.filters)

	globalRegime := regime.Unknown
	if env.benchmark != nil && env.benchmark.Len() > 0 {
		globalRegime = env.filters.Global.At(env.benchmark.Bars[env.benchmark.Len()-1].Date)
	}
	gaugeLevel, halted := env.filters.Gauge.Latest()

	aw, err := report.NewArtifactWriter(cfg.OutputDir, manifest.RunID)
	if err != nil {
		return err
	}
	if err := report.WriteJSONL(aw, "scan.jsonl", rows); err != nil {
		return err
	}
	if err := aw.WriteJSON("manifest.json", manifest); err != nil {
		return err
	}
	if err := report.WriteScanReport(aw.Path("scan.md"), rows, globalRegime.String(), gaugeLevel, halted); err != nil {
		return err
	}

	fmt.Printf("Scan %s — regime %s, gauge %.2f", manifest.RunID, globalRegime, gaugeLevel)
	if halted {
		fmt.Print(" (CRISIS HALT)")
	}
	fmt.Printf("\n%d scanned, %d skipped\n\n", len(rows), len(manifest.Skipped))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Symbol\tSector\tStrategy\tSignal\tAction\tX\tReason")
	fmt.Fprintln(w, "------\t------\t--------\t------\t------\t-\t------")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\t%s\n",
			r.Symbol, r.Sector, r.Strategy, r.Signal, r.Action, r.State.XTrend, r.Reason)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nArtifacts: %s\n", aw.Dir())
	return nil
}
