package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/romarin-hsieh/investment-dashboard/internal/kinetic"
	"github.com/romarin-hsieh/investment-dashboard/internal/market"
	"github.com/romarin-hsieh/investment-dashboard/internal/report"
)

var (
	analyzeTrace  int
	analyzeFormat string
)

// analyzeCmd runs the kinetic engine on a single ticker.
var analyzeCmd = &cobra.Command{
	Use:   "analyze SYMBOL",
	Short: "Compute kinetic state coordinates for one ticker",
	Long: `Analyze one ticker's full history through the kinetic state engine and
print the latest (x, y, z) coordinates, signal and commentary, plus a
trace of the most recent rows. The full state history is written as a
JSON artifact under the output directory.

Example usage:
  quant analyze NVDA                  # Latest state and trace
  quant analyze NVDA --trace=60       # Longer trace
  quant analyze NVDA --format=json    # Full state rows as JSON`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().IntVar(&analyzeTrace, "trace", 20, "Number of trailing rows to print")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "table", "Output format: table, json")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	symbol := strings.ToUpper(args[0])

	raw, err := os.ReadFile(filepath.Join(cfg.DataDir, strings.ToLower(symbol)+".json"))
	if err != nil {
		// Vendor dumps are inconsistent about filename case.
		raw, err = os.ReadFile(filepath.Join(cfg.DataDir, symbol+".json"))
		if err != nil {
			return fmt.Errorf("no series file for %s under %s", symbol, cfg.DataDir)
		}
	}
	series, err := market.ParseSeries(symbol, raw)
	if err != nil {
		return err
	}

	result, err := kinetic.NewEngine(cfg.Kinetic).Analyze(series)
	if err != nil {
		return err
	}

	aw, err := report.NewArtifactWriter(cfg.OutputDir, uuid.New().String())
	if err != nil {
		return err
	}
	if err := aw.WriteJSON("analyze_"+strings.ToLower(symbol)+".json", result.Rows); err != nil {
		return err
	}

	if analyzeFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Rows)
	}

	latest := result.Latest()
	fmt.Printf("%s — %s\n\n", symbol, latest.Date.Format("2006-01-02"))
	fmt.Printf("Signal:     %s\n", latest.Signal)
	fmt.Printf("Close:      %.2f\n", latest.Close)
	fmt.Printf("Commentary: %s\n\n", latest.Commentary)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Date\tClose\tX\tY\tZ\tSignal")
	fmt.Fprintln(w, "----\t-----\t-\t-\t-\t------")
	start := len(result.Rows) - analyzeTrace
	if start < 0 {
		start = 0
	}
	for _, row := range result.Rows[start:] {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%s\n",
			row.Date.Format("2006-01-02"), row.Close,
			row.XTrend, row.YMomentum, row.ZStructure, row.Signal)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nArtifacts: %s\n", aw.Dir())
	return nil
}
