package report

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/romarin-hsieh/investment-dashboard/internal/pipeline"
	"github.com/romarin-hsieh/investment-dashboard/internal/portfolio"
	"github.com/romarin-hsieh/investment-dashboard/internal/stats"
)

const dateLayout = "2006-01-02"

// WriteBacktestReport renders the master simulation report as markdown.
func WriteBacktestReport(path string, s Summary, trades []portfolio.Trade) error {
	var b strings.Builder

	b.WriteString("# Backtest Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().UTC().Format(time.RFC3339))

	b.WriteString("## Performance\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Initial Capital | $%.2f |\n", s.InitialCapital)
	fmt.Fprintf(&b, "| Final Equity | $%.2f |\n", s.FinalEquity)
	fmt.Fprintf(&b, "| Total Return | %.2f%% |\n", s.TotalReturn*100)
	fmt.Fprintf(&b, "| CAGR | %.2f%% |\n", s.CAGR*100)
	fmt.Fprintf(&b, "| Sharpe (annualized) | %.2f |\n", s.Sharpe)
	fmt.Fprintf(&b, "| Max Drawdown | %.2f%% |\n", s.MaxDrawdown*100)
	if s.BenchmarkSymbol != "" {
		fmt.Fprintf(&b, "| %s Buy & Hold | %.2f%% |\n", s.BenchmarkSymbol, s.BenchmarkReturn*100)
	}
	b.WriteString("\n")

	b.WriteString("## Trades\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Count | %d |\n", s.TradeCount)
	fmt.Fprintf(&b, "| Win Rate | %.1f%% |\n", s.WinRate*100)
	fmt.Fprintf(&b, "| Profit Factor | %.2f |\n", s.ProfitFactor)
	fmt.Fprintf(&b, "| Avg Return | %.2f%% |\n", s.AvgPnLPct*100)
	fmt.Fprintf(&b, "| Avg Days Held | %.1f |\n", s.AvgDaysHeld)
	fmt.Fprintf(&b, "| Entry-Halted Dates | %d |\n", s.HaltedDates)
	fmt.Fprintf(&b, "| Fallback Marks | %d |\n", s.FallbackMarks)
	b.WriteString("\n")

	if len(s.Yearly) > 0 {
		b.WriteString("## Yearly Breakdown\n\n")
		b.WriteString("| Year | Trades | Win Rate | PnL |\n|---|---|---|---|\n")
		for _, y := range s.Yearly {
			fmt.Fprintf(&b, "| %d | %d | %.1f%% | $%.2f |\n", y.Year, y.Trades, y.WinRate*100, y.PnL)
		}
		b.WriteString("\n")
	}

	if len(trades) > 0 {
		b.WriteString("## Recent Trades\n\n")
		b.WriteString("| Symbol | Strategy | Entry | Exit | Return | Exit Reason |\n|---|---|---|---|---|---|\n")
		start := len(trades) - 15
		if start < 0 {
			start = 0
		}
		for _, t := range trades[start:] {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %.2f%% | %s |\n",
				t.Symbol, t.Strategy,
				t.EntryDate.Format(dateLayout), t.ExitDate.Format(dateLayout),
				t.PnLPct*100, t.ExitReason)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Conclusion\n\n")
	b.WriteString(conclusion(s))
	b.WriteString("\n")

	return os.WriteFile(path, []byte(b.String()), 0644)
}

func conclusion(s Summary) string {
	switch {
	case s.TradeCount == 0:
		return "No trades were generated over the simulated window; nothing to conclude."
	case s.BenchmarkSymbol != "" && s.TotalReturn > s.BenchmarkReturn && s.MaxDrawdown > -0.25:
		return fmt.Sprintf("The strategy outperformed %s buy & hold (%.1f%% vs %.1f%%) with a contained drawdown.",
			s.BenchmarkSymbol, s.TotalReturn*100, s.BenchmarkReturn*100)
	case s.BenchmarkSymbol != "" && s.TotalReturn <= s.BenchmarkReturn:
		return fmt.Sprintf("The strategy underperformed %s buy & hold (%.1f%% vs %.1f%%); the filters traded return for drawdown control.",
			s.BenchmarkSymbol, s.TotalReturn*100, s.BenchmarkReturn*100)
	default:
		return fmt.Sprintf("Total return %.1f%% over the window with max drawdown %.1f%%.",
			s.TotalReturn*100, s.MaxDrawdown*100)
	}
}

// WriteScanReport renders the daily scan as markdown: market context
// first, then the ranked signal table.
func WriteScanReport(path string, rows []pipeline.ScanRow, globalRegime string, gaugeLevel float64, halted bool) error {
	var b strings.Builder

	b.WriteString("# Daily Scan\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().UTC().Format(time.RFC3339))

	b.WriteString("## Market Context\n\n")
	fmt.Fprintf(&b, "- Regime: **%s**\n", globalRegime)
	fmt.Fprintf(&b, "- Volatility gauge: %.2f", gaugeLevel)
	if halted {
		b.WriteString(" — **CRISIS HALT: new entries suspended**")
	}
	b.WriteString("\n\n")

	b.WriteString("## Signals\n\n")
	b.WriteString("| Symbol | Sector | Strategy | Signal | Action | X | Y | Z | Reason |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %.2f | %.2f | %.2f | %s |\n",
			r.Symbol, r.Sector, r.Strategy, r.Signal, r.Action,
			r.State.XTrend, r.State.YMomentum, r.State.ZStructure, r.Reason)
	}
	b.WriteString("\n")

	return os.WriteFile(path, []byte(b.String()), 0644)
}

// WriteValidationReport renders the bootstrap validation as markdown.
func WriteValidationReport(path string, v Validation) error {
	var b strings.Builder

	b.WriteString("# Bootstrap Validation\n\n")
	fmt.Fprintf(&b, "Run: %s\n\n", v.RunID)
	fmt.Fprintf(&b, "Iterations: %d, confidence: %.0f%%, minimum sample: %d trades.\n\n",
		v.Config.Iterations, v.Config.Confidence*100, v.Config.MinTrades)

	b.WriteString("## Filtered vs Raw\n\n")
	b.WriteString("| Variant | Trades | PF (LB) | Sharpe (LB) | Sharpe (mean) | MaxDD (LB) |\n|---|---|---|---|---|---|\n")
	writeMetricsRow(&b, "Filtered", v.Filtered)
	writeMetricsRow(&b, "Raw (gates off)", v.Raw)
	b.WriteString("\n")

	writeGroupSection(&b, "By Sector", v.BySector)
	writeGroupSection(&b, "By Strategy", v.ByStrategy)
	writeGroupSection(&b, "By Exit Year", v.ByYear)

	b.WriteString("## Verdict\n\n")
	fmt.Fprintf(&b, "**%s**", v.Verdict)
	switch v.Verdict {
	case VerdictRobust:
		b.WriteString(" — the lower confidence bounds clear break-even on their own.\n")
	case VerdictNotRobust:
		b.WriteString(" — the point estimates may look fine, but the confidence bounds do not clear break-even.\n")
	default:
		b.WriteString(" — too few trades for the bootstrap to say anything.\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0644)
}

func writeGroupSection(b *strings.Builder, title string, groups map[string]stats.Metrics) {
	if len(groups) == 0 {
		return
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(b, "## %s\n\n", title)
	b.WriteString("| Group | Trades | PF (LB) | Sharpe (LB) | Sharpe (mean) | MaxDD (LB) |\n|---|---|---|---|---|---|\n")
	for _, k := range keys {
		writeMetricsRow(b, k, groups[k])
	}
	b.WriteString("\n")
}

func writeMetricsRow(b *strings.Builder, label string, m stats.Metrics) {
	if !m.Valid {
		fmt.Fprintf(b, "| %s | %d | — | — | — | — |\n", label, m.TradeCount)
		return
	}
	fmt.Fprintf(b, "| %s | %d | %.2f | %.2f | %.2f | %.2f%% |\n",
		label, m.TradeCount, m.ProfitFactorLB, m.SharpeLB, m.SharpeMean, m.MaxDrawdownLB*100)
}
