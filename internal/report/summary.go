package report

import (
	"math"
	"sort"

	"github.com/romarin-hsieh/investment-dashboard/internal/market"
	"github.com/romarin-hsieh/investment-dashboard/internal/portfolio"
	"github.com/romarin-hsieh/investment-dashboard/internal/stats"
)

const tradingDaysPerYear = 252

// YearStats is the per-calendar-year trade breakdown.
type YearStats struct {
	Year    int     `json:"year"`
	Trades  int     `json:"trades"`
	WinRate float64 `json:"win_rate"`
	PnL     float64 `json:"pnl"`
}

// Summary is the digested performance of one simulation run, plus the
// buy-and-hold benchmark over the same span for comparison.
type Summary struct {
	InitialCapital float64 `json:"initial_capital"`
	FinalEquity    float64 `json:"final_equity"`
	TotalReturn    float64 `json:"total_return"`
	CAGR           float64 `json:"cagr"`
	Sharpe         float64 `json:"sharpe"`
	MaxDrawdown    float64 `json:"max_drawdown"`

	TradeCount   int     `json:"trade_count"`
	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`
	AvgPnLPct    float64 `json:"avg_pnl_pct"`
	AvgDaysHeld  float64 `json:"avg_days_held"`

	BenchmarkSymbol string  `json:"benchmark_symbol,omitempty"`
	BenchmarkReturn float64 `json:"benchmark_return"`

	FallbackMarks int `json:"fallback_marks"`
	HaltedDates   int `json:"halted_dates"`

	Yearly []YearStats `json:"yearly"`
}

// Summarize digests a simulation result. A nil benchmark skips the
// comparison fields.
func Summarize(res *portfolio.Result, cfg portfolio.Config, benchmark *market.InstrumentSeries) Summary {
	s := Summary{
		InitialCapital: cfg.InitialCapital,
		FinalEquity:    res.FinalEquity(cfg.InitialCapital),
		TradeCount:     len(res.Trades),
		FallbackMarks:  res.FallbackMarks,
		HaltedDates:    res.HaltedDates,
	}
	if cfg.InitialCapital > 0 {
		s.TotalReturn = s.FinalEquity/cfg.InitialCapital - 1
	}

	daily := dailyReturns(res.EquityCurve)
	s.Sharpe = stats.Sharpe(daily)
	s.MaxDrawdown = stats.MaxDrawdown(daily)
	if n := len(res.EquityCurve); n > 1 && cfg.InitialCapital > 0 && s.FinalEquity > 0 {
		years := float64(n) / tradingDaysPerYear
		s.CAGR = math.Pow(s.FinalEquity/cfg.InitialCapital, 1/years) - 1
	}

	returns := TradeReturns(res.Trades)
	s.WinRate = stats.WinRate(returns)
	s.ProfitFactor = stats.ProfitFactor(returns)
	s.AvgPnLPct = stats.Mean(returns)
	if len(res.Trades) > 0 {
		days := 0
		for _, t := range res.Trades {
			days += t.DaysHeld
		}
		s.AvgDaysHeld = float64(days) / float64(len(res.Trades))
	}

	if benchmark != nil && len(res.EquityCurve) > 0 {
		s.BenchmarkSymbol = benchmark.Symbol
		s.BenchmarkReturn = benchmarkReturn(benchmark, res.EquityCurve)
	}

	s.Yearly = yearlyBreakdown(res.Trades)
	return s
}

// TradeReturns extracts the percent-return sample the validator
// bootstraps.
func TradeReturns(trades []portfolio.Trade) []float64 {
	out := make([]float64, len(trades))
	for i, t := range trades {
		out[i] = t.PnLPct
	}
	return out
}

// GroupReturns buckets trade returns by a caller-chosen key (sector,
// strategy, exit year).
func GroupReturns(trades []portfolio.Trade, key func(portfolio.Trade) string) map[string][]float64 {
	out := make(map[string][]float64)
	for _, t := range trades {
		k := key(t)
		out[k] = append(out[k], t.PnLPct)
	}
	return out
}

func dailyReturns(curve []portfolio.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	out := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, curve[i].Equity/prev-1)
	}
	return out
}

// benchmarkReturn is buy-and-hold over the simulated window, using the
// closest bars at or before the window edges.
func benchmarkReturn(b *market.InstrumentSeries, curve []portfolio.EquityPoint) float64 {
	first := closeAtOrBefore(b, curve[0].Date.Unix())
	last := closeAtOrBefore(b, curve[len(curve)-1].Date.Unix())
	if first <= 0 || last <= 0 {
		return 0
	}
	return last/first - 1
}

func closeAtOrBefore(b *market.InstrumentSeries, unix int64) float64 {
	for i := b.Len() - 1; i >= 0; i-- {
		if b.Bars[i].Date.Unix() <= unix {
			return b.Bars[i].Close
		}
	}
	return 0
}

func yearlyBreakdown(trades []portfolio.Trade) []YearStats {
	byYear := make(map[int][]portfolio.Trade)
	for _, t := range trades {
		y := t.ExitDate.Year()
		byYear[y] = append(byYear[y], t)
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([]YearStats, 0, len(years))
	for _, y := range years {
		ts := byYear[y]
		pnl := 0.0
		for _, t := range ts {
			pnl += t.PnL
		}
		out = append(out, YearStats{
			Year:    y,
			Trades:  len(ts),
			WinRate: stats.WinRate(TradeReturns(ts)),
			PnL:     pnl,
		})
	}
	return out
}
