package portfolio

import (
	"time"

	"github.com/romarin-hsieh/investment-dashboard/internal/kinetic"
	"github.com/romarin-hsieh/investment-dashboard/internal/market"
	"github.com/romarin-hsieh/investment-dashboard/internal/strategy"
)

// Instrument bundles everything the simulator needs for one ticker:
// the bar series, the routed policy with its prepared indicator frame,
// and (optionally) the kinetic state rows used for candidate ranking.
type Instrument struct {
	Symbol  string
	Sector  string
	Series  *market.InstrumentSeries
	Policy  strategy.Policy
	Frame   *strategy.Frame
	Kinetic *kinetic.Result
}

// trendAt returns the ranking key for a candidate: its x_trend on the
// given bar index, 0 when kinetic rows are absent.
func (ins *Instrument) trendAt(i int) float64 {
	if ins.Kinetic == nil || i < 0 || i >= len(ins.Kinetic.Rows) {
		return 0
	}
	return ins.Kinetic.Rows[i].XTrend
}

// Position is one open trade.
type Position struct {
	Symbol     string
	Strategy   strategy.PolicyTag
	EntryDate  time.Time
	EntryPrice float64
	Shares     float64
	Committed  float64 // dollars spent at entry
	State      strategy.OpenState
}

// Trade is a closed position.
type Trade struct {
	Symbol     string    `json:"symbol"`
	Sector     string    `json:"sector"`
	Strategy   string    `json:"strategy"`
	EntryDate  time.Time `json:"entry_date"`
	ExitDate   time.Time `json:"exit_date"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	PnL        float64   `json:"pnl"`
	PnLPct     float64   `json:"pnl_pct"`
	DaysHeld   int       `json:"days_held"`
	ExitReason string    `json:"exit_reason"`
}

// EquityPoint is one mark-to-market snapshot.
type EquityPoint struct {
	Date   time.Time `json:"date"`
	Equity float64   `json:"equity"`
}

// Config holds the simulator's capital constraints.
type Config struct {
	InitialCapital   float64 `yaml:"initial_capital"`   // 100000
	MaxPositions     int     `yaml:"max_positions"`     // 10
	PositionFraction float64 `yaml:"position_fraction"` // 0.10 of current equity
	DustThreshold    float64 `yaml:"dust_threshold"`    // 1000
}

// DefaultConfig returns the production simulation parameters.
func DefaultConfig() Config {
	return Config{
		InitialCapital:   100000,
		MaxPositions:     10,
		PositionFraction: 0.10,
		DustThreshold:    1000,
	}
}

// Result is the simulator output.
type Result struct {
	EquityCurve   []EquityPoint
	Trades        []Trade
	FallbackMarks int // marks that fell back to entry price on a data gap
	HaltedDates   int // dates where the panic gauge suspended entries
}

// FinalEquity returns the last equity point, or the initial capital when
// the calendar was empty.
func (r *Result) FinalEquity(initial float64) float64 {
	if len(r.EquityCurve) == 0 {
		return initial
	}
	return r.EquityCurve[len(r.EquityCurve)-1].Equity
}
