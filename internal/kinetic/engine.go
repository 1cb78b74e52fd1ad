package kinetic

import (
	"fmt"
	"time"

	"github.com/romarin-hsieh/investment-dashboard/internal/indicators"
	"github.com/romarin-hsieh/investment-dashboard/internal/market"
)

// Config holds the kinetic engine's tunable parameters. The signal
// thresholds are empirically tuned, not derived; they live here rather
// than as literals so sweeps can vary them per run.
type Config struct {
	McGinleyPeriod  int     `yaml:"mcginley_period"`  // 20
	McGinleyFactor  float64 `yaml:"mcginley_factor"`  // 1.0
	StochPeriod     int     `yaml:"stoch_period"`     // 14
	BandWindow      int     `yaml:"band_window"`      // 20
	BandStdDevs     float64 `yaml:"band_std_devs"`    // 2.0
	SqueezeLookback int     `yaml:"squeeze_lookback"` // 120
	TrendWindow     int     `yaml:"trend_window"`     // 50

	// Signal thresholds, evaluated in priority order.
	LaunchpadZ float64 `yaml:"launchpad_z"` // z > 0.8
	LaunchpadX float64 `yaml:"launchpad_x"` // x > 0
	DipX       float64 `yaml:"dip_x"`       // x > 0.5
	DipY       float64 `yaml:"dip_y"`       // y < 0.2
	RunX       float64 `yaml:"run_x"`       // x > 1.0
	RunY       float64 `yaml:"run_y"`       // y > 0.9
	AvoidX     float64 `yaml:"avoid_x"`     // x < -0.5
}

// DefaultConfig returns the production engine parameters.
func DefaultConfig() Config {
	return Config{
		McGinleyPeriod:  20,
		McGinleyFactor:  1.0,
		StochPeriod:     14,
		BandWindow:      20,
		BandStdDevs:     2.0,
		SqueezeLookback: 120,
		TrendWindow:     50,
		LaunchpadZ:      0.8,
		LaunchpadX:      0.0,
		DipX:            0.5,
		DipY:            0.2,
		RunX:            1.0,
		RunY:            0.9,
		AvoidX:          -0.5,
	}
}

// StateRow is the kinetic state of one instrument on one date.
type StateRow struct {
	Date       time.Time `json:"date"`
	Close      float64   `json:"close"`
	XTrend     float64   `json:"x_trend"`
	YMomentum  float64   `json:"y_momentum"`
	ZStructure float64   `json:"z_structure"`
	Signal     Signal    `json:"signal"`
	Commentary string    `json:"commentary"`
}

// Coordinates is the bare (x, y, z) triple, used for report traces.
type Coordinates struct {
	XTrend     float64 `json:"x_trend"`
	YMomentum  float64 `json:"y_momentum"`
	ZStructure float64 `json:"z_structure"`
}

// Result carries the per-date state rows for one instrument, aligned
// index-for-index with the source series.
type Result struct {
	Symbol string
	Rows   []StateRow
}

// Trace returns the last n coordinate triples, oldest first.
func (r *Result) Trace(n int) []Coordinates {
	start := len(r.Rows) - n
	if start < 0 {
		start = 0
	}
	out := make([]Coordinates, 0, len(r.Rows)-start)
	for _, row := range r.Rows[start:] {
		out = append(out, Coordinates{row.XTrend, row.YMomentum, row.ZStructure})
	}
	return out
}

// Latest returns the most recent state row.
func (r *Result) Latest() StateRow {
	return r.Rows[len(r.Rows)-1]
}

// Engine computes kinetic state rows from an instrument series. It is
// stateless between calls; every output is a pure function of the bars
// up to and including its own date.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the given configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Analyze runs the full coordinate and signal computation over the
// series history in order. Rows before the trend warm-up carry NO_DATA.
func (e *Engine) Analyze(series *market.InstrumentSeries) (*Result, error) {
	closes := series.Closes()

	md := indicators.McGinley(closes, e.cfg.McGinleyPeriod, e.cfg.McGinleyFactor)
	x := e.trendCoordinate(md)
	y := indicators.StochRSI(closes, e.cfg.StochPeriod)
	z := e.structureCoordinate(closes)

	for name, col := range map[string][]float64{"x_trend": x, "y_momentum": y, "z_structure": z, "mcginley": md} {
		if err := series.CheckAligned(name, len(col)); err != nil {
			return nil, err
		}
	}

	rows := make([]StateRow, series.Len())
	for i, bar := range series.Bars {
		row := StateRow{
			Date:       bar.Date,
			Close:      bar.Close,
			XTrend:     x[i],
			YMomentum:  y[i],
			ZStructure: z[i],
		}
		if i < e.cfg.TrendWindow {
			row.Signal = SignalNoData
			row.Commentary = "Insufficient history for standardized coordinates."
		} else {
			row.Signal = e.classify(row)
			row.Commentary = e.commentary(row, bar.Close > md[i])
		}
		rows[i] = row
	}

	return &Result{Symbol: series.Symbol, Rows: rows}, nil
}

// trendCoordinate standardizes the first difference of the dynamic
// average over its trailing window, clipped to [-3, 3].
func (e *Engine) trendCoordinate(md []float64) []float64 {
	slope := indicators.Diff(md)
	mean := indicators.SMA(slope, e.cfg.TrendWindow)
	std := indicators.RollingStd(slope, e.cfg.TrendWindow)

	out := make([]float64, len(md))
	for i := range out {
		if !indicators.IsValid(slope[i]) || !indicators.IsValid(mean[i]) || !indicators.IsValid(std[i]) || std[i] == 0 {
			out[i] = 0
			continue
		}
		out[i] = indicators.Clip((slope[i]-mean[i])/std[i], -3, 3)
	}
	return out
}

// structureCoordinate inverts the normalized band width: tight bands
// (a squeeze) score near 1, wide bands near 0. Warm-up defaults to 0.
func (e *Engine) structureCoordinate(closes []float64) []float64 {
	bands := indicators.Bands(closes, e.cfg.BandWindow, e.cfg.BandStdDevs)
	lo := indicators.RollingMin(bands.Width, e.cfg.SqueezeLookback)
	hi := indicators.RollingMax(bands.Width, e.cfg.SqueezeLookback)

	out := make([]float64, len(closes))
	for i := range out {
		if !indicators.IsValid(bands.Width[i]) || !indicators.IsValid(lo[i]) || !indicators.IsValid(hi[i]) {
			out[i] = 0
			continue
		}
		span := hi[i] - lo[i]
		if span <= 0 {
			out[i] = 0
			continue
		}
		out[i] = indicators.Clip(1.0-(bands.Width[i]-lo[i])/span, 0, 1)
	}
	return out
}

// classify applies the signal rules in priority order; first match wins.
func (e *Engine) classify(row StateRow) Signal {
	x, y, z := row.XTrend, row.YMomentum, row.ZStructure
	switch {
	case z > e.cfg.LaunchpadZ && x > e.cfg.LaunchpadX:
		return SignalLaunchpad
	case x > e.cfg.DipX && y < e.cfg.DipY:
		return SignalDipBuy
	case x > e.cfg.RunX && y > e.cfg.RunY:
		return SignalMomentumRun
	case x < e.cfg.AvoidX:
		return SignalAvoid
	default:
		return SignalWait
	}
}

func (e *Engine) commentary(row StateRow, aboveAverage bool) string {
	switch row.Signal {
	case SignalLaunchpad:
		return fmt.Sprintf("Volatility squeeze detected (Z=%.2f). Market structure is coiling for a potential move. Monitor for breakout above recent highs.", row.ZStructure)
	case SignalDipBuy:
		return fmt.Sprintf("PRIMARY SETUP: strong trend (X=%.2f) + oversold (Y=%.2f). Statistically the highest win-rate setup.", row.XTrend, row.YMomentum)
	case SignalMomentumRun:
		return fmt.Sprintf("Trend is accelerating (X=%.2f). Hold with a trailing stop; do not add new positions.", row.XTrend)
	case SignalAvoid:
		trend := "BEARISH"
		if aboveAverage {
			trend = "BULLISH"
		}
		return fmt.Sprintf("Trend is down (X=%.2f). Price is below dynamic support (%s).", row.XTrend, trend)
	default:
		return "Market is incoherent or chopping. Capital preservation is priority."
	}
}
