package strategy

import (
	"fmt"

	"github.com/romarin-hsieh/investment-dashboard/internal/indicators"
	"github.com/romarin-hsieh/investment-dashboard/internal/market"
	"github.com/romarin-hsieh/investment-dashboard/internal/regime"
)

// GrowthConfig holds the breakout/momentum policy parameters. The exit
// thresholds are empirically tuned; treat them as sweep inputs, not
// contracts.
type GrowthConfig struct {
	ATRPeriod       int     `yaml:"atr_period"`        // 14
	BandWindow      int     `yaml:"band_window"`       // 20
	BandStdDevs     float64 `yaml:"band_std_devs"`     // 2.0
	SqueezeLookback int     `yaml:"squeeze_lookback"`  // 120
	SqueezeMaxPct   float64 `yaml:"squeeze_max_pct"`   // 0.20
	StochPeriod     int     `yaml:"stoch_period"`      // 14
	StochSmooth     int     `yaml:"stoch_smooth"`      // 3
	ClimaxStochK    float64 `yaml:"climax_stoch_k"`    // 95
	ClimaxWidthZ    float64 `yaml:"climax_width_z"`    // 2.0
	StopATRMult     float64 `yaml:"stop_atr_mult"`     // 2.0
	StagnationDays  int     `yaml:"stagnation_days"`   // 5
	StagnationFrac  float64 `yaml:"stagnation_frac"`   // 0.5 (of ATR/close)
}

// DefaultGrowthConfig returns the production growth parameters.
func DefaultGrowthConfig() GrowthConfig {
	return GrowthConfig{
		ATRPeriod:       14,
		BandWindow:      20,
		BandStdDevs:     2.0,
		SqueezeLookback: 120,
		SqueezeMaxPct:   0.20,
		StochPeriod:     14,
		StochSmooth:     3,
		ClimaxStochK:    95,
		ClimaxWidthZ:    2.0,
		StopATRMult:     2.0,
		StagnationDays:  5,
		StagnationFrac:  0.5,
	}
}

// GrowthPolicy trades volatility-squeeze breakouts in growth-like
// sectors: enter on a band breakout out of a squeeze, exit on a
// chandelier stop, stagnation, or a climax blow-off.
type GrowthPolicy struct {
	cfg GrowthConfig
}

// NewGrowthPolicy creates the policy with the given configuration.
func NewGrowthPolicy(cfg GrowthConfig) *GrowthPolicy {
	return &GrowthPolicy{cfg: cfg}
}

func (p *GrowthPolicy) Tag() PolicyTag { return PolicyGrowth }
func (p *GrowthPolicy) Name() string   { return "growth_squeeze" }

// Prepare computes the ATR, band, squeeze-percentile, width-zscore and
// oscillator columns for one instrument.
func (p *GrowthPolicy) Prepare(series *market.InstrumentSeries) (*Frame, error) {
	closes := series.Closes()

	atr, err := indicators.ATR(series.Highs(), series.Lows(), closes, p.cfg.ATRPeriod)
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", series.Symbol, err)
	}
	bands := indicators.Bands(closes, p.cfg.BandWindow, p.cfg.BandStdDevs)

	f := &Frame{
		Series:   series,
		ATR:      atr,
		BandUp:   bands.Upper,
		WidthPct: indicators.SqueezePercentile(bands.Width, p.cfg.SqueezeLookback),
		WidthZ:   indicators.WidthZScore(bands.Width, p.cfg.SqueezeLookback),
		StochK:   indicators.StochRSIK(closes, p.cfg.StochPeriod, p.cfg.StochSmooth),
	}
	for name, col := range map[string][]float64{
		"atr": f.ATR, "band_upper": f.BandUp, "width_pct": f.WidthPct,
		"width_z": f.WidthZ, "stoch_k": f.StochK,
	} {
		if err := series.CheckAligned(name, len(col)); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Evaluate applies filters in the fixed order global regime → peer trend
// → technical trigger, short-circuiting on the first block. Exit rules
// run first for open positions.
func (p *GrowthPolicy) Evaluate(f *Frame, i int, pos *OpenState, global regime.Regime, peer regime.PeerTrend) Decision {
	bar := f.Series.Bars[i]

	if pos != nil {
		return p.evaluateExit(f, i, pos)
	}

	// L1 global filter
	if global == regime.BearRiskOff {
		return Decision{Action: ActionNoTrade, Reason: "regime block (bear)"}
	}

	// L2 peer filter
	if peer == regime.Down {
		return Decision{Action: ActionWait, Reason: "sector weakness (peer down)"}
	}

	// L3 technical trigger
	if !indicators.IsValid(f.WidthPct[i]) || !indicators.IsValid(f.BandUp[i]) {
		return Decision{Action: ActionNoData, Reason: "insufficient history"}
	}

	// The breakout bar expands the bands, so the squeeze condition may
	// only hold on the previous bar.
	squeeze := f.WidthPct[i] < p.cfg.SqueezeMaxPct
	if !squeeze && i > 0 && indicators.IsValid(f.WidthPct[i-1]) {
		squeeze = f.WidthPct[i-1] < p.cfg.SqueezeMaxPct
	}
	breakout := bar.Close > f.BandUp[i]

	if squeeze && breakout {
		return Decision{Action: ActionBuyBreakout, Reason: "squeeze breakout"}
	}
	return Decision{Action: ActionHold, Reason: "trend continuation"}
}

func (p *GrowthPolicy) evaluateExit(f *Frame, i int, pos *OpenState) Decision {
	bar := f.Series.Bars[i]
	atr := indicators.Floor(f.ATR[i], 0)
	daysHeld := pos.DaysHeld(bar.Date)
	pnl := (bar.Close - pos.EntryPrice) / pos.EntryPrice

	stop := pos.HighSinceEntry - p.cfg.StopATRMult*atr
	switch {
	case atr > 0 && bar.Close < stop:
		return Decision{Action: ActionSellStop, Reason: fmt.Sprintf("chandelier stop (%.2f < %.2f)", bar.Close, stop)}
	case daysHeld > p.cfg.StagnationDays && pnl < p.cfg.StagnationFrac*atr/bar.Close:
		return Decision{Action: ActionSellTime, Reason: fmt.Sprintf("stagnation after %d days", daysHeld)}
	case indicators.Floor(f.StochK[i], 50) > p.cfg.ClimaxStochK && indicators.Floor(f.WidthZ[i], 0) > p.cfg.ClimaxWidthZ:
		return Decision{Action: ActionSellClimax, Reason: "climax: overheated"}
	default:
		return Decision{Action: ActionHold, Reason: "trend continuation"}
	}
}
