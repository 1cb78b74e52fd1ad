package strategy

import (
	"fmt"

	"github.com/romarin-hsieh/investment-dashboard/internal/indicators"
	"github.com/romarin-hsieh/investment-dashboard/internal/market"
	"github.com/romarin-hsieh/investment-dashboard/internal/regime"
)

// DefensiveConfig holds the mean-reversion policy parameters.
type DefensiveConfig struct {
	McGinleyPeriod int     `yaml:"mcginley_period"` // 14
	McGinleyFactor float64 `yaml:"mcginley_factor"` // 0.6
	StochPeriod    int     `yaml:"stoch_period"`    // 14
	StochSmooth    int     `yaml:"stoch_smooth"`    // 3
	OversoldK      float64 `yaml:"oversold_k"`      // 20
	StopLossPct    float64 `yaml:"stop_loss_pct"`   // -0.05
	TargetPct      float64 `yaml:"target_pct"`      // 0.10
	MaxHoldDays    int     `yaml:"max_hold_days"`   // 10
}

// DefaultDefensiveConfig returns the production defensive parameters.
func DefaultDefensiveConfig() DefensiveConfig {
	return DefensiveConfig{
		McGinleyPeriod: 14,
		McGinleyFactor: 0.6,
		StochPeriod:    14,
		StochSmooth:    3,
		OversoldK:      20,
		StopLossPct:    -0.05,
		TargetPct:      0.10,
		MaxHoldDays:    10,
	}
}

// DefensivePolicy buys oversold dips above the dynamic average in
// defensive sectors, with a fixed stop, target and time stop. It
// tolerates a bear regime; only a falling sector blocks entries.
type DefensivePolicy struct {
	cfg DefensiveConfig
}

// NewDefensivePolicy creates the policy with the given configuration.
func NewDefensivePolicy(cfg DefensiveConfig) *DefensivePolicy {
	return &DefensivePolicy{cfg: cfg}
}

func (p *DefensivePolicy) Tag() PolicyTag { return PolicyDefensive }
func (p *DefensivePolicy) Name() string   { return "defensive_meanrev" }

// Prepare computes the dynamic average and oscillator columns.
func (p *DefensivePolicy) Prepare(series *market.InstrumentSeries) (*Frame, error) {
	closes := series.Closes()
	f := &Frame{
		Series:   series,
		McGinley: indicators.McGinley(closes, p.cfg.McGinleyPeriod, p.cfg.McGinleyFactor),
		StochK:   indicators.StochRSIK(closes, p.cfg.StochPeriod, p.cfg.StochSmooth),
	}
	for name, col := range map[string][]float64{"mcginley": f.McGinley, "stoch_k": f.StochK} {
		if err := series.CheckAligned(name, len(col)); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Evaluate applies the peer gate then the dip trigger for flat
// instruments, or the stop/target/time exits for open positions.
func (p *DefensivePolicy) Evaluate(f *Frame, i int, pos *OpenState, global regime.Regime, peer regime.PeerTrend) Decision {
	bar := f.Series.Bars[i]

	if pos != nil {
		pnl := (bar.Close - pos.EntryPrice) / pos.EntryPrice
		daysHeld := pos.DaysHeld(bar.Date)
		switch {
		case pnl < p.cfg.StopLossPct:
			return Decision{Action: ActionSellStop, Reason: fmt.Sprintf("stop loss (%.1f%%)", pnl*100)}
		case pnl > p.cfg.TargetPct:
			return Decision{Action: ActionSellTarget, Reason: fmt.Sprintf("profit target (%.1f%%)", pnl*100)}
		case daysHeld > p.cfg.MaxHoldDays:
			return Decision{Action: ActionSellTime, Reason: fmt.Sprintf("time stop after %d days", daysHeld)}
		default:
			return Decision{Action: ActionHold, Reason: "position open"}
		}
	}

	// L2 peer filter; the defensive book trades through bear regimes.
	if peer == regime.Down {
		return Decision{Action: ActionWait, Reason: "sector weakness (peer down)"}
	}

	if i < 2*p.cfg.StochPeriod {
		return Decision{Action: ActionNoData, Reason: "insufficient history"}
	}

	uptrend := bar.Close > f.McGinley[i]
	oversold := f.StochK[i] < p.cfg.OversoldK
	if uptrend && oversold {
		return Decision{Action: ActionBuyDip, Reason: "mean reversion dip"}
	}
	return Decision{Action: ActionHold, Reason: "no dip setup"}
}
