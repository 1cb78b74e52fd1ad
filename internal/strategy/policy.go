package strategy

import (
	"time"

	"github.com/romarin-hsieh/investment-dashboard/internal/market"
	"github.com/romarin-hsieh/investment-dashboard/internal/regime"
)

// PolicyTag is the closed set of signal-generating policies a sector can
// route to.
type PolicyTag int

const (
	PolicyGrowth PolicyTag = iota
	PolicyDefensive
	PolicyAvoid
)

func (t PolicyTag) String() string {
	switch t {
	case PolicyGrowth:
		return "growth"
	case PolicyDefensive:
		return "defensive"
	default:
		return "avoid"
	}
}

// Action is the router output for one (ticker, date).
type Action int

const (
	ActionNoData Action = iota
	ActionNoTrade
	ActionWait
	ActionHold
	ActionBuyBreakout
	ActionBuyDip
	ActionSellStop
	ActionSellTime
	ActionSellTarget
	ActionSellClimax
)

func (a Action) String() string {
	switch a {
	case ActionNoData:
		return "NO_DATA"
	case ActionNoTrade:
		return "NO_TRADE"
	case ActionWait:
		return "WAIT"
	case ActionHold:
		return "HOLD"
	case ActionBuyBreakout:
		return "BUY_BREAKOUT"
	case ActionBuyDip:
		return "BUY_DIP"
	case ActionSellStop:
		return "SELL_STOP"
	case ActionSellTime:
		return "SELL_TIME"
	case ActionSellTarget:
		return "SELL_TARGET"
	case ActionSellClimax:
		return "SELL_CLIMAX"
	default:
		return "UNKNOWN"
	}
}

// IsBuy reports whether the action opens a position.
func (a Action) IsBuy() bool { return a == ActionBuyBreakout || a == ActionBuyDip }

// IsSell reports whether the action closes a position.
func (a Action) IsSell() bool {
	return a == ActionSellStop || a == ActionSellTime || a == ActionSellTarget || a == ActionSellClimax
}

// Decision pairs an action with the human-readable reason for it. When
// several blocking conditions coexist, the reason names the first
// blocking stage in the fixed filter order (regime, peer, technical).
type Decision struct {
	Action Action
	Reason string
}

// OpenState is the strategy-visible state of an open position.
type OpenState struct {
	EntryDate      time.Time
	EntryPrice     float64
	HighSinceEntry float64
}

// DaysHeld returns the calendar days between entry and the given date.
func (s *OpenState) DaysHeld(date time.Time) int {
	return int(date.Sub(s.EntryDate).Hours() / 24)
}

// Frame carries the per-instrument indicator columns a policy prepared,
// aligned index-for-index with the series bars. Columns a policy does
// not use stay nil.
type Frame struct {
	Series   *market.InstrumentSeries
	ATR      []float64
	BandUp   []float64
	WidthPct []float64
	WidthZ   []float64
	StochK   []float64
	McGinley []float64
}

// Policy is one routed strategy: prepare indicator columns once per
// instrument, then evaluate per (index, position-state, filters).
type Policy interface {
	Tag() PolicyTag
	Name() string
	Prepare(series *market.InstrumentSeries) (*Frame, error)
	Evaluate(f *Frame, i int, pos *OpenState, global regime.Regime, peer regime.PeerTrend) Decision
}

// Groups maps sector labels to policy tags. The zero value routes
// everything to defensive, matching the source's fallback.
type Groups struct {
	Growth    []string `yaml:"growth"`
	Defensive []string `yaml:"defensive"`
	Avoid     []string `yaml:"avoid"`
}

// DefaultGroups returns the production sector grouping. Unknown routes
// to growth deliberately: unclassified tickers skew speculative.
func DefaultGroups() Groups {
	return Groups{
		Growth: []string{"Technology", "Consumer Cyclical", market.SectorUnknown},
		Defensive: []string{
			"Healthcare", "Utilities", "Communication Services", "Industrials",
			"Consumer Defensive", "Financial Services", "ETF", "Basic Materials", "Real Estate",
		},
		Avoid: []string{"Energy"},
	}
}

// Route maps a sector label to its policy tag. Sectors in no group
// route to defensive.
func (g Groups) Route(sector string) PolicyTag {
	for _, s := range g.Growth {
		if s == sector {
			return PolicyGrowth
		}
	}
	for _, s := range g.Avoid {
		if s == sector {
			return PolicyAvoid
		}
	}
	return PolicyDefensive
}

// Router owns the policy instances and the sector grouping.
type Router struct {
	groups    Groups
	growth    *GrowthPolicy
	defensive *DefensivePolicy
	avoid     *AvoidPolicy
}

// NewRouter builds a router from policy configs and a sector grouping.
func NewRouter(groups Groups, growthCfg GrowthConfig, defensiveCfg DefensiveConfig) *Router {
	return &Router{
		groups:    groups,
		growth:    NewGrowthPolicy(growthCfg),
		defensive: NewDefensivePolicy(defensiveCfg),
		avoid:     &AvoidPolicy{},
	}
}

// PolicyFor returns the policy an instrument's sector routes to.
func (r *Router) PolicyFor(sector string) Policy {
	switch r.groups.Route(sector) {
	case PolicyGrowth:
		return r.growth
	case PolicyAvoid:
		return r.avoid
	default:
		return r.defensive
	}
}

// AvoidPolicy never generates entries; avoided tickers are reported but
// not traded.
type AvoidPolicy struct{}

func (p *AvoidPolicy) Tag() PolicyTag { return PolicyAvoid }
func (p *AvoidPolicy) Name() string   { return "avoid" }

func (p *AvoidPolicy) Prepare(series *market.InstrumentSeries) (*Frame, error) {
	return &Frame{Series: series}, nil
}

func (p *AvoidPolicy) Evaluate(f *Frame, i int, pos *OpenState, global regime.Regime, peer regime.PeerTrend) Decision {
	return Decision{Action: ActionNoTrade, Reason: "sector avoidance"}
}
