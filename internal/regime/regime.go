package regime

import (
	"time"

	"github.com/romarin-hsieh/investment-dashboard/internal/indicators"
	"github.com/romarin-hsieh/investment-dashboard/internal/market"
)

// Regime is the broad-market trend classification used as the top-level
// trading gate.
type Regime int

const (
	Unknown Regime = iota
	BullRiskOn
	BearRiskOff
)

func (r Regime) String() string {
	switch r {
	case BullRiskOn:
		return "BULL_RISK_ON"
	case BearRiskOff:
		return "BEAR_RISK_OFF"
	default:
		return "UNKNOWN"
	}
}

// PeerTrend is the sector-proxy trend classification used as the
// second-level gate. Neutral is non-blocking: sparse proxy data must not
// starve the system of entries.
type PeerTrend int

const (
	Neutral PeerTrend = iota
	Up
	Down
)

func (t PeerTrend) String() string {
	switch t {
	case Up:
		return "UP"
	case Down:
		return "DOWN"
	default:
		return "NEUTRAL"
	}
}

// Config holds the filter windows and the panic threshold.
type Config struct {
	BenchmarkWindow int     `yaml:"benchmark_window"` // 200
	PeerWindow      int     `yaml:"peer_window"`      // 20
	PanicThreshold  float64 `yaml:"panic_threshold"`  // 35.0
}

// DefaultConfig returns the production filter parameters.
func DefaultConfig() Config {
	return Config{BenchmarkWindow: 200, PeerWindow: 20, PanicThreshold: 35.0}
}

// GlobalClassifier compares the benchmark close against its long moving
// average per date. Stateless per lookup; averages are precomputed.
type GlobalClassifier struct {
	series *market.InstrumentSeries
	ma     []float64
}

// NewGlobalClassifier builds the classifier from the benchmark series.
// A nil series yields Unknown for every date.
func NewGlobalClassifier(series *market.InstrumentSeries, window int) *GlobalClassifier {
	c := &GlobalClassifier{series: series}
	if series != nil {
		c.ma = indicators.SMA(series.Closes(), window)
	}
	return c
}

// At classifies the regime on the given date. Dates with fewer bars of
// history than the window yield Unknown.
func (c *GlobalClassifier) At(date time.Time) Regime {
	if c.series == nil {
		return Unknown
	}
	i := c.series.IndexOf(date)
	if i < 0 || !indicators.IsValid(c.ma[i]) {
		return Unknown
	}
	if c.series.Bars[i].Close > c.ma[i] {
		return BullRiskOn
	}
	return BearRiskOff
}

// PeerClassifier compares a sector proxy close against its short moving
// average per date.
type PeerClassifier struct {
	series *market.InstrumentSeries
	ma     []float64
}

// NewPeerClassifier builds the classifier from a sector-proxy series.
// A nil series yields Neutral for every date.
func NewPeerClassifier(series *market.InstrumentSeries, window int) *PeerClassifier {
	c := &PeerClassifier{series: series}
	if series != nil {
		c.ma = indicators.SMA(series.Closes(), window)
	}
	return c
}

// At classifies the peer trend on the given date. Missing proxy data or
// an unfilled window yields Neutral.
func (c *PeerClassifier) At(date time.Time) PeerTrend {
	if c.series == nil {
		return Neutral
	}
	i := c.series.IndexOf(date)
	if i < 0 || !indicators.IsValid(c.ma[i]) {
		return Neutral
	}
	if c.series.Bars[i].Close > c.ma[i] {
		return Up
	}
	return Down
}

// PanicGauge suspends new entries when a volatility proxy closes above
// the hard threshold. Existing positions are still managed by their own
// exit rules.
type PanicGauge struct {
	series    *market.InstrumentSeries
	threshold float64
}

// NewPanicGauge builds the gauge from the volatility-proxy series. A nil
// series never halts.
func NewPanicGauge(series *market.InstrumentSeries, threshold float64) *PanicGauge {
	return &PanicGauge{series: series, threshold: threshold}
}

// Halted reports whether new entries are suspended on the given date.
func (g *PanicGauge) Halted(date time.Time) bool {
	if g.series == nil {
		return false
	}
	i := g.series.IndexOf(date)
	return i >= 0 && g.series.Bars[i].Close > g.threshold
}

// Latest reports the halt state on the last available gauge bar, used by
// the daily scan report.
func (g *PanicGauge) Latest() (float64, bool) {
	if g.series == nil || g.series.Len() == 0 {
		return 0, false
	}
	last := g.series.Bars[g.series.Len()-1].Close
	return last, last > g.threshold
}
