package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romarin-hsieh/investment-dashboard/internal/kinetic"
	"github.com/romarin-hsieh/investment-dashboard/internal/market"
	"github.com/romarin-hsieh/investment-dashboard/internal/regime"
	"github.com/romarin-hsieh/investment-dashboard/internal/strategy"
)

// scriptPolicy buys on scripted bar indices and sells after a fixed
// holding period, so simulator mechanics can be tested in isolation.
type scriptPolicy struct {
	buyAt     map[int]bool
	sellAfter int
}

func (p *scriptPolicy) Tag() strategy.PolicyTag { return strategy.PolicyGrowth }
func (p *scriptPolicy) Name() string            { return "script" }

func (p *scriptPolicy) Prepare(series *market.InstrumentSeries) (*strategy.Frame, error) {
	return &strategy.Frame{Series: series}, nil
}

func (p *scriptPolicy) Evaluate(f *strategy.Frame, i int, pos *strategy.OpenState, global regime.Regime, peer regime.PeerTrend) strategy.Decision {
	if pos != nil {
		if pos.DaysHeld(f.Series.Bars[i].Date) >= p.sellAfter {
			return strategy.Decision{Action: strategy.ActionSellTarget, Reason: "scripted exit"}
		}
		return strategy.Decision{Action: strategy.ActionHold, Reason: "scripted hold"}
	}
	if p.buyAt[i] {
		return strategy.Decision{Action: strategy.ActionBuyBreakout, Reason: "scripted entry"}
	}
	return strategy.Decision{Action: strategy.ActionHold, Reason: "scripted flat"}
}

func dailySeries(t *testing.T, symbol string, closes []float64) *market.InstrumentSeries {
	t.Helper()
	bars := make([]market.PriceBar, len(closes))
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = market.PriceBar{Date: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 100}
	}
	s, err := market.NewInstrumentSeries(symbol, bars)
	require.NoError(t, err)
	return s
}

func scriptedInstrument(t *testing.T, symbol string, closes []float64, buyAt []int, sellAfter int) *Instrument {
	t.Helper()
	s := dailySeries(t, symbol, closes)
	p := &scriptPolicy{buyAt: map[int]bool{}, sellAfter: sellAfter}
	for _, i := range buyAt {
		p.buyAt[i] = true
	}
	f, err := p.Prepare(s)
	require.NoError(t, err)
	return &Instrument{Symbol: symbol, Sector: "Technology", Series: s, Policy: p, Frame: f}
}

func TestSimulatorTradeLifecycle(t *testing.T) {
	closes := []float64{100, 100, 100, 110, 120, 130, 130, 130, 130, 130}
	ins := scriptedInstrument(t, "AAA", closes, []int{2}, 3)
	sim := NewSimulator(DefaultConfig(), map[string]*Instrument{"AAA": ins}, nil, nil, nil)

	res, err := sim.Run(market.UnionCalendar(map[string]*market.InstrumentSeries{"AAA": ins.Series}))
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	trade := res.Trades[0]
	assert.Equal(t, "AAA", trade.Symbol)
	assert.Equal(t, 100.0, trade.EntryPrice)
	assert.Equal(t, 130.0, trade.ExitPrice)
	assert.Equal(t, 3, trade.DaysHeld)
	assert.InDelta(t, 0.30, trade.PnLPct, 1e-12)
	assert.Equal(t, "scripted exit", trade.ExitReason)

	// Committed 10% of 100k at price 100 -> 100 shares -> +3000 on exit.
	assert.InDelta(t, 3000.0, trade.PnL, 1e-9)
	assert.InDelta(t, 103000.0, res.FinalEquity(100000), 1e-9)
}

func TestSimulatorEquityConservedWithoutPriceMoves(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 50
	}
	ins := scriptedInstrument(t, "AAA", closes, []int{3}, 50)
	sim := NewSimulator(DefaultConfig(), map[string]*Instrument{"AAA": ins}, nil, nil, nil)

	res, err := sim.Run(market.UnionCalendar(map[string]*market.InstrumentSeries{"AAA": ins.Series}))
	require.NoError(t, err)

	for _, p := range res.EquityCurve {
		assert.InDelta(t, 100000.0, p.Equity, 1e-9, "flat prices must conserve equity on %s", p.Date)
	}
}

func TestSimulatorHonorsPositionLimit(t *testing.T) {
	closes := make([]float64, 10)
	for i := range closes {
		closes[i] = 100
	}

	instruments := make(map[string]*Instrument)
	for _, sym := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"} {
		instruments[sym] = scriptedInstrument(t, sym, closes, []int{0}, 50)
	}

	cfg := DefaultConfig()
	sim := NewSimulator(cfg, instruments, nil, nil, nil)
	res, err := sim.Run(market.UnionCalendar(map[string]*market.InstrumentSeries{"A": instruments["A"].Series}))
	require.NoError(t, err)

	assert.Empty(t, res.Trades, "nothing exits inside the window")
	// 10 positions of 10% each commit the full bankroll without going
	// negative or over the limit; Run enforces both as hard errors.
}

func TestSimulatorDustThresholdStopsEntries(t *testing.T) {
	closes := make([]float64, 10)
	for i := range closes {
		closes[i] = 100
	}
	ins := scriptedInstrument(t, "AAA", closes, []int{0}, 50)

	cfg := DefaultConfig()
	cfg.InitialCapital = 500 // below the dust threshold
	sim := NewSimulator(cfg, map[string]*Instrument{"AAA": ins}, nil, nil, nil)

	res, err := sim.Run(market.UnionCalendar(map[string]*market.InstrumentSeries{"AAA": ins.Series}))
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
	assert.InDelta(t, 500.0, res.FinalEquity(cfg.InitialCapital), 1e-9, "no position ever opened")
}

func TestSimulatorPanicGaugeSuspendsEntries(t *testing.T) {
	closes := make([]float64, 10)
	vix := make([]float64, 10)
	for i := range closes {
		closes[i] = 100
		vix[i] = 50 // permanently above the panic threshold
	}
	ins := scriptedInstrument(t, "AAA", closes, []int{0, 1, 2, 3}, 50)
	gauge := regime.NewPanicGauge(dailySeries(t, "VIX", vix), 35.0)

	sim := NewSimulator(DefaultConfig(), map[string]*Instrument{"AAA": ins}, nil, nil, gauge)
	res, err := sim.Run(market.UnionCalendar(map[string]*market.InstrumentSeries{"AAA": ins.Series}))
	require.NoError(t, err)

	assert.Empty(t, res.Trades)
	assert.Equal(t, 10, res.HaltedDates)
	assert.InDelta(t, 100000.0, res.FinalEquity(100000), 1e-9)
}

func TestSimulatorRanksCandidatesByTrend(t *testing.T) {
	rising := make([]float64, 10)
	falling := make([]float64, 10)
	for i := range rising {
		rising[i] = 100 + float64(i)
		falling[i] = 100 - float64(i)
	}

	weak := scriptedInstrument(t, "WEAK", falling, []int{0}, 50)
	strong := scriptedInstrument(t, "ZSTRONG", rising, []int{0}, 50)
	weak.Kinetic = kineticWithTrend(10, weak.Series, 0.5)
	strong.Kinetic = kineticWithTrend(10, strong.Series, 2.5)

	cfg := DefaultConfig()
	cfg.MaxPositions = 1
	sim := NewSimulator(cfg, map[string]*Instrument{"WEAK": weak, "ZSTRONG": strong}, nil, nil, nil)
	res, err := sim.Run(market.UnionCalendar(map[string]*market.InstrumentSeries{"WEAK": weak.Series}))
	require.NoError(t, err)

	// The single slot goes to the stronger trend despite the later
	// alphabetical order: 100 shares at 100 riding up to 109.
	assert.Empty(t, res.Trades)
	assert.InDelta(t, 100900.0, res.FinalEquity(100000), 1e-9)
}

func kineticWithTrend(n int, s *market.InstrumentSeries, trend float64) *kinetic.Result {
	rows := make([]kinetic.StateRow, n)
	for i := range rows {
		rows[i] = kinetic.StateRow{Date: s.Bars[i].Date, Close: s.Bars[i].Close, XTrend: trend}
	}
	return &kinetic.Result{Symbol: s.Symbol, Rows: rows}
}

func TestSimulatorMarksGapsAtEntryPrice(t *testing.T) {
	// AAA trades every day; BBB misses the middle days, so its open
	// position marks at entry price on the gap dates.
	aaa := make([]float64, 10)
	for i := range aaa {
		aaa[i] = 100
	}
	insA := scriptedInstrument(t, "AAA", aaa, nil, 50)

	bbbBars := []market.PriceBar{}
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, i := range []int{0, 1, 8, 9} {
		bbbBars = append(bbbBars, market.PriceBar{
			Date: start.AddDate(0, 0, i), Open: 100, High: 101, Low: 99, Close: 100, Volume: 100,
		})
	}
	bbbSeries, err := market.NewInstrumentSeries("BBB", bbbBars)
	require.NoError(t, err)
	pol := &scriptPolicy{buyAt: map[int]bool{1: true}, sellAfter: 100}
	frame, err := pol.Prepare(bbbSeries)
	require.NoError(t, err)
	insB := &Instrument{Symbol: "BBB", Sector: "Technology", Series: bbbSeries, Policy: pol, Frame: frame}

	sim := NewSimulator(DefaultConfig(), map[string]*Instrument{"AAA": insA, "BBB": insB}, nil, nil, nil)
	res, err := sim.Run(market.UnionCalendar(map[string]*market.InstrumentSeries{"AAA": insA.Series}))
	require.NoError(t, err)

	assert.Equal(t, 6, res.FallbackMarks, "days 2..7 mark the gap at entry price")
}

func TestSimulatorEmptyCalendar(t *testing.T) {
	sim := NewSimulator(DefaultConfig(), nil, nil, nil, nil)
	_, err := sim.Run(nil)
	assert.Error(t, err)
}

func TestResultFinalEquity(t *testing.T) {
	r := &Result{}
	assert.Equal(t, 1000.0, r.FinalEquity(1000))
	r.EquityCurve = append(r.EquityCurve, EquityPoint{Equity: 1234})
	assert.Equal(t, 1234.0, r.FinalEquity(1000))
}
