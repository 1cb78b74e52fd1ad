package kinetic

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romarin-hsieh/investment-dashboard/internal/market"
)

func seriesFromCloses(t *testing.T, symbol string, closes []float64) *market.InstrumentSeries {
	t.Helper()
	bars := make([]market.PriceBar, len(closes))
	start := time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = market.PriceBar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	s, err := market.NewInstrumentSeries(symbol, bars)
	require.NoError(t, err)
	return s
}

func TestAnalyzeWarmupRowsCarryNoData(t *testing.T) {
	closes := make([]float64, 200)
	for i := range closes {
		closes[i] = 100 + float64(i%7)
	}
	s := seriesFromCloses(t, "TEST", closes)

	res, err := NewEngine(DefaultConfig()).Analyze(s)
	require.NoError(t, err)
	require.Len(t, res.Rows, 200)

	cfg := DefaultConfig()
	for i := 0; i < cfg.TrendWindow; i++ {
		assert.Equal(t, SignalNoData, res.Rows[i].Signal, "index %d", i)
		assert.NotEmpty(t, res.Rows[i].Commentary)
	}
	assert.NotEqual(t, SignalNoData, res.Rows[cfg.TrendWindow].Signal)
}

func TestAnalyzeConstantPriceWaits(t *testing.T) {
	closes := make([]float64, 200)
	for i := range closes {
		closes[i] = 100
	}
	s := seriesFromCloses(t, "FLAT", closes)

	res, err := NewEngine(DefaultConfig()).Analyze(s)
	require.NoError(t, err)

	last := res.Latest()
	assert.Equal(t, SignalWait, last.Signal)
	assert.Equal(t, 0.0, last.XTrend)
	assert.Equal(t, 0.5, last.YMomentum)
	assert.Equal(t, 0.0, last.ZStructure)
	assert.Contains(t, last.Commentary, "incoherent")
}

func TestAnalyzeSqueezeAfterChopIsLaunchpad(t *testing.T) {
	// 150 choppy bars (wide bands) followed by a slow steady climb
	// (tight bands): the structure coordinate pins near 1 while the
	// trend coordinate turns positive.
	closes := make([]float64, 180)
	for i := 0; i < 150; i++ {
		closes[i] = 100 + 5*math.Sin(float64(i)/2)
	}
	for i := 150; i < 180; i++ {
		closes[i] = 100 + 0.3*float64(i-150)
	}
	s := seriesFromCloses(t, "COIL", closes)

	res, err := NewEngine(DefaultConfig()).Analyze(s)
	require.NoError(t, err)

	last := res.Latest()
	assert.Greater(t, last.ZStructure, 0.8, "tight bands after chop must score high structure")
	assert.Greater(t, last.XTrend, 0.0)
	assert.Equal(t, SignalLaunchpad, last.Signal)
	assert.Contains(t, last.Commentary, "squeeze")
}

func TestAnalyzeAcceleratingDeclineIsAvoid(t *testing.T) {
	closes := make([]float64, 130)
	for i := 0; i < 100; i++ {
		closes[i] = 100
	}
	for i := 100; i < 130; i++ {
		closes[i] = 100 - float64(i-100)
	}
	s := seriesFromCloses(t, "DUMP", closes)

	res, err := NewEngine(DefaultConfig()).Analyze(s)
	require.NoError(t, err)

	last := res.Latest()
	assert.Less(t, last.XTrend, -0.5)
	assert.Equal(t, SignalAvoid, last.Signal)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	closes := make([]float64, 200)
	for i := range closes {
		closes[i] = 100 + 3*math.Sin(float64(i)/5) + 0.1*float64(i)
	}
	s := seriesFromCloses(t, "TEST", closes)
	engine := NewEngine(DefaultConfig())

	a, err := engine.Analyze(s)
	require.NoError(t, err)
	b, err := engine.Analyze(s)
	require.NoError(t, err)
	assert.Equal(t, a.Rows, b.Rows)
}

func TestAnalyzeHasNoLookAhead(t *testing.T) {
	closes := make([]float64, 220)
	for i := range closes {
		closes[i] = 100 + 3*math.Sin(float64(i)/5) + 0.1*float64(i)
	}
	s := seriesFromCloses(t, "TEST", closes)
	engine := NewEngine(DefaultConfig())

	full, err := engine.Analyze(s)
	require.NoError(t, err)

	for _, i := range []int{60, 150, 219} {
		partial, err := engine.Analyze(s.Truncate(i))
		require.NoError(t, err)
		assert.Equal(t, full.Rows[i], partial.Rows[i], "row %d must not depend on future bars", i)
	}
}

func TestTraceAndLatest(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	s := seriesFromCloses(t, "TEST", closes)

	res, err := NewEngine(DefaultConfig()).Analyze(s)
	require.NoError(t, err)

	assert.Len(t, res.Trace(30), 30)
	assert.Len(t, res.Trace(500), 80, "trace clamps to available rows")
	assert.Equal(t, res.Rows[79].XTrend, res.Latest().XTrend)
}

func TestSignalStrings(t *testing.T) {
	cases := map[Signal]string{
		SignalWait:        "WAIT",
		SignalDipBuy:      "DIP_BUY",
		SignalLaunchpad:   "LAUNCHPAD",
		SignalMomentumRun: "MOMENTUM_RUN",
		SignalAvoid:       "AVOID",
		SignalNoData:      "NO_DATA",
		SignalCrisisHalt:  "CRISIS_HALT",
	}
	for sig, want := range cases {
		assert.Equal(t, want, sig.String())
	}
	assert.True(t, SignalDipBuy.IsBuy())
	assert.True(t, SignalLaunchpad.IsBuy())
	assert.False(t, SignalAvoid.IsBuy())

	txt, err := SignalMomentumRun.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "MOMENTUM_RUN", string(txt))

	var back Signal
	require.NoError(t, back.UnmarshalText(txt))
	assert.Equal(t, SignalMomentumRun, back)
	assert.Error(t, back.UnmarshalText([]byte("NOT_A_SIGNAL")))
}
