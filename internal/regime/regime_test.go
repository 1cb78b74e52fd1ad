package regime

import (
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
		bars[i] = market.PriceBar{Date: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 100}
	}
	s, err := market.NewInstrumentSeries(symbol, bars)
	require.NoError(t, err)
	return s
}

func TestGlobalClassifier(t *testing.T) {
	// 250 rising closes: price sits above any trailing average.
	closes := make([]float64, 250)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	s := seriesFromCloses(t, "SPY", closes)
	c := NewGlobalClassifier(s, 200)

	assert.Equal(t, Unknown, c.At(s.Bars[100].Date), "unfilled window is Unknown")
	assert.Equal(t, BullRiskOn, c.At(s.Bars[249].Date))
	assert.Equal(t, Unknown, c.At(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)), "gap date is Unknown")
}

func TestGlobalClassifierBear(t *testing.T) {
	closes := make([]float64, 250)
	for i := range closes {
		closes[i] = 500 - float64(i)
	}
	s := seriesFromCloses(t, "SPY", closes)
	c := NewGlobalClassifier(s, 200)

	assert.Equal(t, BearRiskOff, c.At(s.Bars[249].Date))
}

func TestGlobalClassifierNilSeries(t *testing.T) {
	c := NewGlobalClassifier(nil, 200)
	assert.Equal(t, Unknown, c.At(time.Now()))
}

func TestPeerClassifier(t *testing.T) {
	up := make([]float64, 60)
	down := make([]float64, 60)
	for i := range up {
		up[i] = 100 + float64(i)
		down[i] = 200 - float64(i)
	}

	cu := NewPeerClassifier(seriesFromCloses(t, "XLK", up), 20)
	cd := NewPeerClassifier(seriesFromCloses(t, "XLE", down), 20)
	last := time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 59)

	assert.Equal(t, Up, cu.At(last))
	assert.Equal(t, Down, cd.At(last))
	assert.Equal(t, Neutral, cu.At(time.Date(2023, time.January, 5, 0, 0, 0, 0, time.UTC)), "unfilled window is Neutral")

	nilC := NewPeerClassifier(nil, 20)
	assert.Equal(t, Neutral, nilC.At(last))
}

func TestPanicGauge(t *testing.T) {
	closes := []float64{20, 30, 40, 36, 12}
	s := seriesFromCloses(t, "VIX", closes)
	g := NewPanicGauge(s, 35.0)

	assert.False(t, g.Halted(s.Bars[0].Date))
	assert.True(t, g.Halted(s.Bars[2].Date))
	assert.True(t, g.Halted(s.Bars[3].Date))
	assert.False(t, g.Halted(s.Bars[4].Date))
	assert.False(t, g.Halted(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)), "gap date never halts")

	level, halted := g.Latest()
	assert.Equal(t, 12.0, level)
	assert.False(t, halted)

	nilG := NewPanicGauge(nil, 35.0)
	assert.False(t, nilG.Halted(s.Bars[2].Date))
	_, h := nilG.Latest()
	assert.False(t, h)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "BULL_RISK_ON", BullRiskOn.String())
	assert.Equal(t, "BEAR_RISK_OFF", BearRiskOff.String())
	assert.Equal(t, "UNKNOWN", Unknown.String())
	assert.Equal(t, "UP", Up.String())
	assert.Equal(t, "DOWN", Down.String())
	assert.Equal(t, "NEUTRAL", Neutral.String())
}
