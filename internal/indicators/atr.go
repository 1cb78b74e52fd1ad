package indicators

import (
	"fmt"
	"math"
)

// TrueRange returns the per-bar true range series: NaN at index 0, then
// max(high-low, |high-prevClose|, |low-prevClose|).
func TrueRange(highs, lows, closes []float64) ([]float64, error) {
	if len(highs) != len(lows) || len(lows) != len(closes) {
		return nil, fmt.Errorf("true range: misaligned columns (%d/%d/%d)", len(highs), len(lows), len(closes))
	}
	out := nanSlice(len(closes))
	for i := 1; i < len(closes); i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		out[i] = math.Max(hl, math.Max(hc, lc))
	}
	return out, nil
}

// ATR is the rolling mean of the true range over period. Warm-up slots
// are NaN.
func ATR(highs, lows, closes []float64, period int) ([]float64, error) {
	tr, err := TrueRange(highs, lows, closes)
	if err != nil {
		return nil, err
	}
	return SMA(tr, period), nil
}
