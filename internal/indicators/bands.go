package indicators

// BandSet holds the volatility-band columns derived from a close series,
// all aligned by index with the input.
type BandSet struct {
	Mid   []float64 // simple moving average
	Upper []float64 // mid + stddevs*std
	Lower []float64 // mid - stddevs*std
	Width []float64 // (upper-lower)/mid
}

// Bands computes moving-average volatility bands over window with the
// given standard-deviation multiple. A zero mid floors the width
// denominator to 1 rather than propagating Inf.
func Bands(prices []float64, window int, stddevs float64) BandSet {
	mid := SMA(prices, window)
	std := RollingStd(prices, window)

	n := len(prices)
	set := BandSet{
		Mid:   mid,
		Upper: nanSlice(n),
		Lower: nanSlice(n),
		Width: nanSlice(n),
	}
	for i := 0; i < n; i++ {
		if !IsValid(mid[i]) || !IsValid(std[i]) {
			continue
		}
		set.Upper[i] = mid[i] + stddevs*std[i]
		set.Lower[i] = mid[i] - stddevs*std[i]
		denom := mid[i]
		if denom == 0 {
			denom = 1
		}
		set.Width[i] = (set.Upper[i] - set.Lower[i]) / denom
	}
	return set
}

// SqueezePercentile percentile-ranks the band width against its own
// trailing lookback history, yielding [0,1] where low values mean
// abnormally narrow bands (a squeeze).
func SqueezePercentile(width []float64, lookback int) []float64 {
	return RollingPercentileRank(width, lookback)
}

// WidthZScore standardizes the band width over its trailing lookback
// mean and stddev; used for the climax (overheated) exit. Zero-variance
// windows yield NaN, which callers floor to 0.
func WidthZScore(width []float64, lookback int) []float64 {
	mean := SMA(width, lookback)
	std := RollingStd(width, lookback)

	out := nanSlice(len(width))
	for i := range width {
		if !IsValid(width[i]) || !IsValid(mean[i]) || !IsValid(std[i]) || std[i] == 0 {
			continue
		}
		out[i] = (width[i] - mean[i]) / std[i]
	}
	return out
}
