package indicators

// McGinley dynamic average: a recursive filter whose tracking speed
// scales with the fourth power of the price/average ratio, so it hugs
// trends and lags chop. Downstream thresholds are tuned against this
// exact quartic form; do not approximate it with an EMA.
//
//	md[i] = md[i-1] + (price[i] - md[i-1]) / (k * ratio^4)
//
// where ratio = price[i]/md[i-1] clamped to [0.1, 10] so price gaps
// cannot explode the divisor, and k = period * factor.

const (
	// RatioClampLo and RatioClampHi bound the price/average ratio.
	RatioClampLo = 0.1
	RatioClampHi = 10.0
)

// McGinley computes the dynamic average with k = period * factor.
// The kinetic engine uses factor 1.0, the defensive strategy 0.6.
func McGinley(prices []float64, period int, factor float64) []float64 {
	out := make([]float64, len(prices))
	if len(prices) == 0 {
		return out
	}
	if factor <= 0 {
		factor = 1.0
	}
	k := float64(period) * factor

	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		prev := out[i-1]
		if prev == 0 {
			prev = 1e-9
		}
		ratio := Clip(prices[i]/prev, RatioClampLo, RatioClampHi)
		out[i] = prev + (prices[i]-prev)/(k*ratio*ratio*ratio*ratio)
	}
	return out
}
