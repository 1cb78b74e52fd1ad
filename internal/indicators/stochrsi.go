package indicators

// lossEpsilon floors the average-loss denominator so a loss-free window
// yields RSI 100 instead of a division blow-up.
const lossEpsilon = 1e-4

// RSI computes the rolling-mean RSI over period from price deltas.
// Warm-up slots are NaN.
func RSI(prices []float64, period int) []float64 {
	out := nanSlice(len(prices))
	if period <= 0 || len(prices) <= period {
		return out
	}

	gains := make([]float64, len(prices))
	losses := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		d := prices[i] - prices[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}

	for i := period; i < len(prices); i++ {
		var gain, loss float64
		for j := i - period + 1; j <= i; j++ {
			gain += gains[j]
			loss += losses[j]
		}
		gain /= float64(period)
		loss /= float64(period)
		if loss < lossEpsilon {
			loss = lossEpsilon
		}
		rs := gain / loss
		out[i] = 100.0 - (100.0 / (1.0 + rs))
	}
	return out
}

// StochRSI min-max normalizes RSI over a second rolling window of the
// same length, producing a bounded momentum oscillator in [0, 1].
// Undefined slots (warm-up, zero-variance window) default to 0.5.
func StochRSI(prices []float64, period int) []float64 {
	rsi := RSI(prices, period)
	lo := RollingMin(rsi, period)
	hi := RollingMax(rsi, period)

	out := make([]float64, len(prices))
	for i := range out {
		if !IsValid(rsi[i]) || !IsValid(lo[i]) || !IsValid(hi[i]) {
			out[i] = 0.5
			continue
		}
		span := hi[i] - lo[i]
		if span <= 0 {
			out[i] = 0.5
			continue
		}
		out[i] = (rsi[i] - lo[i]) / span
	}
	return out
}

// StochRSIK returns the smoothed %K line scaled to [0, 100]: StochRSI
// averaged over smooth bars. Slots without a full smoothing window fall
// back to the raw value, keeping the output defined everywhere.
func StochRSIK(prices []float64, period, smooth int) []float64 {
	stoch := StochRSI(prices, period)
	if smooth <= 1 {
		out := make([]float64, len(stoch))
		for i, v := range stoch {
			out[i] = v * 100.0
		}
		return out
	}

	out := make([]float64, len(stoch))
	for i := range stoch {
		n := smooth
		if i+1 < smooth {
			n = i + 1
		}
		sum := 0.0
		for j := i - n + 1; j <= i; j++ {
			sum += stoch[j]
		}
		out[i] = sum / float64(n) * 100.0
	}
	return out
}
