package indicators

import "math"

// Warm-up slots in every rolling output are NaN sentinels. They mark
// "insufficient data" explicitly; signal logic must replace them with a
// neutral default before use (see Floor).

// IsValid reports whether a rolling value is usable.
func IsValid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Floor replaces a NaN/Inf sentinel with a neutral default.
func Floor(v, neutral float64) float64 {
	if !IsValid(v) {
		return neutral
	}
	return v
}

// SMA returns the simple moving average over window, NaN-padded until
// window values are available.
func SMA(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return out
	}
	// Recomputed per window so NaN warm-up slots in derived columns
	// stay contained instead of poisoning a running sum.
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(window)
	}
	return out
}

// RollingStd returns the rolling sample standard deviation over window.
func RollingStd(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 1 || len(values) < window {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		mean := 0.0
		for j := i - window + 1; j <= i; j++ {
			mean += values[j]
		}
		mean /= float64(window)
		variance := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := values[j] - mean
			variance += d * d
		}
		out[i] = math.Sqrt(variance / float64(window-1))
	}
	return out
}

// RollingMin returns the rolling minimum over window.
func RollingMin(values []float64, window int) []float64 {
	return rollingExtreme(values, window, func(a, b float64) bool { return a < b })
}

// RollingMax returns the rolling maximum over window.
func RollingMax(values []float64, window int) []float64 {
	return rollingExtreme(values, window, func(a, b float64) bool { return a > b })
}

func rollingExtreme(values []float64, window int, better func(a, b float64) bool) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		best := values[i-window+1]
		for j := i - window + 2; j <= i; j++ {
			if better(values[j], best) {
				best = values[j]
			}
		}
		out[i] = best
	}
	return out
}

// RollingPercentileRank returns, for each index, the fraction of the
// trailing window (inclusive) that is <= the current value. This is the
// pct-rank transform used for the squeeze percentile.
func RollingPercentileRank(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 || len(values) < window {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		if !IsValid(values[i]) {
			continue
		}
		count, total := 0, 0
		for j := i - window + 1; j <= i; j++ {
			if !IsValid(values[j]) {
				continue
			}
			total++
			if values[j] <= values[i] {
				count++
			}
		}
		if total > 0 {
			out[i] = float64(count) / float64(total)
		}
	}
	return out
}

// Diff returns the first difference, NaN at index 0.
func Diff(values []float64) []float64 {
	out := nanSlice(len(values))
	for i := 1; i < len(values); i++ {
		out[i] = values[i] - values[i-1]
	}
	return out
}

// Clip bounds v to [lo, hi].
func Clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
