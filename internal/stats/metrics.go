package stats

import "math"

// annualizationDays converts a per-trade Sharpe to an annualized figure.
const annualizationDays = 252

// Mean returns the arithmetic mean, 0 for an empty sample.
func Mean(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range returns {
		sum += r
	}
	return sum / float64(len(returns))
}

// StdDev returns the sample standard deviation, 0 for fewer than two
// observations.
func StdDev(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := Mean(returns)
	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(returns)-1))
}

// Sharpe returns the annualized Sharpe ratio of a trade-return sample,
// 0 when the sample has zero variance.
func Sharpe(returns []float64) float64 {
	std := StdDev(returns)
	if std == 0 {
		return 0
	}
	return Mean(returns) / std * math.Sqrt(annualizationDays)
}

// ProfitFactor returns gross profit over gross loss, 0 when the sample
// has no losses (a loss-free sample proves nothing about edge).
func ProfitFactor(returns []float64) float64 {
	var wins, losses float64
	for _, r := range returns {
		if r > 0 {
			wins += r
		} else {
			losses += -r
		}
	}
	if losses == 0 {
		return 0
	}
	return wins / losses
}

// MaxDrawdown compounds the returns in order into a synthetic equity
// curve and returns the deepest peak-to-trough drawdown as a negative
// fraction.
func MaxDrawdown(returns []float64) float64 {
	equity := 1.0
	peak := 1.0
	worst := 0.0
	for _, r := range returns {
		equity *= 1 + r
		if equity > peak {
			peak = equity
		}
		if dd := (equity - peak) / peak; dd < worst {
			worst = dd
		}
	}
	return worst
}

// WinRate returns the fraction of strictly positive returns.
func WinRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns))
}
