package formulas

import (
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// stdNormal is the standard normal distribution used for parametric tail estimates.
var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// NormPPF returns the quantile (inverse CDF) of the standard normal
// distribution. NormPPF(0.05) ≈ -1.645.
func NormPPF(p float64) float64 {
	return stdNormal.Quantile(p)
}

// ParametricVaR calculates value-at-risk at the given confidence level from
// a daily return series, assuming normally distributed returns.
//
//	VaR = -(mean + z_(1-confidence) × stddev)
//
// The result is a positive loss fraction (0.03 = 3% one-day loss).
func ParametricVaR(returns []float64, confidence float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	mean := Mean(returns)
	sd := StdDev(returns)
	z := NormPPF(1 - confidence)

	return -(mean + z*sd)
}

// HistoricalCVaR calculates conditional value-at-risk (expected shortfall)
// at the given confidence level: the mean of returns at or below the
// empirical (1-confidence) percentile, negated to a positive loss fraction.
func HistoricalCVaR(returns []float64, confidence float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	threshold := Percentile(returns, (1-confidence)*100)

	var tailSum float64
	tailCount := 0
	for _, r := range returns {
		if r <= threshold {
			tailSum += r
			tailCount++
		}
	}

	if tailCount == 0 {
		return 0
	}
	return -(tailSum / float64(tailCount))
}

// Percentile returns the p-th percentile (0-100) of data using linear
// interpolation on the sorted sample.
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	return stat.Quantile(p/100, stat.LinInterp, sorted, nil)
}
