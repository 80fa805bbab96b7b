package formulas

// DrawdownMetrics represents drawdown analysis results
type DrawdownMetrics struct {
	MaxDrawdown  float64 `json:"max_drawdown"` // Maximum drawdown (positive fraction, 0.25 = 25% loss from peak)
	PeakIndex    int     `json:"peak_index"`   // Index of the pre-drawdown peak
	TroughIndex  int     `json:"trough_index"` // Index of the trough
	RecoveryDays *int    `json:"recovery_days,omitempty"`
}

// CalculateMaxDrawdown calculates the maximum drawdown from a price series.
//
// Drawdown Formula:
//
//	Drawdown = (Peak Value - Current Value) / Peak Value
//	Max Drawdown = Maximum of all drawdowns
//
// Returns the maximum drawdown as a positive fraction, or nil if the series
// is too short.
func CalculateMaxDrawdown(prices []float64) *float64 {
	m := CalculateDrawdownMetrics(prices)
	if m == nil {
		return nil
	}
	return &m.MaxDrawdown
}

// CalculateDrawdownMetrics scans the price series tracking a running peak and
// records the deepest peak-to-trough decline with its index range. The
// recovery period is the number of trading days from the trough until price
// first re-touches the pre-drawdown peak; nil if the price never recovered
// within the window.
func CalculateDrawdownMetrics(prices []float64) *DrawdownMetrics {
	if len(prices) < 2 {
		return nil
	}

	peak := prices[0]
	maxDD := 0.0
	peakIdx := 0
	troughIdx := 0
	currentPeakIdx := 0

	for i, price := range prices {
		if price > peak {
			peak = price
			currentPeakIdx = i
		}

		if peak > 0 {
			dd := (peak - price) / peak
			if dd > maxDD {
				maxDD = dd
				peakIdx = currentPeakIdx
				troughIdx = i
			}
		}
	}

	metrics := &DrawdownMetrics{
		MaxDrawdown: maxDD,
		PeakIndex:   peakIdx,
		TroughIndex: troughIdx,
	}

	if maxDD > 0 {
		peakPrice := prices[peakIdx]
		for i := troughIdx + 1; i < len(prices); i++ {
			if prices[i] >= peakPrice {
				days := i - troughIdx
				metrics.RecoveryDays = &days
				break
			}
		}
	}

	return metrics
}
