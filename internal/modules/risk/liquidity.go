package risk

import "github.com/aristath/conviction/internal/domain"

// liquidityAssessment grades trading activity over the most recent sessions.
// Returns the letter grade, its risk score, and the average daily traded
// value in KRW.
func (e *Engine) liquidityAssessment(prices []domain.PriceObservation) (string, float64, float64) {
	window := prices
	if len(window) > e.cfg.LiquidityWindow {
		window = window[len(window)-e.cfg.LiquidityWindow:]
	}
	if len(window) == 0 {
		return "F", 90, 0
	}

	var total float64
	for _, p := range window {
		total += p.TradedValue()
	}
	avg := total / float64(len(window))

	switch {
	case avg >= e.cfg.TierA:
		return "A", 20, avg
	case avg >= e.cfg.TierB:
		return "B", 30, avg
	case avg >= e.cfg.TierC:
		return "C", 50, avg
	case avg >= e.cfg.TierD:
		return "D", 70, avg
	default:
		return "F", 90, avg
	}
}
