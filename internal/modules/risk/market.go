package risk

import (
	"github.com/aristath/conviction/internal/domain"
	"github.com/aristath/conviction/pkg/formulas"
)

// marketAssessment derives the market statistics and score from a daily
// price series. Statistics degrade independently: a window long enough for
// drawdowns but not for volatility yields drawdown figures alone.
func (e *Engine) marketAssessment(prices []domain.PriceObservation) (MarketStats, float64) {
	closes := make([]float64, len(prices))
	for i, p := range prices {
		closes[i] = p.Close
	}

	var stats MarketStats

	if len(closes) >= e.cfg.MinStatPoints {
		// Volatility, VaR and beta read the trailing year of sessions only;
		// history beyond that feeds the drawdown window alone.
		window := closes
		if limit := e.cfg.MinStatPoints + 1; len(window) > limit {
			window = window[len(window)-limit:]
		}
		returns := formulas.CalculateReturns(window)
		vol := formulas.AnnualizedVolatility(returns)
		stats.Volatility = &vol

		// Own-volatility beta proxy, Blume-adjusted toward 1. True beta
		// needs covariance with an index series the data source lacks.
		raw := vol / e.cfg.MarketVolatility
		beta := e.cfg.BlumeWeight*raw + (1-e.cfg.BlumeWeight)*1.0
		stats.Beta = &beta

		v := formulas.ParametricVaR(returns, e.cfg.VaRConfidence)
		stats.VaR95 = &v
		cv := formulas.HistoricalCVaR(returns, e.cfg.VaRConfidence)
		stats.CVaR95 = &cv
	}

	if len(closes) >= e.cfg.MinDrawdownPts {
		if dd := formulas.CalculateDrawdownMetrics(closes); dd != nil {
			stats.MaxDrawdown = &dd.MaxDrawdown
			stats.RecoveryDays = dd.RecoveryDays
		}
	}

	score := 50.0
	if stats.Beta != nil {
		switch b := *stats.Beta; {
		case b > 1.5:
			score += 25
		case b > 1.2:
			score += 15
		case b < 0.8:
			score -= 15
		}
	}
	if stats.Volatility != nil {
		switch v := *stats.Volatility; {
		case v > 0.50:
			score += 30
		case v > 0.35:
			score += 20
		case v < 0.20:
			score -= 10
		}
	}
	// A zero drawdown carries no information about downside behavior and
	// earns no credit.
	if stats.MaxDrawdown != nil && *stats.MaxDrawdown > 0 {
		switch d := *stats.MaxDrawdown; {
		case d > 0.50:
			score += 25
		case d > 0.35:
			score += 15
		case d < 0.20:
			score -= 10
		}
	}
	return stats, formulas.Clamp(score, 0, 100)
}
