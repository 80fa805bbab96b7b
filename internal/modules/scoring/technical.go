package scoring

import (
	"github.com/aristath/conviction/internal/domain"
	"github.com/aristath/conviction/pkg/formulas"
)

// technicalScore derives a 0-100 sub-score (higher = more attractive entry)
// from momentum indicators. Returns the neutral default when the series is
// too short for the RSI window.
func (a *Aggregator) technicalScore(prices []domain.PriceObservation) float64 {
	closes := make([]float64, len(prices))
	for i, p := range prices {
		closes[i] = p.Close
	}

	rsi := formulas.CalculateRSI(closes, a.cfg.RSIPeriod)
	if rsi == nil {
		return a.cfg.NeutralTechnical
	}

	score := 50.0
	switch r := *rsi; {
	case r < 30:
		score += 15 // Oversold
	case r < 40:
		score += 8
	case r > 70:
		score -= 15 // Overbought
	case r > 60:
		score -= 8
	}

	// 20-session momentum.
	if n := len(closes); n > a.cfg.MomentumWindow {
		prev := closes[n-1-a.cfg.MomentumWindow]
		if prev > 0 {
			switch chg := (closes[n-1] - prev) / prev; {
			case chg > 0.10:
				score += 10
			case chg > 0.05:
				score += 5
			case chg < -0.10:
				score -= 10
			case chg < -0.05:
				score -= 5
			}
		}
	}
	return formulas.Clamp(score, 0, 100)
}
