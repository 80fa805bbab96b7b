package risk

import "fmt"

// stressScenarios estimates losses under a fixed set of shocks. Each scenario
// is independent; severity thresholds differ per scenario type.
func (e *Engine) stressScenarios(market MarketStats, credit CreditStats) []StressScenario {
	scenarios := make([]StressScenario, 0, 4)

	// Market crash: a broad index move scaled by beta. Unknown beta is
	// treated as 1.
	beta := 1.0
	if market.Beta != nil {
		beta = *market.Beta
	}
	crash := beta * e.cfg.MarketCrashMove * 100
	scenarios = append(scenarios, StressScenario{
		Name:        "market_crash",
		Description: fmt.Sprintf("index falls %.0f%%", -e.cfg.MarketCrashMove*100),
		LossPct:     crash,
		Severity:    bandLoss(crash, -25, -15),
	})

	// Rate shock: a 200bp move hits leveraged balance sheets through
	// refinancing cost, proxied linearly by debt/equity.
	rate := e.cfg.RateShockDefault
	if credit.DebtEquity != nil {
		rate = e.cfg.RateShockMove * *credit.DebtEquity * e.cfg.RateSensitivity * 100
	}
	scenarios = append(scenarios, StressScenario{
		Name:        "rate_shock",
		Description: "policy rate rises 200bp",
		LossPct:     rate,
		Severity:    bandLoss(rate, -25, -10),
	})

	// Currency shock: neutral until export/import exposure data exists.
	scenarios = append(scenarios, StressScenario{
		Name:        "currency_shock",
		Description: "won weakens sharply; exposure data unavailable",
		LossPct:     0,
		Severity:    SeverityNeutral,
	})

	sector := e.cfg.SectorBeta * e.cfg.SectorDownturn * 100
	scenarios = append(scenarios, StressScenario{
		Name:        "sector_downturn",
		Description: fmt.Sprintf("sector index falls %.0f%%", -e.cfg.SectorDownturn*100),
		LossPct:     sector,
		Severity:    bandLoss(sector, -25, -10),
	})

	return scenarios
}

func bandLoss(lossPct, high, moderate float64) Severity {
	switch {
	case lossPct < high:
		return SeverityHigh
	case lossPct < moderate:
		return SeverityModerate
	default:
		return SeverityLow
	}
}
