package risk

import (
	"fmt"
	"math"

	"github.com/aristath/conviction/internal/domain"
	"github.com/aristath/conviction/pkg/formulas"
)

const (
	zoneSafe     = "safe"
	zoneGrey     = "grey"
	zoneDistress = "distress"
)

// creditAssessment derives the balance-sheet ratios and score. Each ratio is
// computed only when its inputs exist; missing aggregates degrade the
// assessment toward neutral without failing it.
func (e *Engine) creditAssessment(fin *domain.FinancialAggregates) (CreditStats, float64) {
	var stats CreditStats
	if fin.Empty() {
		return stats, 50
	}

	if z, ok := altmanZ(fin); ok {
		stats.AltmanZ = &z
		switch {
		case z > 2.99:
			stats.Zone = zoneSafe
		case z > 1.81:
			stats.Zone = zoneGrey
		default:
			stats.Zone = zoneDistress
			stats.RedFlags = append(stats.RedFlags, fmt.Sprintf("Altman Z %.2f in distress zone", z))
		}
	}

	if fin.TotalDebt != nil && fin.Equity != nil && *fin.Equity > 0 {
		de := *fin.TotalDebt / *fin.Equity
		stats.DebtEquity = &de
		if de > 2.0 {
			stats.RedFlags = append(stats.RedFlags, fmt.Sprintf("debt/equity %.2f above 2.0", de))
		}
		if fin.Cash != nil {
			nd := (*fin.TotalDebt - *fin.Cash) / *fin.Equity
			stats.NetDebtRatio = &nd
		}
	}

	if fin.EBIT != nil && fin.InterestExpense != nil {
		// Zero interest expense means no debt service at all; report the
		// coverage as infinite rather than skipping it.
		cov := math.Inf(1)
		if *fin.InterestExpense > 0 {
			cov = *fin.EBIT / *fin.InterestExpense
		}
		stats.InterestCoverage = &cov
		if cov < 2.0 {
			stats.RedFlags = append(stats.RedFlags, fmt.Sprintf("interest coverage %.1f below 2.0", cov))
		}
	}

	if fin.TotalDebt != nil && fin.EBITDA != nil && *fin.EBITDA > 0 {
		dte := *fin.TotalDebt / *fin.EBITDA
		stats.DebtEBITDA = &dte
		if dte > 4.0 {
			stats.RedFlags = append(stats.RedFlags, fmt.Sprintf("debt/EBITDA %.1f above 4.0", dte))
		}
	}

	score := 50.0
	switch stats.Zone {
	case zoneDistress:
		score += 30
	case zoneGrey:
		score += 15
	case zoneSafe:
		score -= 15
	}
	if stats.DebtEquity != nil {
		switch de := *stats.DebtEquity; {
		case de > 2.0:
			score += 25
		case de > 1.5:
			score += 15
		case de < 0.5:
			score -= 10
		}
	}
	if stats.InterestCoverage != nil {
		switch cov := *stats.InterestCoverage; {
		case cov < 2:
			score += 25
		case cov < 3:
			score += 10
		case cov > 10:
			score -= 15
		}
	}
	return stats, formulas.Clamp(score, 0, 100)
}

// altmanZ computes the classic five-ratio bankruptcy proxy. All five inputs
// must exist with a positive asset base.
func altmanZ(fin *domain.FinancialAggregates) (float64, bool) {
	if fin.TotalAssets == nil || *fin.TotalAssets <= 0 ||
		fin.WorkingCapital == nil || fin.RetainedEarnings == nil ||
		fin.EBIT == nil || fin.MarketCap == nil || fin.Revenue == nil ||
		fin.TotalLiabilities == nil || *fin.TotalLiabilities <= 0 {
		return 0, false
	}
	assets := *fin.TotalAssets
	x1 := *fin.WorkingCapital / assets
	x2 := *fin.RetainedEarnings / assets
	x3 := *fin.EBIT / assets
	x4 := *fin.MarketCap / *fin.TotalLiabilities
	x5 := *fin.Revenue / assets
	return 1.2*x1 + 1.4*x2 + 3.3*x3 + 0.6*x4 + 1.0*x5, true
}
