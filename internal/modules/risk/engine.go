package risk

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/conviction/internal/domain"
	"github.com/aristath/conviction/pkg/formulas"
	"github.com/aristath/conviction/pkg/logger"
)

// Engine derives risk profiles from price history and financial aggregates.
// Deterministic: identical inputs always yield identical profiles.
type Engine struct {
	cfg Config
	log zerolog.Logger
}

// NewEngine creates a risk engine.
func NewEngine(cfg Config, log zerolog.Logger) *Engine {
	return &Engine{cfg: cfg, log: logger.Engine(log, "risk")}
}

// Inputs carries everything a risk assessment reads. Financials may be nil;
// the credit side then degrades to neutral.
type Inputs struct {
	Code       string
	Prices     []domain.PriceObservation // Ascending by date
	Financials *domain.FinancialAggregates
}

// Assess produces the full risk profile for one security.
func (e *Engine) Assess(in Inputs) Profile {
	if len(in.Prices) < e.cfg.MinPricePoints {
		return e.defaultProfile(in.Code, len(in.Prices))
	}

	p := Profile{Code: in.Code, ConcentrationScore: 50}

	p.Market, p.MarketScore = e.marketAssessment(in.Prices)
	p.Credit, p.CreditScore = e.creditAssessment(in.Financials)
	p.LiquidityGrade, p.LiquidityScore, _ = e.liquidityAssessment(in.Prices)

	p.CompositeScore = formulas.Clamp(
		p.MarketScore*e.cfg.MarketWeight+
			p.CreditScore*e.cfg.CreditWeight+
			p.LiquidityScore*e.cfg.LiquidityWeight+
			p.ConcentrationScore*e.cfg.ConcentrationWeight,
		0, 100)
	p.Grade = gradeFromScore(p.CompositeScore)

	p.Scenarios = e.stressScenarios(p.Market, p.Credit)
	p.KeyRisks = e.keyRisks(p)

	e.log.Debug().
		Str("code", in.Code).
		Float64("composite", p.CompositeScore).
		Str("grade", string(p.Grade)).
		Msg("risk profile assessed")
	return p
}

// defaultProfile is the neutral stance when the price window is too short to
// compute anything meaningful.
func (e *Engine) defaultProfile(code string, points int) Profile {
	return Profile{
		Code:               code,
		MarketScore:        50,
		CreditScore:        50,
		LiquidityScore:     50,
		ConcentrationScore: 50,
		CompositeScore:     50,
		Grade:              GradeUnknown,
		KeyRisks: []string{
			fmt.Sprintf("insufficient price history: %d points, need %d", points, e.cfg.MinPricePoints),
		},
	}
}

func gradeFromScore(score float64) Grade {
	switch {
	case score > 70:
		return GradeHigh
	case score > 50:
		return GradeModerateHigh
	case score > 30:
		return GradeModerate
	default:
		return GradeLow
	}
}

// keyRisks collects the headline risk strings in display order and truncates
// to the display budget.
func (e *Engine) keyRisks(p Profile) []string {
	var risks []string

	if p.Market.Volatility != nil && *p.Market.Volatility > 0.40 {
		risks = append(risks, fmt.Sprintf("high volatility: %.0f%% annualized", *p.Market.Volatility*100))
	}
	if p.Market.MaxDrawdown != nil && *p.Market.MaxDrawdown > 0.40 {
		risks = append(risks, fmt.Sprintf("large drawdown: %.0f%% peak to trough", *p.Market.MaxDrawdown*100))
	}
	if p.Credit.Zone == zoneDistress {
		risks = append(risks, "balance sheet in the Altman distress zone")
	}
	risks = append(risks, p.Credit.RedFlags...)
	if p.LiquidityGrade == "D" || p.LiquidityGrade == "F" {
		risks = append(risks, fmt.Sprintf("low liquidity: grade %s", p.LiquidityGrade))
	}
	for _, s := range p.Scenarios {
		if s.Severity == SeverityHigh {
			risks = append(risks, fmt.Sprintf("stress %s: %.0f%% estimated loss", s.Name, s.LossPct))
		}
	}

	if len(risks) > e.cfg.MaxKeyRisks {
		risks = risks[:e.cfg.MaxKeyRisks]
	}
	return risks
}
