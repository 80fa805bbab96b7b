// Package scoring blends the valuation and risk outputs with the simpler
// sub-scores into one conviction figure and a discrete rating.
package scoring

import (
	"github.com/rs/zerolog"

	"github.com/aristath/conviction/internal/domain"
	"github.com/aristath/conviction/internal/modules/risk"
	"github.com/aristath/conviction/internal/modules/valuation"
	"github.com/aristath/conviction/pkg/formulas"
	"github.com/aristath/conviction/pkg/logger"
)

// Rating is the discrete conviction band.
type Rating string

const (
	RatingStrongBuy  Rating = "STRONG BUY"
	RatingBuy        Rating = "BUY"
	RatingHold       Rating = "HOLD"
	RatingSell       Rating = "SELL"
	RatingStrongSell Rating = "STRONG SELL"
)

// Config holds the aggregation weights and neutral defaults. Weights sum
// to 1; sub-scores the pipeline cannot compute fall back to their neutral
// defaults rather than dropping out of the blend.
type Config struct {
	FinancialWeight float64
	ValuationWeight float64
	IndustryWeight  float64
	TechnicalWeight float64
	RiskWeight      float64
	SentimentWeight float64

	NeutralIndustry  float64
	NeutralSentiment float64
	NeutralTechnical float64

	RSIPeriod      int
	MomentumWindow int
}

// DefaultConfig returns the production aggregation parameters.
func DefaultConfig() Config {
	return Config{
		FinancialWeight: 0.25,
		ValuationWeight: 0.20,
		IndustryWeight:  0.15,
		TechnicalWeight: 0.15,
		RiskWeight:      0.15,
		SentimentWeight: 0.10,

		NeutralIndustry:  60,
		NeutralSentiment: 55,
		NeutralTechnical: 50,

		RSIPeriod:      14,
		MomentumWindow: 20,
	}
}

// Aggregator computes conviction scores. Stateless apart from config.
type Aggregator struct {
	cfg Config
	log zerolog.Logger
}

// NewAggregator creates a score aggregator.
func NewAggregator(cfg Config, log zerolog.Logger) *Aggregator {
	return &Aggregator{cfg: cfg, log: logger.Engine(log, "scoring")}
}

// Inputs carries the per-security material the blend reads.
type Inputs struct {
	Valuation valuation.Result
	Risk      risk.Profile
	Prices    []domain.PriceObservation
}

// Breakdown is the conviction result with its constituent sub-scores.
type Breakdown struct {
	Financial float64 `json:"financial"`
	Valuation float64 `json:"valuation"`
	Industry  float64 `json:"industry"`
	Technical float64 `json:"technical"`
	Risk      float64 `json:"risk"`
	Sentiment float64 `json:"sentiment"`

	Conviction float64 `json:"conviction"`
	Rating     Rating  `json:"rating"`
}

// Score blends the sub-scores into the conviction figure. The risk composite
// is inverted first: the risk engine reports higher = riskier, the blend
// wants higher = better.
func (a *Aggregator) Score(in Inputs) Breakdown {
	b := Breakdown{
		Financial: a.financialScore(in.Risk.Credit),
		Valuation: in.Valuation.Score,
		Industry:  a.cfg.NeutralIndustry,
		Technical: a.technicalScore(in.Prices),
		Risk:      100 - in.Risk.CompositeScore,
		Sentiment: a.cfg.NeutralSentiment,
	}

	b.Conviction = formulas.Clamp(
		b.Financial*a.cfg.FinancialWeight+
			b.Valuation*a.cfg.ValuationWeight+
			b.Industry*a.cfg.IndustryWeight+
			b.Technical*a.cfg.TechnicalWeight+
			b.Risk*a.cfg.RiskWeight+
			b.Sentiment*a.cfg.SentimentWeight,
		0, 100)
	b.Rating = ratingFromScore(b.Conviction)

	a.log.Debug().
		Str("code", in.Valuation.Code).
		Float64("conviction", b.Conviction).
		Str("rating", string(b.Rating)).
		Msg("conviction scored")
	return b
}

// financialScore reads balance-sheet strength off the credit statistics.
// Inverse of the credit risk posture: a safe zone and light leverage score
// high, distress scores low. Neutral 50 when the statement data is absent.
func (a *Aggregator) financialScore(credit risk.CreditStats) float64 {
	if credit.AltmanZ == nil && credit.DebtEquity == nil && credit.InterestCoverage == nil {
		return 50
	}

	score := 50.0
	switch credit.Zone {
	case "safe":
		score += 20
	case "grey":
		score -= 5
	case "distress":
		score -= 25
	}
	if credit.DebtEquity != nil {
		switch de := *credit.DebtEquity; {
		case de < 0.5:
			score += 10
		case de > 2.0:
			score -= 15
		case de > 1.5:
			score -= 8
		}
	}
	if credit.InterestCoverage != nil {
		switch cov := *credit.InterestCoverage; {
		case cov > 10:
			score += 10
		case cov < 2:
			score -= 15
		}
	}
	return formulas.Clamp(score, 0, 100)
}

func ratingFromScore(score float64) Rating {
	switch {
	case score >= 80:
		return RatingStrongBuy
	case score >= 65:
		return RatingBuy
	case score >= 50:
		return RatingHold
	case score >= 35:
		return RatingSell
	default:
		return RatingStrongSell
	}
}
