package scoring

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/aristath/conviction/internal/domain"
	"github.com/aristath/conviction/internal/modules/risk"
	"github.com/aristath/conviction/internal/modules/valuation"
)

func f(v float64) *float64 { return &v }

func newTestAggregator() *Aggregator {
	return NewAggregator(DefaultConfig(), zerolog.Nop())
}

func series(closes ...float64) []domain.PriceObservation {
	out := make([]domain.PriceObservation, len(closes))
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = domain.PriceObservation{Date: day, Close: c, Volume: 1000}
		day = day.AddDate(0, 0, 1)
	}
	return out
}

func TestScore_NeutralEverything(t *testing.T) {
	a := newTestAggregator()

	// No financials, neutral valuation and risk, no prices for technicals.
	b := a.Score(Inputs{
		Valuation: valuation.Result{Code: "005930", Score: 50},
		Risk:      risk.Profile{CompositeScore: 50},
	})

	assert.Equal(t, 50.0, b.Financial)
	assert.Equal(t, 50.0, b.Technical)
	assert.Equal(t, 50.0, b.Risk)
	assert.Equal(t, 60.0, b.Industry)
	assert.Equal(t, 55.0, b.Sentiment)
	// 50*.25 + 50*.20 + 60*.15 + 50*.15 + 50*.15 + 55*.10 = 52.0
	assert.InDelta(t, 52.0, b.Conviction, 1e-9)
	assert.Equal(t, RatingHold, b.Rating)
}

func TestScore_RiskInversion(t *testing.T) {
	a := newTestAggregator()

	low := a.Score(Inputs{Valuation: valuation.Result{Score: 50}, Risk: risk.Profile{CompositeScore: 20}})
	high := a.Score(Inputs{Valuation: valuation.Result{Score: 50}, Risk: risk.Profile{CompositeScore: 80}})

	assert.Equal(t, 80.0, low.Risk)
	assert.Equal(t, 20.0, high.Risk)
	assert.Greater(t, low.Conviction, high.Conviction)
}

func TestFinancialScore(t *testing.T) {
	a := newTestAggregator()

	tests := []struct {
		name   string
		credit risk.CreditStats
		want   float64
	}{
		{"no statement data", risk.CreditStats{}, 50},
		{"safe and lightly levered", risk.CreditStats{
			AltmanZ: f(5.0), Zone: "safe", DebtEquity: f(0.3), InterestCoverage: f(20),
		}, 90},
		{"distressed and levered", risk.CreditStats{
			AltmanZ: f(0.5), Zone: "distress", DebtEquity: f(3.0), InterestCoverage: f(1.0),
		}, 0},
		{"grey zone middling", risk.CreditStats{
			AltmanZ: f(2.5), Zone: "grey", DebtEquity: f(1.0), InterestCoverage: f(5),
		}, 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.financialScore(tt.credit))
		})
	}
}

func TestTechnicalScore_ShortSeriesNeutral(t *testing.T) {
	a := newTestAggregator()
	assert.Equal(t, 50.0, a.technicalScore(series(100, 101, 102)))
}

func TestRatingBands(t *testing.T) {
	assert.Equal(t, RatingStrongBuy, ratingFromScore(80))
	assert.Equal(t, RatingBuy, ratingFromScore(79.999))
	assert.Equal(t, RatingBuy, ratingFromScore(65))
	assert.Equal(t, RatingHold, ratingFromScore(64.999))
	assert.Equal(t, RatingHold, ratingFromScore(50))
	assert.Equal(t, RatingSell, ratingFromScore(49.999))
	assert.Equal(t, RatingSell, ratingFromScore(35))
	assert.Equal(t, RatingStrongSell, ratingFromScore(34.999))
}
