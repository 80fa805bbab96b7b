package risk

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/conviction/internal/domain"
)

func f(v float64) *float64 { return &v }

func newTestEngine() *Engine {
	return NewEngine(DefaultConfig(), zerolog.Nop())
}

// flatSeries builds n daily observations at a constant price.
func flatSeries(n int, price float64, volume int64) []domain.PriceObservation {
	out := make([]domain.PriceObservation, n)
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = domain.PriceObservation{Date: day, Close: price, Volume: volume}
		day = day.AddDate(0, 0, 1)
	}
	return out
}

func TestAssess_InsufficientHistory(t *testing.T) {
	e := newTestEngine()

	p := e.Assess(Inputs{Code: "005930", Prices: flatSeries(15, 50000, 1000)})

	assert.Equal(t, GradeUnknown, p.Grade)
	assert.Equal(t, 50.0, p.CompositeScore)
	assert.Equal(t, 50.0, p.MarketScore)
	require.Len(t, p.KeyRisks, 1)
	assert.Contains(t, p.KeyRisks[0], "insufficient price history")
	assert.Nil(t, p.Market.Volatility)
	assert.Empty(t, p.Scenarios)
}

func TestAssess_FlatSeries(t *testing.T) {
	e := newTestEngine()

	p := e.Assess(Inputs{Code: "005930", Prices: flatSeries(260, 10000, 2_000_000)})

	require.NotNil(t, p.Market.Volatility)
	assert.Zero(t, *p.Market.Volatility)
	require.NotNil(t, p.Market.VaR95)
	assert.Zero(t, *p.Market.VaR95)
	require.NotNil(t, p.Market.Beta)
	assert.InDelta(t, 0.33, *p.Market.Beta, 1e-9)
	// 50 - 10 (low volatility) - 15 (low beta); zero drawdown is no signal.
	assert.Equal(t, 25.0, p.MarketScore)
	// 20bn KRW daily traded value: top liquidity tier.
	assert.Equal(t, "A", p.LiquidityGrade)
	assert.Equal(t, 20.0, p.LiquidityScore)
	// No financials: neutral credit.
	assert.Equal(t, 50.0, p.CreditScore)
	assert.InDelta(t, 35.25, p.CompositeScore, 1e-9)
	assert.Equal(t, GradeModerate, p.Grade)
}

func TestAssess_StatWindowIsTrailingYear(t *testing.T) {
	e := newTestEngine()

	// A volatile regime followed by a full flat year: volatility, VaR and
	// beta must read only the trailing sessions, while the drawdown still
	// sees the older swings.
	day := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	var prices []domain.PriceObservation
	for i := 0; i < 500; i++ {
		price := 10000.0
		if i%2 == 1 {
			price = 11000
		}
		prices = append(prices, domain.PriceObservation{Date: day, Close: price, Volume: 2_000_000})
		day = day.AddDate(0, 0, 1)
	}
	for i := 0; i < 260; i++ {
		prices = append(prices, domain.PriceObservation{Date: day, Close: 10000, Volume: 2_000_000})
		day = day.AddDate(0, 0, 1)
	}

	p := e.Assess(Inputs{Code: "005930", Prices: prices})

	require.NotNil(t, p.Market.Volatility)
	assert.InDelta(t, 0.0, *p.Market.Volatility, 1e-9)
	require.NotNil(t, p.Market.VaR95)
	assert.InDelta(t, 0.0, *p.Market.VaR95, 1e-9)
	require.NotNil(t, p.Market.Beta)
	assert.InDelta(t, 0.33, *p.Market.Beta, 1e-9)
	require.NotNil(t, p.Market.MaxDrawdown)
	assert.Greater(t, *p.Market.MaxDrawdown, 0.05)
}

func TestCreditAssessment_ZeroInterestExpense(t *testing.T) {
	e := newTestEngine()

	stats, score := e.creditAssessment(&domain.FinancialAggregates{
		EBIT:            f(500_000_000_000),
		InterestExpense: f(0),
	})

	require.NotNil(t, stats.InterestCoverage)
	assert.True(t, math.IsInf(*stats.InterestCoverage, 1))
	assert.Empty(t, stats.RedFlags)
	// Infinite coverage lands in the >10 relief band.
	assert.Equal(t, 35.0, score)
}

func TestCreditAssessment_DistressZone(t *testing.T) {
	e := newTestEngine()

	// Heavy losses and leverage: Z well below 1.81.
	stats, score := e.creditAssessment(&domain.FinancialAggregates{
		TotalAssets:      f(1_000.0),
		WorkingCapital:   f(-200.0),
		RetainedEarnings: f(-300.0),
		EBIT:             f(-50.0),
		MarketCap:        f(100.0),
		Revenue:          f(400.0),
		TotalLiabilities: f(900.0),
		TotalDebt:        f(700.0),
		Equity:           f(100.0),
		Cash:             f(50.0),
		InterestExpense:  f(60.0),
	})

	require.NotNil(t, stats.AltmanZ)
	assert.Equal(t, zoneDistress, stats.Zone)
	require.NotNil(t, stats.DebtEquity)
	assert.InDelta(t, 7.0, *stats.DebtEquity, 1e-9)
	require.NotNil(t, stats.InterestCoverage)
	assert.Less(t, *stats.InterestCoverage, 2.0)
	// distress +30, debt/equity +25, coverage +25: clamps at 100.
	assert.Equal(t, 100.0, score)
	// Distress flag first, then the ratio flags.
	require.NotEmpty(t, stats.RedFlags)
	assert.Contains(t, stats.RedFlags[0], "distress zone")
}

func TestCreditAssessment_SafeLowLeverage(t *testing.T) {
	e := newTestEngine()

	stats, score := e.creditAssessment(&domain.FinancialAggregates{
		TotalAssets:      f(1_000.0),
		WorkingCapital:   f(300.0),
		RetainedEarnings: f(500.0),
		EBIT:             f(200.0),
		MarketCap:        f(2_000.0),
		Revenue:          f(1_200.0),
		TotalLiabilities: f(300.0),
		TotalDebt:        f(100.0),
		Equity:           f(700.0),
		InterestExpense:  f(5.0),
	})

	assert.Equal(t, zoneSafe, stats.Zone)
	// safe -15, debt/equity<0.5 -10, coverage>10 -15.
	assert.Equal(t, 10.0, score)
	assert.Empty(t, stats.RedFlags)
}

func TestLiquidityTiers(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name   string
		price  float64
		volume int64
		grade  string
		score  float64
	}{
		{"tier A", 10000, 1_500_000, "A", 20}, // 15bn
		{"tier B", 10000, 600_000, "B", 30},   // 6bn
		{"tier C", 10000, 200_000, "C", 50},   // 2bn
		{"tier D", 10000, 70_000, "D", 70},    // 0.7bn
		{"tier F", 10000, 10_000, "F", 90},    // 0.1bn
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grade, score, avg := e.liquidityAssessment(flatSeries(30, tt.price, tt.volume))
			assert.Equal(t, tt.grade, grade)
			assert.Equal(t, tt.score, score)
			assert.InDelta(t, tt.price*float64(tt.volume), avg, 1)
		})
	}
}

func TestStressScenarios(t *testing.T) {
	e := newTestEngine()

	t.Run("high beta and leverage", func(t *testing.T) {
		scenarios := e.stressScenarios(
			MarketStats{Beta: f(2.0)},
			CreditStats{DebtEquity: f(3.0)},
		)
		require.Len(t, scenarios, 4)

		crash := scenarios[0]
		assert.Equal(t, "market_crash", crash.Name)
		assert.InDelta(t, -40.0, crash.LossPct, 1e-9)
		assert.Equal(t, SeverityHigh, crash.Severity)

		rate := scenarios[1]
		assert.InDelta(t, -30.0, rate.LossPct, 1e-9)
		assert.Equal(t, SeverityHigh, rate.Severity)
	})

	t.Run("defaults when stats missing", func(t *testing.T) {
		scenarios := e.stressScenarios(MarketStats{}, CreditStats{})

		crash := scenarios[0]
		assert.InDelta(t, -20.0, crash.LossPct, 1e-9) // beta assumed 1
		assert.Equal(t, SeverityModerate, crash.Severity)

		rate := scenarios[1]
		assert.InDelta(t, -10.0, rate.LossPct, 1e-9)
		assert.Equal(t, SeverityLow, rate.Severity)

		currency := scenarios[2]
		assert.Zero(t, currency.LossPct)
		assert.Equal(t, SeverityNeutral, currency.Severity)

		sector := scenarios[3]
		assert.InDelta(t, -12.0, sector.LossPct, 1e-9)
		assert.Equal(t, SeverityModerate, sector.Severity)
	})
}

func TestGradeBands(t *testing.T) {
	assert.Equal(t, GradeHigh, gradeFromScore(70.001))
	assert.Equal(t, GradeModerateHigh, gradeFromScore(70))
	assert.Equal(t, GradeModerateHigh, gradeFromScore(50.001))
	assert.Equal(t, GradeModerate, gradeFromScore(50))
	assert.Equal(t, GradeModerate, gradeFromScore(30.001))
	assert.Equal(t, GradeLow, gradeFromScore(30))
}

func TestKeyRisks_OrderAndTruncation(t *testing.T) {
	e := newTestEngine()

	p := Profile{
		Market: MarketStats{
			Volatility:  f(0.55),
			MaxDrawdown: f(0.60),
		},
		Credit: CreditStats{
			Zone: zoneDistress,
			RedFlags: []string{
				"Altman Z 0.50 in distress zone",
				"debt/equity 3.00 above 2.0",
				"interest coverage 0.5 below 2.0",
			},
		},
		LiquidityGrade: "F",
		Scenarios: []StressScenario{
			{Name: "market_crash", LossPct: -40, Severity: SeverityHigh},
		},
	}

	// The distress-zone headline is its own entry ahead of the red flags.
	risks := e.keyRisks(p)
	require.Len(t, risks, 5)
	assert.Contains(t, risks[0], "high volatility")
	assert.Contains(t, risks[1], "large drawdown")
	assert.Equal(t, "balance sheet in the Altman distress zone", risks[2])
	assert.Contains(t, risks[3], "Altman Z")
	assert.Contains(t, risks[4], "debt/equity")
}
