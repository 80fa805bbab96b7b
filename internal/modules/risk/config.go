package risk

// Config holds the risk engine parameters.
type Config struct {
	// Composite weights.
	MarketWeight        float64
	CreditWeight        float64
	LiquidityWeight     float64
	ConcentrationWeight float64

	// Data sufficiency.
	MinPricePoints int // Below: the default neutral profile is returned
	MinStatPoints  int // Below: volatility, VaR, CVaR, and beta are omitted
	MinDrawdownPts int // Below: drawdown statistics are omitted

	// Beta proxy.
	MarketVolatility float64 // Assumed index volatility the proxy divides by
	BlumeWeight      float64 // Weight on the raw beta in the Blume adjustment

	VaRConfidence float64

	// Liquidity tiers, KRW average daily traded value over LiquidityWindow
	// sessions. Grades A through F.
	LiquidityWindow int
	TierA           float64
	TierB           float64
	TierC           float64
	TierD           float64

	// Stress scenario assumptions.
	MarketCrashMove  float64 // Index move in the crash scenario
	RateShockMove    float64 // Rate move, as a fraction
	RateSensitivity  float64 // Loss multiplier per unit of debt/equity
	RateShockDefault float64 // Loss when debt/equity is unknown
	SectorBeta       float64
	SectorDownturn   float64

	MaxKeyRisks int
}

// DefaultConfig returns the production risk parameters.
func DefaultConfig() Config {
	return Config{
		MarketWeight:        0.35,
		CreditWeight:        0.30,
		LiquidityWeight:     0.20,
		ConcentrationWeight: 0.15,

		MinPricePoints: 20,
		MinStatPoints:  252,
		MinDrawdownPts: 100,

		MarketVolatility: 0.20,
		BlumeWeight:      0.67,

		VaRConfidence: 0.95,

		LiquidityWindow: 20,
		TierA:           10_000_000_000,
		TierB:           5_000_000_000,
		TierC:           1_000_000_000,
		TierD:           500_000_000,

		MarketCrashMove:  -0.20,
		RateShockMove:    -0.02,
		RateSensitivity:  5,
		RateShockDefault: -10,
		SectorBeta:       0.8,
		SectorDownturn:   -0.15,

		MaxKeyRisks: 5,
	}
}
