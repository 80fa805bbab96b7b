package valuation

// Config holds all valuation engine parameters. Sector tables and discount
// factors are injected here rather than living as package globals so the
// engine can be exercised with alternate configurations in tests.
type Config struct {
	// Blend weights for the per-method targets. Renormalized over whichever
	// methods produced a value.
	PERWeight float64
	PBRWeight float64

	// Sector baseline tables. Sectors missing from the table fall back to
	// DefaultPER / DefaultPBR.
	SectorPER  map[string]float64
	SectorPBR  map[string]float64
	DefaultPER float64
	DefaultPBR float64

	// FallbackPeerPBR is used when a peer or custom policy carries no book
	// multiple of its own.
	FallbackPeerPBR float64

	// CyclicalSectors always get an off-cycle earnings caveat under the
	// standard policy.
	CyclicalSectors map[string]bool

	// Structural discount factors (standard policy only).
	HoldingDiscount     float64 // Holding-company marker in the name
	LowPriceDiscount    float64 // Absolute price below LowPriceThreshold
	LowPriceThreshold   float64 // KRW; a proxy for illiquidity
	MarketImpliedCap    float64 // Cap on the market-implied component
	TotalDiscountCap    float64 // Cap on the summed discount
	DiscountPassThrough float64 // Fraction of the discount applied to the baseline
	MultipleFloorRatio  float64 // Adjusted multiple floor, × current multiple
	MultipleFloorAbs    float64 // PER floor when the current multiple is unknown
	BookFloorAbs        float64 // PBR floor when the current multiple is unknown

	// Verdict banding. Ratio edges are shared by the PER and PBR
	// assessments; the adjustment magnitudes differ.
	RatioStrongLow  float64 // Below: strong undervaluation adjustment
	RatioLow        float64
	RatioHigh       float64
	RatioStrongHigh float64 // At or above: strong overvaluation adjustment
	UndervaluedMin  float64 // Score at or above → undervalued
	FairMin         float64 // Score at or above → fair

	// Target price presentation.
	RoundingUnit int64   // KRW; targets round to the nearest multiple
	BandPct      float64 // Low/high band around the final target

	// NAV discount model (holding companies).
	NAVBaseDiscount    float64
	NAVYieldCut        float64 // Subtracted when trailing yield is healthy
	NAVYieldThreshold  float64
	NAVIlliquidityAdd  float64 // Added on thin trading
	NAVLiquidityFloor  float64 // KRW average daily traded value
	NAVDiscountMin     float64
	NAVDiscountMax     float64
	NAVUnlistedPBR     float64 // Book multiple assumed for unlisted stakes
	OverstretchedRatio float64 // Current PER / target PER above which a caveat is attached
}

// DefaultConfig returns the production valuation parameters. Sector baselines
// are calibrated for the Korean market and are configuration data, not
// algorithmic behavior - adjust freely.
func DefaultConfig() Config {
	return Config{
		PERWeight: 0.4,
		PBRWeight: 0.3,

		SectorPER: map[string]float64{
			"semiconductor":        15.0,
			"memory-semiconductor": 12.0,
			"electronics":          12.0,
			"it-services":          25.0,
			"internet":             30.0,
			"bio":                  40.0,
			"pharma":               20.0,
			"bank":                 8.0,
			"securities":           10.0,
			"insurance":            10.0,
			"auto":                 8.0,
			"steel":                6.0,
			"chemicals":            10.0,
			"retail":               15.0,
			"construction":         8.0,
		},
		SectorPBR: map[string]float64{
			"memory-semiconductor": 2.5,
			"semiconductor":        2.0,
			"electronics":          1.5,
			"it-services":          3.0,
			"internet":             4.0,
			"bio":                  5.0,
			"bank":                 0.5,
			"securities":           0.8,
			"auto":                 0.8,
			"steel":                0.5,
			"chemicals":            1.0,
		},
		DefaultPER: 12.0,
		DefaultPBR: 1.2,

		FallbackPeerPBR: 1.5,

		CyclicalSectors: map[string]bool{
			"memory-semiconductor": true,
			"semiconductor":        true,
			"steel":                true,
			"chemicals":            true,
			"construction":         true,
		},

		HoldingDiscount:     0.40,
		LowPriceDiscount:    0.05,
		LowPriceThreshold:   5000,
		MarketImpliedCap:    0.30,
		TotalDiscountCap:    0.60,
		DiscountPassThrough: 0.5,
		MultipleFloorRatio:  1.2,
		MultipleFloorAbs:    3.0,
		BookFloorAbs:        0.3,

		RatioStrongLow:  0.7,
		RatioLow:        0.9,
		RatioHigh:       1.1,
		RatioStrongHigh: 1.3,
		UndervaluedMin:  65,
		FairMin:         35,

		RoundingUnit: 1000,
		BandPct:      0.15,

		NAVBaseDiscount:    0.40,
		NAVYieldCut:        0.05,
		NAVYieldThreshold:  0.03,
		NAVIlliquidityAdd:  0.05,
		NAVLiquidityFloor:  1_000_000_000,
		NAVDiscountMin:     0.25,
		NAVDiscountMax:     0.55,
		NAVUnlistedPBR:     1.0,
		OverstretchedRatio: 1.5,
	}
}

// sectorPER returns the baseline earnings multiple for a sector.
func (c Config) sectorPER(sector string) float64 {
	if v, ok := c.SectorPER[sector]; ok {
		return v
	}
	return c.DefaultPER
}

// sectorPBR returns the baseline book multiple for a sector.
func (c Config) sectorPBR(sector string) float64 {
	if v, ok := c.SectorPBR[sector]; ok {
		return v
	}
	return c.DefaultPBR
}
