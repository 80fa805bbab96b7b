package valuation

import (
	"fmt"
	"math"
)

// structuralDiscount is the outcome of the standard-policy discount analysis.
type structuralDiscount struct {
	Total    float64 // Summed discount fraction, capped
	Factors  []string
	Cyclical bool
}

// analyzeDiscount inspects a security for structural reasons the market
// assigns it a persistent multiple discount. Only the standard policy runs
// this; peer and custom policies encode the analyst's judgement directly.
func (e *Engine) analyzeDiscount(in Inputs, baseline float64) structuralDiscount {
	var d structuralDiscount

	if in.Holding {
		d.Total += e.cfg.HoldingDiscount
		d.Factors = append(d.Factors, fmt.Sprintf("holding company structure (-%.0f%%)", e.cfg.HoldingDiscount*100))
	}

	if in.CurrentPrice > 0 && in.CurrentPrice < e.cfg.LowPriceThreshold {
		d.Total += e.cfg.LowPriceDiscount
		d.Factors = append(d.Factors, fmt.Sprintf("low absolute price proxies thin institutional coverage (-%.0f%%)", e.cfg.LowPriceDiscount*100))
	}

	// A current multiple far above the sector baseline means the market is
	// already pricing an earnings impairment. Take half of it through to the
	// target so the discount visible in price is not double counted.
	if in.PER != nil && *in.PER > 0 && baseline > 0 {
		ratio := baseline / *in.PER
		if ratio < 0.5 {
			implied := math.Min(e.cfg.MarketImpliedCap, (1-ratio)*0.5)
			d.Total += implied
			d.Factors = append(d.Factors, fmt.Sprintf("market-implied earnings impairment (-%.0f%%)", implied*100))
		}
	}

	if e.cfg.CyclicalSectors[in.Sector] {
		d.Cyclical = true
	}

	if d.Total > e.cfg.TotalDiscountCap {
		d.Total = e.cfg.TotalDiscountCap
		d.Factors = append(d.Factors, fmt.Sprintf("total discount capped at %.0f%%", e.cfg.TotalDiscountCap*100))
	}
	return d
}

// adjustMultiple applies the structural discount to a baseline multiple. The
// result never falls below MultipleFloorRatio times the current multiple, or
// below floorAbs when the current multiple is unknown.
func (e *Engine) adjustMultiple(baseline float64, current *float64, d structuralDiscount, floorAbs float64) float64 {
	adjusted := baseline * (1 - e.cfg.DiscountPassThrough*d.Total)
	floor := floorAbs
	if current != nil && *current > 0 {
		floor = e.cfg.MultipleFloorRatio * *current
	}
	if adjusted < floor {
		adjusted = floor
	}
	return adjusted
}
