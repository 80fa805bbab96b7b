package valuation

import (
	"context"
	"fmt"

	"github.com/aristath/conviction/internal/domain"
	"github.com/aristath/conviction/pkg/formulas"
)

// NAVInputs extends the multiple-based inputs with the market color the NAV
// discount model reads.
type NAVInputs struct {
	Inputs
	DividendYield  *float64 // Trailing yield as a fraction
	AvgTradedValue *float64 // KRW average daily traded value
	Year           string   // Fiscal year for the holdings filing
}

// HoldingCompanyValuation values a holding company as the discounted sum of
// its parts: listed stakes at market, unlisted stakes at book. When the
// holdings filing is unavailable or empty the result is exactly what the
// standard multiple-based path would have produced.
func (e *Engine) HoldingCompanyValuation(ctx context.Context, in NAVInputs, filings domain.FilingDataProvider, market domain.MarketDataProvider) Result {
	holdings, err := filings.FetchSubsidiaryHoldings(ctx, in.Code, in.Year)
	if err != nil {
		e.log.Warn().Err(err).Str("code", in.Code).Msg("holdings filing unavailable, using multiple-based path")
		return e.TargetPrice(in.Inputs)
	}
	if len(holdings) == 0 {
		return e.TargetPrice(in.Inputs)
	}

	shares, err := market.FetchSharesOutstanding(ctx, in.Code)
	if err != nil || shares <= 0 {
		e.log.Warn().Err(err).Str("code", in.Code).Msg("shares outstanding unavailable, using multiple-based path")
		return e.TargetPrice(in.Inputs)
	}

	var listedCodes []string
	for _, h := range holdings {
		if h.Listed {
			listedCodes = append(listedCodes, h.ListingCode)
		}
	}

	// One batched lookup for every listed stake. Stakes whose market cap is
	// missing from the response fall back to book value.
	caps := map[string]float64{}
	if len(listedCodes) > 0 {
		caps, err = market.FetchMarketCaps(ctx, listedCodes)
		if err != nil {
			e.log.Warn().Err(err).Str("code", in.Code).Msg("market cap lookup failed, valuing stakes at book")
			caps = map[string]float64{}
		}
	}

	nav := NAVBreakdown{}
	for _, h := range holdings {
		if cap, ok := caps[h.ListingCode]; h.Listed && ok && cap > 0 {
			nav.ListedValue += cap * h.OwnershipPct
			nav.ListedCount++
			continue
		}
		nav.UnlistedValue += h.BookValue * e.cfg.NAVUnlistedPBR
		nav.UnlistedCount++
	}
	nav.GrossNAV = nav.ListedValue + nav.UnlistedValue

	discount := e.cfg.NAVBaseDiscount
	var factors []string
	if in.DividendYield != nil && *in.DividendYield >= e.cfg.NAVYieldThreshold {
		discount -= e.cfg.NAVYieldCut
		factors = append(factors, fmt.Sprintf("healthy dividend yield %.1f%% narrows the discount", *in.DividendYield*100))
	}
	if in.AvgTradedValue != nil && *in.AvgTradedValue < e.cfg.NAVLiquidityFloor {
		discount += e.cfg.NAVIlliquidityAdd
		factors = append(factors, "thin trading widens the discount")
	}
	discount = formulas.Clamp(discount, e.cfg.NAVDiscountMin, e.cfg.NAVDiscountMax)

	nav.DiscountPct = discount * 100
	nav.NetNAV = nav.GrossNAV * (1 - discount)
	nav.PerShare = formulas.RoundToUnit(nav.NetNAV/float64(shares), e.cfg.RoundingUnit)

	res := Result{
		Code:         in.Code,
		Name:         in.Name,
		CurrentPrice: in.CurrentPrice,
		Policy:       PolicyStandard,
		Methodology:  "nav-discount",
		NAVTarget:    &nav.PerShare,
		TargetPrice:  nav.PerShare,
		NAV:          &nav,
	}
	res.Rationale = append(res.Rationale,
		fmt.Sprintf("listed stakes %.0f + unlisted at book %.0f = gross NAV %.0f", nav.ListedValue, nav.UnlistedValue, nav.GrossNAV),
		fmt.Sprintf("holding-company discount %.0f%% applied", nav.DiscountPct))
	res.Rationale = append(res.Rationale, factors...)

	res.TargetLow = formulas.RoundToUnit(float64(res.TargetPrice)*(1-e.cfg.BandPct), e.cfg.RoundingUnit)
	res.TargetHigh = formulas.RoundToUnit(float64(res.TargetPrice)*(1+e.cfg.BandPct), e.cfg.RoundingUnit)

	if in.CurrentPrice > 0 {
		up := (float64(res.TargetPrice) - in.CurrentPrice) / in.CurrentPrice * 100
		res.UpsidePct = &up
	}

	// NAV verdicts score the price against fair value with the same banding
	// the multiple assessment uses on the earnings side.
	score := 50.0
	if in.CurrentPrice > 0 && res.TargetPrice > 0 {
		switch ratio := in.CurrentPrice / float64(res.TargetPrice); {
		case ratio < e.cfg.RatioStrongLow:
			score += 25
		case ratio < e.cfg.RatioLow:
			score += 15
		case ratio < e.cfg.RatioHigh:
		case ratio < e.cfg.RatioStrongHigh:
			score -= 15
		default:
			score -= 25
		}
	}
	res.Score = formulas.Clamp(score, 0, 100)
	res.Verdict = e.verdictFromScore(res.Score)

	e.log.Debug().
		Str("code", in.Code).
		Int64("nav_per_share", nav.PerShare).
		Float64("discount_pct", nav.DiscountPct).
		Msg("holding company valued on NAV")
	return res
}
