// Package domain provides core domain models and collaborator contracts.
package domain

import (
	"fmt"
	"time"
)

// Market represents a listing venue
type Market string

const (
	MarketKOSPI  Market = "KOSPI"
	MarketKOSDAQ Market = "KOSDAQ"
)

// Security represents one analyzable listed equity.
// Immutable once resolved at the start of an analysis.
type Security struct {
	Code           string `json:"code"`   // 6-digit listing code, primary identifier
	Name           string `json:"name"`   // Display name
	Market         Market `json:"market"` // Listing venue
	Sector         string `json:"sector,omitempty"`
	HoldingCompany bool   `json:"holding_company"` // Name carries a holding-company marker
}

// PriceObservation is one trading day's close, volume and derived change.
// Sequences are ordered ascending by date with no duplicate dates; the
// provider boundary is responsible for that invariant.
type PriceObservation struct {
	Date      time.Time `json:"date"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
	ChangePct float64   `json:"change_pct"`
}

// TradedValue returns the day's traded value (close × volume).
func (p PriceObservation) TradedValue() float64 {
	return p.Close * float64(p.Volume)
}

// MultipleSnapshot is a point-in-time set of per-share multiples for a
// security. All value fields are optional; nil means the source had no
// figure. Engines consume snapshots read-only and never inspect AsOfDate;
// staleness gating is the orchestration layer's job.
type MultipleSnapshot struct {
	Code          string    `json:"code"`
	PER           *float64  `json:"per,omitempty"`
	PBR           *float64  `json:"pbr,omitempty"`
	EPS           *float64  `json:"eps,omitempty"` // Earnings per share, KRW
	BPS           *float64  `json:"bps,omitempty"` // Book value per share, KRW
	DividendYield *float64  `json:"dividend_yield,omitempty"`
	AsOfDate      time.Time `json:"as_of_date"`
}

// AgeDays returns the snapshot age in whole days relative to now.
func (m MultipleSnapshot) AgeDays(now time.Time) int {
	return int(now.Sub(m.AsOfDate).Hours() / 24)
}

// FinancialAggregates carries the financial-statement line items the risk
// engine consumes. Every field is independently optional; the engine treats
// absence as "skip the dependent metric", never as an error.
type FinancialAggregates struct {
	TotalAssets      *float64 `json:"total_assets,omitempty"`
	WorkingCapital   *float64 `json:"working_capital,omitempty"`
	RetainedEarnings *float64 `json:"retained_earnings,omitempty"`
	EBIT             *float64 `json:"ebit,omitempty"`
	EBITDA           *float64 `json:"ebitda,omitempty"`
	TotalLiabilities *float64 `json:"total_liabilities,omitempty"`
	TotalDebt        *float64 `json:"total_debt,omitempty"`
	Equity           *float64 `json:"equity,omitempty"`
	Cash             *float64 `json:"cash,omitempty"`
	InterestExpense  *float64 `json:"interest_expense,omitempty"`
	Revenue          *float64 `json:"revenue,omitempty"`
	MarketCap        *float64 `json:"market_cap,omitempty"`
}

// Empty reports whether no aggregate is populated.
func (f *FinancialAggregates) Empty() bool {
	if f == nil {
		return true
	}
	return f.TotalAssets == nil && f.WorkingCapital == nil &&
		f.RetainedEarnings == nil && f.EBIT == nil && f.EBITDA == nil &&
		f.TotalLiabilities == nil && f.TotalDebt == nil && f.Equity == nil &&
		f.Cash == nil && f.InterestExpense == nil && f.Revenue == nil &&
		f.MarketCap == nil
}

// SubsidiaryHolding is one investee stake reported in a filing. Holdings are
// created fresh per NAV computation and never persisted across analyses:
// ownership and book values change yearly.
type SubsidiaryHolding struct {
	Name            string  `json:"name"`
	ListingCode     string  `json:"listing_code,omitempty"` // Empty for unlisted investees
	Listed          bool    `json:"listed"`
	OwnershipPct    float64 `json:"ownership_pct"` // Fraction, 0-1
	BookValue       float64 `json:"book_value"`    // KRW
	AcquisitionCost float64 `json:"acquisition_cost"`
	Purpose         string  `json:"purpose,omitempty"`
}

// NewSubsidiaryHolding validates and constructs a holding record. Malformed
// filings are rejected here so scoring logic never sees them.
func NewSubsidiaryHolding(name, listingCode string, ownershipPct, bookValue, acquisitionCost float64, purpose string) (SubsidiaryHolding, error) {
	if name == "" {
		return SubsidiaryHolding{}, fmt.Errorf("subsidiary holding requires a name")
	}
	if ownershipPct < 0 || ownershipPct > 1 {
		return SubsidiaryHolding{}, fmt.Errorf("ownership fraction %.4f out of range [0,1] for %s", ownershipPct, name)
	}
	if bookValue < 0 {
		return SubsidiaryHolding{}, fmt.Errorf("negative book value %.0f for %s", bookValue, name)
	}

	return SubsidiaryHolding{
		Name:            name,
		ListingCode:     listingCode,
		Listed:          listingCode != "",
		OwnershipPct:    ownershipPct,
		BookValue:       bookValue,
		AcquisitionCost: acquisitionCost,
		Purpose:         purpose,
	}, nil
}

// Float returns a pointer to v. Convenience for building optional fields.
func Float(v float64) *float64 {
	return &v
}
