package domain

import (
	"context"
	"time"
)

// MarketDataProvider supplies price and valuation data from an external
// market-data service. "No data" is an empty result, never an error: errors
// are reserved for transport-level failures. The orchestration layer fetches
// and passes plain values into the engines; the one exception is the NAV
// path, which resolves subsidiary market caps itself in a single batch.
type MarketDataProvider interface {
	// FetchPriceHistory returns daily observations ascending by date.
	// May return fewer points than the requested window covers.
	FetchPriceHistory(ctx context.Context, code string, start, end time.Time) ([]PriceObservation, error)

	// FetchMultipleSnapshot returns the current multiples for a security,
	// or nil when the service has no valuation row for it.
	FetchMultipleSnapshot(ctx context.Context, code string) (*MultipleSnapshot, error)

	// FetchMarketCaps resolves market capitalizations for many listing
	// codes in one request. Codes the service cannot resolve are absent
	// from the result map.
	FetchMarketCaps(ctx context.Context, codes []string) (map[string]float64, error)

	// FetchSharesOutstanding returns the share count for a security,
	// or 0 when unknown.
	FetchSharesOutstanding(ctx context.Context, code string) (int64, error)
}

// FilingDataProvider supplies financial-statement data from an external
// filing registry. Same absence semantics as MarketDataProvider.
type FilingDataProvider interface {
	// FetchFinancialAggregates returns statement aggregates for a fiscal
	// year, or nil when the registry has no filing.
	FetchFinancialAggregates(ctx context.Context, code, year string) (*FinancialAggregates, error)

	// FetchSubsidiaryHoldings returns the investee stakes reported in the
	// year's filing; empty when none are reported.
	FetchSubsidiaryHoldings(ctx context.Context, code, year string) ([]SubsidiaryHolding, error)
}
