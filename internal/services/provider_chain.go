// Package services orchestrates data retrieval, engine invocation, and
// report persistence.
package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aristath/conviction/internal/domain"
	"github.com/aristath/conviction/pkg/logger"
)

// FilingChain tries an ordered list of filing providers until one yields
// non-empty data. Provider failures are logged and skipped; the chain only
// errors when every provider errored.
type FilingChain struct {
	providers []namedFilingProvider
	log       zerolog.Logger
}

type namedFilingProvider struct {
	name     string
	provider domain.FilingDataProvider
}

// NewFilingChain creates an empty chain.
func NewFilingChain(log zerolog.Logger) *FilingChain {
	return &FilingChain{log: logger.Service(log, "filing_chain")}
}

// Append adds a provider at the end of the priority order.
func (c *FilingChain) Append(name string, p domain.FilingDataProvider) *FilingChain {
	c.providers = append(c.providers, namedFilingProvider{name: name, provider: p})
	return c
}

// FetchFinancialAggregates returns the first provider's non-empty aggregates.
func (c *FilingChain) FetchFinancialAggregates(ctx context.Context, code, year string) (*domain.FinancialAggregates, error) {
	var lastErr error
	for _, np := range c.providers {
		fin, err := np.provider.FetchFinancialAggregates(ctx, code, year)
		if err != nil {
			c.log.Warn().Err(err).Str("provider", np.name).Str("code", code).Msg("financials fetch failed, trying next")
			lastErr = err
			continue
		}
		if !fin.Empty() {
			return fin, nil
		}
	}
	return nil, lastErr
}

// FetchSubsidiaryHoldings returns the first provider's non-empty holdings.
func (c *FilingChain) FetchSubsidiaryHoldings(ctx context.Context, code, year string) ([]domain.SubsidiaryHolding, error) {
	var lastErr error
	for _, np := range c.providers {
		holdings, err := np.provider.FetchSubsidiaryHoldings(ctx, code, year)
		if err != nil {
			c.log.Warn().Err(err).Str("provider", np.name).Str("code", code).Msg("holdings fetch failed, trying next")
			lastErr = err
			continue
		}
		if len(holdings) > 0 {
			return holdings, nil
		}
	}
	return nil, lastErr
}
