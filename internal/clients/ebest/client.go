// Package ebest fetches financial-statement data from a brokerage data
// terminal, as a fallback behind the filing registry.
package ebest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/conviction/internal/domain"
	"github.com/aristath/conviction/pkg/logger"
)

// Client talks to the brokerage's research API. Implements
// domain.FilingDataProvider.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

// New creates a brokerage data client.
func New(baseURL, apiKey string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.Client(log, "ebest"),
	}
}

// The brokerage serves one flat statement row per fiscal year, already
// summed across quarters.
type financeResponse struct {
	Code             string   `json:"code"`
	Year             string   `json:"year"`
	TotalAssets      *float64 `json:"total_assets"`
	WorkingCapital   *float64 `json:"working_capital"`
	RetainedEarnings *float64 `json:"retained_earnings"`
	EBIT             *float64 `json:"ebit"`
	EBITDA           *float64 `json:"ebitda"`
	TotalLiabilities *float64 `json:"total_liabilities"`
	TotalDebt        *float64 `json:"total_debt"`
	Equity           *float64 `json:"equity"`
	Cash             *float64 `json:"cash"`
	InterestExpense  *float64 `json:"interest_expense"`
	Revenue          *float64 `json:"revenue"`
	MarketCap        *float64 `json:"market_cap"`
}

// FetchFinancialAggregates returns statement aggregates for a fiscal year, or
// nil when the brokerage carries no row for the code.
func (c *Client) FetchFinancialAggregates(ctx context.Context, code, year string) (*domain.FinancialAggregates, error) {
	q := url.Values{}
	q.Set("code", code)
	q.Set("year", year)

	var resp financeResponse
	err := c.getJSON(ctx, "/stock/finance?"+q.Encode(), &resp)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch brokerage financials for %s/%s: %w", code, year, err)
	}

	fin := &domain.FinancialAggregates{
		TotalAssets:      resp.TotalAssets,
		WorkingCapital:   resp.WorkingCapital,
		RetainedEarnings: resp.RetainedEarnings,
		EBIT:             resp.EBIT,
		EBITDA:           resp.EBITDA,
		TotalLiabilities: resp.TotalLiabilities,
		TotalDebt:        resp.TotalDebt,
		Equity:           resp.Equity,
		Cash:             resp.Cash,
		InterestExpense:  resp.InterestExpense,
		Revenue:          resp.Revenue,
		MarketCap:        resp.MarketCap,
	}
	if fin.Empty() {
		return nil, nil
	}
	return fin, nil
}

// FetchSubsidiaryHoldings always reports no data: the brokerage terminal
// carries statement rows, not filing-level investee detail. Holding-company
// valuations therefore depend on the filing registry alone.
func (c *Client) FetchSubsidiaryHoldings(ctx context.Context, code, year string) ([]domain.SubsidiaryHolding, error) {
	return nil, nil
}

type statusError struct {
	status int
	url    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.status, e.url)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.status == http.StatusNotFound
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{status: resp.StatusCode, url: req.URL.String()}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
