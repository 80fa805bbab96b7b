// Package dart fetches financial-statement data from the corporate filing
// registry.
package dart

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

// Client talks to the filing registry's JSON API. Implements
// domain.FilingDataProvider.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

// New creates a filing registry client.
func New(baseURL, apiKey string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.Client(log, "dart"),
	}
}

type financialsResponse struct {
	Status     string              `json:"status"`
	Aggregates map[string]*float64 `json:"aggregates"`
}

// Named aggregate keys in the registry response.
const (
	keyTotalAssets      = "total_assets"
	keyWorkingCapital   = "working_capital"
	keyRetainedEarnings = "retained_earnings"
	keyEBIT             = "ebit"
	keyEBITDA           = "ebitda"
	keyTotalLiabilities = "total_liabilities"
	keyTotalDebt        = "total_debt"
	keyEquity           = "equity"
	keyCash             = "cash"
	keyInterestExpense  = "interest_expense"
	keyRevenue          = "revenue"
	keyMarketCap        = "market_cap"
)

// FetchFinancialAggregates returns statement aggregates for a fiscal year, or
// nil when the registry has no filing for the code.
func (c *Client) FetchFinancialAggregates(ctx context.Context, code, year string) (*domain.FinancialAggregates, error) {
	q := url.Values{}
	q.Set("code", code)
	q.Set("year", year)

	var resp financialsResponse
	err := c.getJSON(ctx, "/financials?"+q.Encode(), &resp)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch financials for %s/%s: %w", code, year, err)
	}
	if len(resp.Aggregates) == 0 {
		return nil, nil
	}

	return &domain.FinancialAggregates{
		TotalAssets:      resp.Aggregates[keyTotalAssets],
		WorkingCapital:   resp.Aggregates[keyWorkingCapital],
		RetainedEarnings: resp.Aggregates[keyRetainedEarnings],
		EBIT:             resp.Aggregates[keyEBIT],
		EBITDA:           resp.Aggregates[keyEBITDA],
		TotalLiabilities: resp.Aggregates[keyTotalLiabilities],
		TotalDebt:        resp.Aggregates[keyTotalDebt],
		Equity:           resp.Aggregates[keyEquity],
		Cash:             resp.Aggregates[keyCash],
		InterestExpense:  resp.Aggregates[keyInterestExpense],
		Revenue:          resp.Aggregates[keyRevenue],
		MarketCap:        resp.Aggregates[keyMarketCap],
	}, nil
}

type holdingRow struct {
	Name            string  `json:"name"`
	ListingCode     string  `json:"listing_code"`
	OwnershipPct    float64 `json:"ownership_pct"`
	BookValue       float64 `json:"book_value"`
	AcquisitionCost float64 `json:"acquisition_cost"`
	Purpose         string  `json:"purpose"`
}

type holdingsResponse struct {
	Holdings []holdingRow `json:"holdings"`
}

// FetchSubsidiaryHoldings returns the investee stakes reported in the year's
// filing. Malformed rows are dropped with a warning rather than failing the
// whole filing.
func (c *Client) FetchSubsidiaryHoldings(ctx context.Context, code, year string) ([]domain.SubsidiaryHolding, error) {
	q := url.Values{}
	q.Set("code", code)
	q.Set("year", year)

	var resp holdingsResponse
	err := c.getJSON(ctx, "/holdings?"+q.Encode(), &resp)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch holdings for %s/%s: %w", code, year, err)
	}

	out := make([]domain.SubsidiaryHolding, 0, len(resp.Holdings))
	for _, row := range resp.Holdings {
		h, err := domain.NewSubsidiaryHolding(row.Name, row.ListingCode, row.OwnershipPct, row.BookValue, row.AcquisitionCost, row.Purpose)
		if err != nil {
			c.log.Warn().Err(err).Str("code", code).Msg("dropping malformed holding row")
			continue
		}
		out = append(out, h)
	}
	return out, nil
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
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	full := c.baseURL + path
	if c.apiKey != "" {
		full += sep + "crtfc_key=" + url.QueryEscape(c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

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
