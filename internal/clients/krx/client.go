// Package krx fetches market data from the exchange data service.
package krx

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

// Client talks to the exchange's JSON API. Implements
// domain.MarketDataProvider.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// New creates an exchange client.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.Client(log, "krx"),
	}
}

type priceRow struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	Close     float64 `json:"close"`
	Volume    int64   `json:"volume"`
	ChangePct float64 `json:"change_pct"`
}

type priceResponse struct {
	Prices []priceRow `json:"prices"`
}

// FetchPriceHistory returns daily observations ascending by date. An unknown
// code yields an empty slice.
func (c *Client) FetchPriceHistory(ctx context.Context, code string, start, end time.Time) ([]domain.PriceObservation, error) {
	q := url.Values{}
	q.Set("code", code)
	q.Set("start", start.Format("2006-01-02"))
	q.Set("end", end.Format("2006-01-02"))

	var resp priceResponse
	if err := c.getJSON(ctx, "/api/v1/prices?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch price history for %s: %w", code, err)
	}

	out := make([]domain.PriceObservation, 0, len(resp.Prices))
	for _, row := range resp.Prices {
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			c.log.Warn().Str("code", code).Str("date", row.Date).Msg("skipping row with malformed date")
			continue
		}
		out = append(out, domain.PriceObservation{
			Date:      date,
			Close:     row.Close,
			Volume:    row.Volume,
			ChangePct: row.ChangePct,
		})
	}
	return out, nil
}

type snapshotResponse struct {
	Code          string   `json:"code"`
	PER           *float64 `json:"per"`
	PBR           *float64 `json:"pbr"`
	EPS           *float64 `json:"eps"`
	BPS           *float64 `json:"bps"`
	DividendYield *float64 `json:"dividend_yield"`
	AsOfDate      string   `json:"as_of_date"`
}

// FetchMultipleSnapshot returns the current multiples, or nil when the
// service has no valuation row for the code.
func (c *Client) FetchMultipleSnapshot(ctx context.Context, code string) (*domain.MultipleSnapshot, error) {
	var resp snapshotResponse
	err := c.getJSON(ctx, "/api/v1/multiples/"+url.PathEscape(code), &resp)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch multiples for %s: %w", code, err)
	}

	asOf, err := time.Parse("2006-01-02", resp.AsOfDate)
	if err != nil {
		return nil, fmt.Errorf("malformed as-of date %q for %s: %w", resp.AsOfDate, code, err)
	}
	return &domain.MultipleSnapshot{
		Code:          code,
		PER:           resp.PER,
		PBR:           resp.PBR,
		EPS:           resp.EPS,
		BPS:           resp.BPS,
		DividendYield: resp.DividendYield,
		AsOfDate:      asOf,
	}, nil
}

type capsResponse struct {
	Caps map[string]float64 `json:"caps"`
}

// FetchMarketCaps resolves market caps for many codes in one request.
// Unresolvable codes are simply absent from the result.
func (c *Client) FetchMarketCaps(ctx context.Context, codes []string) (map[string]float64, error) {
	if len(codes) == 0 {
		return map[string]float64{}, nil
	}
	q := url.Values{}
	q.Set("codes", strings.Join(codes, ","))

	var resp capsResponse
	if err := c.getJSON(ctx, "/api/v1/marketcaps?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch market caps: %w", err)
	}
	if resp.Caps == nil {
		resp.Caps = map[string]float64{}
	}
	return resp.Caps, nil
}

type sharesResponse struct {
	Shares int64 `json:"shares"`
}

// FetchSharesOutstanding returns the listed share count, or 0 when unknown.
func (c *Client) FetchSharesOutstanding(ctx context.Context, code string) (int64, error) {
	var resp sharesResponse
	err := c.getJSON(ctx, "/api/v1/shares/"+url.PathEscape(code), &resp)
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to fetch shares outstanding for %s: %w", code, err)
	}
	return resp.Shares, nil
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
