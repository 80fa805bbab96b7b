package dart

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "test-key", 2*time.Second, zerolog.Nop())
}

func TestFetchFinancialAggregates(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/financials", r.URL.Path)
			assert.Equal(t, "005930", r.URL.Query().Get("code"))
			assert.Equal(t, "2025", r.URL.Query().Get("year"))
			assert.Equal(t, "test-key", r.URL.Query().Get("crtfc_key"))
			w.Write([]byte(`{"status":"000","aggregates":{
				"total_assets": 450000000000000,
				"ebit": 35000000000000,
				"interest_expense": 0
			}}`))
		})

		fin, err := c.FetchFinancialAggregates(context.Background(), "005930", "2025")
		require.NoError(t, err)
		require.NotNil(t, fin)
		require.NotNil(t, fin.TotalAssets)
		assert.Equal(t, 4.5e14, *fin.TotalAssets)
		require.NotNil(t, fin.InterestExpense)
		assert.Zero(t, *fin.InterestExpense)
		assert.Nil(t, fin.Revenue)
	})

	t.Run("no filing yields nil", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"013","aggregates":{}}`))
		})
		fin, err := c.FetchFinancialAggregates(context.Background(), "999999", "2025")
		require.NoError(t, err)
		assert.Nil(t, fin)
	})
}

func TestFetchSubsidiaryHoldings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/holdings", r.URL.Path)
		w.Write([]byte(`{"holdings":[
			{"name":"Listed Telecom","listing_code":"030200","ownership_pct":0.40,"book_value":500000000000},
			{"name":"Bad Row","listing_code":"","ownership_pct":1.7,"book_value":100},
			{"name":"Unlisted Chemicals","listing_code":"","ownership_pct":1.0,"book_value":200000000000}
		]}`))
	})

	holdings, err := c.FetchSubsidiaryHoldings(context.Background(), "003550", "2025")
	require.NoError(t, err)
	// Ownership above 1 is rejected at construction, not propagated.
	require.Len(t, holdings, 2)
	assert.True(t, holdings[0].Listed)
	assert.Equal(t, "030200", holdings[0].ListingCode)
	assert.False(t, holdings[1].Listed)
}

func TestFetchSubsidiaryHoldings_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	holdings, err := c.FetchSubsidiaryHoldings(context.Background(), "003550", "2025")
	require.NoError(t, err)
	assert.Nil(t, holdings)
}
