package krx

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
	return New(srv.URL, 2*time.Second, zerolog.Nop())
}

func TestFetchPriceHistory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/prices", r.URL.Path)
		assert.Equal(t, "005930", r.URL.Query().Get("code"))
		assert.Equal(t, "2025-01-01", r.URL.Query().Get("start"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"prices":[
			{"date":"2025-01-02","close":53000,"volume":120000,"change_pct":0.5},
			{"date":"not-a-date","close":1,"volume":1,"change_pct":0},
			{"date":"2025-01-03","close":54000,"volume":98000,"change_pct":1.9}
		]}`))
	})

	prices, err := c.FetchPriceHistory(context.Background(), "005930",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	// The malformed row is dropped, not fatal.
	require.Len(t, prices, 2)
	assert.Equal(t, 53000.0, prices[0].Close)
	assert.Equal(t, int64(98000), prices[1].Volume)
}

func TestFetchMultipleSnapshot(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/multiples/005930", r.URL.Path)
			w.Write([]byte(`{"code":"005930","per":11.2,"pbr":1.4,"eps":5100,"as_of_date":"2025-08-29"}`))
		})
		snap, err := c.FetchMultipleSnapshot(context.Background(), "005930")
		require.NoError(t, err)
		require.NotNil(t, snap)
		require.NotNil(t, snap.PER)
		assert.Equal(t, 11.2, *snap.PER)
		assert.Nil(t, snap.BPS)
		assert.Equal(t, 2025, snap.AsOfDate.Year())
	})

	t.Run("absent yields nil without error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		snap, err := c.FetchMultipleSnapshot(context.Background(), "999999")
		require.NoError(t, err)
		assert.Nil(t, snap)
	})

	t.Run("server error propagates", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, err := c.FetchMultipleSnapshot(context.Background(), "005930")
		assert.Error(t, err)
	})
}

func TestFetchMarketCaps(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "030200,032640", r.URL.Query().Get("codes"))
		w.Write([]byte(`{"caps":{"030200":2000000000000}}`))
	})

	caps, err := c.FetchMarketCaps(context.Background(), []string{"030200", "032640"})
	require.NoError(t, err)
	assert.Len(t, caps, 1)
	assert.Equal(t, 2e12, caps["030200"])
}

func TestFetchMarketCaps_EmptyInputSkipsRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	caps, err := c.FetchMarketCaps(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, caps)
}

func TestFetchSharesOutstanding(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"shares":5969782550}`))
	})
	shares, err := c.FetchSharesOutstanding(context.Background(), "005930")
	require.NoError(t, err)
	assert.Equal(t, int64(5969782550), shares)
}
