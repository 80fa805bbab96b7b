package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/conviction/internal/database"
	"github.com/aristath/conviction/internal/domain"
	"github.com/aristath/conviction/internal/modules/reports"
	"github.com/aristath/conviction/internal/modules/risk"
	"github.com/aristath/conviction/internal/modules/scoring"
	"github.com/aristath/conviction/internal/modules/valuation"
)

func newTestServer(t *testing.T) (*httptest.Server, *reports.Repository) {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "reports.db"), database.ProfileAppend)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.InitReportsSchema(db))

	repo := reports.NewRepository(db, zerolog.Nop())
	srv := httptest.NewServer(NewHandler(repo, zerolog.Nop()).Routes())
	t.Cleanup(srv.Close)
	return srv, repo
}

func saveSample(t *testing.T, repo *reports.Repository, code string) *reports.Report {
	t.Helper()
	rep := &reports.Report{
		Security:  domain.Security{Code: code, Name: "n" + code, Market: domain.MarketKOSPI},
		Valuation: valuation.Result{Code: code, TargetPrice: 60000, Verdict: valuation.VerdictFair},
		Risk:      risk.Profile{Code: code, CompositeScore: 35.25, Grade: risk.GradeModerate},
		Scores:    scoring.Breakdown{Conviction: 55, Rating: scoring.RatingHold},
	}
	require.NoError(t, repo.Save(context.Background(), rep))
	return rep
}

func TestList(t *testing.T) {
	srv, repo := newTestServer(t)
	saveSample(t, repo, "005930")
	saveSample(t, repo, "000660")

	resp, err := http.Get(srv.URL + "/?limit=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data []reports.Summary `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Data, 1)
}

func TestGet(t *testing.T) {
	srv, repo := newTestServer(t)
	rep := saveSample(t, repo, "005930")

	resp, err := http.Get(srv.URL + "/" + rep.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data reports.Report `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "005930", body.Data.Security.Code)

	resp, err = http.Get(srv.URL + "/no-such-id")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLatest(t *testing.T) {
	srv, repo := newTestServer(t)
	saveSample(t, repo, "005930")

	resp, err := http.Get(srv.URL + "/latest/005930")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/latest/999999")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLatestRisk(t *testing.T) {
	srv, repo := newTestServer(t)
	saveSample(t, repo, "005930")

	resp, err := http.Get(srv.URL + "/latest/005930/risk")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data risk.Profile `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, risk.GradeModerate, body.Data.Grade)
	assert.InDelta(t, 35.25, body.Data.CompositeScore, 1e-9)

	resp, err = http.Get(srv.URL + "/latest/999999/risk")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
