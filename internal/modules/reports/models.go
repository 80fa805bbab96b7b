// Package reports persists and renders completed analyses.
package reports

import (
	"time"

	"github.com/aristath/conviction/internal/domain"
	"github.com/aristath/conviction/internal/modules/risk"
	"github.com/aristath/conviction/internal/modules/scoring"
	"github.com/aristath/conviction/internal/modules/valuation"
)

// Report is one completed analysis of one security.
type Report struct {
	ID        string    `json:"id" msgpack:"id"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`

	Security domain.Security   `json:"security" msgpack:"security"`
	Valuation valuation.Result `json:"valuation" msgpack:"valuation"`
	Risk      risk.Profile     `json:"risk" msgpack:"risk"`
	Scores    scoring.Breakdown `json:"scores" msgpack:"scores"`

	// Warnings carry non-fatal data-quality notes, e.g. a stale multiple
	// snapshot inside the warn window.
	Warnings []string `json:"warnings,omitempty" msgpack:"warnings"`
}

// Summary is the lightweight listing row for a report.
type Summary struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Rating     string    `json:"rating"`
	Conviction float64   `json:"conviction"`
	Verdict    string    `json:"verdict"`
	RiskGrade  string    `json:"risk_grade"`
	Target     int64     `json:"target"`
	CreatedAt  time.Time `json:"created_at"`
}
