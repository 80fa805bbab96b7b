package reports

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/conviction/internal/database"
	"github.com/aristath/conviction/pkg/logger"
)

// Repository stores reports. Listing columns are denormalized for cheap
// queries; the full analysis travels as a msgpack blob.
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a reports repository.
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{db: db, log: logger.Repository(log, "reports")}
}

// Save assigns the report an ID and timestamp and persists it. The input is
// mutated with the assigned identity.
func (r *Repository) Save(ctx context.Context, report *Report) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	payload, err := msgpack.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report for %s: %w", report.Security.Code, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO reports (id, code, name, rating, conviction, verdict, risk_grade, target, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.Security.Code,
		report.Security.Name,
		string(report.Scores.Rating),
		report.Scores.Conviction,
		string(report.Valuation.Verdict),
		string(report.Risk.Grade),
		report.Valuation.TargetPrice,
		payload,
		report.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save report %s: %w", report.ID, err)
	}

	r.log.Info().
		Str("report_id", report.ID).
		Str("code", report.Security.Code).
		Str("rating", string(report.Scores.Rating)).
		Msg("report saved")
	return nil
}

// Get loads a full report by ID, or nil when unknown.
func (r *Repository) Get(ctx context.Context, id string) (*Report, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM reports WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report %s: %w", id, err)
	}

	var report Report
	if err := msgpack.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", id, err)
	}
	return &report, nil
}

// Latest loads the most recent report for a security, or nil when none.
func (r *Repository) Latest(ctx context.Context, code string) (*Report, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM reports WHERE code = ? ORDER BY created_at DESC LIMIT 1`, code).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest report for %s: %w", code, err)
	}
	return r.Get(ctx, id)
}

// List returns report summaries, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, code, name, rating, conviction, verdict, risk_grade, target, created_at
		FROM reports ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		var created string
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.Rating, &s.Conviction, &s.Verdict, &s.RiskGrade, &s.Target, &created); err != nil {
			return nil, fmt.Errorf("failed to scan report summary: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, created); err == nil {
			s.CreatedAt = ts
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Prune deletes reports older than the cutoff, returning how many went.
func (r *Repository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE created_at < ?`,
		cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to prune reports: %w", err)
	}
	return res.RowsAffected()
}
