// Package universe persists the analyzable securities and their valuation
// policies.
package universe

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/conviction/internal/database"
	"github.com/aristath/conviction/internal/domain"
	"github.com/aristath/conviction/internal/modules/valuation"
	"github.com/aristath/conviction/pkg/logger"
)

// Repository provides access to the universe store.
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a universe repository.
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{db: db, log: logger.Repository(log, "universe")}
}

// UpsertSecurity inserts or updates a security record.
func (r *Repository) UpsertSecurity(ctx context.Context, s domain.Security) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO securities (code, name, market, sector, holding_company)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			market = excluded.market,
			sector = excluded.sector,
			holding_company = excluded.holding_company,
			updated_at = datetime('now')`,
		s.Code, s.Name, string(s.Market), s.Sector, boolToInt(s.HoldingCompany))
	if err != nil {
		return fmt.Errorf("failed to upsert security %s: %w", s.Code, err)
	}
	return nil
}

// GetSecurity returns a security by code, or nil when unknown.
func (r *Repository) GetSecurity(ctx context.Context, code string) (*domain.Security, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT code, name, market, sector, holding_company
		FROM securities WHERE code = ?`, code)

	var s domain.Security
	var market string
	var holding int
	if err := row.Scan(&s.Code, &s.Name, &market, &s.Sector, &holding); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get security %s: %w", code, err)
	}
	s.Market = domain.Market(market)
	s.HoldingCompany = holding != 0
	return &s, nil
}

// ListSecurities returns the whole universe ordered by code.
func (r *Repository) ListSecurities(ctx context.Context) ([]domain.Security, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT code, name, market, sector, holding_company
		FROM securities ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list securities: %w", err)
	}
	defer rows.Close()

	var out []domain.Security
	for rows.Next() {
		var s domain.Security
		var market string
		var holding int
		if err := rows.Scan(&s.Code, &s.Name, &market, &s.Sector, &holding); err != nil {
			return nil, fmt.Errorf("failed to scan security: %w", err)
		}
		s.Market = domain.Market(market)
		s.HoldingCompany = holding != 0
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteSecurity removes a security and its policy.
func (r *Repository) DeleteSecurity(ctx context.Context, code string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM securities WHERE code = ?`, code); err != nil {
		return fmt.Errorf("failed to delete security %s: %w", code, err)
	}
	return nil
}

// SavePolicy persists a valuation policy.
func (r *Repository) SavePolicy(ctx context.Context, p valuation.Policy) error {
	caveats, err := json.Marshal(p.Caveats)
	if err != nil {
		return fmt.Errorf("failed to encode caveats for %s: %w", p.Code, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO valuation_policies
			(code, kind, peer_name, peer_per, peer_pbr, custom_per, custom_pbr, caveats, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			kind = excluded.kind,
			peer_name = excluded.peer_name,
			peer_per = excluded.peer_per,
			peer_pbr = excluded.peer_pbr,
			custom_per = excluded.custom_per,
			custom_pbr = excluded.custom_pbr,
			caveats = excluded.caveats,
			comment = excluded.comment,
			updated_at = datetime('now')`,
		p.Code, string(p.Kind), p.PeerName, p.PeerPER, p.PeerPBR, p.CustomPER, p.CustomPBR, string(caveats), p.Comment)
	if err != nil {
		return fmt.Errorf("failed to save policy for %s: %w", p.Code, err)
	}
	return nil
}

// DeletePolicy removes a policy, reporting whether one existed.
func (r *Repository) DeletePolicy(ctx context.Context, code string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM valuation_policies WHERE code = ?`, code)
	if err != nil {
		return false, fmt.Errorf("failed to delete policy for %s: %w", code, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListPolicies returns every persisted policy.
func (r *Repository) ListPolicies(ctx context.Context) ([]valuation.Policy, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT code, kind, peer_name, peer_per, peer_pbr, custom_per, custom_pbr, caveats, comment
		FROM valuation_policies ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	defer rows.Close()

	var out []valuation.Policy
	for rows.Next() {
		var p valuation.Policy
		var kind, caveats string
		var peerName sql.NullString
		if err := rows.Scan(&p.Code, &kind, &peerName, &p.PeerPER, &p.PeerPBR, &p.CustomPER, &p.CustomPBR, &caveats, &p.Comment); err != nil {
			return nil, fmt.Errorf("failed to scan policy: %w", err)
		}
		p.Kind = valuation.PolicyKind(kind)
		p.PeerName = peerName.String
		if err := json.Unmarshal([]byte(caveats), &p.Caveats); err != nil {
			r.log.Warn().Err(err).Str("code", p.Code).Msg("malformed caveats column, dropping")
			p.Caveats = nil
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// LoadRegistry hydrates an override registry from the persisted policies.
func (r *Repository) LoadRegistry(ctx context.Context, reg *valuation.OverrideRegistry) error {
	policies, err := r.ListPolicies(ctx)
	if err != nil {
		return err
	}
	for _, p := range policies {
		reg.Set(p)
	}
	r.log.Info().Int("count", len(policies)).Msg("valuation policies loaded")
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
