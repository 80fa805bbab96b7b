package database

import "fmt"

// universeSchema backs the security universe and valuation policies.
const universeSchema = `
CREATE TABLE IF NOT EXISTS securities (
	code            TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	market          TEXT NOT NULL,
	sector          TEXT NOT NULL DEFAULT '',
	holding_company INTEGER NOT NULL DEFAULT 0,
	created_at      TEXT NOT NULL DEFAULT (datetime('now')),
	updated_at      TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS valuation_policies (
	code       TEXT PRIMARY KEY REFERENCES securities(code) ON DELETE CASCADE,
	kind       TEXT NOT NULL,
	peer_name  TEXT,
	peer_per   REAL,
	peer_pbr   REAL,
	custom_per REAL,
	custom_pbr REAL,
	caveats    TEXT NOT NULL DEFAULT '[]',
	comment    TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_securities_sector ON securities(sector);
`

// reportsSchema backs persisted analysis reports. The payload column holds
// the msgpack-encoded full analysis.
const reportsSchema = `
CREATE TABLE IF NOT EXISTS reports (
	id          TEXT PRIMARY KEY,
	code        TEXT NOT NULL,
	name        TEXT NOT NULL,
	rating      TEXT NOT NULL,
	conviction  REAL NOT NULL,
	verdict     TEXT NOT NULL,
	risk_grade  TEXT NOT NULL,
	target      INTEGER NOT NULL,
	payload     BLOB NOT NULL,
	created_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_reports_code ON reports(code, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at DESC);
`

// InitUniverseSchema creates the universe tables if missing.
func InitUniverseSchema(db *DB) error {
	if _, err := db.Exec(universeSchema); err != nil {
		return fmt.Errorf("failed to initialize universe schema: %w", err)
	}
	return nil
}

// InitReportsSchema creates the reports tables if missing.
func InitReportsSchema(db *DB) error {
	if _, err := db.Exec(reportsSchema); err != nil {
		return fmt.Errorf("failed to initialize reports schema: %w", err)
	}
	return nil
}
