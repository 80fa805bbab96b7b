// Package database provides SQLite helpers shared by the universe and
// reports stores.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Profile selects pragma tuning for a database's workload.
type Profile string

const (
	// ProfileStandard suits the read-mostly universe store.
	ProfileStandard Profile = "standard"
	// ProfileAppend suits the write-heavy reports store.
	ProfileAppend Profile = "append"
)

// DB wraps a sql.DB with the pragmas applied at open time.
type DB struct {
	*sql.DB
	path    string
	profile Profile
}

// New opens (creating if needed) a SQLite database with WAL journaling and
// the profile's pragma set applied.
func New(path string, profile Profile) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	// modernc's driver is serialized per connection; a single connection
	// avoids SQLITE_BUSY churn under concurrent writers.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	switch profile {
	case ProfileAppend:
		pragmas = append(pragmas,
			"PRAGMA synchronous=NORMAL",
			"PRAGMA cache_size=-8000",
		)
	default:
		pragmas = append(pragmas,
			"PRAGMA synchronous=FULL",
			"PRAGMA cache_size=-2000",
		)
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to apply %q on %s: %w", pragma, path, err)
		}
	}

	return &DB{DB: sqlDB, path: path, profile: profile}, nil
}

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// WithTransaction runs fn inside a transaction, rolling back on error.
func (db *DB) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// HealthCheck verifies the database responds within the deadline.
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database %s unreachable: %w", db.path, err)
	}
	return nil
}

// WALCheckpoint truncates the write-ahead log. Called before backups so the
// main file is self-contained.
func (db *DB) WALCheckpoint() error {
	if _, err := db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("wal checkpoint failed on %s: %w", db.path, err)
	}
	return nil
}
