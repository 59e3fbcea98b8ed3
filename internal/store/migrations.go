package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// expectedSchemaVersion is the version a fully migrated database reports.
const expectedSchemaVersion = 2

type migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []migration{
	{
		Version:     1,
		Description: "registrations table",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS registrations (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT,
					email TEXT NOT NULL,
					city TEXT,
					country TEXT,
					consent INTEGER NOT NULL DEFAULT 0,
					consent_ts TEXT NOT NULL,
					questionnaire_completed INTEGER NOT NULL DEFAULT 1,
					recommendations_viewed INTEGER NOT NULL DEFAULT 0,
					risk_score INTEGER,
					risk_category TEXT,
					created_ts TEXT NOT NULL DEFAULT (datetime('now')),
					user_id TEXT
				)`,
				`CREATE INDEX IF NOT EXISTS idx_reg_email ON registrations(email)`,
				`CREATE INDEX IF NOT EXISTS idx_reg_country ON registrations(country)`,
			}
			for _, q := range queries {
				if _, err := tx.Exec(q); err != nil {
					return fmt.Errorf("execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "goals table",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS goals (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					goal_id TEXT UNIQUE NOT NULL,
					registration_id INTEGER,
					corpus REAL NOT NULL,
					sip REAL NOT NULL,
					horizon INTEGER NOT NULL,
					risk_category TEXT NOT NULL,
					conservative_projection REAL,
					expected_projection REAL,
					best_case_projection REAL,
					confidence TEXT,
					adjusted_return REAL,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL,
					status TEXT DEFAULT 'saved',
					email_sent_at TEXT,
					revisited_at TEXT,
					FOREIGN KEY (registration_id) REFERENCES registrations(id)
				)`,
				`CREATE INDEX IF NOT EXISTS idx_goal_id ON goals(goal_id)`,
				`CREATE INDEX IF NOT EXISTS idx_goal_reg_id ON goals(registration_id)`,
			}
			for _, q := range queries {
				if _, err := tx.Exec(q); err != nil {
					return fmt.Errorf("execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies pending migrations, one transaction each, tracking the
// schema version in PRAGMA user_version.
func (s *Store) Migrate(ctx context.Context) error {
	var currentVersion int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= currentVersion {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("set schema version %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
		log.Printf("applied store migration %d: %s", m.Version, m.Description)
	}

	var finalVersion int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion); err != nil {
		return fmt.Errorf("verify schema version: %w", err)
	}
	if finalVersion != expectedSchemaVersion {
		return fmt.Errorf("schema version mismatch: expected %d, got %d", expectedSchemaVersion, finalVersion)
	}
	return nil
}
