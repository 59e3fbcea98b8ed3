// Package store persists registrations and goals in an embedded SQLite
// database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.opentelemetry.io/otel/trace"
)

// DefaultPath is used when ROBO_DB_PATH is not set.
const DefaultPath = "/app/data/robo_advisor.db"

type Store struct {
	db     *sql.DB
	path   string
	tracer trace.Tracer
}

// Open opens (creating parent directories as needed) and migrates the
// database at path. SQLite runs in WAL mode with a single connection.
func Open(path string, tracer trace.Tracer) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite serializes writers anyway; one connection avoids lock churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db, path: path, tracer: tracer}
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path reports the database file location.
func (s *Store) Path() string {
	return s.path
}
