// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history journals completed analyses in a SQLite database and
// exports them as YAML or JSON.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/quadrature-engine/pkg/types"
)

const (
	dbFile = "history.db"

	// timeLayout is fixed width so that created_at sorts as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// ErrNotFound is returned by Get for an unknown entry ID.
var ErrNotFound = errors.New("history entry not found")

// Store manages the history database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int

	// now is the clock used for CreatedAt; tests replace it.
	now func() time.Time
}

// NewStore opens or creates dir/history.db and its schema.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "history"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		dir:        dir,
		maxResults: maxResults,
		now:        func() time.Time { return time.Now().UTC() },
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory holding the database and exports.
func (s *Store) Dir() string { return s.dir }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL,
			function TEXT NOT NULL,
			a REAL NOT NULL,
			b REAL NOT NULL,
			n INTEGER NOT NULL,
			reference REAL,
			reference_source TEXT,
			best_method TEXT,
			summary TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_function ON analyses(function)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_best_method ON analyses(best_method)`,
		`CREATE TABLE IF NOT EXISTS method_results (
			analysis_id TEXT NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			method TEXT NOT NULL,
			estimate REAL,
			absolute_error REAL,
			PRIMARY KEY (analysis_id, position)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record journals a completed analysis and returns its new ID.
func (s *Store) Record(ctx context.Context, req types.AnalysisRequest, resp *types.AnalysisResponse) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO analyses (id, created_at, function, a, b, n, reference, reference_source, best_method, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, s.now().UTC().Format(timeLayout), req.Function, req.A, req.B, req.N,
		nullable(resp.TrueIntegralValue), resp.ReferenceSource, resp.BestMethod, resp.AnalysisSummary,
	); err != nil {
		return "", fmt.Errorf("inserting analysis: %w", err)
	}

	for i, r := range resp.Results {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO method_results (analysis_id, position, method, estimate, absolute_error)
			VALUES (?, ?, ?, ?, ?)`,
			id, i, r.MethodName, nullable(r.IntegralValue), nullable(r.AbsoluteError),
		); err != nil {
			return "", fmt.Errorf("inserting result for %s: %w", r.MethodName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing analysis: %w", err)
	}
	return id, nil
}

func nullable(s types.Sample) sql.NullFloat64 {
	v, ok := s.Float64()
	return sql.NullFloat64{Float64: v, Valid: ok}
}

func sample(n sql.NullFloat64) types.Sample {
	if !n.Valid {
		return types.Undefined()
	}
	return types.SampleOf(n.Float64)
}
