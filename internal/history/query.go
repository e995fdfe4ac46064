// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/quadrature-engine/pkg/types"
)

// Filter narrows List and the exports.
type Filter struct {
	// Function matches entries whose expression contains this substring.
	Function string

	// BestMethod matches the winning rule name exactly.
	BestMethod string

	// Since drops entries recorded before this instant.
	Since time.Time

	// Limit caps the result count. Zero uses the store default.
	Limit int
}

// List returns matching entries, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]types.HistoryEntry, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT id, created_at, function, a, b, n, reference, reference_source, best_method, summary
		FROM analyses WHERE 1=1`)

	if f.Function != "" {
		qb.WriteString(` AND instr(function, ?) > 0`)
		args = append(args, f.Function)
	}
	if f.BestMethod != "" {
		qb.WriteString(` AND best_method = ?`)
		args = append(args, f.BestMethod)
	}
	if !f.Since.IsZero() {
		qb.WriteString(` AND created_at >= ?`)
		args = append(args, f.Since.UTC().Format(timeLayout))
	}

	qb.WriteString(` ORDER BY created_at DESC, rowid DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}

	var entries []types.HistoryEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range entries {
		results, err := s.methodResults(ctx, entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].Results = results
	}
	return entries, nil
}

// Get returns a single entry by ID.
func (s *Store) Get(ctx context.Context, id string) (types.HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, function, a, b, n, reference, reference_source, best_method, summary
		FROM analyses WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.HistoryEntry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return types.HistoryEntry{}, err
	}
	e.Results, err = s.methodResults(ctx, id)
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(r scanner) (types.HistoryEntry, error) {
	var (
		e         types.HistoryEntry
		createdAt string
		ref       sql.NullFloat64
		source    sql.NullString
		best      sql.NullString
		summary   sql.NullString
	)
	if err := r.Scan(&e.ID, &createdAt, &e.Function, &e.A, &e.B, &e.N, &ref, &source, &best, &summary); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scanning row: %w", err)
	}
	if t, err := time.Parse(timeLayout, createdAt); err == nil {
		e.CreatedAt = t
	}
	e.Reference = sample(ref)
	e.ReferenceSource = source.String
	e.BestMethod = best.String
	e.Summary = summary.String
	return e, nil
}

func (s *Store) methodResults(ctx context.Context, id string) ([]types.HistoryMethodEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT method, estimate, absolute_error FROM method_results
		WHERE analysis_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("querying results for %s: %w", id, err)
	}
	defer rows.Close()

	var out []types.HistoryMethodEntry
	for rows.Next() {
		var (
			m             types.HistoryMethodEntry
			estimate, abs sql.NullFloat64
		)
		if err := rows.Scan(&m.MethodName, &estimate, &abs); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		m.IntegralValue = sample(estimate)
		m.AbsoluteError = sample(abs)
		out = append(out, m)
	}
	return out, rows.Err()
}
