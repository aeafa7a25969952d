package alert

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists alerts in a SQLite database.
//
// The one-unresolved-per-source invariant is enforced by a partial unique
// index on (source_metric) WHERE resolved = 0, so two concurrent critical
// detections cannot both insert an open alert: the loser's INSERT OR IGNORE
// affects zero rows and Create reports false.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the alert database at path.
// Pass an existing *sql.DB with OpenSQLiteStore to share the handle.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("alert: open sqlite: %w", err)
	}
	return OpenSQLiteStore(db)
}

// OpenSQLiteStore wraps an existing database handle and ensures the schema.
func OpenSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		source_metric TEXT NOT NULL,
		severity TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		metadata TEXT,
		created_at TEXT NOT NULL,
		resolved INTEGER NOT NULL DEFAULT 0,
		resolved_by TEXT NOT NULL DEFAULT '',
		resolved_at TEXT,
		resolution_notes TEXT NOT NULL DEFAULT ''
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_alerts_open_source
		ON alerts(source_metric) WHERE resolved = 0;`)
	if err != nil {
		return fmt.Errorf("alert: init schema: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// FindUnresolved returns the unresolved alert for the source, or nil.
func (s *SQLiteStore) FindUnresolved(ctx context.Context, sourceMetric string) (*Alert, error) {
	row := s.db.QueryRowContext(ctx,
		selectColumns+` FROM alerts WHERE source_metric = ? AND resolved = 0`,
		sourceMetric)

	a, err := scanAlert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("alert: find unresolved: %w", err)
	}
	return a, nil
}

// Create inserts the alert unless an unresolved one already exists for its
// source metric. The partial unique index makes the dedup atomic.
func (s *SQLiteStore) Create(ctx context.Context, a *Alert) (bool, error) {
	metadata, err := json.Marshal(a.Metadata)
	if err != nil {
		return false, fmt.Errorf("alert: encode metadata: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO alerts
			(id, source_metric, severity, title, message, metadata, created_at, resolved)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		a.ID, a.SourceMetric, a.Severity, a.Title, a.Message,
		string(metadata), a.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("alert: create: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("alert: create: %w", err)
	}
	return n > 0, nil
}

// Resolve marks the alert resolved, recording actor, time and notes.
func (s *SQLiteStore) Resolve(ctx context.Context, id, actor, notes string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE alerts
		SET resolved = 1, resolved_by = ?, resolved_at = ?, resolution_notes = ?
		WHERE id = ? AND resolved = 0`,
		actor, time.Now().UTC().Format(time.RFC3339Nano), notes, id)
	if err != nil {
		return fmt.Errorf("alert: resolve: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("alert: resolve: %w", err)
	}
	if n == 0 {
		// Distinguish missing from already resolved.
		var resolved int
		err := s.db.QueryRowContext(ctx,
			`SELECT resolved FROM alerts WHERE id = ?`, id).Scan(&resolved)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("alert: resolve: %w", err)
		}
		return ErrAlreadyResolved
	}
	return nil
}

// Reopen clears the resolution fields of an alert. Fails if another
// unresolved alert already exists for the same source metric.
func (s *SQLiteStore) Reopen(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE alerts
		SET resolved = 0, resolved_by = '', resolved_at = NULL, resolution_notes = ''
		WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("alert: reopen: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("alert: reopen: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns alerts, newest first.
func (s *SQLiteStore) List(ctx context.Context, includeResolved bool) ([]*Alert, error) {
	query := selectColumns + ` FROM alerts`
	if !includeResolved {
		query += ` WHERE resolved = 0`
	}
	query += ` ORDER BY datetime(created_at) DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("alert: list: %w", err)
	}
	defer rows.Close()

	var alerts []*Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("alert: list: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("alert: list: %w", err)
	}
	return alerts, nil
}

const selectColumns = `SELECT id, source_metric, severity, title, message,
	metadata, created_at, resolved, resolved_by, resolved_at, resolution_notes`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row rowScanner) (*Alert, error) {
	var (
		a          Alert
		metadata   sql.NullString
		createdAt  string
		resolved   int
		resolvedAt sql.NullString
	)
	if err := row.Scan(&a.ID, &a.SourceMetric, &a.Severity, &a.Title,
		&a.Message, &metadata, &createdAt, &resolved, &a.ResolvedBy,
		&resolvedAt, &a.ResolutionNotes); err != nil {
		return nil, err
	}

	if metadata.Valid && metadata.String != "" && metadata.String != "null" {
		if err := json.Unmarshal([]byte(metadata.String), &a.Metadata); err != nil {
			return nil, err
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		a.CreatedAt = t
	}
	a.Resolved = resolved == 1
	if resolvedAt.Valid {
		if t, err := time.Parse(time.RFC3339Nano, resolvedAt.String); err == nil {
			a.ResolvedAt = &t
		}
	}
	return &a, nil
}

var _ Store = (*SQLiteStore)(nil)
