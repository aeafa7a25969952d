package metric

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists metrics in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the metric database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("metric: open sqlite: %w", err)
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
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS health_metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		check_name TEXT NOT NULL,
		status TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		details TEXT,
		duration_ms REAL NOT NULL DEFAULT 0,
		recorded_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_metrics_status_recorded
		ON health_metrics(status, recorded_at);
	CREATE INDEX IF NOT EXISTS idx_metrics_check
		ON health_metrics(check_name);`)
	if err != nil {
		return fmt.Errorf("metric: init schema: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Create appends one metric record.
func (s *SQLiteStore) Create(ctx context.Context, m *Metric) error {
	details, err := json.Marshal(m.Details)
	if err != nil {
		return fmt.Errorf("metric: encode details: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO health_metrics
			(check_name, status, message, details, duration_ms, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.CheckName, m.Status, m.Message, string(details), m.DurationMS,
		m.RecordedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("metric: create: %w", err)
	}
	return nil
}

// Query returns records matching the filter, newest first.
func (s *SQLiteStore) Query(ctx context.Context, f Filter) ([]*Metric, error) {
	var (
		builder strings.Builder
		args    []any
		where   []string
	)
	builder.WriteString(`SELECT id, check_name, status, message, details,
		duration_ms, recorded_at FROM health_metrics`)

	if f.CheckName != "" {
		where = append(where, "check_name = ?")
		args = append(args, f.CheckName)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if !f.Since.IsZero() {
		where = append(where, "recorded_at >= ?")
		args = append(args, f.Since.UTC().Format(time.RFC3339Nano))
	}
	if len(where) > 0 {
		builder.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	builder.WriteString(" ORDER BY datetime(recorded_at) DESC")
	if f.Limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, builder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("metric: query: %w", err)
	}
	defer rows.Close()

	var metrics []*Metric
	for rows.Next() {
		var (
			m          Metric
			details    sql.NullString
			recordedAt string
		)
		if err := rows.Scan(&m.ID, &m.CheckName, &m.Status, &m.Message,
			&details, &m.DurationMS, &recordedAt); err != nil {
			return nil, fmt.Errorf("metric: query: %w", err)
		}
		if details.Valid && details.String != "" && details.String != "null" {
			if err := json.Unmarshal([]byte(details.String), &m.Details); err != nil {
				return nil, fmt.Errorf("metric: decode details: %w", err)
			}
		}
		if t, err := time.Parse(time.RFC3339Nano, recordedAt); err == nil {
			m.RecordedAt = t
		}
		metrics = append(metrics, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("metric: query: %w", err)
	}
	return metrics, nil
}

// DeleteOlderThan removes records with the given status recorded before the
// cutoff.
func (s *SQLiteStore) DeleteOlderThan(ctx context.Context, cutoff time.Time, status string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM health_metrics WHERE status = ? AND recorded_at < ?`,
		status, cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("metric: delete older than: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("metric: delete older than: %w", err)
	}
	return n, nil
}

var _ Store = (*SQLiteStore)(nil)
